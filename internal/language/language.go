package language

import (
	"fmt"
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Languages with Pl@ntNet common-name coverage; their English names are
// accepted as input.
var known = []string{
	"en", "fr", "es", "pt", "de", "it", "nl", "ar", "tr", "ru",
	"ja", "zh", "cs", "sk", "pl", "hu", "sv", "fi", "da", "no",
}

var byName map[string]string

func init() {
	namer := display.English.Languages()
	byName = make(map[string]string, len(known))
	for _, code := range known {
		name := strings.ToLower(namer.Name(xlang.MustParseBase(code)))
		if name != "" {
			byName[name] = code
		}
	}
}

// Normalize returns the ISO 639-1 code for value. Empty input stays empty.
func Normalize(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if code, ok := byName[strings.ToLower(value)]; ok {
		return code, nil
	}
	tag, err := xlang.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q", value)
	}
	base, confidence := tag.Base()
	if confidence == xlang.No {
		return "", fmt.Errorf("unrecognized language %q", value)
	}
	code := base.String()
	if len(code) != 2 {
		return "", fmt.Errorf("language %q has no two-letter code", value)
	}
	return code, nil
}

// DisplayName is the English name for code, or code itself when unknown.
func DisplayName(code string) string {
	base, err := xlang.ParseBase(strings.TrimSpace(code))
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return code
}
