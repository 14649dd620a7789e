package traits

import (
	"strings"

	"botanize/internal/taxonomy"
)

// Selection maps a trait category to the single term the observer chose.
// Blank answers are never stored.
type Selection map[taxonomy.Category]string

// Set records value for category. A blank value clears the category.
func (s Selection) Set(category taxonomy.Category, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		delete(s, category)
		return
	}
	s[category] = value
}

// Get returns the selected value for category.
func (s Selection) Get(category taxonomy.Category) (string, bool) {
	value, ok := s[category]
	return value, ok
}

// Clear removes every answer.
func (s Selection) Clear() {
	for k := range s {
		delete(s, k)
	}
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Normalize returns a copy without blank answers, for selections decoded from
// outside input.
func (s Selection) Normalize() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out.Set(k, v)
	}
	return out
}
