package taxonomy

import (
	"sort"
	"strings"
)

// Term is one entry of the trait vocabulary.
type Term struct {
	Term             string   `json:"term" yaml:"term"`
	Category         Category `json:"category" yaml:"category"`
	DescriptionShort string   `json:"descriptionShort,omitempty" yaml:"descriptionShort,omitempty"`
	DescriptionLong  string   `json:"descriptionLong,omitempty" yaml:"descriptionLong,omitempty"`
	ImageURL         string   `json:"imageURL,omitempty" yaml:"imageURL,omitempty"`
	// ShowPlantID marks terms offered as answer options during identification.
	ShowPlantID bool `json:"showPlantID" yaml:"showPlantID"`
	IsFree      bool `json:"isFree,omitempty" yaml:"isFree,omitempty"`
}

// Vocabulary indexes terms by category. It is immutable after construction.
type Vocabulary struct {
	terms      []Term
	byCategory map[Category][]Term
}

// NewVocabulary builds a vocabulary, dropping terms with a blank term or category.
func NewVocabulary(terms []Term) *Vocabulary {
	v := &Vocabulary{byCategory: make(map[Category][]Term)}
	for _, t := range terms {
		t.Term = strings.TrimSpace(t.Term)
		t.Category = Category(strings.TrimSpace(string(t.Category)))
		if t.Term == "" || t.Category == "" {
			continue
		}
		v.terms = append(v.terms, t)
		v.byCategory[t.Category] = append(v.byCategory[t.Category], t)
	}
	return v
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Terms returns all terms in load order.
func (v *Vocabulary) Terms() []Term {
	if v == nil {
		return nil
	}
	out := make([]Term, len(v.terms))
	copy(out, v.terms)
	return out
}

// Options returns the identification answer options for category, sorted by term.
func (v *Vocabulary) Options(category Category) []Term {
	if v == nil {
		return nil
	}
	var out []Term
	for _, t := range v.byCategory[category] {
		if t.ShowPlantID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Term) < strings.ToLower(out[j].Term)
	})
	return out
}

// Lookup finds a term within category, ignoring case.
func (v *Vocabulary) Lookup(category Category, term string) (Term, bool) {
	if v == nil {
		return Term{}, false
	}
	term = strings.TrimSpace(term)
	for _, t := range v.byCategory[category] {
		if strings.EqualFold(t.Term, term) {
			return t, true
		}
	}
	return Term{}, false
}
