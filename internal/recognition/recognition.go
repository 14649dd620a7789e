package recognition

import (
	"context"
	"errors"

	"botanize/internal/traits"
)

// ErrNoImage is returned when a request carries no image bytes.
var ErrNoImage = errors.New("recognition request has no image")

// Candidate is one species proposed by a recognition service.
type Candidate struct {
	ScientificName string   `json:"scientific_name"`
	Authorship     string   `json:"authorship,omitempty"`
	CommonNames    []string `json:"common_names,omitempty"`
	Family         string   `json:"family,omitempty"`
	Genus          string   `json:"genus,omitempty"`
	// Score is the provider's confidence in [0, 1].
	Score float64 `json:"score"`
	// Rank is the zero-based position in the provider's response.
	Rank int `json:"rank"`
}

// CommonName returns the first common name, or the scientific name when none is known.
func (c Candidate) CommonName() string {
	for _, name := range c.CommonNames {
		if name != "" {
			return name
		}
	}
	return c.ScientificName
}

// Request is one photo submitted for identification.
type Request struct {
	Image    []byte
	Filename string
	Organ    traits.Organ
}

// Validate checks the request before it is sent.
func (r Request) Validate() error {
	if len(r.Image) == 0 {
		return ErrNoImage
	}
	if r.Organ == "" {
		return nil
	}
	_, err := traits.ParseOrgan(string(r.Organ))
	return err
}

// Recognizer identifies plants from images. Candidates keep the provider's
// ranking; an empty slice means the provider found no match.
type Recognizer interface {
	Identify(ctx context.Context, req Request) ([]Candidate, error)
}
