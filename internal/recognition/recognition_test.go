package recognition_test

import (
	"errors"
	"testing"

	"botanize/internal/recognition"
	"botanize/internal/traits"
)

func TestRequestValidate(t *testing.T) {
	if err := (recognition.Request{}).Validate(); !errors.Is(err, recognition.ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if err := (recognition.Request{Image: []byte{1}, Organ: "stem"}).Validate(); !errors.Is(err, traits.ErrUnknownOrgan) {
		t.Fatalf("expected ErrUnknownOrgan, got %v", err)
	}
	if err := (recognition.Request{Image: []byte{1}, Organ: traits.OrganAuto}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCandidateCommonNameFallsBack(t *testing.T) {
	c := recognition.Candidate{ScientificName: "Acer rubrum"}
	if c.CommonName() != "Acer rubrum" {
		t.Fatalf("expected scientific name fallback, got %q", c.CommonName())
	}
	c.CommonNames = []string{"", "Red maple"}
	if c.CommonName() != "Red maple" {
		t.Fatalf("unexpected common name %q", c.CommonName())
	}
}
