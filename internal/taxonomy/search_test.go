package taxonomy_test

import (
	"testing"

	"botanize/internal/taxonomy"
	"botanize/internal/testsupport"
)

func hitNames(hits []taxonomy.SearchHit) []string {
	names := make([]string, 0, len(hits))
	for _, h := range hits {
		names = append(names, h.Species.ScientificName)
	}
	return names
}

func TestSearchMatchesCommonName(t *testing.T) {
	store := testsupport.NewTaxonomyStore()
	hits := store.Search("Maple", 0)
	if len(hits) != 1 || hits[0].Species.ScientificName != "Acer rubrum" {
		t.Fatalf("unexpected hits: %v", hitNames(hits))
	}
	if hits[0].Score <= 1 {
		t.Fatalf("expected name boost on top of similarity, got %v", hits[0].Score)
	}
}

func TestSearchMatchesFamilyAndDescription(t *testing.T) {
	store := taxonomy.NewStore([]taxonomy.Species{
		{ScientificName: "Quercus alba", Family: "Fagaceae"},
		{ScientificName: "Betula papyrifera", Family: "Betulaceae", Description: "Peeling white bark, papery strips"},
		{ScientificName: "Acer rubrum", Family: "Sapindaceae", Description: "Smooth grey bark"},
	}, nil)

	if got := hitNames(store.Search("fagaceae", 0)); len(got) != 1 || got[0] != "Quercus alba" {
		t.Fatalf("family search returned %v", got)
	}
	got := hitNames(store.Search("papery peeling bark", 0))
	if len(got) != 2 || got[0] != "Betula papyrifera" {
		t.Fatalf("description search returned %v", got)
	}
}

func TestSearchLimitAndEmptyQuery(t *testing.T) {
	store := testsupport.NewTaxonomyStore()
	if hits := store.Search("white", 0); len(hits) != 2 {
		t.Fatalf("expected both white species, got %v", hitNames(hits))
	}
	if hits := store.Search("white", 1); len(hits) != 1 {
		t.Fatalf("expected limit to apply, got %v", hitNames(hits))
	}
	if hits := store.Search("xy", 0); hits != nil {
		t.Fatalf("expected no hits for a query without tokens, got %v", hitNames(hits))
	}
	if hits := store.Search("ginkgo", 0); len(hits) != 0 {
		t.Fatalf("expected no hits, got %v", hitNames(hits))
	}
}
