package textutil

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenizeFoldsCaseAndAccents(t *testing.T) {
	got := Tokenize("Écorce LISSE, grisâtre; 3-5 m")
	want := []string{"ecorce", "lisse", "grisatre"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFingerprintEmpty(t *testing.T) {
	if fp := NewFingerprint("a an of"); fp != nil {
		t.Fatalf("expected nil fingerprint for short tokens, got %d tokens", fp.TokenCount())
	}
	if (*Fingerprint)(nil).TokenCount() != 0 {
		t.Fatal("nil fingerprint should report zero tokens")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "red maple swamp", "red maple swamp", 0.999999, 1.000001},
		{"accent insensitive", "Érable rouge", "erable ROUGE", 0.999999, 1.000001},
		{"disjoint", "white oak", "black willow", 0, 0},
		{"partial", "red maple tree", "sugar maple tree", 0.1, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(NewFingerprint(tt.a), NewFingerprint(tt.b))
			if got < tt.min || got > tt.max {
				t.Fatalf("CosineSimilarity = %v, want in [%v, %v]", got, tt.min, tt.max)
			}
			if back := CosineSimilarity(NewFingerprint(tt.b), NewFingerprint(tt.a)); math.Abs(back-got) > 1e-12 {
				t.Fatalf("similarity not symmetric: %v vs %v", got, back)
			}
		})
	}
	if got := CosineSimilarity(nil, NewFingerprint("oak")); got != 0 {
		t.Fatalf("nil fingerprint similarity = %v", got)
	}
}

func TestIDFDropsUbiquitousTerms(t *testing.T) {
	docs := []*Fingerprint{
		NewFingerprint("tree red maple"),
		NewFingerprint("tree white oak"),
		NewFingerprint("tree black willow"),
	}
	corpus := NewCorpus()
	for _, d := range docs {
		corpus.Add(d)
	}
	idf := corpus.IDF()
	if idf["tree"] != 0 {
		t.Fatalf("expected zero weight for a term in every document, got %v", idf["tree"])
	}
	if idf["maple"] <= 0 {
		t.Fatalf("expected positive weight for a rare term, got %v", idf["maple"])
	}
	if fp := NewFingerprint("tree").WithIDF(idf); fp != nil {
		t.Fatal("expected nil fingerprint once every term weighs zero")
	}

	query := NewFingerprint("tree maple").WithIDF(idf)
	best, bestScore := -1, 0.0
	for i, d := range docs {
		if s := CosineSimilarity(query, d.WithIDF(idf)); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best != 0 {
		t.Fatalf("expected maple document to rank first, got %d", best)
	}
}
