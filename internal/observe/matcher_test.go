package observe_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"botanize/internal/observe"
	"botanize/internal/taxonomy"
	"botanize/internal/testsupport"
	"botanize/internal/traits"
)

func TestMatchWorkedExampleHalfMatch(t *testing.T) {
	store := taxonomy.NewStore([]taxonomy.Species{
		{ScientificName: "Species A", LeafShape: "ovate", FlowerColor: "white"},
	}, nil)
	questions := []traits.Question{
		{Title: "Leaf Shape", Category: taxonomy.LeafShape},
		{Title: "Flower Color", Category: taxonomy.FlowerColor},
	}
	selected := traits.Selection{taxonomy.LeafShape: "ovate", taxonomy.FlowerColor: "red"}

	results := observe.NewMatcher(store, nil).Match(selected, questions)
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	got := results[0]
	if got.Matched != 1 || got.Compared != 2 || got.Percentage != 50 {
		t.Fatalf("unexpected result: matched=%d compared=%d pct=%v", got.Matched, got.Compared, got.Percentage)
	}
}

func TestMatchEmptySelectionReturnsNothing(t *testing.T) {
	matcher := observe.NewMatcher(testsupport.NewTaxonomyStore(), nil)
	if results := matcher.Match(traits.Selection{}, traits.QuestionsFor(traits.OrganLeaf)); len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if results := matcher.Match(nil, traits.QuestionsFor(traits.OrganLeaf)); len(results) != 0 {
		t.Fatalf("expected no results for nil selection, got %d", len(results))
	}
}

func TestMatchIgnoresAnswersOutsideQuestions(t *testing.T) {
	matcher := observe.NewMatcher(testsupport.NewTaxonomyStore(), nil)
	selected := traits.Selection{taxonomy.FruitType: "Samara"}
	if results := matcher.Match(selected, traits.QuestionsFor(traits.OrganLeaf)); len(results) != 0 {
		t.Fatalf("expected nothing compared, got %d results", len(results))
	}
}

func TestMatchOrdersByPercentageThenMatchedThenName(t *testing.T) {
	matcher := observe.NewMatcher(testsupport.NewTaxonomyStore(), nil)
	selected := traits.Selection{
		taxonomy.LeafType:        "simple",
		taxonomy.LeafArrangement: "ALTERNATE",
	}

	results := matcher.Match(selected, traits.QuestionsFor(traits.OrganLeaf))

	type row struct {
		Name     string
		Pct      float64
		Matched  int
		Compared int
	}
	var got []row
	for _, r := range results {
		got = append(got, row{r.Species.ScientificName, r.Percentage, r.Matched, r.Compared})
	}
	want := []row{
		{"Quercus alba", 100, 2, 2},
		{"Acer rubrum", 50, 1, 2},
		{"Salix nigra", 50, 1, 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchUsesBidirectionalContainment(t *testing.T) {
	store := taxonomy.NewStore([]taxonomy.Species{
		{ScientificName: "Broad", LeafShape: "Broadly ovate"},
		{ScientificName: "Narrow", LeafShape: "ovate"},
		{ScientificName: "Other", LeafShape: "linear"},
	}, nil)
	questions := []traits.Question{{Title: "Leaf Shape", Category: taxonomy.LeafShape}}
	matcher := observe.NewMatcher(store, nil)

	results := matcher.Match(traits.Selection{taxonomy.LeafShape: "OVATE"}, questions)
	if len(results) != 2 {
		t.Fatalf("expected species value containing answer to match, got %d", len(results))
	}
	results = matcher.Match(traits.Selection{taxonomy.LeafShape: "narrowly ovate"}, questions)
	if len(results) != 1 || results[0].Species.ScientificName != "Narrow" {
		t.Fatalf("expected answer containing species value to match, got %+v", results)
	}
}

func TestMatchUndocumentedTraitCountsAsCompared(t *testing.T) {
	store := taxonomy.NewStore([]taxonomy.Species{
		{ScientificName: "Sparse", LeafShape: "ovate"},
	}, nil)
	questions := traits.QuestionsFor(traits.OrganLeaf)
	selected := traits.Selection{taxonomy.LeafShape: "ovate", taxonomy.LeafMargin: "entire"}

	results := observe.NewMatcher(store, nil).Match(selected, questions)
	if len(results) != 1 || results[0].Compared != 2 || results[0].Matched != 1 {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestMatchPercentageBoundsAndMonotonicity(t *testing.T) {
	matcher := observe.NewMatcher(testsupport.NewTaxonomyStore(), nil)
	questions := traits.QuestionsFor(traits.OrganLeaf)
	answers := []struct {
		category taxonomy.Category
		value    string
	}{
		{taxonomy.LeafType, "Simple"},
		{taxonomy.LeafShape, "lobed"},
		{taxonomy.LeafMargin, "Lobed"},
		{taxonomy.LeafArrangement, "Alternate"},
		{taxonomy.LeafVenation, "Pinnate"},
	}

	selected := traits.Selection{}
	previous := -1.0
	for _, a := range answers {
		selected.Set(a.category, a.value)
		var oak *observe.Result
		for _, r := range matcher.Match(selected, questions) {
			if r.Percentage < 0 || r.Percentage > 100 {
				t.Fatalf("percentage out of bounds for %s: %v", r.Species.ScientificName, r.Percentage)
			}
			if r.Species.ScientificName == "Quercus alba" {
				oak = &r
			}
		}
		if oak == nil {
			t.Fatalf("expected oak to match after adding %s", a.category)
		}
		if oak.Percentage < previous {
			t.Fatalf("adding matching %s decreased oak from %v to %v", a.category, previous, oak.Percentage)
		}
		previous = oak.Percentage
	}
}
