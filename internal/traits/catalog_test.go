package traits_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"botanize/internal/taxonomy"
	"botanize/internal/traits"
)

func TestQuestionsForLeafIsOrdered(t *testing.T) {
	want := []traits.Question{
		{Title: "Leaf Type", Category: taxonomy.LeafType},
		{Title: "Leaf Shape", Category: taxonomy.LeafShape},
		{Title: "Leaf Margin", Category: taxonomy.LeafMargin},
		{Title: "Leaf Arrangement", Category: taxonomy.LeafArrangement},
		{Title: "Leaf Venation", Category: taxonomy.LeafVenation},
		{Title: "Leaf Texture", Category: taxonomy.LeafTexture},
	}
	if diff := cmp.Diff(want, traits.QuestionsFor(traits.OrganLeaf)); diff != "" {
		t.Fatalf("leaf questions mismatch (-want +got):\n%s", diff)
	}
}

func TestQuestionCountsPerOrgan(t *testing.T) {
	counts := map[traits.Organ]int{
		traits.OrganLeaf:     6,
		traits.OrganFlower:   5,
		traits.OrganFruit:    2,
		traits.OrganBark:     2,
		traits.OrganAuto:     0,
		traits.Organ("root"): 0,
	}
	for organ, want := range counts {
		if got := len(traits.QuestionsFor(organ)); got != want {
			t.Fatalf("QuestionsFor(%q) returned %d questions, want %d", organ, got, want)
		}
	}
}

func TestQuestionCategoriesAreSpeciesTraits(t *testing.T) {
	for _, organ := range traits.Organs() {
		for _, q := range traits.QuestionsFor(organ) {
			if !q.Category.Valid() {
				t.Fatalf("%s question %q uses unknown category %q", organ, q.Title, q.Category)
			}
		}
	}
}

func TestQuestionsForReturnsCopy(t *testing.T) {
	first := traits.QuestionsFor(traits.OrganFruit)
	first[0].Title = "mutated"
	second := traits.QuestionsFor(traits.OrganFruit)
	if second[0].Title != "Fruit Type" {
		t.Fatalf("catalog was mutated through returned slice: %q", second[0].Title)
	}
}

func TestParseOrgan(t *testing.T) {
	got, err := traits.ParseOrgan(" Flower ")
	if err != nil || got != traits.OrganFlower {
		t.Fatalf("ParseOrgan = %q, %v", got, err)
	}
	if got, err := traits.ParseOrgan("auto"); err != nil || got != traits.OrganAuto {
		t.Fatalf("ParseOrgan(auto) = %q, %v", got, err)
	}
	if _, err := traits.ParseOrgan("stem"); !errors.Is(err, traits.ErrUnknownOrgan) {
		t.Fatalf("expected ErrUnknownOrgan, got %v", err)
	}
}

func TestCardsDropQuestionsWithoutOptions(t *testing.T) {
	vocab := taxonomy.NewVocabulary([]taxonomy.Term{
		{Term: "Ovate", Category: taxonomy.LeafShape, ShowPlantID: true},
		{Term: "Serrate", Category: taxonomy.LeafMargin, ShowPlantID: true},
		{Term: "Glossy", Category: taxonomy.LeafTexture, ShowPlantID: false},
	})
	cards := traits.Cards(traits.OrganLeaf, vocab)
	var got []taxonomy.Category
	for _, card := range cards {
		got = append(got, card.Category)
	}
	want := []taxonomy.Category{taxonomy.LeafShape, taxonomy.LeafMargin}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("card categories mismatch (-want +got):\n%s", diff)
	}
	if cards[0].Options[0].Term != "Ovate" {
		t.Fatalf("unexpected option %q", cards[0].Options[0].Term)
	}
	if len(traits.Cards(traits.OrganBark, vocab)) != 0 {
		t.Fatal("expected no bark cards")
	}
}

func TestSelectionIgnoresBlankAnswers(t *testing.T) {
	sel := traits.Selection{}
	sel.Set(taxonomy.LeafShape, " ovate ")
	sel.Set(taxonomy.LeafMargin, "  ")
	if len(sel) != 1 {
		t.Fatalf("expected one answer, got %v", sel)
	}
	if value, _ := sel.Get(taxonomy.LeafShape); value != "ovate" {
		t.Fatalf("unexpected value %q", value)
	}
	sel.Set(taxonomy.LeafShape, "")
	if len(sel) != 0 {
		t.Fatalf("expected blank set to clear, got %v", sel)
	}

	raw := traits.Selection{taxonomy.LeafType: "Simple", taxonomy.FruitType: ""}
	if got := raw.Normalize(); len(got) != 1 {
		t.Fatalf("expected normalize to drop blanks, got %v", got)
	}

	clone := raw.Clone()
	raw.Clear()
	if len(raw) != 0 || len(clone) != 2 {
		t.Fatalf("clone not independent: raw=%v clone=%v", raw, clone)
	}
}
