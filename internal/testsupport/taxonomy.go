package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"botanize/internal/taxonomy"
)

// FixtureSpecies returns a small, hand-checked species set.
func FixtureSpecies() []taxonomy.Species {
	return []taxonomy.Species{
		{
			ScientificName:  "Quercus alba",
			CommonName:      "White Oak",
			Family:          "Fagaceae",
			Genus:           "Quercus",
			LeafType:        "Simple",
			LeafShape:       "Obovate, deeply lobed",
			LeafMargin:      "Lobed",
			LeafArrangement: "Alternate",
			LeafVenation:    "Pinnate",
			FruitType:       "Acorn (nut)",
			StemHabit:       "Tree",
			StemStructure:   "Woody",
		},
		{
			ScientificName:  "Acer rubrum",
			CommonName:      "Red Maple",
			Family:          "Sapindaceae",
			Genus:           "Acer",
			LeafType:        "Simple",
			LeafShape:       "Palmate",
			LeafMargin:      "Serrate",
			LeafArrangement: "Opposite",
			LeafVenation:    "Palmate",
			FlowerColor:     "Red",
			FruitType:       "Samara",
			StemHabit:       "Tree",
			StemStructure:   "Woody",
		},
		{
			ScientificName:   "Trillium grandiflorum",
			CommonName:       "White Trillium",
			Family:           "Melanthiaceae",
			Genus:            "Trillium",
			LeafShape:        "Ovate",
			LeafArrangement:  "Whorled",
			LeafVenation:     "Reticulate",
			FlowerSymmetry:   "Radial",
			FlowerColor:      "White",
			FlowerPetalCount: "3",
			FruitType:        "Berry",
			StemHabit:        "Herb",
		},
		{
			ScientificName:  "Salix nigra",
			CommonName:      "Black Willow",
			Family:          "Salicaceae",
			Genus:           "Salix",
			LeafShape:       "Lanceolate",
			LeafMargin:      "Serrate",
			LeafArrangement: "Alternate",
			StemHabit:       "Tree",
			FlowerColor:     "  ",
		},
	}
}

// FixtureTerms returns vocabulary terms covering the leaf questions plus one
// hidden term that must never be offered as an option.
func FixtureTerms() []taxonomy.Term {
	return []taxonomy.Term{
		{Term: "Simple", Category: taxonomy.LeafType, DescriptionShort: "A single blade", ShowPlantID: true, IsFree: true},
		{Term: "Compound", Category: taxonomy.LeafType, DescriptionShort: "Divided into leaflets", ShowPlantID: true},
		{Term: "Ovate", Category: taxonomy.LeafShape, DescriptionShort: "Egg-shaped", ShowPlantID: true, IsFree: true},
		{Term: "Lanceolate", Category: taxonomy.LeafShape, DescriptionShort: "Lance-shaped", ShowPlantID: true},
		{Term: "Palmate", Category: taxonomy.LeafShape, DescriptionShort: "Hand-shaped", ShowPlantID: true},
		{Term: "Serrate", Category: taxonomy.LeafMargin, DescriptionShort: "Saw-toothed", ShowPlantID: true},
		{Term: "Lobed", Category: taxonomy.LeafMargin, DescriptionShort: "Deeply indented", ShowPlantID: true},
		{Term: "Alternate", Category: taxonomy.LeafArrangement, ShowPlantID: true},
		{Term: "Opposite", Category: taxonomy.LeafArrangement, ShowPlantID: true},
		{Term: "Cuticle", Category: taxonomy.LeafTexture, DescriptionShort: "Waxy outer layer", ShowPlantID: false},
		{Term: "Red", Category: taxonomy.FlowerColor, ShowPlantID: true},
		{Term: "White", Category: taxonomy.FlowerColor, ShowPlantID: true},
	}
}

// NewTaxonomyStore builds an in-memory store over the fixtures.
func NewTaxonomyStore() *taxonomy.Store {
	return taxonomy.NewStore(FixtureSpecies(), taxonomy.NewVocabulary(FixtureTerms()))
}

// WriteTaxonomy writes species.json and vocabulary.json into dir and returns their sources.
func WriteTaxonomy(t testing.TB, dir string) taxonomy.Sources {
	t.Helper()

	src := taxonomy.Sources{
		SpeciesPath:    filepath.Join(dir, "species.json"),
		VocabularyPath: filepath.Join(dir, "vocabulary.json"),
	}
	WriteJSON(t, src.SpeciesPath, FixtureSpecies())
	WriteJSON(t, src.VocabularyPath, FixtureTerms())
	return src
}

// WriteJSON marshals v into path, creating parent directories.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
