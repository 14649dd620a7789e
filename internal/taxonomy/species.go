package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"
)

// Species is one reference record. Trait fields hold the free-text description
// from the bundle; an empty value means the trait is not documented.
type Species struct {
	ScientificName string `json:"Plant_Name_Latin" yaml:"Plant_Name_Latin"`
	CommonName     string `json:"Plant_Name_Common" yaml:"Plant_Name_Common"`
	Kingdom        string `json:"Plant_Kingdom,omitempty" yaml:"Plant_Kingdom,omitempty"`
	Class          string `json:"Plant_Class,omitempty" yaml:"Plant_Class,omitempty"`
	Order          string `json:"Plant_Order,omitempty" yaml:"Plant_Order,omitempty"`
	Family         string `json:"Plant_Family" yaml:"Plant_Family"`
	Genus          string `json:"Plant_Genus,omitempty" yaml:"Plant_Genus,omitempty"`
	Description    string `json:"Plant_Description,omitempty" yaml:"Plant_Description,omitempty"`

	LeafType        string `json:"Leaf_Type,omitempty" yaml:"Leaf_Type,omitempty"`
	LeafAttachment  string `json:"Leaf_Attachment,omitempty" yaml:"Leaf_Attachment,omitempty"`
	LeafArrangement string `json:"Leaf_Arrangement,omitempty" yaml:"Leaf_Arrangement,omitempty"`
	LeafShape       string `json:"Leaf_Shape,omitempty" yaml:"Leaf_Shape,omitempty"`
	LeafMargin      string `json:"Leaf_Margin,omitempty" yaml:"Leaf_Margin,omitempty"`
	LeafApex        string `json:"Leaf_Apex,omitempty" yaml:"Leaf_Apex,omitempty"`
	LeafBase        string `json:"Leaf_Base,omitempty" yaml:"Leaf_Base,omitempty"`
	LeafVenation    string `json:"Leaf_Venation,omitempty" yaml:"Leaf_Venation,omitempty"`
	LeafTexture     string `json:"Leaf_Texture,omitempty" yaml:"Leaf_Texture,omitempty"`
	LeafStipules    string `json:"Leaf_Stipules,omitempty" yaml:"Leaf_Stipules,omitempty"`

	StemHabit     string `json:"Stem_Habit,omitempty" yaml:"Stem_Habit,omitempty"`
	StemStructure string `json:"Stem_Structure,omitempty" yaml:"Stem_Structure,omitempty"`
	StemBranching string `json:"Stem_Branching,omitempty" yaml:"Stem_Branching,omitempty"`

	FlowerInflorescence string `json:"Flower_Inflorescence,omitempty" yaml:"Flower_Inflorescence,omitempty"`
	FlowerSymmetry      string `json:"Flower_Symmetry,omitempty" yaml:"Flower_Symmetry,omitempty"`
	FlowerPetalCount    string `json:"Flower_Petal Count,omitempty" yaml:"Flower_Petal Count,omitempty"`
	FlowerPetalFusion   string `json:"Flower_Petal Fusion,omitempty" yaml:"Flower_Petal Fusion,omitempty"`
	FlowerSepalPresence string `json:"Flower_Sepal Presence,omitempty" yaml:"Flower_Sepal Presence,omitempty"`
	FlowerSepalFusion   string `json:"Flower_Sepal Fusion,omitempty" yaml:"Flower_Sepal Fusion,omitempty"`
	FlowerColor         string `json:"Flower_Color,omitempty" yaml:"Flower_Color,omitempty"`
	FlowerPosition      string `json:"Flower_Position,omitempty" yaml:"Flower_Position,omitempty"`
	FlowerOvaryPosition string `json:"Flower_Ovary Position,omitempty" yaml:"Flower_Ovary Position,omitempty"`
	FlowerSexuality     string `json:"Flower_Sexuality,omitempty" yaml:"Flower_Sexuality,omitempty"`
	FlowerFloralPart    string `json:"Flower_Floral Part,omitempty" yaml:"Flower_Floral Part,omitempty"`

	FruitType      string `json:"Fruit_Type,omitempty" yaml:"Fruit_Type,omitempty"`
	FruitSeedTrait string `json:"Fruit_Seed Trait,omitempty" yaml:"Fruit_Seed Trait,omitempty"`

	RootType string `json:"Root_Type,omitempty" yaml:"Root_Type,omitempty"`

	Habitat     string `json:"Environment_Habitat,omitempty" yaml:"Environment_Habitat,omitempty"`
	Soil        string `json:"Environment_Soil,omitempty" yaml:"Environment_Soil,omitempty"`
	GrowthHabit string `json:"Environment_Growth Habit,omitempty" yaml:"Environment_Growth Habit,omitempty"`

	// Free marks species browsable without a paid tier. Assigned at load time.
	Free bool `json:"-" yaml:"-"`
}

var accessors = map[Category]func(*Species) string{
	LeafType:               func(s *Species) string { return s.LeafType },
	LeafAttachment:         func(s *Species) string { return s.LeafAttachment },
	LeafArrangement:        func(s *Species) string { return s.LeafArrangement },
	LeafShape:              func(s *Species) string { return s.LeafShape },
	LeafMargin:             func(s *Species) string { return s.LeafMargin },
	LeafApex:               func(s *Species) string { return s.LeafApex },
	LeafBase:               func(s *Species) string { return s.LeafBase },
	LeafVenation:           func(s *Species) string { return s.LeafVenation },
	LeafTexture:            func(s *Species) string { return s.LeafTexture },
	LeafStipules:           func(s *Species) string { return s.LeafStipules },
	StemHabit:              func(s *Species) string { return s.StemHabit },
	StemStructure:          func(s *Species) string { return s.StemStructure },
	StemBranching:          func(s *Species) string { return s.StemBranching },
	FlowerInflorescence:    func(s *Species) string { return s.FlowerInflorescence },
	FlowerSymmetry:         func(s *Species) string { return s.FlowerSymmetry },
	FlowerPetalCount:       func(s *Species) string { return s.FlowerPetalCount },
	FlowerPetalFusion:      func(s *Species) string { return s.FlowerPetalFusion },
	FlowerSepalPresence:    func(s *Species) string { return s.FlowerSepalPresence },
	FlowerSepalFusion:      func(s *Species) string { return s.FlowerSepalFusion },
	FlowerColor:            func(s *Species) string { return s.FlowerColor },
	FlowerPosition:         func(s *Species) string { return s.FlowerPosition },
	FlowerOvaryPosition:    func(s *Species) string { return s.FlowerOvaryPosition },
	FlowerSexuality:        func(s *Species) string { return s.FlowerSexuality },
	FlowerFloralPart:       func(s *Species) string { return s.FlowerFloralPart },
	FruitType:              func(s *Species) string { return s.FruitType },
	FruitSeedTrait:         func(s *Species) string { return s.FruitSeedTrait },
	RootType:               func(s *Species) string { return s.RootType },
	EnvironmentHabitat:     func(s *Species) string { return s.Habitat },
	EnvironmentSoil:        func(s *Species) string { return s.Soil },
	EnvironmentGrowthHabit: func(s *Species) string { return s.GrowthHabit },
}

// Trait returns the species value for category. The boolean is false when the
// category is unknown or the species leaves it undocumented (empty or blank).
func (s *Species) Trait(category Category) (string, bool) {
	if s == nil {
		return "", false
	}
	get, ok := accessors[category]
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(get(s))
	if value == "" {
		return "", false
	}
	return value, true
}

// Traits returns every documented trait keyed by category.
func (s *Species) Traits() map[Category]string {
	out := make(map[Category]string)
	for _, category := range allCategories {
		if value, ok := s.Trait(category); ok {
			out[category] = value
		}
	}
	return out
}

// Overlaps reports whether either value contains the other, ignoring case.
// A blank value never overlaps.
func Overlaps(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	fold := cases.Fold()
	a = fold.String(a)
	b = fold.String(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// foldKey normalizes a scientific name for case-insensitive lookup.
func foldKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
