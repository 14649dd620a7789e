package taxonomy

import (
	"fmt"
	"strings"
)

// Kind groups trait categories by the plant part they describe.
type Kind string

const (
	KindLeaf        Kind = "Leaf"
	KindStem        Kind = "Stem"
	KindFlower      Kind = "Flower"
	KindFruit       Kind = "Fruit"
	KindRoot        Kind = "Root"
	KindEnvironment Kind = "Environment"
)

// Category is a trait key shared by the question catalog, the vocabulary, and
// the species schema, e.g. "Flower_Petal Count".
type Category string

const (
	LeafType        Category = "Leaf_Type"
	LeafAttachment  Category = "Leaf_Attachment"
	LeafArrangement Category = "Leaf_Arrangement"
	LeafShape       Category = "Leaf_Shape"
	LeafMargin      Category = "Leaf_Margin"
	LeafApex        Category = "Leaf_Apex"
	LeafBase        Category = "Leaf_Base"
	LeafVenation    Category = "Leaf_Venation"
	LeafTexture     Category = "Leaf_Texture"
	LeafStipules    Category = "Leaf_Stipules"

	StemHabit     Category = "Stem_Habit"
	StemStructure Category = "Stem_Structure"
	StemBranching Category = "Stem_Branching"

	FlowerInflorescence  Category = "Flower_Inflorescence"
	FlowerSymmetry       Category = "Flower_Symmetry"
	FlowerPetalCount     Category = "Flower_Petal Count"
	FlowerPetalFusion    Category = "Flower_Petal Fusion"
	FlowerSepalPresence  Category = "Flower_Sepal Presence"
	FlowerSepalFusion    Category = "Flower_Sepal Fusion"
	FlowerColor          Category = "Flower_Color"
	FlowerPosition       Category = "Flower_Position"
	FlowerOvaryPosition  Category = "Flower_Ovary Position"
	FlowerSexuality      Category = "Flower_Sexuality"
	FlowerFloralPart     Category = "Flower_Floral Part"

	FruitType      Category = "Fruit_Type"
	FruitSeedTrait Category = "Fruit_Seed Trait"

	RootType Category = "Root_Type"

	EnvironmentHabitat     Category = "Environment_Habitat"
	EnvironmentSoil        Category = "Environment_Soil"
	EnvironmentGrowthHabit Category = "Environment_Growth Habit"
)

var allCategories = []Category{
	LeafType, LeafAttachment, LeafArrangement, LeafShape, LeafMargin,
	LeafApex, LeafBase, LeafVenation, LeafTexture, LeafStipules,
	StemHabit, StemStructure, StemBranching,
	FlowerInflorescence, FlowerSymmetry, FlowerPetalCount, FlowerPetalFusion,
	FlowerSepalPresence, FlowerSepalFusion, FlowerColor, FlowerPosition,
	FlowerOvaryPosition, FlowerSexuality, FlowerFloralPart,
	FruitType, FruitSeedTrait,
	RootType,
	EnvironmentHabitat, EnvironmentSoil, EnvironmentGrowthHabit,
}

// Categories returns every trait category in schema order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// Kind returns the plant part prefix of the category.
func (c Category) Kind() Kind {
	prefix, _, _ := strings.Cut(string(c), "_")
	return Kind(prefix)
}

// Label returns the category without its kind prefix ("Petal Count").
func (c Category) Label() string {
	_, rest, found := strings.Cut(string(c), "_")
	if !found {
		return string(c)
	}
	return rest
}

// Valid reports whether c is a known species trait key.
func (c Category) Valid() bool {
	_, ok := accessors[c]
	return ok
}

// ParseCategory resolves a raw key, accepting any letter case.
func ParseCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(raw)
	for _, c := range allCategories {
		if strings.EqualFold(string(c), raw) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown trait category %q", raw)
}
