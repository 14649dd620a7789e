package traits

import (
	"errors"
	"fmt"
	"strings"

	"botanize/internal/taxonomy"
)

// ErrUnknownOrgan is returned when an organ name is not recognised.
var ErrUnknownOrgan = errors.New("unknown organ")

// Organ is the plant part an observer is describing or photographing.
type Organ string

const (
	OrganLeaf   Organ = "leaf"
	OrganFlower Organ = "flower"
	OrganFruit  Organ = "fruit"
	OrganBark   Organ = "bark"
	// OrganAuto lets the recognition service decide. It has no questions.
	OrganAuto Organ = "auto"
)

// Question asks the observer about one trait category.
type Question struct {
	Title    string            `json:"title"`
	Category taxonomy.Category `json:"category"`
}

var catalog = map[Organ][]Question{
	OrganLeaf: {
		{Title: "Leaf Type", Category: taxonomy.LeafType},
		{Title: "Leaf Shape", Category: taxonomy.LeafShape},
		{Title: "Leaf Margin", Category: taxonomy.LeafMargin},
		{Title: "Leaf Arrangement", Category: taxonomy.LeafArrangement},
		{Title: "Leaf Venation", Category: taxonomy.LeafVenation},
		{Title: "Leaf Texture", Category: taxonomy.LeafTexture},
	},
	OrganFlower: {
		{Title: "Flower Symmetry", Category: taxonomy.FlowerSymmetry},
		{Title: "Flower Color", Category: taxonomy.FlowerColor},
		{Title: "Petal Count", Category: taxonomy.FlowerPetalCount},
		{Title: "Inflorescence", Category: taxonomy.FlowerInflorescence},
		{Title: "Flower Position", Category: taxonomy.FlowerPosition},
	},
	OrganFruit: {
		{Title: "Fruit Type", Category: taxonomy.FruitType},
		{Title: "Seed Trait", Category: taxonomy.FruitSeedTrait},
	},
	OrganBark: {
		{Title: "Stem Habit", Category: taxonomy.StemHabit},
		{Title: "Stem Structure", Category: taxonomy.StemStructure},
	},
}

var questionOrgans = []Organ{OrganLeaf, OrganFlower, OrganFruit, OrganBark}

// Organs returns the organs that have questions, in display order.
func Organs() []Organ {
	out := make([]Organ, len(questionOrgans))
	copy(out, questionOrgans)
	return out
}

// ParseOrgan resolves a case-insensitive organ name, including "auto".
func ParseOrgan(raw string) (Organ, error) {
	organ := Organ(strings.ToLower(strings.TrimSpace(raw)))
	switch organ {
	case OrganLeaf, OrganFlower, OrganFruit, OrganBark, OrganAuto:
		return organ, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOrgan, raw)
	}
}

// QuestionsFor returns the ordered questions for organ. Organs without a
// catalog entry, including OrganAuto, yield an empty list. The slice is a copy.
func QuestionsFor(organ Organ) []Question {
	questions := catalog[organ]
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// Card is a question together with the answers a user may pick from.
type Card struct {
	Question
	Options []taxonomy.Term `json:"options"`
}

// Cards returns the questions for organ that have at least one vocabulary option.
func Cards(organ Organ, vocabulary *taxonomy.Vocabulary) []Card {
	var cards []Card
	for _, q := range QuestionsFor(organ) {
		options := vocabulary.Options(q.Category)
		if len(options) == 0 {
			continue
		}
		cards = append(cards, Card{Question: q, Options: options})
	}
	return cards
}
