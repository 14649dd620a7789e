package journal

import (
	"fmt"
	"strings"
	"time"

	"botanize/internal/traits"
)

// Mode names the identification flow that produced an entry.
type Mode string

const (
	ModeObserve Mode = "observe"
	ModeCapture Mode = "capture"
	ModeBoth    Mode = "both"
)

// ParseMode resolves a case-insensitive mode name.
func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case ModeObserve, ModeCapture, ModeBoth:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown journal mode %q", raw)
	}
}

func (m Mode) label() string {
	switch m {
	case ModeObserve:
		return "Observe"
	case ModeCapture:
		return "Capture"
	case ModeBoth:
		return "Both"
	default:
		return string(m)
	}
}

// Entry is one saved identification.
type Entry struct {
	ID             string           `json:"id"`
	ScientificName string           `json:"scientific_name"`
	CommonName     string           `json:"common_name,omitempty"`
	Family         string           `json:"family,omitempty"`
	Mode           Mode             `json:"mode"`
	RawScore       float64          `json:"raw_score"`
	AdjustedScore  float64          `json:"adjusted_score"`
	VerifiedCount  int              `json:"verified_count"`
	VerifiedTraits traits.Selection `json:"verified_traits,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// DefaultNotes describes how the entry was identified. Scores are truncated
// to whole percentages.
func DefaultNotes(e Entry) string {
	switch e.Mode {
	case ModeBoth:
		return fmt.Sprintf("Identified via Both mode. Original: %d%%, Adjusted: %d%%. Verified %d traits.",
			percent(e.RawScore), percent(e.AdjustedScore), len(e.VerifiedTraits))
	case ModeObserve:
		return fmt.Sprintf("Identified via Observe mode with %d%% trait match.", percent(e.AdjustedScore))
	default:
		return fmt.Sprintf("Identified via %s mode with %d%% confidence.", e.Mode.label(), percent(e.RawScore))
	}
}

func percent(score float64) int {
	return int(score * 100)
}
