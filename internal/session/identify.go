package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"botanize/internal/confidence"
	"botanize/internal/entitlement"
	"botanize/internal/journal"
	"botanize/internal/logging"
	"botanize/internal/observe"
	"botanize/internal/recognition"
	"botanize/internal/traits"
)

// Ranker re-scores provider candidates with verified traits.
type Ranker interface {
	Rank(candidates []recognition.Candidate, verified traits.Selection, questions []traits.Question) []confidence.Adjusted
}

// JournalWriter saves identifications.
type JournalWriter interface {
	Add(ctx context.Context, entry journal.Entry) (journal.Entry, error)
}

// FeatureGate reports which paid features are unlocked.
type FeatureGate interface {
	Allows(feature entitlement.Feature) bool
}

// IdentifyRequest is a photo plus any traits the user verified by eye.
type IdentifyRequest struct {
	recognition.Request
	Verified traits.Selection
	// Save records the best candidate in the journal.
	Save bool
}

// Identification is the outcome of one photo identification.
type Identification struct {
	Mode       journal.Mode            `json:"mode"`
	Candidates []recognition.Candidate `json:"candidates"`
	Ranked     []confidence.Adjusted   `json:"ranked"`
	Entry      *journal.Entry          `json:"entry,omitempty"`
}

// Best returns the highest ranked candidate.
func (i Identification) Best() (confidence.Adjusted, bool) {
	if len(i.Ranked) == 0 {
		return confidence.Adjusted{}, false
	}
	return i.Ranked[0], true
}

// Identifier runs capture and both-mode identifications.
type Identifier struct {
	recognizer recognition.Recognizer
	ranker     Ranker
	gate       FeatureGate
	journal    JournalWriter
	logger     *slog.Logger
}

// NewIdentifier wires an identifier. journal may be nil when journalling is disabled.
func NewIdentifier(recognizer recognition.Recognizer, ranker Ranker, gate FeatureGate, journal JournalWriter, logger *slog.Logger) *Identifier {
	return &Identifier{
		recognizer: recognizer,
		ranker:     ranker,
		gate:       gate,
		journal:    journal,
		logger:     logging.NewComponentLogger(logger, "identify"),
	}
}

// Identify sends the photo to the recognizer and ranks the candidates.
// Requests carrying verified traits run in both mode.
func (id *Identifier) Identify(ctx context.Context, req IdentifyRequest) (Identification, error) {
	verified := req.Verified.Normalize()
	mode := journal.ModeCapture
	feature := entitlement.FeatureCapture
	if len(verified) > 0 {
		mode = journal.ModeBoth
		feature = entitlement.FeatureBothMode
	}
	if err := id.require(feature); err != nil {
		return Identification{}, err
	}
	if req.Save {
		if err := id.require(entitlement.FeatureJournal); err != nil {
			return Identification{}, err
		}
		if id.journal == nil {
			return Identification{}, errors.New("journal is disabled")
		}
	}
	questions := traits.QuestionsFor(req.Organ)
	if mode == journal.ModeBoth && len(questions) == 0 {
		return Identification{}, fmt.Errorf("%w: verified traits need a specific organ", traits.ErrUnknownOrgan)
	}
	if id.recognizer == nil {
		return Identification{}, errors.New("recognition is not configured")
	}
	if err := req.Validate(); err != nil {
		return Identification{}, err
	}

	candidates, err := id.recognizer.Identify(ctx, req.Request)
	if err != nil {
		return Identification{}, fmt.Errorf("identify: %w", err)
	}
	result := Identification{Mode: mode, Candidates: candidates}
	if id.ranker != nil {
		result.Ranked = id.ranker.Rank(candidates, verified, questions)
	}
	id.logger.Info("identification complete",
		logging.String("mode", string(mode)),
		logging.String(logging.FieldOrgan, string(req.Organ)),
		logging.Int("candidates", len(candidates)),
		logging.Int("verified_answers", len(verified)))

	if !req.Save {
		return result, nil
	}
	best, ok := result.Best()
	if !ok {
		logging.WarnWithContext(id.logger, "nothing to save; provider returned no candidates", "journal_skipped",
			logging.String(logging.FieldImpact, "identification not journalled"),
			logging.String(logging.FieldErrorHint, "retake the photo with the organ in focus"))
		return result, nil
	}
	entry, err := id.journal.Add(ctx, journal.Entry{
		ScientificName: best.Candidate.ScientificName,
		CommonName:     best.Candidate.CommonName(),
		Family:         best.Candidate.Family,
		Mode:           mode,
		RawScore:       candidates[0].Score,
		AdjustedScore:  best.Score,
		VerifiedCount:  best.Verified,
		VerifiedTraits: verified,
	})
	if err != nil {
		return result, fmt.Errorf("save journal entry: %w", err)
	}
	result.Entry = &entry
	return result, nil
}

func (id *Identifier) require(feature entitlement.Feature) error {
	if id.gate != nil && id.gate.Allows(feature) {
		return nil
	}
	id.logger.Info("feature locked",
		logging.Args(logging.DecisionAttrs("entitlement", "denied", string(feature))...)...)
	return fmt.Errorf("%w: %s", ErrEntitlementRequired, feature)
}

// ObservationEntry builds the journal entry for a trait-only identification.
func ObservationEntry(result observe.Result, verified traits.Selection) journal.Entry {
	return journal.Entry{
		ScientificName: result.Species.ScientificName,
		CommonName:     result.Species.CommonName,
		Family:         result.Species.Family,
		Mode:           journal.ModeObserve,
		AdjustedScore:  result.Percentage / 100,
		VerifiedCount:  result.Matched,
		VerifiedTraits: verified.Normalize(),
	}
}
