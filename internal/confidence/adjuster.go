package confidence

import (
	"log/slog"
	"sort"

	"botanize/internal/logging"
	"botanize/internal/recognition"
	"botanize/internal/taxonomy"
	"botanize/internal/traits"
)

const (
	DefaultMatchBonus      = 0.05
	DefaultMismatchPenalty = 0.03
	DefaultCandidateLimit  = 5
)

// Weights are the tunable constants of the adjustment.
type Weights struct {
	MatchBonus      float64
	MismatchPenalty float64
	// CandidateLimit caps how many provider candidates Rank considers.
	CandidateLimit int
}

// DefaultWeights returns the stock bonus, penalty and candidate limit.
func DefaultWeights() Weights {
	return Weights{
		MatchBonus:      DefaultMatchBonus,
		MismatchPenalty: DefaultMismatchPenalty,
		CandidateLimit:  DefaultCandidateLimit,
	}
}

// Lookup resolves a scientific name to its local species record.
type Lookup interface {
	Lookup(scientificName string) (taxonomy.Species, bool)
}

// Adjusted is a candidate re-scored against the traits the user verified.
type Adjusted struct {
	Candidate recognition.Candidate `json:"candidate"`
	Score     float64               `json:"adjusted_score"`
	// Verified counts the verified traits the local record agrees with.
	Verified int `json:"verified"`
	// LocalRecord is false when the species is unknown locally and Score is the raw score.
	LocalRecord bool `json:"local_record"`
}

// Adjuster fuses recognition scores with verified traits.
type Adjuster struct {
	lookup  Lookup
	weights Weights
	logger  *slog.Logger
}

// NewAdjuster builds an adjuster. Zero-valued weights fall back to defaults.
func NewAdjuster(lookup Lookup, weights Weights, logger *slog.Logger) *Adjuster {
	if weights.MatchBonus == 0 && weights.MismatchPenalty == 0 {
		weights.MatchBonus = DefaultMatchBonus
		weights.MismatchPenalty = DefaultMismatchPenalty
	}
	if weights.CandidateLimit <= 0 {
		weights.CandidateLimit = DefaultCandidateLimit
	}
	return &Adjuster{
		lookup:  lookup,
		weights: weights,
		logger:  logging.NewComponentLogger(logger, "confidence"),
	}
}

// Weights returns the effective weights.
func (a *Adjuster) Weights() Weights {
	return a.weights
}

// Adjust re-scores one candidate. Every question with a verified answer adds
// the match bonus when the local record overlaps it and subtracts the mismatch
// penalty otherwise, including when the record leaves the trait undocumented.
// The result is clamped to [0, 1]. Without a local record the raw score stands.
func (a *Adjuster) Adjust(candidate recognition.Candidate, verified traits.Selection, questions []traits.Question) Adjusted {
	out := Adjusted{Candidate: candidate, Score: candidate.Score}
	if a.lookup == nil {
		return out
	}
	species, ok := a.lookup.Lookup(candidate.ScientificName)
	if !ok {
		a.logger.Debug("no local record for candidate; keeping raw score",
			logging.String(logging.FieldSpecies, candidate.ScientificName),
			logging.Float64("raw_score", candidate.Score))
		return out
	}
	out.LocalRecord = true

	bonus := 0.0
	for _, q := range questions {
		answer, ok := verified.Get(q.Category)
		if !ok {
			continue
		}
		if value, ok := species.Trait(q.Category); ok && taxonomy.Overlaps(value, answer) {
			bonus += a.weights.MatchBonus
			out.Verified++
		} else {
			bonus -= a.weights.MismatchPenalty
		}
	}
	out.Score = clamp(candidate.Score + bonus)
	return out
}

// Rank adjusts the first CandidateLimit candidates independently and orders
// them by adjusted score, keeping provider order among equal scores.
func (a *Adjuster) Rank(candidates []recognition.Candidate, verified traits.Selection, questions []traits.Question) []Adjusted {
	limit := a.weights.CandidateLimit
	if len(candidates) < limit {
		limit = len(candidates)
	}
	ranked := make([]Adjusted, 0, limit)
	for _, c := range candidates[:limit] {
		ranked = append(ranked, a.Adjust(c, verified, questions))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Candidate.Rank < ranked[j].Candidate.Rank
	})

	if len(ranked) > 0 {
		top := ranked[0]
		a.logger.Info("candidates re-scored",
			append(logging.Args(logging.DecisionAttrs("confidence_rank", top.Candidate.ScientificName, "highest adjusted score")...),
				logging.Int("candidates", len(ranked)),
				logging.Int("verified_answers", len(verified)),
				logging.Float64("raw_score", top.Candidate.Score),
				logging.Float64("adjusted_score", top.Score))...)
	}
	return ranked
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
