package observe

import (
	"log/slog"
	"sort"
	"strings"

	"botanize/internal/logging"
	"botanize/internal/taxonomy"
	"botanize/internal/traits"
)

// Source supplies the species to rank.
type Source interface {
	All() []taxonomy.Species
}

// Result is one species' score against a selection.
type Result struct {
	Species taxonomy.Species `json:"species"`
	// Percentage is 100 * Matched / Compared.
	Percentage float64 `json:"percentage"`
	Matched    int     `json:"matched"`
	Compared   int     `json:"compared"`
}

// Matcher scores species against trait selections.
type Matcher struct {
	source Source
	logger *slog.Logger
}

// NewMatcher constructs a matcher over source.
func NewMatcher(source Source, logger *slog.Logger) *Matcher {
	return &Matcher{source: source, logger: logging.NewComponentLogger(logger, "observe")}
}

// Match scores every species against the answers in selected that belong to
// questions. A question counts as compared whenever it has an answer; it
// matches only when the species documents the trait and the values overlap.
// Species with nothing compared or nothing matched are left out. Results are
// ordered by percentage, then matched count, then scientific name.
func (m *Matcher) Match(selected traits.Selection, questions []traits.Question) []Result {
	if len(selected) == 0 || m.source == nil {
		return nil
	}

	var results []Result
	for _, sp := range m.source.All() {
		matched, compared := 0, 0
		for _, q := range questions {
			answer, ok := selected.Get(q.Category)
			if !ok {
				continue
			}
			compared++
			if value, ok := sp.Trait(q.Category); ok && taxonomy.Overlaps(value, answer) {
				matched++
			}
		}
		if compared == 0 || matched == 0 {
			continue
		}
		results = append(results, Result{
			Species:    sp,
			Percentage: 100 * float64(matched) / float64(compared),
			Matched:    matched,
			Compared:   compared,
		})
	}

	sortResults(results)

	m.logger.Debug("observe match complete",
		logging.Int("selected", len(selected)),
		logging.Int("questions", len(questions)),
		logging.Int("candidates", len(results)))
	return results
}

func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		if a.Matched != b.Matched {
			return a.Matched > b.Matched
		}
		return strings.ToLower(a.Species.ScientificName) < strings.ToLower(b.Species.ScientificName)
	})
}
