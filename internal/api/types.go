package api

import (
	"botanize/internal/confidence"
	"botanize/internal/journal"
	"botanize/internal/observe"
	"botanize/internal/quota"
	"botanize/internal/recognition"
	"botanize/internal/session"
	"botanize/internal/taxonomy"
	"botanize/internal/traits"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// OrganSummary names an organ and how many questions it has.
type OrganSummary struct {
	Organ     string `json:"organ"`
	Questions int    `json:"questions"`
}

// Option is one answer a user may pick for a question.
type Option struct {
	Term        string `json:"term"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// QuestionCard is a trait question with its answer options.
type QuestionCard struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Options  []Option `json:"options"`
}

// QuestionsResponse wraps the cards for one organ.
type QuestionsResponse struct {
	Organ string         `json:"organ"`
	Cards []QuestionCard `json:"cards"`
}

// ObserveRequest is a trait selection to rank species against.
type ObserveRequest struct {
	Organ   string            `json:"organ"`
	Answers map[string]string `json:"answers"`
	// Limit caps the number of results; zero returns all.
	Limit int `json:"limit"`
	// Save journals the best match.
	Save bool `json:"save"`
}

// SpeciesMatch is one ranked species.
type SpeciesMatch struct {
	ScientificName string  `json:"scientificName"`
	CommonName     string  `json:"commonName,omitempty"`
	Family         string  `json:"family,omitempty"`
	Percentage     float64 `json:"percentage"`
	Matched        int     `json:"matched"`
	Compared       int     `json:"compared"`
}

// ObserveResponse lists ranked species.
type ObserveResponse struct {
	Results []SpeciesMatch `json:"results"`
	Entry   *JournalEntry  `json:"entry,omitempty"`
}

// Candidate is a recognition candidate in request and response payloads.
type Candidate struct {
	ScientificName string   `json:"scientificName"`
	CommonNames    []string `json:"commonNames,omitempty"`
	Family         string   `json:"family,omitempty"`
	Genus          string   `json:"genus,omitempty"`
	Score          float64  `json:"score"`
	Rank           int      `json:"rank"`
}

// AdjustRequest carries provider candidates and the traits the user verified.
type AdjustRequest struct {
	Organ      string            `json:"organ"`
	Candidates []Candidate       `json:"candidates"`
	Verified   map[string]string `json:"verified"`
}

// AdjustedCandidate is a candidate after trait re-scoring.
type AdjustedCandidate struct {
	Candidate     Candidate `json:"candidate"`
	RawScore      float64   `json:"rawScore"`
	AdjustedScore float64   `json:"adjustedScore"`
	Verified      int       `json:"verified"`
	LocalRecord   bool      `json:"localRecord"`
}

// AdjustResponse lists re-scored candidates, best first.
type AdjustResponse struct {
	Results []AdjustedCandidate `json:"results"`
}

// IdentifyResponse is the outcome of a photo identification.
type IdentifyResponse struct {
	Mode       string              `json:"mode"`
	Candidates []Candidate         `json:"candidates"`
	Results    []AdjustedCandidate `json:"results"`
	Entry      *JournalEntry       `json:"entry,omitempty"`
}

// QuotaStatus reports today's answer usage.
type QuotaStatus struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Unlimited bool   `json:"unlimited"`
}

// AnswerResponse is the result of consuming one answer.
type AnswerResponse struct {
	Outcome string      `json:"outcome"`
	Quota   QuotaStatus `json:"quota"`
}

// JournalEntry is a saved identification.
type JournalEntry struct {
	ID             string            `json:"id"`
	ScientificName string            `json:"scientificName"`
	CommonName     string            `json:"commonName,omitempty"`
	Family         string            `json:"family,omitempty"`
	Mode           string            `json:"mode"`
	RawScore       float64           `json:"rawScore"`
	AdjustedScore  float64           `json:"adjustedScore"`
	VerifiedCount  int               `json:"verifiedCount"`
	VerifiedTraits map[string]string `json:"verifiedTraits,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      string            `json:"createdAt"`
}

// JournalListResponse wraps journal entries.
type JournalListResponse struct {
	Entries []JournalEntry `json:"entries"`
}

// SpeciesProfile is a species record with its documented traits.
type SpeciesProfile struct {
	ScientificName string            `json:"scientificName"`
	CommonName     string            `json:"commonName,omitempty"`
	Family         string            `json:"family,omitempty"`
	Genus          string            `json:"genus,omitempty"`
	Description    string            `json:"description,omitempty"`
	Traits         map[string]string `json:"traits"`
}

// SpeciesHit is one species search result. Locked species need a paid tier
// before their profile can be opened.
type SpeciesHit struct {
	ScientificName string  `json:"scientificName"`
	CommonName     string  `json:"commonName,omitempty"`
	Family         string  `json:"family,omitempty"`
	Score          float64 `json:"score"`
	Locked         bool    `json:"locked"`
}

// SpeciesSearchResponse wraps search hits.
type SpeciesSearchResponse struct {
	Query string       `json:"query"`
	Hits  []SpeciesHit `json:"hits"`
}

// FromCards converts question cards.
func FromCards(cards []traits.Card) []QuestionCard {
	out := make([]QuestionCard, 0, len(cards))
	for _, card := range cards {
		options := make([]Option, 0, len(card.Options))
		for _, term := range card.Options {
			options = append(options, Option{
				Term:        term.Term,
				Description: term.DescriptionShort,
				ImageURL:    term.ImageURL,
			})
		}
		out = append(out, QuestionCard{
			Title:    card.Title,
			Category: string(card.Category),
			Options:  options,
		})
	}
	return out
}

// FromObserveResults converts matcher results.
func FromObserveResults(results []observe.Result) []SpeciesMatch {
	out := make([]SpeciesMatch, 0, len(results))
	for _, r := range results {
		out = append(out, SpeciesMatch{
			ScientificName: r.Species.ScientificName,
			CommonName:     r.Species.CommonName,
			Family:         r.Species.Family,
			Percentage:     r.Percentage,
			Matched:        r.Matched,
			Compared:       r.Compared,
		})
	}
	return out
}

// FromCandidate converts a recognition candidate.
func FromCandidate(c recognition.Candidate) Candidate {
	return Candidate{
		ScientificName: c.ScientificName,
		CommonNames:    c.CommonNames,
		Family:         c.Family,
		Genus:          c.Genus,
		Score:          c.Score,
		Rank:           c.Rank,
	}
}

// ToCandidates converts request candidates, numbering them in request order.
func ToCandidates(in []Candidate) []recognition.Candidate {
	out := make([]recognition.Candidate, 0, len(in))
	for i, c := range in {
		out = append(out, recognition.Candidate{
			ScientificName: c.ScientificName,
			CommonNames:    c.CommonNames,
			Family:         c.Family,
			Genus:          c.Genus,
			Score:          c.Score,
			Rank:           i,
		})
	}
	return out
}

// FromAdjusted converts re-scored candidates.
func FromAdjusted(ranked []confidence.Adjusted) []AdjustedCandidate {
	out := make([]AdjustedCandidate, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, AdjustedCandidate{
			Candidate:     FromCandidate(r.Candidate),
			RawScore:      r.Candidate.Score,
			AdjustedScore: r.Score,
			Verified:      r.Verified,
			LocalRecord:   r.LocalRecord,
		})
	}
	return out
}

// FromIdentification converts an identification outcome.
func FromIdentification(result session.Identification) IdentifyResponse {
	candidates := make([]Candidate, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		candidates = append(candidates, FromCandidate(c))
	}
	resp := IdentifyResponse{
		Mode:       string(result.Mode),
		Candidates: candidates,
		Results:    FromAdjusted(result.Ranked),
	}
	if result.Entry != nil {
		entry := FromJournalEntry(*result.Entry)
		resp.Entry = &entry
	}
	return resp
}

// FromQuotaStatus converts tracker status.
func FromQuotaStatus(s quota.Status) QuotaStatus {
	return QuotaStatus{
		Date:      s.Date,
		Count:     s.Count,
		Limit:     s.Limit,
		Remaining: s.Remaining,
		Unlimited: s.Unlimited,
	}
}

// FromJournalEntry converts a journal entry.
func FromJournalEntry(e journal.Entry) JournalEntry {
	var verified map[string]string
	if len(e.VerifiedTraits) > 0 {
		verified = make(map[string]string, len(e.VerifiedTraits))
		for category, value := range e.VerifiedTraits {
			verified[string(category)] = value
		}
	}
	return JournalEntry{
		ID:             e.ID,
		ScientificName: e.ScientificName,
		CommonName:     e.CommonName,
		Family:         e.Family,
		Mode:           string(e.Mode),
		RawScore:       e.RawScore,
		AdjustedScore:  e.AdjustedScore,
		VerifiedCount:  e.VerifiedCount,
		VerifiedTraits: verified,
		Notes:          e.Notes,
		CreatedAt:      e.CreatedAt.UTC().Format(dateTimeFormat),
	}
}

// FromSpecies converts a species record.
func FromSpecies(s taxonomy.Species) SpeciesProfile {
	documented := s.Traits()
	traitsOut := make(map[string]string, len(documented))
	for category, value := range documented {
		traitsOut[string(category)] = value
	}
	return SpeciesProfile{
		ScientificName: s.ScientificName,
		CommonName:     s.CommonName,
		Family:         s.Family,
		Genus:          s.Genus,
		Description:    s.Description,
		Traits:         traitsOut,
	}
}

// FromSearchHits converts search hits; allSpecies reports whether every profile is unlocked.
func FromSearchHits(hits []taxonomy.SearchHit, allSpecies bool) []SpeciesHit {
	out := make([]SpeciesHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, SpeciesHit{
			ScientificName: h.Species.ScientificName,
			CommonName:     h.Species.CommonName,
			Family:         h.Species.Family,
			Score:          h.Score,
			Locked:         !h.Species.Free && !allSpecies,
		})
	}
	return out
}

// ToSelection converts wire answers keyed by category name. Unknown
// categories are reported as an error.
func ToSelection(answers map[string]string) (traits.Selection, error) {
	selection := traits.Selection{}
	for key, value := range answers {
		category, err := taxonomy.ParseCategory(key)
		if err != nil {
			return nil, err
		}
		selection.Set(category, value)
	}
	return selection, nil
}
