package taxonomy

import (
	"sort"
	"strings"

	"botanize/internal/textutil"
)

// nameMatchBoost lifts species whose scientific or common name contains the
// whole query above description-only matches.
const nameMatchBoost = 1.0

// SearchHit is a species ranked by text similarity to a query.
type SearchHit struct {
	Species Species `json:"species"`
	Score   float64 `json:"score"`
}

// Search ranks species by TF-IDF similarity between query and each record's
// names, family, genus and description. Hits are ordered by score, then name;
// limit <= 0 returns every hit.
func (s *Store) Search(query string, limit int) []SearchHit {
	q := textutil.NewFingerprint(query)
	if q == nil {
		return nil
	}
	folded := textutil.Fold(strings.TrimSpace(query))

	species := s.All()
	docs := make([]*textutil.Fingerprint, len(species))
	corpus := textutil.NewCorpus()
	for i := range species {
		docs[i] = textutil.NewFingerprint(searchText(&species[i]))
		corpus.Add(docs[i])
	}
	idf := corpus.IDF()
	q = q.WithIDF(idf)

	var hits []SearchHit
	for i, sp := range species {
		score := textutil.CosineSimilarity(q, docs[i].WithIDF(idf))
		if strings.Contains(textutil.Fold(sp.ScientificName), folded) ||
			strings.Contains(textutil.Fold(sp.CommonName), folded) {
			score += nameMatchBoost
		}
		if score > 0 {
			hits = append(hits, SearchHit{Species: sp, Score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return strings.ToLower(hits[i].Species.ScientificName) < strings.ToLower(hits[j].Species.ScientificName)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func searchText(s *Species) string {
	return strings.Join([]string{s.ScientificName, s.CommonName, s.Family, s.Genus, s.Description}, " ")
}
