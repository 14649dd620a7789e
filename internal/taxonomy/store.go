package taxonomy

import (
	"sort"
	"sync"
)

// Store holds the loaded species and vocabulary. Reads take a snapshot under a
// read lock so a reload via Replace never tears an in-flight match.
type Store struct {
	mu         sync.RWMutex
	species    []Species
	byName     map[string]int
	vocabulary *Vocabulary
}

// NewStore indexes species by case-folded scientific name. Later duplicates
// replace earlier ones so each name resolves to exactly one record.
func NewStore(species []Species, vocabulary *Vocabulary) *Store {
	s := &Store{}
	s.Replace(species, vocabulary)
	return s
}

// Replace swaps the store contents atomically.
func (s *Store) Replace(species []Species, vocabulary *Vocabulary) {
	list, index := indexSpecies(species)
	if vocabulary == nil {
		vocabulary = NewVocabulary(nil)
	}
	s.mu.Lock()
	s.species = list
	s.byName = index
	s.vocabulary = vocabulary
	s.mu.Unlock()
}

func indexSpecies(species []Species) ([]Species, map[string]int) {
	list := make([]Species, 0, len(species))
	index := make(map[string]int, len(species))
	for _, sp := range species {
		key := foldKey(sp.ScientificName)
		if key == "" {
			continue
		}
		if pos, ok := index[key]; ok {
			list[pos] = sp
			continue
		}
		index[key] = len(list)
		list = append(list, sp)
	}
	return list, index
}

// All returns every species in load order. The slice is shared and must not be modified.
func (s *Store) All() []Species {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.species
}

// Lookup finds a species by scientific name, ignoring case and surrounding space.
func (s *Store) Lookup(scientificName string) (Species, bool) {
	key := foldKey(scientificName)
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.byName[key]
	if !ok {
		return Species{}, false
	}
	return s.species[pos], true
}

// Len returns the number of species.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.species)
}

// Vocabulary returns the current trait vocabulary.
func (s *Store) Vocabulary() *Vocabulary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vocabulary
}

// Families returns the distinct family names with their species counts, sorted by name.
func (s *Store) Families() []FamilyCount {
	s.mu.RLock()
	counts := make(map[string]int)
	for _, sp := range s.species {
		if sp.Family == "" {
			continue
		}
		counts[sp.Family]++
	}
	s.mu.RUnlock()

	out := make([]FamilyCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, FamilyCount{Family: name, Species: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Family < out[j].Family })
	return out
}

// FamilyCount pairs a family with the number of loaded species in it.
type FamilyCount struct {
	Family  string `json:"family"`
	Species int    `json:"species"`
}
