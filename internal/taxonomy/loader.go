package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"botanize/internal/logging"
)

// FreeSpeciesCount is the number of leading species flagged Free on load.
const FreeSpeciesCount = 30

// Sources names the reference files to load.
type Sources struct {
	SpeciesPath    string
	VocabularyPath string
}

// Load reads both reference files concurrently and returns a ready Store.
func Load(ctx context.Context, src Sources, logger *slog.Logger) (*Store, error) {
	species, vocabulary, err := loadSources(ctx, src)
	if err != nil {
		return nil, err
	}
	logging.NewComponentLogger(logger, "taxonomy").Info("taxonomy loaded",
		logging.Int("species", len(species)),
		logging.Int("terms", vocabulary.Len()),
		logging.String("species_path", src.SpeciesPath))
	return NewStore(species, vocabulary), nil
}

// Reload re-reads the reference files into an existing store. The store is left
// untouched when either file fails to parse.
func Reload(ctx context.Context, store *Store, src Sources) error {
	species, vocabulary, err := loadSources(ctx, src)
	if err != nil {
		return err
	}
	store.Replace(species, vocabulary)
	return nil
}

func loadSources(ctx context.Context, src Sources) ([]Species, *Vocabulary, error) {
	var (
		species []Species
		terms   []Term
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		species, err = ReadSpecies(ctx, src.SpeciesPath)
		return err
	})
	g.Go(func() error {
		if strings.TrimSpace(src.VocabularyPath) == "" {
			return nil
		}
		var err error
		terms, err = ReadTerms(ctx, src.VocabularyPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return species, NewVocabulary(terms), nil
}

// ReadSpecies decodes a species file (a JSON or YAML list).
func ReadSpecies(ctx context.Context, path string) ([]Species, error) {
	var species []Species
	if err := decodeFile(ctx, path, &species); err != nil {
		return nil, fmt.Errorf("load species: %w", err)
	}
	for i := range species {
		species[i].ScientificName = strings.TrimSpace(species[i].ScientificName)
		species[i].Free = i < FreeSpeciesCount
	}
	return species, nil
}

// ReadTerms decodes a vocabulary file (a JSON or YAML list).
func ReadTerms(ctx context.Context, path string) ([]Term, error) {
	var terms []Term
	if err := decodeFile(ctx, path, &terms); err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	return terms, nil
}

func decodeFile(ctx context.Context, path string, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}
