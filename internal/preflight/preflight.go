package preflight

import (
	"context"

	"botanize/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	// Skipped marks checks whose feature is not configured.
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results,
		CheckSpecies(ctx, cfg.SpeciesPath()),
		CheckVocabulary(ctx, cfg.VocabularyPath()),
		CheckQuotaBackend(ctx, cfg),
	)

	if cfg.PlantNet.APIKey == "" {
		results = append(results, Result{Name: plantNetName, Skipped: true, Detail: "no api key; photo identification disabled"})
	} else {
		results = append(results, CheckPlantNet(ctx, cfg.PlantNet.BaseURL, cfg.PlantNet.APIKey))
	}
	return results
}

// Failed returns the results that neither passed nor were skipped.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Skipped {
			out = append(out, r)
		}
	}
	return out
}
