package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"botanize/internal/config"
	"botanize/internal/confidence"
	"botanize/internal/entitlement"
	"botanize/internal/journal"
	"botanize/internal/logging"
	"botanize/internal/quota"
	"botanize/internal/recognition"
	"botanize/internal/recognition/plantnet"
	"botanize/internal/taxonomy"
)

type commandContext struct {
	configFlag  *string
	jsonFlag    *bool
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	closers []func() error
}

func newCommandContext(configFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		jsonFlag:    jsonFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// log returns the command logger. One-shot commands log to the file only so
// tables stay readable; --verbose mirrors to stderr.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		if cfg == nil {
			c.logger = logging.NewNop()
			return
		}
		var outputs []string
		if path := cfg.LogPath(); path != "" {
			outputs = append(outputs, path)
		}
		if c.verboseFlag != nil && *c.verboseFlag {
			outputs = append(outputs, "stderr")
		}
		if len(outputs) == 0 {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// useLogger installs logger for the rest of the command. It has no effect once
// log has been called.
func (c *commandContext) useLogger(logger *slog.Logger) {
	c.loggerOnce.Do(func() { c.logger = logger })
}

func (c *commandContext) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

func (c *commandContext) close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *commandContext) taxonomySources() taxonomy.Sources {
	cfg := c.configValue()
	return taxonomy.Sources{SpeciesPath: cfg.SpeciesPath(), VocabularyPath: cfg.VocabularyPath()}
}

func (c *commandContext) loadTaxonomy(ctx context.Context) (*taxonomy.Store, error) {
	store, err := taxonomy.Load(ctx, c.taxonomySources(), c.log())
	if err != nil {
		return nil, fmt.Errorf("%w (set taxonomy.species_file and taxonomy.vocabulary_file, or place them in %s)",
			err, c.configValue().Paths.DataDir)
	}
	return store, nil
}

func (c *commandContext) gate() (entitlement.TierGate, error) {
	tier, err := entitlement.ParseTier(c.configValue().Entitlement.Tier)
	if err != nil {
		return entitlement.TierGate{}, err
	}
	return entitlement.NewTierGate(tier), nil
}

func (c *commandContext) adjuster(store *taxonomy.Store) *confidence.Adjuster {
	cfg := c.configValue()
	return confidence.NewAdjuster(store, confidence.Weights{
		MatchBonus:      cfg.Scoring.MatchBonus,
		MismatchPenalty: cfg.Scoring.MismatchPenalty,
		CandidateLimit:  cfg.Scoring.CandidateLimit,
	}, c.log())
}

// openTracker never fails: a broken quota store degrades to in-memory counting.
func (c *commandContext) openTracker(ctx context.Context, gate quota.Entitlement) *quota.Tracker {
	cfg := c.configValue()
	backend := quota.OpenOrMemory(ctx, cfg, c.log())
	c.onClose(backend.Close)
	return quota.NewTrackerFromConfig(cfg, backend, gate, quota.WithLogger(c.log()))
}

// openJournal returns nil when the journal is disabled.
func (c *commandContext) openJournal(ctx context.Context) (*journal.Journal, error) {
	cfg := c.configValue()
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	j, err := journal.Open(ctx, cfg.JournalDBPath(), journal.WithLogger(c.log()))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	c.onClose(j.Close)
	return j, nil
}

func (c *commandContext) recognizer() (recognition.Recognizer, error) {
	cfg := c.configValue()
	if err := cfg.PlantNetReady(); err != nil {
		return nil, err
	}
	return plantnet.New(cfg.PlantNet.APIKey, cfg.PlantNet.BaseURL, cfg.PlantNet.Language,
		plantnet.WithTimeout(time.Duration(cfg.PlantNet.TimeoutSeconds)*time.Second))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
