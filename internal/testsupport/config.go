package testsupport

import (
	"path/filepath"
	"testing"

	"botanize/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The quota backend defaults to memory so tests never touch a shared database.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Quota.Backend = "memory"
	cfgVal.API.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPlantNetKey sets the Pl@ntNet API key on the test config.
func WithPlantNetKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.PlantNet.APIKey = key
	}
}

// WithPlantNetURL points the recognition client at a test server.
func WithPlantNetURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.PlantNet.BaseURL = url
	}
}

// WithTier overrides the entitlement tier.
func WithTier(tier string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Entitlement.Tier = tier
	}
}

// WithQuotaBackend overrides the quota backend (sqlite, file, memory).
func WithQuotaBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Quota.Backend = backend
	}
}

// WithFixtureTaxonomy writes the fixture species and vocabulary into the data directory.
func WithFixtureTaxonomy() ConfigOption {
	return func(b *configBuilder) {
		WriteTaxonomy(b.t, b.cfg.Paths.DataDir)
	}
}
