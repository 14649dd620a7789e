package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"

	"botanize/internal/language"
)

// envOverrides lists the environment variables honoured on top of the TOML file.
// Credentials only fill empty values; the rest replace whatever the file says.
type envOverrides struct {
	PlantNetAPIKey string `env:"PLANTNET_API_KEY"`
	RedisPassword  string `env:"BOTANIZE_REDIS_PASSWORD"`
	RedisAddr      string `env:"BOTANIZE_REDIS_ADDR"`
	QuotaBackend   string `env:"BOTANIZE_QUOTA_BACKEND"`
	Tier           string `env:"BOTANIZE_TIER"`
	LogLevel       string `env:"BOTANIZE_LOG_LEVEL"`
	APIToken       string `env:"BOTANIZE_API_TOKEN"`
}

func (c *Config) normalize() error {
	if err := c.applyEnv(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTaxonomy()
	c.normalizeScoring()
	c.normalizeQuota()
	c.normalizePlantNet()
	c.Entitlement.Tier = strings.ToLower(strings.TrimSpace(c.Entitlement.Tier))
	if c.Entitlement.Tier == "" {
		c.Entitlement.Tier = defaultTier
	}
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if strings.TrimSpace(c.PlantNet.APIKey) == "" {
		c.PlantNet.APIKey = overrides.PlantNetAPIKey
	}
	if strings.TrimSpace(c.API.Token) == "" {
		c.API.Token = overrides.APIToken
	}
	if strings.TrimSpace(c.Quota.RedisPassword) == "" {
		c.Quota.RedisPassword = overrides.RedisPassword
	}
	if v := strings.TrimSpace(overrides.RedisAddr); v != "" {
		c.Quota.RedisAddr = v
	}
	if v := strings.TrimSpace(overrides.QuotaBackend); v != "" {
		c.Quota.Backend = v
	}
	if v := strings.TrimSpace(overrides.Tier); v != "" {
		c.Entitlement.Tier = v
	}
	if v := strings.TrimSpace(overrides.LogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTaxonomy() {
	c.Taxonomy.SpeciesFile = strings.TrimSpace(c.Taxonomy.SpeciesFile)
	if c.Taxonomy.SpeciesFile == "" {
		c.Taxonomy.SpeciesFile = defaultSpeciesFile
	}
	c.Taxonomy.VocabularyFile = strings.TrimSpace(c.Taxonomy.VocabularyFile)
	if c.Taxonomy.VocabularyFile == "" {
		c.Taxonomy.VocabularyFile = defaultVocabularyFile
	}
}

func (c *Config) normalizeScoring() {
	if c.Scoring.CandidateLimit <= 0 {
		c.Scoring.CandidateLimit = defaultCandidateLimit
	}
}

func (c *Config) normalizeQuota() {
	c.Quota.Backend = strings.ToLower(strings.TrimSpace(c.Quota.Backend))
	if c.Quota.Backend == "" {
		c.Quota.Backend = defaultQuotaBackend
	}
	c.Quota.CountKey = strings.TrimSpace(c.Quota.CountKey)
	if c.Quota.CountKey == "" {
		c.Quota.CountKey = defaultQuotaCountKey
	}
	c.Quota.DateKey = strings.TrimSpace(c.Quota.DateKey)
	if c.Quota.DateKey == "" {
		c.Quota.DateKey = defaultQuotaDateKey
	}
	c.Quota.Timezone = strings.TrimSpace(c.Quota.Timezone)
	c.Quota.RedisAddr = strings.TrimSpace(c.Quota.RedisAddr)
	c.Quota.RedisPassword = strings.TrimSpace(c.Quota.RedisPassword)
	if strings.TrimSpace(c.Quota.RedisPrefix) == "" {
		c.Quota.RedisPrefix = defaultRedisPrefix
	}
}

func (c *Config) normalizePlantNet() {
	c.PlantNet.APIKey = strings.TrimSpace(c.PlantNet.APIKey)
	c.PlantNet.BaseURL = strings.TrimRight(strings.TrimSpace(c.PlantNet.BaseURL), "/")
	if c.PlantNet.BaseURL == "" {
		c.PlantNet.BaseURL = defaultPlantNetBaseURL
	}
	c.PlantNet.Language = strings.TrimSpace(c.PlantNet.Language)
	if c.PlantNet.Language == "" {
		c.PlantNet.Language = defaultPlantNetLanguage
	}
	if code, err := language.Normalize(c.PlantNet.Language); err == nil {
		c.PlantNet.Language = code
	}
	if c.PlantNet.TimeoutSeconds <= 0 {
		c.PlantNet.TimeoutSeconds = defaultPlantNetTimeoutSec
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
