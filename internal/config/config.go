package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"botanize/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Taxonomy locates the species and vocabulary reference files.
type Taxonomy struct {
	SpeciesFile    string `toml:"species_file"`
	VocabularyFile string `toml:"vocabulary_file"`
	// Watch reloads the reference files when they change (serve only).
	Watch bool `toml:"watch"`
}

// Scoring contains the tunable constants of the confidence adjuster.
type Scoring struct {
	MatchBonus      float64 `toml:"match_bonus"`
	MismatchPenalty float64 `toml:"mismatch_penalty"`
	CandidateLimit  int     `toml:"candidate_limit"`
}

// Quota contains the free-tier daily answer limit and its persistence backend.
type Quota struct {
	FreeDailyLimit int    `toml:"free_daily_limit"`
	Backend        string `toml:"backend"` // sqlite, file, redis, or memory
	CountKey       string `toml:"count_key"`
	DateKey        string `toml:"date_key"`
	// Timezone names the calendar used for the daily reset. Empty means local time.
	Timezone      string `toml:"timezone"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// PlantNet contains configuration for the Pl@ntNet image recognition API.
type PlantNet struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Entitlement carries the purchased tier; billing itself happens elsewhere.
type Entitlement struct {
	Tier string `toml:"tier"`
}

// API contains the HTTP server settings used by `botanize serve`.
type API struct {
	Bind string `toml:"bind"`
	// Token, when set, is required as "Authorization: Bearer <token>".
	Token string `toml:"token"`
}

// Journal controls the observation journal.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for botanize.
//
// Configuration sections by subsystem:
//   - Paths: data, state, and log directories
//   - Taxonomy: species and vocabulary reference files
//   - Scoring: confidence adjuster bonus/penalty and candidate limit
//   - Quota: free-tier daily limit and persistence backend
//   - PlantNet: image recognition service credentials
//   - Entitlement: the user's tier
//   - API: HTTP bind address
//   - Journal: observation journal toggle
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Taxonomy    Taxonomy    `toml:"taxonomy"`
	Scoring     Scoring     `toml:"scoring"`
	Quota       Quota       `toml:"quota"`
	PlantNet    PlantNet    `toml:"plantnet"`
	Entitlement Entitlement `toml:"entitlement"`
	API         API         `toml:"api"`
	Journal     Journal     `toml:"journal"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("botanize.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SpeciesPath returns the species reference file, resolved against the data directory.
func (c *Config) SpeciesPath() string {
	return c.dataFile(c.Taxonomy.SpeciesFile)
}

// VocabularyPath returns the trait vocabulary file, resolved against the data directory.
func (c *Config) VocabularyPath() string {
	return c.dataFile(c.Taxonomy.VocabularyFile)
}

// QuotaDBPath returns the SQLite file backing the quota tracker.
func (c *Config) QuotaDBPath() string {
	return filepath.Join(c.Paths.StateDir, "quota.db")
}

// QuotaFilePath returns the JSON file used by the file quota backend.
func (c *Config) QuotaFilePath() string {
	return filepath.Join(c.Paths.StateDir, "quota.json")
}

// JournalDBPath returns the SQLite file backing the observation journal.
func (c *Config) JournalDBPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// LockPath returns the single-instance lock file used by `botanize serve`.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "botanize.lock")
}

// LogPath is the log file inside LogDir, or "" when file logging is off.
func (c *Config) LogPath() string {
	dir := strings.TrimSpace(c.Paths.LogDir)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "botanize.log")
}

func (c *Config) dataFile(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.DataDir, name)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if err := fileutil.WriteAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
