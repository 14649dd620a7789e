package config

const (
	defaultConfigPath         = "~/.config/botanize/config.toml"
	defaultDataDir            = "~/.local/share/botanize/data"
	defaultStateDir           = "~/.local/share/botanize/state"
	defaultLogDir             = "~/.local/share/botanize/logs"
	defaultSpeciesFile        = "species.json"
	defaultVocabularyFile     = "vocabulary.json"
	defaultMatchBonus         = 0.05
	defaultMismatchPenalty    = 0.03
	defaultCandidateLimit     = 5
	defaultFreeDailyLimit     = 3
	defaultQuotaBackend       = "sqlite"
	defaultQuotaCountKey      = "observe_questions_today"
	defaultQuotaDateKey       = "observe_questions_date"
	defaultRedisPrefix        = "botanize:quota:"
	defaultPlantNetBaseURL    = "https://my-api.plantnet.org/v2"
	defaultPlantNetLanguage   = "en"
	defaultPlantNetTimeoutSec = 10
	defaultTier               = "free"
	defaultAPIBind            = "127.0.0.1:7490"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Taxonomy: Taxonomy{
			SpeciesFile:    defaultSpeciesFile,
			VocabularyFile: defaultVocabularyFile,
		},
		Scoring: Scoring{
			MatchBonus:      defaultMatchBonus,
			MismatchPenalty: defaultMismatchPenalty,
			CandidateLimit:  defaultCandidateLimit,
		},
		Quota: Quota{
			FreeDailyLimit: defaultFreeDailyLimit,
			Backend:        defaultQuotaBackend,
			CountKey:       defaultQuotaCountKey,
			DateKey:        defaultQuotaDateKey,
			RedisPrefix:    defaultRedisPrefix,
		},
		PlantNet: PlantNet{
			BaseURL:        defaultPlantNetBaseURL,
			Language:       defaultPlantNetLanguage,
			TimeoutSeconds: defaultPlantNetTimeoutSec,
		},
		Entitlement: Entitlement{
			Tier: defaultTier,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
