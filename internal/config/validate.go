package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"botanize/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateQuota(); err != nil {
		return err
	}
	if err := c.validatePlantNet(); err != nil {
		return err
	}
	if err := c.validateEntitlement(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScoring() error {
	if c.Scoring.MatchBonus < 0 || c.Scoring.MatchBonus > 1 {
		return errors.New("scoring.match_bonus must be between 0 and 1")
	}
	if c.Scoring.MismatchPenalty < 0 || c.Scoring.MismatchPenalty > 1 {
		return errors.New("scoring.mismatch_penalty must be between 0 and 1")
	}
	// The adjuster reads both-zero as "unset" and restores its defaults.
	if c.Scoring.MatchBonus == 0 && c.Scoring.MismatchPenalty == 0 {
		return errors.New("scoring.match_bonus and scoring.mismatch_penalty cannot both be 0; adjustment cannot be disabled")
	}
	return nil
}

func (c *Config) validateQuota() error {
	if c.Quota.FreeDailyLimit < 0 {
		return errors.New("quota.free_daily_limit must be zero or greater")
	}
	switch c.Quota.Backend {
	case "sqlite", "file", "memory":
	case "redis":
		if c.Quota.RedisAddr == "" {
			return errors.New("quota.redis_addr must be set when quota.backend is redis (or set BOTANIZE_REDIS_ADDR)")
		}
		if c.Quota.RedisDB < 0 {
			return errors.New("quota.redis_db must be zero or greater")
		}
	default:
		return fmt.Errorf("quota.backend must be sqlite, file, redis, or memory (got %q)", c.Quota.Backend)
	}
	if c.Quota.CountKey == c.Quota.DateKey {
		return errors.New("quota.count_key and quota.date_key must differ")
	}
	if c.Quota.Timezone != "" {
		if _, err := time.LoadLocation(c.Quota.Timezone); err != nil {
			return fmt.Errorf("quota.timezone: %w", err)
		}
	}
	return nil
}

func (c *Config) validatePlantNet() error {
	if !strings.HasPrefix(c.PlantNet.BaseURL, "http://") && !strings.HasPrefix(c.PlantNet.BaseURL, "https://") {
		return fmt.Errorf("plantnet.base_url must be an http(s) URL (got %q)", c.PlantNet.BaseURL)
	}
	if _, err := language.Normalize(c.PlantNet.Language); err != nil {
		return fmt.Errorf("plantnet.language: %w", err)
	}
	return nil
}

func (c *Config) validateEntitlement() error {
	switch c.Entitlement.Tier {
	case "free", "lifetime", "pro":
		return nil
	default:
		return fmt.Errorf("entitlement.tier must be free, lifetime, or pro (got %q)", c.Entitlement.Tier)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
}

// QuotaLocation returns the calendar location used for the daily quota reset.
func (c *Config) QuotaLocation() *time.Location {
	if c.Quota.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Quota.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// PlantNetReady reports whether image recognition can be attempted.
func (c *Config) PlantNetReady() error {
	if c.PlantNet.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("plantnet.api_key is required for image identification. Set PLANTNET_API_KEY env var or edit %s (create with 'botanize config init')", defaultPath)
	}
	return nil
}
