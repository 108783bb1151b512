// Package config holds runtime settings for the screening engine. Every
// setting can come from environment variables or be set programmatically.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/minwonlab/sentinel/pkg/complaint"
)

// Profile selects a threshold posture.
type Profile string

const (
	ProfileStrict     Profile = "strict"     // escalate earlier, more false positives
	ProfileBalanced   Profile = "balanced"   // documented defaults
	ProfilePermissive Profile = "permissive" // escalate later, fewer false positives
)

// SessionBackend selects where session state lives.
type SessionBackend string

const (
	SessionBackendMemory SessionBackend = "memory" // single node
	SessionBackendRedis  SessionBackend = "redis"  // shared across nodes
)

// Config holds global settings for the screening gateway and CLI.
type Config struct {
	// === Core Settings ===
	ListenAddr     string  // HTTP listen address (default: ":8090")
	Profile        Profile // threshold posture: "strict", "balanced", "permissive"
	ThresholdsPath string  // optional YAML threshold override file
	LexiconPath    string  // optional YAML term list override file

	// === Session Management ===
	SessionBackend  SessionBackend // "memory" or "redis"
	SessionTTL      time.Duration  // idle TTL before a session expires (default: 1 hour)
	SessionMaxTurns int            // sliding context window per session (default: 15)

	// === Redis (session backend "redis") ===
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// === Classification History (optional) ===
	HistoryDSN string // PostgreSQL DSN; empty disables the history sink

	// === Batch Classification ===
	BatchWorkers int // concurrency bound for dataset runs (default: 8)
}

// NewDefaultConfig creates a Config from environment variables with sensible
// defaults for everything unset.
func NewDefaultConfig() *Config {
	return &Config{
		ListenAddr:     GetEnv("SENTINEL_LISTEN", ":8090"),
		Profile:        Profile(GetEnv("SENTINEL_PROFILE", string(ProfileBalanced))),
		ThresholdsPath: GetEnv("SENTINEL_THRESHOLDS", ""),
		LexiconPath:    GetEnv("SENTINEL_LEXICON", ""),

		SessionBackend:  SessionBackend(GetEnv("SENTINEL_SESSION_BACKEND", string(SessionBackendMemory))),
		SessionTTL:      time.Duration(GetEnvInt("SENTINEL_SESSION_TTL_SECONDS", 3600)) * time.Second,
		SessionMaxTurns: clampInt(GetEnvInt("SENTINEL_SESSION_MAX_TURNS", 15), 1, 1000),

		RedisAddr:     GetEnv("SENTINEL_REDIS_ADDR", "localhost:6379"),
		RedisPassword: GetEnv("SENTINEL_REDIS_PASSWORD", ""),
		RedisDB:       GetEnvInt("SENTINEL_REDIS_DB", 0),

		HistoryDSN: GetEnv("SENTINEL_DATABASE_URL", ""),

		BatchWorkers: clampInt(GetEnvInt("SENTINEL_BATCH_WORKERS", 8), 1, 256),
	}
}

// NewStrictConfig creates a Config that escalates earlier. Use where missing
// a malicious call costs more than flagging a legitimate one.
func NewStrictConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Profile = ProfileStrict
	return cfg
}

// NewPermissiveConfig creates a Config that minimizes false positives.
func NewPermissiveConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Profile = ProfilePermissive
	return cfg
}

// Thresholds resolves the active threshold set: the YAML override file when
// configured, defaults otherwise, then the profile adjustment on top.
func (c *Config) Thresholds() (*complaint.Thresholds, error) {
	th := complaint.DefaultThresholds()
	if c.ThresholdsPath != "" {
		loaded, err := complaint.LoadThresholds(c.ThresholdsPath)
		if err != nil {
			return nil, err
		}
		th = loaded
	}

	switch c.Profile {
	case ProfileStrict:
		th.LexiconHighMatches = 1
		th.LexiconCriticalMatches = 3
		th.TemplateMediumMatches = 1
		th.RepetitionMediumTurns = 1
		th.RiskLowMax = 1
		th.RiskMediumMax = 4
		th.RiskHighMax = 7
	case ProfilePermissive:
		th.LexiconHighMatches = 3
		th.LexiconCriticalMatches = 6
		th.TemplateMediumMatches = 3
		th.RepetitionMediumTurns = 3
		th.RiskMediumMax = 6
	case ProfileBalanced, "":
		// defaults as loaded
	}
	return th, nil
}

// Validate checks that the configuration is internally consistent. Optional
// integrations that are off get a startup note, not an error.
func (c *Config) Validate() error {
	switch c.Profile {
	case ProfileStrict, ProfileBalanced, ProfilePermissive, "":
	default:
		return fmt.Errorf("unknown profile %q (want strict, balanced or permissive)", c.Profile)
	}

	switch c.SessionBackend {
	case SessionBackendMemory, "":
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("SENTINEL_REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q (want memory or redis)", c.SessionBackend)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.SessionTTL)
	}

	if c.HistoryDSN == "" {
		log.Println("[STARTUP] SENTINEL_DATABASE_URL not set - classification history disabled")
	}
	return nil
}

// MustValidate calls Validate and fatally exits if validation fails.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: Configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated successfully")
}

// clampInt ensures a value is within bounds.
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Helper functions for environment variable parsing.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvSlice returns a comma-separated list from an environment variable or a default value.
func GetEnvSlice(key string, defaultValue []string) []string {
	if v := os.Getenv(key); v != "" {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
