package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.ListenAddr != ":8090" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.Profile != ProfileBalanced {
		t.Errorf("profile = %q, want balanced", cfg.Profile)
	}
	if cfg.SessionBackend != SessionBackendMemory {
		t.Errorf("session backend = %q, want memory", cfg.SessionBackend)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("session TTL = %s, want 1h", cfg.SessionTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SENTINEL_LISTEN", ":9999")
	t.Setenv("SENTINEL_PROFILE", "strict")
	t.Setenv("SENTINEL_SESSION_BACKEND", "redis")
	t.Setenv("SENTINEL_REDIS_ADDR", "redis:6379")
	t.Setenv("SENTINEL_BATCH_WORKERS", "32")

	cfg := NewDefaultConfig()

	if cfg.ListenAddr != ":9999" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.Profile != ProfileStrict {
		t.Errorf("profile = %q", cfg.Profile)
	}
	if cfg.SessionBackend != SessionBackendRedis || cfg.RedisAddr != "redis:6379" {
		t.Errorf("redis backend not picked up: %+v", cfg)
	}
	if cfg.BatchWorkers != 32 {
		t.Errorf("batch workers = %d", cfg.BatchWorkers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestProfileThresholds(t *testing.T) {
	balanced, err := NewDefaultConfig().Thresholds()
	if err != nil {
		t.Fatal(err)
	}
	strict, err := NewStrictConfig().Thresholds()
	if err != nil {
		t.Fatal(err)
	}
	permissive, err := NewPermissiveConfig().Thresholds()
	if err != nil {
		t.Fatal(err)
	}

	if !(strict.LexiconHighMatches < balanced.LexiconHighMatches) {
		t.Errorf("strict should escalate on fewer matches: %d vs %d",
			strict.LexiconHighMatches, balanced.LexiconHighMatches)
	}
	if !(permissive.LexiconHighMatches > balanced.LexiconHighMatches) {
		t.Errorf("permissive should escalate on more matches: %d vs %d",
			permissive.LexiconHighMatches, balanced.LexiconHighMatches)
	}
	if strict.RiskScoreCap != balanced.RiskScoreCap {
		t.Error("profiles must not change the score cap")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown profile", func(c *Config) { c.Profile = "paranoid" }},
		{"unknown backend", func(c *Config) { c.SessionBackend = "etcd" }},
		{"redis without addr", func(c *Config) {
			c.SessionBackend = SessionBackendRedis
			c.RedisAddr = ""
		}},
		{"non-positive ttl", func(c *Config) { c.SessionTTL = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SENTINEL_TEST_STR", "value")
	t.Setenv("SENTINEL_TEST_INT", "42")
	t.Setenv("SENTINEL_TEST_BOOL", "true")
	t.Setenv("SENTINEL_TEST_FLOAT", "0.7")
	t.Setenv("SENTINEL_TEST_SLICE", "a, b ,c")

	if got := GetEnv("SENTINEL_TEST_STR", "fallback"); got != "value" {
		t.Errorf("GetEnv = %q", got)
	}
	if got := GetEnv("SENTINEL_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("GetEnv fallback = %q", got)
	}
	if got := GetEnvInt("SENTINEL_TEST_INT", 0); got != 42 {
		t.Errorf("GetEnvInt = %d", got)
	}
	if got := GetEnvBool("SENTINEL_TEST_BOOL", false); !got {
		t.Error("GetEnvBool = false")
	}
	if got := GetEnvFloat("SENTINEL_TEST_FLOAT", 0); got != 0.7 {
		t.Errorf("GetEnvFloat = %f", got)
	}
	if got := GetEnvSlice("SENTINEL_TEST_SLICE", nil); len(got) != 3 || got[1] != "b" {
		t.Errorf("GetEnvSlice = %v", got)
	}
}
