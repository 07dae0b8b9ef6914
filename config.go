package userauth

import (
	"errors"
	"time"
)

// Config holds construction-time tuning for a [Service]. Site-level policy
// (throttling on/off, login attribute, activation mode) lives in the
// settings provider instead, so admins can change it without a redeploy.
type Config struct {
	// HashableFields lists the credential fields verified via one-way hash
	// comparison instead of store-level equality.
	HashableFields []string

	// SettingsKey is the Redis hash key for the default settings store.
	SettingsKey string

	Throttle ThrottleConfig
	Password PasswordConfig
	Session  SessionConfig
	Audit    AuditConfig
}

// ThrottleConfig tunes the login throttle. Whether throttling applies at all
// is the use_throttle setting, read per attempt.
type ThrottleConfig struct {
	MaxAttempts   int
	AttemptWindow time.Duration
	LockoutWindow time.Duration
	KeyPrefix     string
}

// PasswordConfig holds argon2id parameters for the default hash verifier.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SessionConfig tunes the default Redis session establisher.
type SessionConfig struct {
	KeyPrefix        string
	Lifetime         time.Duration
	RememberLifetime time.Duration
	SigningKey       []byte
	Issuer           string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// DefaultConfig returns the configuration a bare New() starts from. Callers
// usually take it, set Session.SigningKey, and adjust throttle windows.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		HashableFields: []string{CredentialPassword, "persist_code"},
		SettingsKey:    "user_settings",
		Throttle: ThrottleConfig{
			MaxAttempts:   5,
			AttemptWindow: 15 * time.Minute,
			LockoutWindow: 15 * time.Minute,
			KeyPrefix:     "ua:th",
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Session: SessionConfig{
			KeyPrefix:        "ua:s",
			Lifetime:         2 * time.Hour,
			RememberLifetime: 720 * time.Hour,
			Issuer:           "userauth",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.HashableFields != nil {
		out.HashableFields = append([]string(nil), cfg.HashableFields...)
	}
	if cfg.Session.SigningKey != nil {
		out.Session.SigningKey = append([]byte(nil), cfg.Session.SigningKey...)
	}
	return out
}

// Validate rejects configurations the Service cannot run with.
func (c Config) Validate() error {
	if c.Throttle.MaxAttempts <= 0 {
		return errors.New("throttle max attempts must be positive")
	}
	if c.Throttle.LockoutWindow <= 0 {
		return errors.New("throttle lockout window must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	for _, field := range c.HashableFields {
		if field == "" {
			return errors.New("hashable field names must be non-empty")
		}
	}
	return nil
}
