package userauth

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "zero max attempts invalid",
			mutate: func(c *Config) {
				c.Throttle.MaxAttempts = 0
			},
			wantValid: false,
		},
		{
			name: "zero lockout window invalid",
			mutate: func(c *Config) {
				c.Throttle.LockoutWindow = 0
			},
			wantValid: false,
		},
		{
			name: "empty hashable field name invalid",
			mutate: func(c *Config) {
				c.HashableFields = append(c.HashableFields, "")
			},
			wantValid: false,
		},
		{
			name: "audit enabled without buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "short lockout valid",
			mutate: func(c *Config) {
				c.Throttle.LockoutWindow = time.Second
			},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestDefaultConfigHashableFields(t *testing.T) {
	cfg := DefaultConfig()
	want := map[string]bool{"password": false, "persist_code": false}
	for _, f := range cfg.HashableFields {
		if _, ok := want[f]; !ok {
			t.Fatalf("unexpected hashable field %q", f)
		}
		want[f] = true
	}
	for f, seen := range want {
		if !seen {
			t.Fatalf("missing hashable field %q", f)
		}
	}
}
