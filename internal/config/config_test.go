package config

import "testing"

func baseConfig() *Config {
	return &Config{
		AppEnv:           "dev",
		HTTPAddr:         ":8080",
		MetricsAddr:      ":9090",
		DatabaseDSN:      "postgres://localhost/vehiclerules",
		StoreType:        "postgres",
		AdminAPIKey:      "admin-123",
		RateLimitPerIP:   100,
		AuditQueueSize:   256,
		DefaultRuleActor: "system",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string // empty = expect valid
	}{
		{name: "defaults are valid in dev", mutate: func(c *Config) {}},
		{
			name:   "memory store needs no DSN",
			mutate: func(c *Config) { c.StoreType = "memory"; c.DatabaseDSN = "" },
		},
		{
			name:      "unknown store type",
			mutate:    func(c *Config) { c.StoreType = "redis" },
			wantField: "STORE_TYPE",
		},
		{
			name:      "postgres without DSN",
			mutate:    func(c *Config) { c.DatabaseDSN = "" },
			wantField: "DB_DSN",
		},
		{
			name:      "empty http addr",
			mutate:    func(c *Config) { c.HTTPAddr = "" },
			wantField: "APP_HTTP_ADDR",
		},
		{
			name:      "empty metrics addr",
			mutate:    func(c *Config) { c.MetricsAddr = "" },
			wantField: "METRICS_ADDR",
		},
		{
			name:      "non-positive rate limit",
			mutate:    func(c *Config) { c.RateLimitPerIP = 0 },
			wantField: "RATE_LIMIT_PER_IP",
		},
		{
			name:      "default admin key rejected in prod",
			mutate:    func(c *Config) { c.AppEnv = "prod" },
			wantField: "ADMIN_API_KEY",
		},
		{
			name:   "prod with rotated key",
			mutate: func(c *Config) { c.AppEnv = "prod"; c.AdminAPIKey = "s3cret-rotated" },
		},
		{
			name:   "prod with key hash keeps default key harmless",
			mutate: func(c *Config) { c.AppEnv = "production"; c.AdminAPIKeyHash = "$2a$10$abcdefghijklmnopqrstuv" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			validationErr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("want ValidationError on %s, got %v", tt.wantField, err)
			}
			if validationErr.Field != tt.wantField {
				t.Fatalf("want field %s, got %s", tt.wantField, validationErr.Field)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr == "" || cfg.MetricsAddr == "" {
		t.Fatalf("addresses must default: %+v", cfg)
	}
	if cfg.StoreType != "memory" && cfg.StoreType != "postgres" {
		t.Fatalf("unexpected default store type %q", cfg.StoreType)
	}
	if cfg.RateLimitPerIP <= 0 || cfg.AuditQueueSize <= 0 {
		t.Fatalf("numeric defaults must be positive: %+v", cfg)
	}
}
