package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"guesthouse/pkg/logger"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvPort, "")
	t.Setenv(EnvStoreTxMaxAttempts, "")
	t.Setenv(EnvPropertyTimezone, "")

	cfg := FromEnv()
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %s, want %s", cfg.Port, DefaultPort)
	}
	if cfg.StoreTxMaxAttempts != DefaultStoreTxMaxAttempts {
		t.Errorf("StoreTxMaxAttempts = %d, want %d", cfg.StoreTxMaxAttempts, DefaultStoreTxMaxAttempts)
	}
	if cfg.PropertyTimezone != DefaultPropertyTimezone {
		t.Errorf("PropertyTimezone = %s, want %s", cfg.PropertyTimezone, DefaultPropertyTimezone)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvRequestTimeout, "5s")
	t.Setenv(EnvRateLimitRequests, "not-a-number")
	t.Setenv(EnvAdminSecret, "s3cret")
	t.Setenv(EnvTrustProxyHeaders, "true")

	cfg := FromEnv()
	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %s, want 5s", cfg.RequestTimeout)
	}
	if cfg.RateLimitRequests != DefaultRateLimitRequests {
		t.Errorf("unparseable value should fall back to default, got %d", cfg.RateLimitRequests)
	}
	if cfg.AdminSecret != "s3cret" {
		t.Errorf("AdminSecret not loaded")
	}
	if !cfg.TrustProxyHeaders {
		t.Errorf("TrustProxyHeaders not loaded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = "70000" }, wantErr: "Port must be between"},
		{name: "bad mongo uri", mutate: func(c *Config) { c.MongoURI = "postgres://localhost" }, wantErr: "MongoURI must start"},
		{name: "bad timezone", mutate: func(c *Config) { c.PropertyTimezone = "Mars/Base" }, wantErr: "PropertyTimezone"},
		{name: "zero attempts", mutate: func(c *Config) { c.StoreTxMaxAttempts = 0 }, wantErr: "StoreTxMaxAttempts"},
		{name: "pool sizes inverted", mutate: func(c *Config) { c.MongoMinPoolSize = 100 }, wantErr: "MongoMinPoolSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KAFKA_BROKERS", "")
			cfg := FromEnv()
			cfg.MongoURI = DefaultMongoURI
			cfg.Port = DefaultPort
			cfg.PropertyTimezone = DefaultPropertyTimezone
			cfg.StoreTxMaxAttempts = DefaultStoreTxMaxAttempts
			cfg.MongoMaxPoolSize = DefaultMongoMaxPoolSize
			cfg.MongoMinPoolSize = DefaultMongoMinPoolSize
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLogConfiguration_NeverLogsSecrets(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv("KAFKA_BROKERS", "")
	cfg := FromEnv()
	cfg.AdminSecret = "super-secret-value"
	cfg.MongoURI = "mongodb://admin:hunter2@db:27017"
	cfg.Log = logger.New(logger.Config{Output: &buf, Level: logger.DEBUG})

	cfg.LogConfiguration()

	out := buf.String()
	for _, secret := range []string{"super-secret-value", "hunter2"} {
		if strings.Contains(out, secret) {
			t.Errorf("configuration log leaked %q", secret)
		}
	}
	if !strings.Contains(out, `"admin_secret_set":true`) {
		t.Errorf("expected admin_secret_set flag in log, got %s", out)
	}
}
