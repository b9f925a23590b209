package kafka_config

import (
	"testing"
)

func TestLoad_DisabledByDefault(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")

	cfg := Load()
	if cfg.Enabled() {
		t.Errorf("expected publishing to be disabled without brokers")
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("disabled config should be valid, got %v", errs)
	}
}

func TestLoad_SplitsBrokers(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, kafka-2:9092 ,,")

	cfg := Load()
	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "kafka-1:9092" || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Brokers)
	}
	if !cfg.Enabled() {
		t.Errorf("expected publishing to be enabled")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Brokers:              []string{"localhost:9092"},
			BookingEventsTopic:   DefaultBookingEventsTopic,
			ProducerMaxAttempts:  DefaultProducerMaxAttempts,
			ProducerBatchTimeout: DefaultProducerBatchTimeout,
			ProducerRequireAcks:  DefaultProducerRequireAcks,
			ProducerCompression:  DefaultProducerCompression,
			ProducerWriteTimeout: DefaultProducerWriteTimeout,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty topic", mutate: func(c *Config) { c.BookingEventsTopic = "" }, wantErr: true},
		{name: "bad compression", mutate: func(c *Config) { c.ProducerCompression = "brotli" }, wantErr: true},
		{name: "bad acks", mutate: func(c *Config) { c.ProducerRequireAcks = 2 }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.ProducerMaxAttempts = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}
