package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.UploadPrefix != "uploaded/" {
		t.Errorf("expected uploaded/ prefix, got %q", cfg.Storage.UploadPrefix)
	}
	if cfg.Storage.GrantTTL != 5*time.Minute {
		t.Errorf("expected 5m grant TTL, got %v", cfg.Storage.GrantTTL)
	}
	if cfg.Consumer.BatchSize != 5 {
		t.Errorf("expected batch size 5, got %d", cfg.Consumer.BatchSize)
	}
	if cfg.Kafka.Topics.CatalogItems != "catalog-items" {
		t.Errorf("unexpected catalog topic %q", cfg.Kafka.Topics.CatalogItems)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
storage:
  bucket: staging-imports
  grantTTL: 2m
auth:
  credentials:
    alice: s3cret
consumer:
  batchSize: 10
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Bucket != "staging-imports" {
		t.Errorf("expected staging-imports, got %q", cfg.Storage.Bucket)
	}
	if cfg.Storage.GrantTTL != 2*time.Minute {
		t.Errorf("expected 2m TTL, got %v", cfg.Storage.GrantTTL)
	}
	if cfg.Auth.Credentials["alice"] != "s3cret" {
		t.Errorf("expected alice credential, got %v", cfg.Auth.Credentials)
	}
	if cfg.Consumer.BatchSize != 10 {
		t.Errorf("expected batch size 10, got %d", cfg.Consumer.BatchSize)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.Port != 5432 {
		t.Errorf("expected default postgres port, got %d", cfg.Postgres.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CIP_STORAGE_BUCKET", "env-bucket")
	t.Setenv("CIP_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CIP_AUTH_CREDENTIALS", "user:pass,admin:secret")
	t.Setenv("CIP_CONSUMER_BATCH_SIZE", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Bucket != "env-bucket" {
		t.Errorf("expected env-bucket, got %q", cfg.Storage.Bucket)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Auth.Credentials["user"] != "pass" || cfg.Auth.Credentials["admin"] != "secret" {
		t.Errorf("unexpected credentials %v", cfg.Auth.Credentials)
	}
	if cfg.Consumer.BatchSize != 7 {
		t.Errorf("expected batch size 7, got %d", cfg.Consumer.BatchSize)
	}
}

func TestParseCredentialListSkipsMalformedEntries(t *testing.T) {
	creds := parseCredentialList("user:pass,garbage,:nouser")
	if len(creds) != 1 || creds["user"] != "pass" {
		t.Errorf("expected only user:pass, got %v", creds)
	}
}
