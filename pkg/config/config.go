// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Storage, Kafka, Postgres, Redis, Auth, Parser, Consumer).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Parser   ParserConfig   `yaml:"parser"`
	Consumer ConsumerConfig `yaml:"consumer"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings for the import API.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// StorageConfig holds the S3-compatible object store connection parameters
// and the upload-grant policy.
type StorageConfig struct {
	Endpoint          string        `yaml:"endpoint"`
	AccessKey         string        `yaml:"accessKey"`
	SecretKey         string        `yaml:"secretKey"`
	UseSSL            bool          `yaml:"useSSL"`
	Bucket            string        `yaml:"bucket"`
	UploadPrefix      string        `yaml:"uploadPrefix"`
	GrantTTL          time.Duration `yaml:"grantTTL"`
	UploadContentType string        `yaml:"uploadContentType"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	CatalogItems   string `yaml:"catalogItems"`
	ImportComplete string `yaml:"importComplete"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds Redis connection parameters for the rate limiter.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// AuthConfig holds the injected username-to-password mapping consumed by
// the authorization gate, plus the request rate limit per principal.
type AuthConfig struct {
	Credentials     map[string]string `yaml:"credentials"`
	RateLimit       int               `yaml:"rateLimit"`
	RateLimitWindow time.Duration     `yaml:"rateLimitWindow"`
}

// ParserConfig controls the file parser's publish fan-out and per-object
// timeout.
type ParserConfig struct {
	PublishConcurrency int           `yaml:"publishConcurrency"`
	ObjectTimeout      time.Duration `yaml:"objectTimeout"`
}

// ConsumerConfig controls the batch consumer's drain behaviour. PollWait is
// how long an open batch waits for more messages before it is closed short.
type ConsumerConfig struct {
	BatchSize int           `yaml:"batchSize"`
	PollWait  time.Duration `yaml:"pollWait"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Endpoint:          "localhost:9000",
			AccessKey:         "minioadmin",
			SecretKey:         "minioadmin",
			UseSSL:            false,
			Bucket:            "import-products",
			UploadPrefix:      "uploaded/",
			GrantTTL:          5 * time.Minute,
			UploadContentType: "text/csv",
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "catalog-import-group",
			Topics: KafkaTopics{
				CatalogItems:   "catalog-items",
				ImportComplete: "import-complete",
			},
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "catalog",
			User:            "catalog",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
		},
		Auth: AuthConfig{
			Credentials:     map[string]string{},
			RateLimit:       60,
			RateLimitWindow: time.Minute,
		},
		Parser: ParserConfig{
			PublishConcurrency: 8,
			ObjectTimeout:      2 * time.Minute,
		},
		Consumer: ConsumerConfig{
			BatchSize: 5,
			PollWait:  2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads CIP_* environment variables and overrides the
// corresponding config fields. Authorizer credentials can be supplied as
// CIP_AUTH_CREDENTIALS=user1:pass1,user2:pass2.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CIP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CIP_STORAGE_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("CIP_STORAGE_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("CIP_STORAGE_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("CIP_STORAGE_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("CIP_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CIP_KAFKA_CATALOG_TOPIC"); v != "" {
		cfg.Kafka.Topics.CatalogItems = v
	}
	if v := os.Getenv("CIP_KAFKA_COMPLETE_TOPIC"); v != "" {
		cfg.Kafka.Topics.ImportComplete = v
	}
	if v := os.Getenv("CIP_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("CIP_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("CIP_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("CIP_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("CIP_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("CIP_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("CIP_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("CIP_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CIP_AUTH_CREDENTIALS"); v != "" {
		cfg.Auth.Credentials = parseCredentialList(v)
	}
	if v := os.Getenv("CIP_CONSUMER_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Consumer.BatchSize = n
		}
	}
	if v := os.Getenv("CIP_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CIP_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// parseCredentialList parses "user1:pass1,user2:pass2" into a map. Entries
// without a colon are skipped.
func parseCredentialList(s string) map[string]string {
	creds := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		user, pass, ok := strings.Cut(pair, ":")
		if !ok || user == "" {
			continue
		}
		creds[user] = pass
	}
	return creds
}
