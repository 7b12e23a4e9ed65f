// Package config loads service configuration from an optional file, a .env
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envFile   = ".env"
	envPrefix = "COMMODUS"
)

// Load reads configuration. path may name a YAML, TOML or JSON file; when
// empty only defaults and environment variables apply. Variables are named
// after the key, e.g. COMMODUS_WEBHOOK_SECRET for webhook.secret.
func Load(path string) (*Config, error) {
	v := viper.New()
	// A missing .env file is fine; existing variables win over its values.
	_ = godotenv.Load(envFile)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.insecure_skip_verify", false)

	v.SetDefault("review.required_plus_ones", 2)
	v.SetDefault("review.positive_token", ":+1:")
	v.SetDefault("review.negative_token", ":-1:")
	v.SetDefault("review.sync_policy", "retain")
	v.SetDefault("review.policy", "")

	v.SetDefault("store.driver", "bolt")
	v.SetDefault("store.bolt_path", "commodus.db")
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.user", "commodus")
	v.SetDefault("store.postgres.password", "commodus")
	v.SetDefault("store.postgres.db_name", "commodus")
	v.SetDefault("store.postgres.ssl_mode", "disable")
	v.SetDefault("store.postgres.max_conns", 10)
	v.SetDefault("store.postgres.min_conns", 1)

	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.timeout", 10*time.Second)
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"server.addr",
		"server.shutdown_timeout",
		"log.level",
		"log.pretty",
		"webhook.secret",
		"webhook.insecure_skip_verify",
		"review.required_plus_ones",
		"review.positive_token",
		"review.negative_token",
		"review.sync_policy",
		"review.policy",
		"store.driver",
		"store.bolt_path",
		"store.postgres.dsn",
		"store.postgres.host",
		"store.postgres.port",
		"store.postgres.user",
		"store.postgres.password",
		"store.postgres.db_name",
		"store.postgres.ssl_mode",
		"store.postgres.max_conns",
		"store.postgres.min_conns",
		"github.token",
		"github.base_url",
		"github.timeout",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Webhook.Secret == "" && !c.Webhook.InsecureSkipVerify {
		return errors.New("webhook.secret is required unless webhook.insecure_skip_verify is set")
	}
	if c.Review.RequiredPlusOnes <= 0 {
		return errors.New("review.required_plus_ones must be positive")
	}
	switch c.Review.SyncPolicy {
	case "retain", "prune":
	default:
		return fmt.Errorf("review.sync_policy must be retain or prune, got %q", c.Review.SyncPolicy)
	}
	switch c.Store.Driver {
	case DriverBolt:
		if c.Store.BoltPath == "" {
			return errors.New("store.bolt_path is required for the bolt driver")
		}
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" && (c.Store.Postgres.Host == "" || c.Store.Postgres.DBName == "") {
			return errors.New("store.postgres.dsn or host and db_name are required for the postgres driver")
		}
	default:
		return fmt.Errorf("store.driver must be %s or %s, got %q", DriverBolt, DriverPostgres, c.Store.Driver)
	}
	return nil
}
