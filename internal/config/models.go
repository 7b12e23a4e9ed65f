package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

const (
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

// Config holds service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Review  ReviewConfig  `mapstructure:"review"`
	Store   StoreConfig   `mapstructure:"store"`
	GitHub  GitHubConfig  `mapstructure:"github"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type WebhookConfig struct {
	Secret             string `mapstructure:"secret"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// ReviewConfig tunes vote counting.
type ReviewConfig struct {
	RequiredPlusOnes int    `mapstructure:"required_plus_ones"`
	PositiveToken    string `mapstructure:"positive_token"`
	NegativeToken    string `mapstructure:"negative_token"`
	SyncPolicy       string `mapstructure:"sync_policy"`
	// Policy is a govaluate expression over plus_ones, required_plus_ones and voters.
	Policy string `mapstructure:"policy"`
}

type StoreConfig struct {
	Driver   string         `mapstructure:"driver"`
	BoltPath string         `mapstructure:"bolt_path"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig describes database connection parameters. DSN wins over the
// individual fields when set.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// ConnString returns the pgx connection string.
func (p PostgresConfig) ConnString() string {
	if p.DSN != "" {
		return p.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.DBName,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

type GitHubConfig struct {
	Token   string        `mapstructure:"token"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}
