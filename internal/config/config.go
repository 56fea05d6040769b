// Package config provides configuration management for the employee API server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default configuration values.
const (
	DefaultServerPort          = 8080
	DefaultLogLevel            = "info"
	DefaultShutdownTimeout     = 30 * time.Second
	DefaultMetricsEnabled      = true
	DefaultDocsEnabled         = true
	DefaultFeedEnabled         = true
	DefaultStoreDriver         = StoreDriverMemory
	DefaultPostgresAutoMigrate = true
	DefaultKafkaTopic          = "employee-events"
	DefaultAuthMode            = "none"
	DefaultEnvFile             = ".env"
)

// Store drivers.
const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

// Environment variable names.
const (
	EnvFile                = "APP_ENV_FILE"
	EnvServerPort          = "APP_SERVER_PORT"
	EnvLogLevel            = "APP_LOG_LEVEL"
	EnvShutdownTimeout     = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled      = "APP_METRICS_ENABLED"
	EnvDocsEnabled         = "APP_DOCS_ENABLED"
	EnvFeedEnabled         = "APP_FEED_ENABLED"
	EnvLinkBaseURL         = "APP_LINK_BASE_URL"
	EnvStoreDriver         = "APP_STORE_DRIVER"
	EnvPostgresDSN         = "APP_POSTGRES_DSN"
	EnvPostgresAutoMigrate = "APP_POSTGRES_AUTO_MIGRATE"
	EnvSeedDemoData        = "APP_SEED_DEMO_DATA"
	EnvKafkaBrokers        = "APP_KAFKA_BROKERS"
	EnvKafkaTopic          = "APP_KAFKA_TOPIC"
	EnvAuthMode            = "APP_AUTH_MODE"
	EnvBasicAuthUsers      = "APP_BASIC_AUTH_USERS"
	EnvAPIKeys             = "APP_API_KEYS" //nolint:gosec // env var name, not a credential
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
	DocsEnabled     bool
	FeedEnabled     bool

	// LinkBaseURL prefixes hypermedia links; empty keeps them relative.
	LinkBaseURL string

	// Persistence.
	StoreDriver         string
	PostgresDSN         string
	PostgresAutoMigrate bool
	SeedDemoData        bool

	// Change events. No brokers means events stay in process.
	KafkaBrokers []string
	KafkaTopic   string

	// Authentication mode: none, basic, apikey, multi.
	AuthMode string

	// Basic auth settings (format: "user1:bcrypt_hash,user2:bcrypt_hash").
	BasicAuthUsers string

	// API key settings (format: "key1:name1,key2:name2").
	APIKeys string
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidLinkBaseURL     = errors.New("link base URL must be an absolute http(s) URL")
	ErrInvalidStoreDriver     = errors.New("store driver must be one of: memory, postgres")
	ErrMissingPostgresDSN     = errors.New("postgres DSN must be set when store driver is postgres")
	ErrInvalidKafkaTopic      = errors.New("kafka topic must be set when kafka brokers are configured")
	ErrInvalidAuthMode        = errors.New("auth mode must be one of: none, basic, apikey, multi")
	ErrInvalidBasicAuthConfig = errors.New(
		"basic auth users must be set when auth mode is basic",
	)
	ErrInvalidAPIKeyConfig = errors.New(
		"API keys must be set when auth mode is apikey",
	)
	ErrInvalidMultiAuthConfig = errors.New(
		"basic auth users or API keys must be set when auth mode is multi",
	)
)

// Load reads configuration from the dotenv file named by APP_ENV_FILE
// (default ".env") and from environment variables, over defaults.
// Process environment variables win over the dotenv file. A missing
// default dotenv file is ignored.
func Load() (*Config, error) {
	src, err := newSource(os.Getenv(EnvFile))
	if err != nil {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg := Default()

	if err := cfg.loadFrom(src); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ServerPort:          DefaultServerPort,
		LogLevel:            DefaultLogLevel,
		ShutdownTimeout:     DefaultShutdownTimeout,
		MetricsEnabled:      DefaultMetricsEnabled,
		DocsEnabled:         DefaultDocsEnabled,
		FeedEnabled:         DefaultFeedEnabled,
		StoreDriver:         DefaultStoreDriver,
		PostgresAutoMigrate: DefaultPostgresAutoMigrate,
		KafkaTopic:          DefaultKafkaTopic,
		AuthMode:            DefaultAuthMode,
	}
}

// source resolves variables from the process environment first and the
// dotenv file second. Empty values count as unset.
type source struct {
	file map[string]string
}

func newSource(envFile string) (source, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}

	values, err := godotenv.Read(envFile)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return source{}, nil
		}
		return source{}, fmt.Errorf("reading %s: %w", envFile, err)
	}

	return source{file: values}, nil
}

func (s source) get(key string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return s.file[key]
}

func (s source) intVar(key string, dst *int) error {
	if val := s.get(key); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

func (s source) boolVar(key string, dst *bool) error {
	if val := s.get(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

func (s source) durationVar(key string, dst *time.Duration) error {
	if val := s.get(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}

func (s source) stringVar(key string, dst *string) {
	if val := s.get(key); val != "" {
		*dst = val
	}
}

// loadFrom overrides c with the values present in src.
func (c *Config) loadFrom(src source) error {
	if err := c.loadServer(src); err != nil {
		return err
	}

	if err := c.loadStore(src); err != nil {
		return err
	}

	c.loadEvents(src)
	c.loadAuth(src)

	return nil
}

func (c *Config) loadServer(src source) error {
	if err := src.intVar(EnvServerPort, &c.ServerPort); err != nil {
		return err
	}

	src.stringVar(EnvLogLevel, &c.LogLevel)

	if err := src.durationVar(EnvShutdownTimeout, &c.ShutdownTimeout); err != nil {
		return err
	}

	for key, dst := range map[string]*bool{
		EnvMetricsEnabled: &c.MetricsEnabled,
		EnvDocsEnabled:    &c.DocsEnabled,
		EnvFeedEnabled:    &c.FeedEnabled,
	} {
		if err := src.boolVar(key, dst); err != nil {
			return err
		}
	}

	src.stringVar(EnvLinkBaseURL, &c.LinkBaseURL)

	return nil
}

func (c *Config) loadStore(src source) error {
	src.stringVar(EnvStoreDriver, &c.StoreDriver)
	src.stringVar(EnvPostgresDSN, &c.PostgresDSN)

	if err := src.boolVar(EnvPostgresAutoMigrate, &c.PostgresAutoMigrate); err != nil {
		return err
	}

	return src.boolVar(EnvSeedDemoData, &c.SeedDemoData)
}

func (c *Config) loadEvents(src source) {
	if val := src.get(EnvKafkaBrokers); val != "" {
		c.KafkaBrokers = splitList(val)
	}

	src.stringVar(EnvKafkaTopic, &c.KafkaTopic)
}

func (c *Config) loadAuth(src source) {
	src.stringVar(EnvAuthMode, &c.AuthMode)
	src.stringVar(EnvBasicAuthUsers, &c.BasicAuthUsers)
	src.stringVar(EnvAPIKeys, &c.APIKeys)
}

// splitList splits a comma separated list and drops blank items.
func splitList(val string) []string {
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return ErrInvalidKafkaTopic
	}

	return c.validateAuth()
}

func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	if c.LinkBaseURL != "" {
		u, err := url.Parse(c.LinkBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidLinkBaseURL
		}
	}

	return nil
}

func (c *Config) validateStore() error {
	switch c.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if c.PostgresDSN == "" {
			return ErrMissingPostgresDSN
		}
	default:
		return ErrInvalidStoreDriver
	}

	return nil
}

func (c *Config) validateAuth() error {
	switch c.authModeOrDefault() {
	case "none":
	case "basic":
		if c.BasicAuthUsers == "" {
			return ErrInvalidBasicAuthConfig
		}
	case "apikey":
		if c.APIKeys == "" {
			return ErrInvalidAPIKeyConfig
		}
	case "multi":
		if c.BasicAuthUsers == "" && c.APIKeys == "" {
			return ErrInvalidMultiAuthConfig
		}
	default:
		return ErrInvalidAuthMode
	}

	return nil
}

// authModeOrDefault returns the auth mode, defaulting to "none" if empty.
func (c *Config) authModeOrDefault() string {
	if c.AuthMode == "" {
		return DefaultAuthMode
	}
	return c.AuthMode
}

// KafkaEnabled reports whether events are also sent to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
