// Package config loads the clubsignup YAML configuration shared by the
// terminal client and the web front.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nomis52/clubsignup/logging"
)

const (
	// Default backend settings
	defaultBackendURL = "http://localhost:8000"

	// Default web front settings
	defaultListenAddr         = ":8080"
	defaultSessionIdleTimeout = 30 * time.Minute
	defaultShutdownTimeout    = 10 * time.Second

	// Default monitoring settings
	defaultMetricsPrefix = "clubsignup"
	defaultJobName       = "clubsignup"

	// Default logging settings
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
	defaultLogOutput = "stdout"

	// sessionKeyLen is the length of the decoded session key in bytes.
	sessionKeyLen = 32

	redacted = "REDACTED"
)

// Environment variables that override file settings.
const (
	EnvBackendURL = "CLUBSIGNUP_BACKEND_URL"
	EnvListenAddr = "CLUBSIGNUP_LISTEN_ADDR"
	EnvSessionKey = "CLUBSIGNUP_SESSION_KEY"
)

// Config represents the complete application configuration
type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Server     ServerConfig     `yaml:"server"`
	Logging    logging.Config   `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// BackendConfig locates the activity backend.
type BackendConfig struct {
	// URL is the base URL the /activities endpoints live under.
	URL string `yaml:"url"`
}

// ServerConfig holds the web front settings.
type ServerConfig struct {
	// The listen address, defaults to :8080
	Addr string `yaml:"addr"`

	// SessionKey is a hex encoded 32 byte key used to sign CSRF cookies.
	// A random key is generated at startup when empty.
	SessionKey string `yaml:"session_key"`

	// InsecureCookies drops the Secure flag so the front works over plain HTTP.
	InsecureCookies bool `yaml:"insecure_cookies"`

	// SessionIdleTimeout is how long an unused browser session is kept.
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TLSCert and TLSKey enable HTTPS. Both or neither must be set; the pair
	// is re-read when the files change.
	TLSCert string `yaml:"tls_cert"`
	TLSKey  string `yaml:"tls_key"`
}

// TLSEnabled reports whether a certificate pair is configured.
func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCert != "" && s.TLSKey != ""
}

// MonitoringConfig holds metrics and monitoring settings
type MonitoringConfig struct {
	// VictoriaMetricsURL enables pushing metrics from the terminal client.
	VictoriaMetricsURL string `yaml:"victoriametrics_url"`
	MetricsPrefix      string `yaml:"metrics_prefix"`
	JobName            string `yaml:"jobname"`
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.URL == "" {
		errs = append(errs, fmt.Errorf("backend url is required"))
	} else if err := validateHTTPURL(c.Backend.URL); err != nil {
		errs = append(errs, fmt.Errorf("backend url: %w", err))
	}

	if c.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("server addr is required"))
	}
	if c.Server.SessionKey != "" {
		if _, err := decodeSessionKey(c.Server.SessionKey); err != nil {
			errs = append(errs, fmt.Errorf("server session_key: %w", err))
		}
	}
	if c.Server.SessionIdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("server session_idle_timeout must not be negative"))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server shutdown_timeout must not be negative"))
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		errs = append(errs, fmt.Errorf("server tls_cert and tls_key must be set together"))
	}

	if c.Monitoring.VictoriaMetricsURL != "" {
		if err := validateHTTPURL(c.Monitoring.VictoriaMetricsURL); err != nil {
			errs = append(errs, fmt.Errorf("monitoring victoriametrics_url: %w", err))
		}
	}

	return errors.Join(errs...)
}

// SetDefaults sets reasonable default values for optional fields
func (c *Config) SetDefaults() {
	if c.Backend.URL == "" {
		c.Backend.URL = defaultBackendURL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultListenAddr
	}
	if c.Server.SessionIdleTimeout == 0 {
		c.Server.SessionIdleTimeout = defaultSessionIdleTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Monitoring.MetricsPrefix == "" {
		c.Monitoring.MetricsPrefix = defaultMetricsPrefix
	}
	if c.Monitoring.JobName == "" {
		c.Monitoring.JobName = defaultJobName
	}
	// Set logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = defaultLogOutput
	}
}

// ApplyEnv overrides file settings with the CLUBSIGNUP_* environment
// variables that lookup reports as set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBackendURL); ok && v != "" {
		c.Backend.URL = v
	}
	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvSessionKey); ok && v != "" {
		c.Server.SessionKey = v
	}
}

// SessionKeyBytes returns the decoded session key, or nil when none is set.
func (c *Config) SessionKeyBytes() ([]byte, error) {
	if c.Server.SessionKey == "" {
		return nil, nil
	}
	return decodeSessionKey(c.Server.SessionKey)
}

// Redacted returns a copy safe to display, with secrets masked.
func (c Config) Redacted() Config {
	if c.Server.SessionKey != "" {
		c.Server.SessionKey = redacted
	}
	return c
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment. Missing files are skipped and variables that are already set
// keep their values.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig reads the YAML config file at path, applies environment
// overrides and defaults, and validates the result. An empty path skips the
// file and starts from defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode YAML config: %w", err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Marshal encodes the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func decodeSessionKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("must be hex encoded: %w", err)
	}
	if len(key) != sessionKeyLen {
		return nil, fmt.Errorf("must decode to %d bytes, got %d", sessionKeyLen, len(key))
	}
	return key, nil
}
