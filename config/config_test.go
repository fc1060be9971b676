package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() Config {
	cfg := Config{Backend: BackendConfig{URL: "http://backend:8000"}}
	cfg.SetDefaults()
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:   "valid session key",
			mutate: func(c *Config) { c.Server.SessionKey = testSessionKey },
		},
		{
			name:    "missing backend url",
			mutate:  func(c *Config) { c.Backend.URL = "" },
			wantErr: "backend url is required",
		},
		{
			name:    "backend url without scheme",
			mutate:  func(c *Config) { c.Backend.URL = "backend:8000" },
			wantErr: "backend url",
		},
		{
			name:    "backend url without host",
			mutate:  func(c *Config) { c.Backend.URL = "http://" },
			wantErr: "host is required",
		},
		{
			name:    "session key not hex",
			mutate:  func(c *Config) { c.Server.SessionKey = "not-hex" },
			wantErr: "must be hex encoded",
		},
		{
			name:    "session key too short",
			mutate:  func(c *Config) { c.Server.SessionKey = "0011" },
			wantErr: "must decode to 32 bytes",
		},
		{
			name:    "bad victoriametrics url",
			mutate:  func(c *Config) { c.Monitoring.VictoriaMetricsURL = "ftp://vm" },
			wantErr: "victoriametrics_url",
		},
		{
			name: "tls pair",
			mutate: func(c *Config) {
				c.Server.TLSCert = "/etc/clubsignup/cert.pem"
				c.Server.TLSKey = "/etc/clubsignup/key.pem"
			},
		},
		{
			name:    "tls cert without key",
			mutate:  func(c *Config) { c.Server.TLSCert = "/etc/clubsignup/cert.pem" },
			wantErr: "tls_cert and tls_key must be set together",
		},
		{
			name:    "negative idle timeout",
			mutate:  func(c *Config) { c.Server.SessionIdleTimeout = -time.Second },
			wantErr: "session_idle_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateReportsAllProblems(t *testing.T) {
	cfg := Config{Server: ServerConfig{SessionKey: "zz"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend url is required")
	assert.Contains(t, err.Error(), "server addr is required")
	assert.Contains(t, err.Error(), "session_key")
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()

	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionIdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "clubsignup", cfg.Monitoring.MetricsPrefix)
	assert.Equal(t, "clubsignup", cfg.Monitoring.JobName)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.False(t, cfg.Server.InsecureCookies)
	assert.False(t, cfg.Server.TLSEnabled())
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvBackendURL: "http://other:9000",
		EnvListenAddr: "127.0.0.1:9999",
		EnvSessionKey: testSessionKey,
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Config{Backend: BackendConfig{URL: "http://file:8000"}, Server: ServerConfig{Addr: ":1"}}
	cfg.ApplyEnv(lookup)

	assert.Equal(t, "http://other:9000", cfg.Backend.URL)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, testSessionKey, cfg.Server.SessionKey)
}

func TestConfig_ApplyEnvIgnoresEmptyValues(t *testing.T) {
	cfg := Config{Backend: BackendConfig{URL: "http://file:8000"}}
	cfg.ApplyEnv(func(string) (string, bool) { return "", true })
	assert.Equal(t, "http://file:8000", cfg.Backend.URL)
}

func TestConfig_SessionKeyBytes(t *testing.T) {
	cfg := validConfig()
	key, err := cfg.SessionKeyBytes()
	require.NoError(t, err)
	assert.Nil(t, key)

	cfg.Server.SessionKey = testSessionKey
	key, err = cfg.SessionKeyBytes()
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.Equal(t, byte(0x1f), key[31])
}

func TestConfig_Redacted(t *testing.T) {
	cfg := validConfig()
	cfg.Server.SessionKey = testSessionKey

	red := cfg.Redacted()
	assert.Equal(t, "REDACTED", red.Server.SessionKey)
	assert.Equal(t, testSessionKey, cfg.Server.SessionKey, "original is untouched")

	out, err := red.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(out), testSessionKey)
	assert.Contains(t, string(out), "session_key: REDACTED")

	empty := validConfig().Redacted()
	assert.Empty(t, empty.Server.SessionKey)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvListenAddr, "")
	t.Setenv(EnvSessionKey, "")

	path := writeConfig(t, `backend:
  url: http://backend:8000
server:
  addr: ":9090"
  insecure_cookies: true
  session_idle_timeout: 5m
logging:
  level: debug
  format: text
monitoring:
  victoriametrics_url: http://vm:8428
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8000", cfg.Backend.URL)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.InsecureCookies)
	assert.Equal(t, 5*time.Minute, cfg.Server.SessionIdleTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "http://vm:8428", cfg.Monitoring.VictoriaMetricsURL)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv(EnvBackendURL, "http://from-env:8000")
	t.Setenv(EnvListenAddr, "")
	t.Setenv(EnvSessionKey, "")

	cfg, err := LoadConfig(writeConfig(t, "backend:\n  url: http://from-file:8000\n"))
	require.NoError(t, err)
	if cfg.Backend.URL != "http://from-env:8000" {
		t.Errorf("Backend.URL = %v, want %v", cfg.Backend.URL, "http://from-env:8000")
	}
}

func TestLoadConfig_EmptyFileAndNoFile(t *testing.T) {
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvListenAddr, "")
	t.Setenv(EnvSessionKey, "")

	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvSessionKey, "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "backend: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode YAML config")

	_, err = LoadConfig(writeConfig(t, "server:\n  session_key: abc\n"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid config"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLUBSIGNUP_TEST_A=from-file\nCLUBSIGNUP_TEST_B=from-file\n"), 0o600))

	t.Setenv("CLUBSIGNUP_TEST_A", "already-set")
	// Registers cleanup for a variable the file will set.
	t.Setenv("CLUBSIGNUP_TEST_B", "")
	require.NoError(t, os.Unsetenv("CLUBSIGNUP_TEST_B"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "already-set", os.Getenv("CLUBSIGNUP_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("CLUBSIGNUP_TEST_B"))
}
