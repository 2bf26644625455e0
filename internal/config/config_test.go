package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestConfig(t *testing.T) *Config {
	t.Helper()

	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	cfg.applyFallbacks()
	return &cfg
}

func TestDefaultsProduceValidConfig(t *testing.T) {
	cfg := defaultTestConfig(t)

	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 0.001)
	assert.Equal(t, int64(5242880), cfg.Upload.MaxFileSizeBytes)
	assert.Equal(t, []string{
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}, cfg.Upload.AllowedTypes)
	assert.Equal(t, "en", cfg.App.Language)
	assert.NotEmpty(t, cfg.History.Dir)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unsupported provider",
			mutate:  func(c *Config) { c.AI.Provider = "openai" },
			wantErr: "unsupported AI provider",
		},
		{
			name:    "missing model",
			mutate:  func(c *Config) { c.AI.Model = "" },
			wantErr: "AI model must be set",
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.AI.Timeout = 0 },
			wantErr: "AI timeout must be positive",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.AI.MaxRetries = -1 },
			wantErr: "maxRetries must not be negative",
		},
		{
			name:    "zero upload cap",
			mutate:  func(c *Config) { c.Upload.MaxFileSizeBytes = 0 },
			wantErr: "maxFileSizeBytes must be positive",
		},
		{
			name:    "empty allow list",
			mutate:  func(c *Config) { c.Upload.AllowedTypes = nil },
			wantErr: "allowedTypes must not be empty",
		},
		{
			name:    "unsupported language",
			mutate:  func(c *Config) { c.App.Language = "fr" },
			wantErr: "unsupported language",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.App.LogLevel = "trace" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name    string
		tls     TLSConfig
		wantErr string
	}{
		{
			name: "disabled mode needs nothing",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name:    "server mode requires cert and key",
			tls:     TLSConfig{Mode: "server"},
			wantErr: "certificate and key files are required",
		},
		{
			name: "server mode with cert and key",
			tls:  TLSConfig{Mode: "server", CertFile: "cert.pem", KeyFile: "key.pem"},
		},
		{
			name:    "mutual mode requires CA",
			tls:     TLSConfig{Mode: "mutual", CertFile: "cert.pem", KeyFile: "key.pem"},
			wantErr: "CA certificate file is required",
		},
		{
			name: "mutual mode complete",
			tls:  TLSConfig{Mode: "mutual", CertFile: "cert.pem", KeyFile: "key.pem", CAFile: "ca.pem"},
		},
		{
			name:    "invalid mode",
			tls:     TLSConfig{Mode: "tls13"},
			wantErr: "invalid TLS mode",
		},
		{
			name:    "invalid client auth policy",
			tls:     TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k", CAFile: "ca", ClientAuthPolicy: "maybe"},
			wantErr: "invalid clientAuthPolicy",
		},
		{
			name:    "invalid min version",
			tls:     TLSConfig{Mode: "disabled", MinVersion: "1.1"},
			wantErr: "invalid TLS minVersion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestConfig(t)
			cfg.Server.TLS = tt.tls

			err := cfg.ValidateTLSConfig()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMutualModeDefaultsClientAuthPolicy(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.Server.TLS = TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k", CAFile: "ca"}
	cfg.applyFallbacks()

	assert.Equal(t, "require", cfg.Server.TLS.ClientAuthPolicy)
	assert.Equal(t, "1.2", cfg.Server.TLS.MinVersion)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "AIza****5678", maskSecret("AIzaSomeLongKey5678"))
}
