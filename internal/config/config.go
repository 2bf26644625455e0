package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"atscan/internal/types"
	"atscan/internal/upload"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API key precedence order:
// 1. Vault (if configured) - highest priority
// 2. Config file values
// 3. Environment variables (ATSCAN_AI_APIKEY, GEMINI_API_KEY)
// 4. Default values - lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Upload        UploadConfig        `mapstructure:"upload"`
	History       HistoryConfig       `mapstructure:"history"`
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds the analysis service configuration
type AIConfig struct {
	Provider          string               `mapstructure:"provider"`
	Model             string               `mapstructure:"model"`
	Timeout           time.Duration        `mapstructure:"timeout"`
	APIKey            string               `mapstructure:"apiKey"`
	MaxRetries        int                  `mapstructure:"maxRetries"`
	Temperature       float32              `mapstructure:"temperature"`
	SystemInstruction string               `mapstructure:"systemInstruction"` // override for the built-in analysis instruction
	CircuitBreaker    CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// UploadConfig holds the upload gate policy
type UploadConfig struct {
	MaxFileSizeBytes int64    `mapstructure:"maxFileSizeBytes"`
	AllowedTypes     []string `mapstructure:"allowedTypes"`
}

// HistoryConfig holds history store configuration
type HistoryConfig struct {
	Dir string `mapstructure:"dir"` // directory holding the durable history record
}

// AppConfig holds application-level configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	Language         string   `mapstructure:"language"` // default output language: en or ar
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxRequestSize int64         `mapstructure:"maxRequestSize"`

	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds request rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	Window         time.Duration `mapstructure:"window"`
	ByAPIKey       bool          `mapstructure:"byApiKey"`
	ByIP           bool          `mapstructure:"byIp"`
}

// ObservabilityConfig holds tracing and metrics configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	ConsoleOutput   bool             `mapstructure:"consoleOutput"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Console         ConsoleConfig    `mapstructure:"console"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	HealthCheck     HealthCheck      `mapstructure:"healthCheck"`
}

// ConsoleConfig holds console exporter options
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	Insecure bool          `mapstructure:"insecure"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PrometheusConfig holds Prometheus exporter configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// MetricsConfig holds metric collection options
type MetricsConfig struct {
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// HealthCheck holds health check options
type HealthCheck struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from defaults, config file and environment
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ATSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/atscan/")
	v.AddConfigPath("$HOME/.atscan")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyFallbacks applies environment variable fallbacks and derived defaults
func (c *Config) applyFallbacks() {
	// Legacy Gemini key support, lower priority than the viper-bound key
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("ATSCAN_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = strings.Split(apiKeysEnv, ",")
			for i, key := range c.Server.APIKeys {
				c.Server.APIKeys[i] = strings.TrimSpace(key)
			}
		}
	}

	if c.History.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.History.Dir = filepath.Join(home, ".atscan", "history")
		} else {
			c.History.Dir = filepath.Join(".", ".atscan", "history")
		}
	}

	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}

	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-%s", c.Observability.ServiceName, hostname)
		} else {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-1", c.Observability.ServiceName)
		}
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.AI.Provider != "gemini" {
		return fmt.Errorf("unsupported AI provider: %s", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI model must be set")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive, got %v", c.AI.Timeout)
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("AI maxRetries must not be negative, got %d", c.AI.MaxRetries)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("AI temperature must be in [0, 2], got %f", c.AI.Temperature)
	}

	if c.Upload.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("upload maxFileSizeBytes must be positive, got %d", c.Upload.MaxFileSizeBytes)
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("upload allowedTypes must not be empty")
	}

	if lang := types.Language(c.App.Language); !lang.Valid() {
		return fmt.Errorf("unsupported language: %s (must be 'en' or 'ar')", c.App.Language)
	}

	switch c.App.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.App.LogLevel)
	}

	return c.ValidateTLSConfig()
}

// Language returns the configured default output language
func (c *Config) Language() types.Language {
	return types.Language(c.App.Language)
}

// UploadGate builds the upload gate from the configured policy
func (c *Config) UploadGate() *upload.Gate {
	return upload.NewGate(c.Upload.MaxFileSizeBytes, c.Upload.AllowedTypes)
}
