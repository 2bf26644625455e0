package server

import (
	"time"

	"atscan/internal/ai"
	"atscan/internal/config"
	atscanErrors "atscan/internal/errors"
	"atscan/internal/history"
	"atscan/internal/upload"
)

// AnalyzeResponse is the body returned by the analyze endpoint
type AnalyzeResponse struct {
	Result     any `json:"result"`
	TokenUsage any `json:"tokenUsage,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management
	CertificateManager *CertificateManager

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Domain services shared by all requests
	AIService *ai.Service
	Gate      *upload.Gate
	History   *history.Store

	// Logger
	Logger *atscanErrors.Logger
}

// NewServer creates a new Server instance from the application configuration
func NewServer(appCfg *config.Config, version string, logger *atscanErrors.Logger) (*Server, error) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range appCfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if appCfg.Server.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			appCfg.Server.RateLimit.RequestsPerMin,
			appCfg.Server.RateLimit.Window,
			appCfg.Server.RateLimit.BurstCapacity,
			logger,
		)
	}

	aiService, err := ai.NewService(&appCfg.AI, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		AppConfig:      appCfg,
		TLSConfig:      appCfg.Server.TLS,
		APIKeys:        apiKeyMap,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.Server.MaxRequestSize,
		RateLimit:      &appCfg.Server.RateLimit,
		RateLimiter:    rateLimiter,
		AIService:      aiService,
		Gate:           appCfg.UploadGate(),
		History:        history.NewStore(appCfg.History.Dir, logger),
		Logger:         logger,
	}, nil
}
