package config

import (
	"time"

	"atscan/internal/upload"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI configuration
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 2)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.systemInstruction", "")

	// Circuit breaker
	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 5)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	// Upload gate policy
	v.SetDefault("upload.maxFileSizeBytes", upload.DefaultMaxFileSizeBytes)
	v.SetDefault("upload.allowedTypes", upload.DefaultAllowedMimeTypes)

	// History store
	v.SetDefault("history.dir", "")

	// Application
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.language", "en")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})

	// Server
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 8*1024*1024) // upload cap plus multipart overhead
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.requestsPerMin", 30)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.window", time.Minute)
	v.SetDefault("server.rateLimit.byApiKey", true)
	v.SetDefault("server.rateLimit.byIp", true)

	// Vault
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.secrets.geminiKey", "secret/data/atscan/gemini")
	v.SetDefault("vault.secrets.apiKeys", "secret/data/atscan/api-keys")

	// Observability
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "atscan")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.console.prettyPrint", false)
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.timeout", 10*time.Second)
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.metrics.collectionInterval", 30*time.Second)
	v.SetDefault("observability.healthCheck.timeout", 10*time.Second)
}
