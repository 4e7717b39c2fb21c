package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rodexhq/rodex-api/internal/platform/gemini"
)

// Environment variables recognized by LoadGeminiEnvironment. All but the
// API key override the corresponding project settings default.
const (
	envGeminiAPIKey            = "GEMINI_API_KEY"
	envGeminiModel             = "GEMINI_MODEL"
	envGeminiStreamEndpoint    = "GEMINI_STREAM_ENDPOINT"
	envGeminiFallbackEndpoints = "GEMINI_FALLBACK_ENDPOINTS"
	envGeminiRequestTimeout    = "GEMINI_REQUEST_TIMEOUT"
	envGeminiHeartbeatInterval = "GEMINI_HEARTBEAT_INTERVAL"
	envGeminiMaxRetries        = "GEMINI_MAX_RETRIES"
	envGeminiBackoffBase       = "GEMINI_BACKOFF_BASE"
	envGeminiBackoffMax        = "GEMINI_BACKOFF_MAX"
)

// GeminiEnvironment resolves runtime Gemini configuration from environment
// variables. Nil override fields mean the variable was not set and the
// project settings default applies. Durations are expressed in seconds in
// the environment.
type GeminiEnvironment struct {
	APIKey            string
	Model             string
	Endpoint          string
	FallbackEndpoints *[]string
	RequestTimeout    *time.Duration
	HeartbeatInterval *time.Duration
	MaxRetries        *int
	BackoffBase       *time.Duration
	BackoffMax        *time.Duration
}

// LoadGeminiEnvironment reads GEMINI_* environment variables.
// Returns an error when a numeric override cannot be parsed.
func LoadGeminiEnvironment() (*GeminiEnvironment, error) {
	v := viper.New()
	// An empty GEMINI_FALLBACK_ENDPOINTS must count as an explicit override
	// that clears the defaults, so empty env values stay visible.
	v.AllowEmptyEnv(true)
	keys := map[string]string{
		"api_key":            envGeminiAPIKey,
		"model":              envGeminiModel,
		"endpoint":           envGeminiStreamEndpoint,
		"fallback_endpoints": envGeminiFallbackEndpoints,
		"request_timeout":    envGeminiRequestTimeout,
		"heartbeat_interval": envGeminiHeartbeatInterval,
		"max_retries":        envGeminiMaxRetries,
		"backoff_base":       envGeminiBackoffBase,
		"backoff_max":        envGeminiBackoffMax,
	}
	for key, envVar := range keys {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", envVar, err)
		}
	}

	env := &GeminiEnvironment{
		APIKey:   v.GetString("api_key"),
		Model:    v.GetString("model"),
		Endpoint: v.GetString("endpoint"),
	}

	if v.IsSet("fallback_endpoints") {
		endpoints := splitCSV(v.GetString("fallback_endpoints"))
		env.FallbackEndpoints = &endpoints
	}

	var err error
	if env.RequestTimeout, err = secondsOverride(v, "request_timeout", envGeminiRequestTimeout); err != nil {
		return nil, err
	}
	if env.HeartbeatInterval, err = secondsOverride(v, "heartbeat_interval", envGeminiHeartbeatInterval); err != nil {
		return nil, err
	}
	if env.BackoffBase, err = secondsOverride(v, "backoff_base", envGeminiBackoffBase); err != nil {
		return nil, err
	}
	if env.BackoffMax, err = secondsOverride(v, "backoff_max", envGeminiBackoffMax); err != nil {
		return nil, err
	}

	if v.IsSet("max_retries") {
		retries, err := strconv.Atoi(strings.TrimSpace(v.GetString("max_retries")))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envGeminiMaxRetries, err)
		}
		env.MaxRetries = &retries
	}

	return env, nil
}

// BuildStreamConfig combines environment overrides with project defaults.
// The returned config is fully validated.
func (e *GeminiEnvironment) BuildStreamConfig(settings *ProjectSettings) (gemini.StreamConfig, error) {
	defaults := settings.Gemini

	cfg := gemini.StreamConfig{
		APIKey:            e.APIKey,
		Model:             defaults.Model,
		Endpoint:          defaults.PrimaryEndpoint,
		FallbackEndpoints: append([]string(nil), defaults.FallbackEndpoints...),
		RequestTimeout:    secondsToDuration(defaults.RequestTimeoutSeconds),
		HeartbeatInterval: secondsToDuration(defaults.HeartbeatIntervalSeconds),
		MaxRetries:        defaults.MaxRetries,
		BackoffBase:       secondsToDuration(defaults.Backoff.Factor),
		BackoffMax:        secondsToDuration(defaults.Backoff.MaxDelaySeconds),
	}

	if e.Model != "" {
		cfg.Model = e.Model
	}
	if e.Endpoint != "" {
		cfg.Endpoint = e.Endpoint
	}
	if e.FallbackEndpoints != nil {
		cfg.FallbackEndpoints = append([]string(nil), (*e.FallbackEndpoints)...)
	}
	if e.RequestTimeout != nil {
		cfg.RequestTimeout = *e.RequestTimeout
	}
	if e.HeartbeatInterval != nil {
		cfg.HeartbeatInterval = *e.HeartbeatInterval
	}
	if e.MaxRetries != nil {
		cfg.MaxRetries = *e.MaxRetries
	}
	if e.BackoffBase != nil {
		cfg.BackoffBase = *e.BackoffBase
	}
	if e.BackoffMax != nil {
		cfg.BackoffMax = *e.BackoffMax
	}

	if err := cfg.Validate(); err != nil {
		return gemini.StreamConfig{}, fmt.Errorf("resolved gemini config is invalid: %w", err)
	}
	return cfg, nil
}

func secondsOverride(v *viper.Viper, key, envVar string) (*time.Duration, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envVar, err)
	}
	d := secondsToDuration(seconds)
	return &d, nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func splitCSV(value string) []string {
	parts := []string{}
	for _, segment := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(segment); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
