package gemini

import (
	"errors"
	"time"

	"google.golang.org/genai"
)

// Validation errors for StreamConfig.
var (
	ErrMissingAPIKey   = errors.New("gemini API key cannot be empty")
	ErrMissingModel    = errors.New("gemini model cannot be empty")
	ErrMissingEndpoint = errors.New("gemini endpoint cannot be empty")
	ErrInvalidRetries  = errors.New("max retries cannot be negative")
	ErrInvalidBackoff  = errors.New("backoff max must be positive when backoff base is set")
)

// StreamConfig holds the parameters controlling streaming behaviour. It is
// immutable from the Streamer's point of view: each attempt works on a copy
// with the selected endpoint filled in.
type StreamConfig struct {
	APIKey string
	Model  string

	// Endpoint is the primary streaming endpoint. FallbackEndpoints are
	// tried in order when attempts against earlier endpoints fail.
	Endpoint          string
	FallbackEndpoints []string

	RequestTimeout    time.Duration
	HeartbeatInterval time.Duration

	// MaxRetries bounds the number of retries after the initial attempt,
	// so up to MaxRetries+1 attempts are made in total.
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// Validate checks that the config can drive at least one attempt.
func (c StreamConfig) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return ErrMissingModel
	}
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if c.MaxRetries < 0 {
		return ErrInvalidRetries
	}
	// A zero cap with a non-zero base would let retry delays double
	// without bound.
	if c.BackoffBase > 0 && c.BackoffMax <= 0 {
		return ErrInvalidBackoff
	}
	return nil
}

// Endpoints returns the ordered endpoint list: primary first, then the
// configured fallbacks.
func (c StreamConfig) Endpoints() []string {
	endpoints := make([]string, 0, 1+len(c.FallbackEndpoints))
	endpoints = append(endpoints, c.Endpoint)
	endpoints = append(endpoints, c.FallbackEndpoints...)
	return endpoints
}

// EndpointFor selects the endpoint for the given 0-based attempt index.
// Attempts walk forward through the fallback list and saturate at the last
// configured endpoint once fallbacks are exhausted.
func (c StreamConfig) EndpointFor(attempt int) string {
	endpoints := c.Endpoints()
	if attempt >= len(endpoints) {
		attempt = len(endpoints) - 1
	}
	return endpoints[attempt]
}

// GenerateRequest represents one streaming generation request. It is never
// mutated after construction.
type GenerateRequest struct {
	Contents          []*genai.Content
	SystemInstruction string
	Tools             []*genai.Tool
	ToolConfig        *genai.ToolConfig
	SafetySettings    []*genai.SafetySetting

	// GenerationConfig carries optional generation parameters such as
	// temperature and token limits. Fields derived from the request
	// (system instruction, tools, safety settings) take precedence over
	// the corresponding fields here.
	GenerationConfig *genai.GenerateContentConfig

	// Timeout overrides StreamConfig.RequestTimeout for this request
	// when non-zero.
	Timeout time.Duration
}
