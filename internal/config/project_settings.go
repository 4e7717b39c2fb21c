package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// DefaultProjectSettingsPath is where deployments place the project
// settings manifest. When the file is absent the embedded defaults are used.
const DefaultProjectSettingsPath = "configs/project_settings.json"

//go:embed project_settings.json
var embeddedProjectSettings []byte

// BackoffSettings holds backoff parameters for Gemini retry handling.
type BackoffSettings struct {
	Factor          float64 `json:"factor"            validate:"gt=0"`
	MaxDelaySeconds float64 `json:"max_delay_seconds" validate:"gt=0"`
}

// GeminiSettings holds Gemini deployment defaults sourced from project settings.
type GeminiSettings struct {
	Model                    string          `json:"model"                      validate:"required"`
	PrimaryEndpoint          string          `json:"primary_endpoint"           validate:"required"`
	FallbackEndpoints        []string        `json:"fallback_endpoints"`
	RequestTimeoutSeconds    float64         `json:"request_timeout_seconds"    validate:"gt=0"`
	HeartbeatIntervalSeconds float64         `json:"heartbeat_interval_seconds" validate:"gte=0"`
	MaxRetries               int             `json:"max_retries"                validate:"gte=0"`
	Backoff                  BackoffSettings `json:"backoff"`
}

// RuntimeSettings holds compute runtime metadata for the deployment.
type RuntimeSettings struct {
	Provider string `json:"provider" validate:"required"`
	Product  string `json:"product"  validate:"required"`
	Region   string `json:"region"   validate:"required"`
}

// DeploymentSettings holds deployment metadata for the current settings snapshot.
type DeploymentSettings struct {
	Name                 string            `json:"name"        validate:"required"`
	Slug                 string            `json:"slug"        validate:"required"`
	Environment          string            `json:"environment" validate:"required"`
	Description          string            `json:"description"`
	Runtime              RuntimeSettings   `json:"runtime"`
	Features             []string          `json:"features"`
	EnvironmentVariables map[string]string `json:"environment_variables"`
}

// ProjectSettings is the structured representation of the
// project_settings.json manifest.
type ProjectSettings struct {
	Version       string             `json:"version"    validate:"required"`
	UpdatedAt     string             `json:"updated_at" validate:"required"`
	Source        map[string]any     `json:"source"`
	Deployment    DeploymentSettings `json:"deployment"`
	Gemini        GeminiSettings     `json:"gemini"`
	Observability map[string]any     `json:"observability"`
}

// LoadProjectSettings loads project settings from the given path. An empty
// path falls back to DefaultProjectSettingsPath when that file exists, and
// to the embedded defaults otherwise.
func LoadProjectSettings(path string) (*ProjectSettings, error) {
	var payload []byte

	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("project settings file not found: %s: %w", path, err)
		}
		payload = data
	case fileExists(DefaultProjectSettingsPath):
		data, err := os.ReadFile(DefaultProjectSettingsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read project settings: %w", err)
		}
		payload = data
	default:
		payload = embeddedProjectSettings
	}

	return parseProjectSettings(payload)
}

func parseProjectSettings(payload []byte) (*ProjectSettings, error) {
	// Start from the defaulted structure so fields absent from the
	// manifest keep their documented defaults.
	settings := ProjectSettings{
		Gemini: GeminiSettings{
			RequestTimeoutSeconds:    45.0,
			HeartbeatIntervalSeconds: 10.0,
			MaxRetries:               4,
			Backoff: BackoffSettings{
				Factor:          1.5,
				MaxDelaySeconds: 60.0,
			},
		},
	}

	if err := json.Unmarshal(payload, &settings); err != nil {
		return nil, fmt.Errorf("invalid JSON in project settings: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(settings); err != nil {
		return nil, fmt.Errorf("project settings validation failed: %w", err)
	}

	return &settings, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
