package commerce

import "errors"

// Config holds connection settings for the commerce platform's admin API
type Config struct {
	// BaseURL is the root URL of the admin API, e.g. https://commerce.internal
	BaseURL string
	// APIToken is the bearer token used to authenticate admin requests
	APIToken string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Errors for commerce client configuration
var (
	ErrConfigMissingBaseURL = errors.New("commerce: base URL is required")
)

// NewConfig creates a new commerce client configuration with defaults
func NewConfig(baseURL, apiToken string) *Config {
	return &Config{
		BaseURL:        baseURL,
		APIToken:       apiToken,
		TimeoutSeconds: 10,
	}
}

// Validate validates the commerce client configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}
