package generation

import (
	"fmt"
	"os"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Config selects and configures the image API client
type Config struct {
	Provider   string `yaml:"provider"`
	APIKeyEnv  string `yaml:"apiKeyEnv"`
	BaseURL    string `yaml:"baseURL"`
	ImageModel string `yaml:"imageModel"`
	TextModel  string `yaml:"textModel"`
	// ImageSize is passed to providers that accept an explicit size, e.g. "1024x1536"
	ImageSize     string    `yaml:"imageSize"`
	MockImageSize int       `yaml:"mockImageSize"`
	Templates     Templates `yaml:"templates"`

	// APIKey is resolved from APIKeyEnv at load time and never read from YAML
	APIKey string `yaml:"-"`
}

// ApplyDefaults fills unset fields with provider specific defaults
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderMock
	}
	switch c.Provider {
	case ProviderGemini:
		if c.APIKeyEnv == "" {
			c.APIKeyEnv = "GEMINI_API_KEY"
		}
		if c.ImageModel == "" {
			c.ImageModel = "gemini-2.5-flash-image"
		}
		if c.TextModel == "" {
			c.TextModel = "gemini-2.5-flash"
		}
	case ProviderOpenAI:
		if c.APIKeyEnv == "" {
			c.APIKeyEnv = "OPENAI_API_KEY"
		}
		if c.ImageModel == "" {
			c.ImageModel = "gpt-image-1"
		}
		if c.TextModel == "" {
			c.TextModel = "gpt-4o-mini"
		}
	}
	if c.MockImageSize <= 0 {
		c.MockImageSize = 256
	}
	c.Templates.applyDefaults()
}

// ResolveAPIKey reads the API key from the configured environment variable
func (c *Config) ResolveAPIKey() {
	if c.APIKeyEnv != "" {
		c.APIKey = os.Getenv(c.APIKeyEnv)
	}
}

// Validate checks the provider and that hosted providers have a key
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
		return nil
	case ProviderGemini, ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("%s provider requires an API key in $%s", c.Provider, c.APIKeyEnv)
		}
		return nil
	}
	return fmt.Errorf("unsupported generator provider: %s", c.Provider)
}
