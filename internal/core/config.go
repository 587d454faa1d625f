package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/juceldev/ColoringBook/internal/generation"
	"github.com/juceldev/ColoringBook/internal/history"
	"github.com/juceldev/ColoringBook/internal/imageprocessing"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config.yaml"
	MaxCount          = 10
	// MemoryDSN keeps the sqlite history for the lifetime of the process only
	MemoryDSN         = ":memory:"
)

// Option adjusts a configuration after it is read and before defaults are applied
type Option func(*ServiceConfig)

// WithSQLiteDSN sets the sqlite connection string used when the configuration names none
func WithSQLiteDSN(dsn string) Option {
	return func(c *ServiceConfig) {
		if c.Database.Type != "" && c.Database.Type != history.TypeSQLite {
			return
		}
		if c.Database.ConnectionString == "" {
			c.Database.ConnectionString = dsn
		}
	}
}

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

type History struct {
	Limit int `yaml:"limit"`
}

// Generation holds the request level limits
type Generation struct {
	DefaultCount   int           `yaml:"defaultCount"`
	MaxPromptRunes int           `yaml:"maxPromptRunes"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	NicheCount     int           `yaml:"nicheCount"`
	ThumbnailWidth int           `yaml:"thumbnailWidth"`
}

type ServiceConfig struct {
	Port       int               `yaml:"port"`
	Database   Database          `yaml:"database"`
	History    History           `yaml:"history"`
	Generator  generation.Config `yaml:"generator"`
	Generation Generation        `yaml:"generation"`
	// OriginalCommands post-process every illustration before it is shown
	OriginalCommands []imageprocessing.CommandConfig `yaml:"originalCommands"`
	// ColoringCommands post-process every coloring page before it is shown
	ColoringCommands []imageprocessing.CommandConfig `yaml:"coloringCommands"`
}

// ConfigPath returns $CONFIG_PATH or the default path
func ConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return DefaultConfigPath
}

// LoadEnv loads a .env file from the working directory if there is one
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading .env file: %w", err)
	}
	slog.Debug("loaded environment from .env")
	return nil
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string, opts ...Option) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config, err := ParseConfig(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return config, nil
}

// ParseConfig parses YAML, applies defaults, resolves the API key and validates the result
func ParseConfig(data []byte, opts ...Option) (*ServiceConfig, error) {
	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	for _, opt := range opts {
		opt(&config)
	}
	config.ApplyDefaults()
	config.Generator.ResolveAPIKey()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns a configuration that runs offline with the mock generator
func DefaultConfig(opts ...Option) *ServiceConfig {
	config := &ServiceConfig{}
	for _, opt := range opts {
		opt(config)
	}
	config.ApplyDefaults()
	return config
}

func (c *ServiceConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Database.Type == "" {
		c.Database.Type = history.TypeSQLite
	}
	if c.Database.Type == history.TypeSQLite && c.Database.ConnectionString == "" {
		c.Database.ConnectionString = MemoryDSN
	}
	if c.History.Limit == 0 {
		c.History.Limit = history.DefaultLimit
	}
	if c.Generation.DefaultCount == 0 {
		c.Generation.DefaultCount = 1
	}
	if c.Generation.MaxPromptRunes == 0 {
		c.Generation.MaxPromptRunes = 1000
	}
	if c.Generation.RequestTimeout == 0 {
		c.Generation.RequestTimeout = 2 * time.Minute
	}
	if c.Generation.NicheCount == 0 {
		c.Generation.NicheCount = 8
	}
	if c.Generation.ThumbnailWidth == 0 {
		c.Generation.ThumbnailWidth = 256
	}
	// an explicit empty list in the file keeps the provider bytes untouched
	if c.OriginalCommands == nil {
		c.OriginalCommands = defaultCommands()
	}
	if c.ColoringCommands == nil {
		c.ColoringCommands = defaultCommands()
	}
	c.Generator.ApplyDefaults()
}

// defaultCommands normalizes whatever format the provider answers with to PNG
func defaultCommands() []imageprocessing.CommandConfig {
	return []imageprocessing.CommandConfig{{Name: "PngConverterCommand"}}
}

func (c *ServiceConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history limit must be positive, got %d", c.History.Limit)
	}
	if c.Generation.DefaultCount < 1 || c.Generation.DefaultCount > MaxCount {
		return fmt.Errorf("default count must be between 1 and %d, got %d", MaxCount, c.Generation.DefaultCount)
	}
	if c.Generation.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	if c.Generation.ThumbnailWidth < 1 {
		return fmt.Errorf("thumbnail width must be positive, got %d", c.Generation.ThumbnailWidth)
	}
	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if err := c.Generator.Templates.Validate(); err != nil {
		return err
	}
	if err := validateCommands(c.OriginalCommands); err != nil {
		return fmt.Errorf("invalid originalCommands: %w", err)
	}
	if err := validateCommands(c.ColoringCommands); err != nil {
		return fmt.Errorf("invalid coloringCommands: %w", err)
	}
	return nil
}

// validateCommands ensures all command configurations have required fields
func validateCommands(commands []imageprocessing.CommandConfig) error {
	seenNames := make(map[string]bool)

	for i, cmd := range commands {
		if cmd.Name == "" {
			return fmt.Errorf("command at index %d has empty name", i)
		}
		if !imageprocessing.DefaultRegistry.IsRegistered(cmd.Name) {
			return fmt.Errorf("unknown command %q at index %d (available: %s)",
				cmd.Name, i, strings.Join(imageprocessing.DefaultRegistry.GetRegisteredNames(), ", "))
		}
		if seenNames[cmd.Name] {
			return fmt.Errorf("duplicate command name: %s", cmd.Name)
		}
		seenNames[cmd.Name] = true
	}

	return nil
}
