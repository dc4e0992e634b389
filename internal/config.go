package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/dotlint/internal/discovery"
	"github.com/starford/dotlint/internal/tokens"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// MaxWorkers bounds app.workers.
const MaxWorkers = 64

// Config represents the application configuration. Environment overrides
// follow the Go field names, e.g. DOTLINT_APP_LOG_LEVEL or
// DOTLINT_VALIDATION_EXCLUDE_DIRS.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Validation ValidateConfig    `yaml:"validate"`
	Links      LinksConfig       `yaml:"links"`
	History    HistoryConfig     `yaml:"history"`
	HTTP       HTTPConfig        `yaml:"http"`
	Auth       AuthConfig        `yaml:"auth"`
	Tokens     TokensConfig      `yaml:"tokens"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Validation.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := c.Tokens.Validate(); err != nil {
		return fmt.Errorf("tokens: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" split_words:"true"`
	Workers  int        `yaml:"workers"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(MaxWorkers)),
	)
}

// ValidateConfig controls discovery.
type ValidateConfig struct {
	Root        string   `yaml:"root"`
	ExcludeDirs []string `yaml:"exclude_dirs" split_words:"true"`
	Exclude     []string `yaml:"exclude"`
	RuleDirs    []string `yaml:"rule_dirs" split_words:"true"`
	AgentDirs   []string `yaml:"agent_dirs" split_words:"true"`
	CommandDirs []string `yaml:"command_dirs" split_words:"true"`
	// LenientJSON lists globs of JSON files that may carry comments and
	// trailing commas.
	LenientJSON []string `yaml:"lenient_json" split_words:"true"`
}

// Discovery converts the section into discovery options.
func (c *ValidateConfig) Discovery() discovery.Options {
	return discovery.Options{
		ExcludeDirs: c.ExcludeDirs,
		Exclude:     c.Exclude,
		RuleDirs:    c.RuleDirs,
		AgentDirs:   c.AgentDirs,
		CommandDirs: c.CommandDirs,
	}
}

// Validate validates the discovery configuration.
func (c *ValidateConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	); err != nil {
		return err
	}
	return c.Discovery().Validate()
}

// LinksConfig controls the link checker.
type LinksConfig struct {
	CheckAnchors bool `yaml:"check_anchors" split_words:"true"`
}

// HistoryConfig holds the run history database configuration.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TokensConfig selects how tokens are counted.
type TokensConfig struct {
	Strategy string `yaml:"strategy"`
}

// Validate validates the tokens configuration.
func (c *TokensConfig) Validate() error {
	if c.Strategy == "" {
		c.Strategy = string(tokens.StrategyAuto)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Strategy, validation.In(
			string(tokens.StrategyAuto), string(tokens.StrategyExact), string(tokens.StrategyEstimate))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	d := discovery.DefaultOptions()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
			Workers:  1,
		},
		Validation: ValidateConfig{
			Root:        ".",
			ExcludeDirs: d.ExcludeDirs,
			Exclude:     []string{},
			RuleDirs:    d.RuleDirs,
			AgentDirs:   d.AgentDirs,
			CommandDirs: d.CommandDirs,
			LenientJSON: []string{},
		},
		History: HistoryConfig{
			Path: "./dotlint.db",
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Tokens: TokensConfig{
			Strategy: string(tokens.StrategyAuto),
		},
	}
}
