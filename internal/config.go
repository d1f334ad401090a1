package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sitegraph/internal/pathfind"
	"github.com/starford/sitegraph/internal/scene"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Graph sources.
const (
	GraphSourceFile  = "file"
	GraphSourceVault = "vault"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app" toml:"app"`
	Graph  GraphConfig       `yaml:"graph" toml:"graph"`
	Viewer ViewerConfig      `yaml:"viewer" toml:"viewer"`
	Auth   AuthConfig        `yaml:"auth" toml:"auth"`
	// Theme overrides the built-in tier treatments when set.
	Theme *scene.Theme `yaml:"theme" toml:"theme"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Graph.Validate(); err != nil {
		return err
	}
	if err := c.Viewer.Validate(); err != nil {
		return err
	}
	if c.Theme != nil {
		if err := c.Theme.Validate(); err != nil {
			return err
		}
	}
	return c.Auth.Validate()
}

// SceneOptions returns the session options described by the config.
func (c *Config) SceneOptions() scene.Options {
	opts := scene.Options{
		Home:           c.Graph.Home,
		TopicMarker:    c.Graph.TopicMarker,
		HoverRadius:    c.Viewer.HoverRadius,
		ClickThreshold: c.Viewer.ClickThreshold,
	}
	if c.Theme != nil {
		opts.Theme = *c.Theme
	}
	return opts
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
	// AllowedOrigins lists the browser origins allowed by CORS.
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
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

// GraphConfig says where the graph document comes from.
//
// Source "file" reads a JSON document from File. Source "vault" indexes the
// Markdown notes under Vault into the SQLite database at Index.
type GraphConfig struct {
	Source      string `yaml:"source" toml:"source"`
	File        string `yaml:"file" toml:"file"`
	Vault       string `yaml:"vault" toml:"vault"`
	Index       string `yaml:"index" toml:"index"`
	Home        string `yaml:"home" toml:"home"`
	TopicMarker string `yaml:"topic_marker" toml:"topic_marker"`
	// Watch reloads the graph when the source changes on disk.
	Watch bool `yaml:"watch" toml:"watch"`
}

// Validate validates the graph configuration.
func (c *GraphConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required, validation.In(GraphSourceFile, GraphSourceVault)),
		validation.Field(&c.File, validation.When(c.Source == GraphSourceFile, validation.Required)),
		validation.Field(&c.Vault, validation.When(c.Source == GraphSourceVault, validation.Required)),
		validation.Field(&c.Index, validation.When(c.Source == GraphSourceVault, validation.Required)),
	)
}

// ViewerConfig holds frame loop and pointer settings.
type ViewerConfig struct {
	FPS            int     `yaml:"fps" toml:"fps"`
	HoverRadius    float64 `yaml:"hover_radius" toml:"hover_radius"`
	ClickThreshold float64 `yaml:"click_threshold" toml:"click_threshold"`
}

// Validate validates the viewer configuration.
func (c *ViewerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FPS, validation.Required, validation.Min(1), validation.Max(240)),
		validation.Field(&c.HoverRadius, validation.Min(0.0)),
		validation.Field(&c.ClickThreshold, validation.Min(0.0)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:           8080,
				AllowedOrigins: []string{"*"},
			},
		},
		Graph: GraphConfig{
			Source:      GraphSourceFile,
			File:        "./graph.json",
			Vault:       "./vault",
			Index:       "./sitegraph.db",
			Home:        scene.DefaultHome,
			TopicMarker: pathfind.DefaultTopicMarker,
		},
		Viewer: ViewerConfig{
			FPS:            60,
			HoverRadius:    scene.DefaultHoverRadius,
			ClickThreshold: scene.DefaultClickThreshold,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
