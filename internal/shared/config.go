package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
	Graph       GraphConfig       `toml:"graph"`
	Simulation  SimulationConfig  `toml:"simulation"`
	Metrics     MetricsConfig     `toml:"metrics"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
//
// AccessToken and RefreshToken are written back by `playgraph auth spotify`; when they are
// empty the catalog client falls back to the client credentials (guest) flow.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	// RequestsPerSecond throttles artist enrichment batches.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Map returns the credential map accepted by the Spotify service constructor and Authenticate.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
		"access_token":  s.AccessToken,
		"refresh_token": s.RefreshToken,
	}
}

// Update stores a token obtained through the authorization flow. A token without a refresh token keeps
// the stored one, matching Spotify's refresh responses.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrAuthFailed)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	return nil
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig controls logger verbosity and where the TUI sends log output.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// GraphConfig holds the geometry tunables used when building snapshots.
//
// Distances are in world units. The terminal renderer maps world units to cells through
// CellWidth and CellHeight.
type GraphConfig struct {
	NarrowBreakpoint float64 `toml:"narrow_breakpoint"`
	NarrowScale      float64 `toml:"narrow_scale"`
	ArtistRadius     float64 `toml:"artist_radius"`
	FocusedEmphasis  float64 `toml:"focused_emphasis"`
	TrackRadius      float64 `toml:"track_radius"`
	BubbleSlope      float64 `toml:"bubble_slope"`
	BubbleOffset     float64 `toml:"bubble_offset"`
	BubbleMin        float64 `toml:"bubble_min"`
	BubbleMax        float64 `toml:"bubble_max"`
	BubbleNarrow     float64 `toml:"bubble_narrow_scale"`
	CellWidth        float64 `toml:"cell_width"`
	CellHeight       float64 `toml:"cell_height"`
}

// SimulationConfig holds frame pacing and alpha parameters for the force engine.
type SimulationConfig struct {
	FrameInterval   Duration `toml:"frame_interval"`
	AlphaMin        float64  `toml:"alpha_min"`
	VelocityDecay   float64  `toml:"velocity_decay"`
	DragAlphaTarget float64  `toml:"drag_alpha_target"`
	MaxTicks        int      `toml:"max_ticks"`
	Seed            int64    `toml:"seed"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// Duration wraps [time.Duration] so it can be written as a string ("16ms") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigOrDefault loads path, falling back to [DefaultConfig] when the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate reports configuration values the graph and simulation cannot work with.
func (c *Config) Validate() error {
	g := c.Graph
	switch {
	case g.ArtistRadius <= 0 || g.TrackRadius <= 0:
		return fmt.Errorf("%w: graph radii must be positive", ErrInvalidConfig)
	case g.BubbleMin > g.BubbleMax:
		return fmt.Errorf("%w: bubble_min %.0f exceeds bubble_max %.0f", ErrInvalidConfig, g.BubbleMin, g.BubbleMax)
	case g.CellWidth <= 0 || g.CellHeight <= 0:
		return fmt.Errorf("%w: cell dimensions must be positive", ErrInvalidConfig)
	case c.Simulation.FrameInterval.Duration <= 0:
		return fmt.Errorf("%w: frame_interval must be positive", ErrInvalidConfig)
	case c.Simulation.VelocityDecay < 0 || c.Simulation.VelocityDecay > 1:
		return fmt.Errorf("%w: velocity_decay must be within [0, 1]", ErrInvalidConfig)
	}
	return nil
}

// SaveConfig writes config to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
