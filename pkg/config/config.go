package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Source type identifiers accepted in SourceConfig.Name.
const (
	SourceOpenSky = "opensky"
	SourceAdsbLol = "adsblol"
	SourceProxy   = "proxy"
)

// Config represents the complete application configuration.
type Config struct {
	Map      MapConfig      `json:"map"`
	Source   SourceConfig   `json:"source"`
	Display  DisplayConfig  `json:"display"`
	Database DatabaseConfig `json:"database"`
}

// MapConfig fixes the geographic frame shown on screen.
type MapConfig struct {
	// CenterLat/CenterLon in decimal degrees (WGS84).
	CenterLat float64 `json:"center_lat"`
	CenterLon float64 `json:"center_lon"`

	// GridWidthMiles is the great-circle half-width of the visible grid.
	GridWidthMiles float64 `json:"grid_width_miles"`
}

// SourceConfig selects and parameterizes the aircraft data source.
type SourceConfig struct {
	// Name is the source type: "opensky", "adsblol", or "proxy".
	Name string `json:"name"`

	// BaseURL overrides the source's production endpoint. Required for
	// "proxy" (any access key is carried in the URL itself).
	BaseURL string `json:"base_url,omitempty"`

	// Username/Password for OpenSky HTTP Basic auth. Prefer the
	// SKYPORTAL_OPENSKY_* environment variables over the config file.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// RefreshIntervalSeconds is the poll cadence (default: 30).
	RefreshIntervalSeconds int `json:"refresh_interval_seconds"`

	// RequestTimeoutSeconds bounds one upstream request (default: 10).
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
}

// DisplayConfig holds plotting and interaction policy.
type DisplayConfig struct {
	// SkipGround drops on-ground aircraft before plotting.
	SkipGround bool `json:"skip_ground"`

	// AltitudeFloorM treats airborne contacts below this geometric
	// altitude as ground clutter and culls them. Zero disables the floor.
	AltitudeFloorM float64 `json:"altitude_floor_m"`

	// RotationResolutionDeg is the angular width of one icon rotation
	// step (default: 30, i.e. 12 tiles per full turn).
	RotationResolutionDeg int `json:"rotation_resolution_deg"`

	// TouchThresholdPx is the hit-test radius for touch selection
	// (default: 30).
	TouchThresholdPx int `json:"touch_threshold_px"`
}

// DatabaseConfig contains settings for the optional sighting log.
type DatabaseConfig struct {
	// Enabled turns on sighting recording. Off by default.
	Enabled bool `json:"enabled"`

	// Host is the PostgreSQL server hostname.
	Host string `json:"host"`

	// Port is the PostgreSQL server port.
	Port int `json:"port"`

	// Database is the database name.
	Database string `json:"database"`

	// Username for database authentication.
	Username string `json:"username"`

	// Password for database authentication (prefer SKYPORTAL_DB_PASSWORD).
	Password string `json:"password"`

	// SSLMode for the connection (disable, require, verify-ca, verify-full).
	SSLMode string `json:"ssl_mode"`

	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int `json:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int `json:"max_idle_conns"`
}

// ValidationError reports a fatal configuration problem. Startup aborts on
// it; there is no recovery path for bad configuration.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// Load reads configuration from a JSON file. If the file doesn't exist,
// returns a default configuration. Environment overrides are applied either
// way; validation is the caller's responsibility (see Validate).
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Map: MapConfig{
			CenterLat:      42.41,
			CenterLon:      -71.17,
			GridWidthMiles: 15,
		},
		Source: SourceConfig{
			Name:                   SourceAdsbLol,
			RefreshIntervalSeconds: 30,
			RequestTimeoutSeconds:  10,
		},
		Display: DisplayConfig{
			SkipGround:            true,
			AltitudeFloorM:        20,
			RotationResolutionDeg: 30,
			TouchThresholdPx:      30,
		},
		Database: DatabaseConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "skyportal",
			Username:     "skyportal",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
	}
}

// Validate checks the configuration for fatal problems. Any error returned
// is a *ValidationError and should abort startup.
func (c *Config) Validate() error {
	if c.Map.GridWidthMiles <= 0 {
		return &ValidationError{Field: "map.grid_width_miles", Message: fmt.Sprintf("must be positive, got %g", c.Map.GridWidthMiles)}
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		return &ValidationError{Field: "map.center_lat", Message: fmt.Sprintf("must be within [-90, 90], got %g", c.Map.CenterLat)}
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		return &ValidationError{Field: "map.center_lon", Message: fmt.Sprintf("must be within [-180, 180], got %g", c.Map.CenterLon)}
	}

	switch c.Source.Name {
	case SourceOpenSky, SourceAdsbLol:
	case SourceProxy:
		if c.Source.BaseURL == "" {
			return &ValidationError{Field: "source.base_url", Message: "required for the proxy source"}
		}
	default:
		return &ValidationError{Field: "source.name", Message: fmt.Sprintf("unknown source %q", c.Source.Name)}
	}

	if c.Source.RefreshIntervalSeconds <= 0 {
		return &ValidationError{Field: "source.refresh_interval_seconds", Message: "must be positive"}
	}
	if c.Source.RequestTimeoutSeconds <= 0 {
		return &ValidationError{Field: "source.request_timeout_seconds", Message: "must be positive"}
	}
	if c.Display.RotationResolutionDeg <= 0 || c.Display.RotationResolutionDeg > 360 {
		return &ValidationError{Field: "display.rotation_resolution_deg", Message: "must be within (0, 360]"}
	}
	if c.Display.TouchThresholdPx <= 0 {
		return &ValidationError{Field: "display.touch_threshold_px", Message: "must be positive"}
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to the
// config. This keeps credentials out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if user := os.Getenv("SKYPORTAL_OPENSKY_USERNAME"); user != "" {
		c.Source.Username = user
	}
	if pass := os.Getenv("SKYPORTAL_OPENSKY_PASSWORD"); pass != "" {
		c.Source.Password = pass
	}
	if proxyURL := os.Getenv("SKYPORTAL_PROXY_URL"); proxyURL != "" {
		c.Source.BaseURL = proxyURL
	}
	if dbPassword := os.Getenv("SKYPORTAL_DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
}
