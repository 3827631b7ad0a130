// YAML config loader with CUE schema validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"borderops-sim/internal/geo"
)

// Duration wraps time.Duration so YAML can carry values like "500ms".
type Duration time.Duration

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML encodes the duration back to its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// BorderConfig mirrors geo.Border in YAML form.
type BorderConfig struct {
	CenterLat float64 `yaml:"center_lat" json:"center_lat"`
	CenterLon float64 `yaml:"center_lon" json:"center_lon"`
	Width     float64 `yaml:"width" json:"width"`
	Height    float64 `yaml:"height" json:"height"`
	Rotation  float64 `yaml:"rotation" json:"rotation"`
}

// Border converts the YAML form to the geo type.
func (b BorderConfig) Border() geo.Border {
	return geo.Border{
		Center:   geo.Point{Latitude: b.CenterLat, Longitude: b.CenterLon},
		Width:    b.Width,
		Height:   b.Height,
		Rotation: b.Rotation,
	}
}

// SimulationConfig is the root configuration for the border simulation.
type SimulationConfig struct {
	Border         BorderConfig  `yaml:"border"`
	NumDrones      int           `yaml:"num_drones"`
	UpdateInterval Duration      `yaml:"update_interval"`
	HotZoneCount   int           `yaml:"hot_zone_count"`

	ListenAddr string `yaml:"listen_addr"`

	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`

	// Optional JSONL export paths; empty disables the file sink.
	DroneLogPath string `yaml:"drone_log_path"`
	AlertLogPath string `yaml:"alert_log_path"`

	// Optional GreptimeDB export endpoint; empty disables the sink.
	GreptimeEndpoint string `yaml:"greptime_endpoint"`
	GreptimeDatabase string `yaml:"greptime_database"`
}

// Default returns the built-in configuration: the Thailand-Myanmar border
// example area near Mae Sot, five drones, one second ticks.
func Default() *SimulationConfig {
	return &SimulationConfig{
		Border: BorderConfig{
			CenterLat: 16.7769,
			CenterLon: 98.9761,
			Width:     0.1,
			Height:    0.1,
			Rotation:  0,
		},
		NumDrones:      5,
		UpdateInterval: Duration(time.Second),
		HotZoneCount:   3,
		ListenAddr:     ":8000",
		LogFormat:      "text",
		LogLevel:       "info",
		GreptimeDatabase: "public",
	}
}

// Load reads a YAML config, validates it against the CUE schema, and fills
// unset fields from Default. An empty configPath returns the defaults.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the simulator cannot run with. The CUE schema
// catches these for file-based loads; this guards programmatic construction
// and API-driven updates.
func (c *SimulationConfig) Validate() error {
	if c.Border.CenterLat < -90 || c.Border.CenterLat > 90 {
		return fmt.Errorf("border center_lat %f out of [-90,90]", c.Border.CenterLat)
	}
	if c.Border.CenterLon < -180 || c.Border.CenterLon > 180 {
		return fmt.Errorf("border center_lon %f out of [-180,180]", c.Border.CenterLon)
	}
	if c.Border.Width <= 0 || c.Border.Height <= 0 {
		return fmt.Errorf("border width/height must be positive, got %fx%f", c.Border.Width, c.Border.Height)
	}
	if c.NumDrones < 0 || c.NumDrones > 20 {
		return fmt.Errorf("num_drones %d out of [0,20]", c.NumDrones)
	}
	if c.UpdateInterval.Std() < 100*time.Millisecond || c.UpdateInterval.Std() > 10*time.Second {
		return fmt.Errorf("update_interval %s out of [100ms,10s]", c.UpdateInterval.Std())
	}
	if c.HotZoneCount < 0 || c.HotZoneCount > 10 {
		return fmt.Errorf("hot_zone_count %d out of [0,10]", c.HotZoneCount)
	}
	return nil
}
