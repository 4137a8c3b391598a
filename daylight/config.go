package daylight

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloudeng.io/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/devskill-org/daylight/sun"
	"github.com/devskill-org/daylight/zones"
)

// Config represents the configuration for the daylight service
type Config struct {
	// Server settings
	Port            int           `json:"port" yaml:"port"`                         // HTTP port (0 = disabled)
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`         // HTTP read timeout
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`       // HTTP write timeout
	IdleTimeout     time.Duration `json:"idle_timeout" yaml:"idle_timeout"`         // HTTP keep-alive timeout
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"` // Graceful shutdown deadline
	AllowedOrigins  []string      `json:"allowed_origins" yaml:"allowed_origins"`   // WebSocket origins (empty = any)

	// Calculation settings
	Engine          string `json:"engine" yaml:"engine"`                       // Solar engine: suncalc, sunrise
	DefaultTimeZone string `json:"default_time_zone" yaml:"default_time_zone"` // Zone used when the form leaves it empty
	ZoneInfoDir     string `json:"zoneinfo_dir" yaml:"zoneinfo_dir"`           // Zone database to list (empty = platform)

	// Logging settings
	LogLevel  string `json:"log_level" yaml:"log_level"`   // Log level: debug, info, warn, error
	LogFormat string `json:"log_format" yaml:"log_format"` // Log format: text, json
}

// Environment variables that override file settings.
const (
	EnvPort      = "DAYLIGHT_PORT"
	EnvEngine    = "DAYLIGHT_ENGINE"
	EnvTimeZone  = "DAYLIGHT_TIME_ZONE"
	EnvLogLevel  = "DAYLIGHT_LOG_LEVEL"
	EnvLogFormat = "DAYLIGHT_LOG_FORMAT"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		Engine:          sun.DefaultEngine,
		DefaultTimeZone: zones.DefaultZone,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by
// extension. An empty filename yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		config := DefaultConfig()
		return config, config.Validate()
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return LoadConfigFromYAML(file)
	default:
		return LoadConfigFromReader(file)
	}
}

// LoadConfigFromReader loads JSON configuration from an io.Reader
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigFromYAML loads YAML configuration from an io.Reader
func LoadConfigFromYAML(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := yaml.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a JSON file
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration to an io.Writer
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config JSON: %w", err)
	}

	return nil
}

// DotEnv returns a lookup function over the process environment that
// falls back to the values in the given .env files. Files that do not
// exist are skipped; with no files ".env" is tried.
func DotEnv(files ...string) (func(string) string, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	values := map[string]string{}
	if len(existing) > 0 {
		var err error
		if values, err = godotenv.Read(existing...); err != nil {
			return nil, fmt.Errorf("failed to read env files %v: %w", existing, err)
		}
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return values[key]
	}, nil
}

// ApplyEnv overrides settings with the DAYLIGHT_* variables returned by
// getenv. Empty values leave the setting unchanged.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v := getenv(EnvEngine); v != "" {
		c.Engine = v
	}
	if v := getenv(EnvTimeZone); v != "" {
		c.DefaultTimeZone = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
	return nil
}

// Validate checks the configuration and reports every invalid value.
func (c *Config) Validate() error {
	errs := &errors.M{}

	if c.Port < 0 || c.Port > 65535 {
		errs.Append(fmt.Errorf("port must be between 0 and 65535, got: %d", c.Port))
	}

	for name, d := range map[string]time.Duration{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"idle_timeout":     c.IdleTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if d <= 0 {
			errs.Append(fmt.Errorf("%s must be greater than 0, got: %s", name, d))
		}
	}

	if _, err := sun.EngineByName(c.Engine); err != nil {
		errs.Append(fmt.Errorf("invalid engine: %w", err))
	}

	if c.DefaultTimeZone == "" {
		errs.Append(fmt.Errorf("default_time_zone cannot be empty"))
	} else if !strings.EqualFold(c.DefaultTimeZone, zones.Auto) {
		if _, err := time.LoadLocation(zones.StripLabel(c.DefaultTimeZone)); err != nil {
			errs.Append(fmt.Errorf("invalid default_time_zone %q: %w", c.DefaultTimeZone, err))
		}
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		errs.Append(err)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errs.Append(fmt.Errorf("invalid log_format: %s, must be one of: text, json", c.LogFormat))
	}

	return errs.Err()
}

// MarshalJSON implements custom JSON marshaling to handle durations
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		ReadTimeout     string `json:"read_timeout"`
		WriteTimeout    string `json:"write_timeout"`
		IdleTimeout     string `json:"idle_timeout"`
		ShutdownTimeout string `json:"shutdown_timeout"`
	}{
		Alias:           (*Alias)(c),
		ReadTimeout:     c.ReadTimeout.String(),
		WriteTimeout:    c.WriteTimeout.String(),
		IdleTimeout:     c.IdleTimeout.String(),
		ShutdownTimeout: c.ShutdownTimeout.String(),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling to handle durations
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		ReadTimeout     string `json:"read_timeout"`
		WriteTimeout    string `json:"write_timeout"`
		IdleTimeout     string `json:"idle_timeout"`
		ShutdownTimeout string `json:"shutdown_timeout"`
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	for _, d := range []struct {
		name  string
		value string
		out   *time.Duration
	}{
		{"read_timeout", aux.ReadTimeout, &c.ReadTimeout},
		{"write_timeout", aux.WriteTimeout, &c.WriteTimeout},
		{"idle_timeout", aux.IdleTimeout, &c.IdleTimeout},
		{"shutdown_timeout", aux.ShutdownTimeout, &c.ShutdownTimeout},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.out = parsed
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
