// Package config provides YAML configuration for constructing a RouteKit
// bus: duplicate-registration policy, diagnostics, metrics, and logging.
// Documents are validated against a JSON Schema before unmarshaling so a
// typo fails loudly instead of silently taking a default.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/c360/routekit/bus"
	"github.com/c360/routekit/errors"
	"github.com/c360/routekit/metric"
)

// LogConfig controls the logger the bus uses for recoverable anomalies.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, text
}

// Config is the complete bus configuration document.
type Config struct {
	// DuplicatePolicy selects how a second handler registration for the
	// same (owner, type, key) triple is treated: "reject" or "warn".
	DuplicatePolicy string `yaml:"duplicate_policy" json:"duplicate_policy"`
	// Diagnostics enables the registration-lifecycle record sink.
	Diagnostics bool `yaml:"diagnostics" json:"diagnostics"`
	// Metrics enables the Prometheus dispatch recorder.
	Metrics bool `yaml:"metrics" json:"metrics"`
	// Log configures the bus logger.
	Log LogConfig `yaml:"log" json:"log"`
}

// Default returns the configuration used when no document is provided.
func Default() Config {
	return Config{
		DuplicatePolicy: "reject",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// schema is the JSON Schema every configuration document must satisfy.
const schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "duplicate_policy": {
      "type": "string",
      "enum": ["reject", "warn"]
    },
    "diagnostics": {"type": "boolean"},
    "metrics": {"type": "boolean"},
    "log": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"type": "string", "enum": ["debug", "info", "warn", "error"]},
        "format": {"type": "string", "enum": ["json", "text"]}
      }
    }
  }
}`

// Parse validates and unmarshals a YAML configuration document,
// applying defaults for absent fields.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}

	// Schema validation operates on JSON, so round-trip the YAML
	// document through a generic map first.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, errors.WrapInvalid(err, "Config", "Parse", "yaml parsing")
	}
	if raw != nil {
		doc, err := json.Marshal(raw)
		if err != nil {
			return Config{}, errors.WrapInvalid(err, "Config", "Parse", "document conversion")
		}
		result, err := gojsonschema.Validate(
			gojsonschema.NewStringLoader(schema),
			gojsonschema.NewBytesLoader(doc),
		)
		if err != nil {
			return Config{}, errors.WrapInvalid(err, "Config", "Parse", "schema validation")
		}
		if !result.Valid() {
			details := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				details = append(details, desc.String())
			}
			return Config{}, errors.WrapInvalid(
				fmt.Errorf("%w: %s", errors.ErrInvalidConfig, strings.Join(details, "; ")),
				"Config", "Parse", "schema validation")
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.WrapInvalid(err, "Config", "Parse", "yaml unmarshaling")
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Load reads, validates, and unmarshals a YAML configuration file.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Load", "path validation")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "Config", "Load", "file read")
	}
	return Parse(data)
}

func (c *Config) applyDefaults() {
	if c.DuplicatePolicy == "" {
		c.DuplicatePolicy = "reject"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// duplicatePolicy maps the document value onto the bus policy.
func (c Config) duplicatePolicy() bus.DuplicatePolicy {
	if c.DuplicatePolicy == "warn" {
		return bus.DuplicateWarn
	}
	return bus.DuplicateReject
}

// LogLevel returns the slog level for the configured level name.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger builds the structured logger the configuration describes.
func (c Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler).With("service", "routekit")
}

// Build constructs a bus from the configuration. The returned Recorder
// is nil unless metrics are enabled.
func (c Config) Build() (*bus.Bus, *metric.Recorder) {
	logger := c.Logger()

	opts := []bus.Option{
		bus.WithLogger(logger),
		bus.WithDuplicatePolicy(c.duplicatePolicy()),
	}
	if c.Diagnostics {
		opts = append(opts, bus.WithDiagnostics(bus.SlogSink(logger)))
	}

	var recorder *metric.Recorder
	if c.Metrics {
		recorder = metric.NewRecorder()
		opts = append(opts, bus.WithHooks(recorder.Hooks()))
	}

	return bus.New(opts...), recorder
}
