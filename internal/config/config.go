// Package config loads and validates the monitor's YAML configuration.
// The file is checked against an embedded CUE schema before decoding, so
// typos and type mismatches fail with a position-annotated error instead
// of a silently-zero field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/kt1928/building-monitor/internal/building"
)

//go:embed schema.cue
var schemaSource string

// DefaultDatabase is the SQLite path used when none is configured.
const DefaultDatabase = "building_monitor.db"

// defaultSchedule is the daily check hours used when none are configured.
var defaultSchedule = []int{8, 12, 20}

// Config is the fully-resolved monitor configuration.
type Config struct {
	Database      string                      `yaml:"database"`
	Webhook       string                      `yaml:"webhook"`
	Proxy         string                      `yaml:"proxy"`
	MetricsListen string                      `yaml:"metrics_listen"`
	Schedule      []int                       `yaml:"schedule"`
	FeedLimit     int                         `yaml:"feed_limit"`
	Addresses     []building.MonitoredAddress `yaml:"addresses"`
}

// Error is a configuration load or validation failure.
type Error struct {
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsConfigError reports whether err is a config Error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// Load reads, schema-checks and decodes the YAML file at path, then
// fills in defaults for database and schedule.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Message: "read", Err: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// Parse schema-checks and decodes raw YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Message: "decode yaml", Err: err}
	}

	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if len(cfg.Schedule) == 0 {
		cfg.Schedule = append([]int(nil), defaultSchedule...)
	}
	return &cfg, nil
}

// validate unifies the YAML document with the embedded #Config schema.
func validate(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return &Error{Message: "compile schema", Err: err}
	}
	schema = schema.LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return &Error{Message: "lookup schema", Err: err}
	}

	file, err := cueyaml.Extract("config.yaml", data)
	if err != nil {
		return &Error{Message: "parse yaml", Err: err}
	}
	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return &Error{Message: "build yaml value", Err: err}
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &Error{Message: "schema validation", Err: err}
	}
	return nil
}
