package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gridstream/synchro-go/pkg/stream"
)

// Profile holds the settings of a streaming session. It can be loaded from
// a YAML file; flags set on the command line take precedence.
type Profile struct {
	// Source is the capture file to read. Ignored when ConnectionString
	// is set.
	Source string `yaml:"source"`

	// ConnectionString overrides every resource setting below.
	ConnectionString string `yaml:"connection_string"`

	// Station names the measurement source of decoded values.
	Station string `yaml:"station"`

	ChunkSize      int   `yaml:"chunk_size"`
	StartingOffset int64 `yaml:"starting_offset"`

	// MaxAttempts is the open attempt limit; -1 retries forever.
	MaxAttempts int `yaml:"max_attempts"`

	// ReceiveInterval is the delay between passes; zero reads the
	// resource once as soon as it connects.
	ReceiveInterval time.Duration `yaml:"receive_interval"`
	ReceiveOnDemand bool          `yaml:"receive_on_demand"`

	Backoff stream.BackoffConfig `yaml:"backoff"`

	LogLevel    string `yaml:"log_level"`
	ProtocolLog string `yaml:"protocol_log"`
	Interactive bool   `yaml:"interactive"`
}

// DefaultProfile returns the settings used when nothing else is given.
func DefaultProfile() Profile {
	return Profile{
		Station:     "pmu",
		ChunkSize:   stream.DefaultChunkSize,
		MaxAttempts: 3,
		Backoff:     stream.DefaultBackoffConfig(),
		LogLevel:    "info",
	}
}

// LoadProfile reads a YAML profile on top of the defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

// Validate checks settings the client cannot check until Connect.
func (p Profile) Validate() error {
	if p.Source == "" && p.ConnectionString == "" {
		return fmt.Errorf("a source or connection string is required")
	}
	if p.ReceiveInterval < 0 {
		return fmt.Errorf("receive interval must not be negative, got %s", p.ReceiveInterval)
	}
	switch p.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", p.LogLevel)
	}
	return nil
}

// connectionString returns the explicit connection string, or one naming
// the source.
func (p Profile) connectionString() string {
	if p.ConnectionString != "" {
		return p.ConnectionString
	}
	return fmt.Sprintf("%s={%s}", stream.KeySource, p.Source)
}

// Apply configures c. Keys present in the connection string override these
// values when c connects.
func (p Profile) Apply(c *stream.Client) error {
	c.SetConnectionString(p.connectionString())
	c.SetBackoff(p.Backoff)

	if err := c.SetChunkSize(p.ChunkSize); err != nil {
		return err
	}
	if err := c.SetStartingOffset(p.StartingOffset); err != nil {
		return err
	}
	if err := c.SetMaxConnectionAttempts(p.MaxAttempts); err != nil {
		return err
	}

	interval := stream.Continuous
	if p.ReceiveInterval > 0 {
		interval = p.ReceiveInterval
	}
	if err := c.SetReceiveInterval(interval); err != nil {
		return err
	}
	if p.ReceiveOnDemand {
		c.SetReceiveOnDemand(true)
	}
	return nil
}

// mergeFlags copies into dst the fields of src whose flag was set on the
// command line.
func mergeFlags(dst *Profile, src Profile, set map[string]bool) {
	if set["source"] {
		dst.Source = src.Source
	}
	if set["conn"] {
		dst.ConnectionString = src.ConnectionString
	}
	if set["station"] {
		dst.Station = src.Station
	}
	if set["chunk-size"] {
		dst.ChunkSize = src.ChunkSize
	}
	if set["offset"] {
		dst.StartingOffset = src.StartingOffset
	}
	if set["max-attempts"] {
		dst.MaxAttempts = src.MaxAttempts
	}
	if set["interval"] {
		dst.ReceiveInterval = src.ReceiveInterval
	}
	if set["on-demand"] {
		dst.ReceiveOnDemand = src.ReceiveOnDemand
	}
	if set["log-level"] {
		dst.LogLevel = src.LogLevel
	}
	if set["protocol-log"] {
		dst.ProtocolLog = src.ProtocolLog
	}
	if set["interactive"] {
		dst.Interactive = src.Interactive
	}
}
