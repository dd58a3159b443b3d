package server

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/NicolasHaas/wirechat/pkg/protocol"
)

// Config holds server configuration.
type Config struct {
	Addr        string // TCP bind address (e.g. ":4000")
	MetricsAddr string // HTTP bind address for /metrics (empty = disabled)
	MOTD        string // message of the day, sent as INFO on connect (empty = none)

	MaxFrameBytes int // maximum buffered line length before the connection is dropped
	SendBuffer    int // per-client outbound queue depth

	// Liveness timing. Fixed by the protocol at 60s/30s; kept as fields so
	// tests can run against short windows.
	IdleTimeout     time.Duration
	HeartbeatPeriod time.Duration
}

// DefaultPort is the listen port used when neither the environment nor the
// command line provides one.
const DefaultPort = 4000

// DefaultConfig returns a config with the protocol's fixed timings and
// sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            fmt.Sprintf(":%d", DefaultPort),
		MaxFrameBytes:   protocol.DefaultMaxFrameBytes,
		SendBuffer:      64,
		IdleTimeout:     60 * time.Second,
		HeartbeatPeriod: 30 * time.Second,
	}
}

// FileConfig is the optional YAML config file. Anything left zero keeps the
// value already resolved from defaults and flags.
type FileConfig struct {
	Addr          string `yaml:"addr,omitempty"`
	MetricsAddr   string `yaml:"metrics_addr,omitempty"`
	MOTD          string `yaml:"motd,omitempty"`
	MaxFrameBytes int    `yaml:"max_frame_bytes,omitempty"`
	SendBuffer    int    `yaml:"send_buffer,omitempty"`

	Log struct {
		Level  string `yaml:"level,omitempty"`
		Format string `yaml:"format,omitempty"`
	} `yaml:"log,omitempty"`
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path) //nolint:gosec // path from user-provided CLI config
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}

// Apply overlays the file settings onto cfg.
func (fc FileConfig) Apply(cfg *Config) {
	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.MetricsAddr != "" {
		cfg.MetricsAddr = fc.MetricsAddr
	}
	if fc.MOTD != "" {
		cfg.MOTD = fc.MOTD
	}
	if fc.MaxFrameBytes > 0 {
		cfg.MaxFrameBytes = fc.MaxFrameBytes
	}
	if fc.SendBuffer > 0 {
		cfg.SendBuffer = fc.SendBuffer
	}
}

// envOverrides are the environment variables recognized by the server. The
// environment outranks both the config file and the command line.
type envOverrides struct {
	Port        int    `envconfig:"PORT"`
	Addr        string `envconfig:"ADDR"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// ApplyEnv overlays environment variables onto cfg. PORT takes precedence
// over any address resolved so far; ADDR over PORT.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}
	if env.Port > 0 {
		cfg.Addr = fmt.Sprintf(":%d", env.Port)
	}
	if env.Addr != "" {
		cfg.Addr = env.Addr
	}
	if env.MetricsAddr != "" {
		cfg.MetricsAddr = env.MetricsAddr
	}
	return nil
}
