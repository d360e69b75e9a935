// Package config provides YAML-based configuration loading for taskwire.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"taskwire/pkg/protocol"
	"taskwire/pkg/protocol/checksum"
)

// Config is the root application configuration.
type Config struct {
	// AppName optional logical name of the node/application
	AppName string `mapstructure:"app_name"`

	// BoardID is this device's identity on the link: the sender id on
	// outbound packets and the receive filter on inbound ones.
	BoardID uint8 `mapstructure:"board_id"`

	// DeviceN is the number of devices on the link
	DeviceN uint8 `mapstructure:"device_n"`

	// ProtocolVersion is baked into every header (range [0, 3])
	ProtocolVersion uint8 `mapstructure:"protocol_version"`

	// Packet describes the fixed frame geometry
	Packet PacketConfig `mapstructure:"packet"`

	// LoopIntervalMS is the main-loop tick period in milliseconds
	LoopIntervalMS int `mapstructure:"loop_interval_ms"`

	// Log holds logging configuration
	Log LogConfig `mapstructure:"log"`

	// Transports list to configure the hub's ports, probed in order
	Transports []TransportConfig `mapstructure:"transports"`
}

// PacketConfig selects the frame size and checksum policy.
type PacketConfig struct {
	// Size is the total frame size in bytes (word-aligned)
	Size int `mapstructure:"size"`
	// Checksum: none, sum8/16/32, crc8/16/32/64, fletcher16/32, adler32,
	// internet16
	Checksum string `mapstructure:"checksum"`
}

// TransportConfig describes one port of the hub.
// Example YAML:
//
//	transports:
//	  - kind: tcp
//	    listen: ":7690"
//	  - kind: tcp
//	    dial: "10.0.0.2:7690"
//	  - kind: serial
//	    device: /dev/ttyUSB0
//	  - kind: quic
//	    listen: ":7693"
type TransportConfig struct {
	Kind   string `mapstructure:"kind"`
	Listen string `mapstructure:"listen"`
	Dial   string `mapstructure:"dial"`
	Device string `mapstructure:"device"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: list of outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	// Rotation controls file rotation when writing to files
	Rotation RotationConfig `mapstructure:"rotation"`
	// Development toggles development-friendly logging options
	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		AppName:         "taskwire-node",
		BoardID:         0,
		DeviceN:         2,
		ProtocolVersion: 0,
		Packet: PacketConfig{
			Size:     32,
			Checksum: "crc32",
		},
		LoopIntervalMS: 10,
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stdout"},
			Development: true,
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/taskwire.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Transports: []TransportConfig{
			{Kind: "tcp", Listen: ":7690"},
		},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment
// overrides. Environment variables use the prefix TASKWIRE and `.`/`-`
// are replaced with `_`. Example: TASKWIRE_LOG_LEVEL=debug
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TASKWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("app_name", cfg.AppName)
	v.SetDefault("board_id", cfg.BoardID)
	v.SetDefault("device_n", cfg.DeviceN)
	v.SetDefault("protocol_version", cfg.ProtocolVersion)
	v.SetDefault("packet.size", cfg.Packet.Size)
	v.SetDefault("packet.checksum", cfg.Packet.Checksum)
	v.SetDefault("loop_interval_ms", cfg.LoopIntervalMS)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("transports", cfg.Transports)

	if path == "" {
		if envPath := os.Getenv("TASKWIRE_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Search common locations with base name `taskwire`
		v.SetConfigName("taskwire")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".taskwire"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	lvl := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch lvl {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}

	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stdout"}
	}
	if c.LoopIntervalMS <= 0 {
		c.LoopIntervalMS = 10
	}
	if err := c.ProtocolConfig().Validate(); err != nil {
		return err
	}
	layout, err := c.PacketLayout()
	if err != nil {
		return err
	}
	if err := layout.Validate(); err != nil {
		return err
	}
	for i := range c.Transports {
		c.Transports[i].Kind = strings.ToLower(strings.TrimSpace(c.Transports[i].Kind))
	}
	return nil
}

// ProtocolConfig exposes the identity constants as the protocol layer's
// config type.
func (c *Config) ProtocolConfig() protocol.Config {
	return protocol.Config{
		Version: c.ProtocolVersion,
		BoardID: c.BoardID,
		DeviceN: c.DeviceN,
	}
}

// PacketLayout resolves the packet geometry.
func (c *Config) PacketLayout() (protocol.Layout, error) {
	policy, err := checksum.Parse(c.Packet.Checksum)
	if err != nil {
		return protocol.Layout{}, err
	}
	return protocol.Layout{Size: c.Packet.Size, Policy: policy}, nil
}

// MustLoad is a convenience that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
