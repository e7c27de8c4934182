// Package config provides Viper-based configuration loading for the container
// client.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Transports a session can run over.
const (
	TransportWebsocket = "websocket"
	TransportNATS      = "nats"
	TransportReplay    = "replay"
)

// ServerConfig holds session endpoint settings.
type ServerConfig struct {
	// Address is a ws:// URL, a nats:// URL, or a capture file path,
	// depending on Transport.
	Address string `mapstructure:"address"`
	// Transport is one of "websocket", "nats" or "replay".
	Transport string `mapstructure:"transport"`
	// SubjectPrefix prefixes the NATS session subjects.
	SubjectPrefix string `mapstructure:"subject_prefix"`
	// SessionID names the NATS session. Empty means a random id per dial.
	SessionID string `mapstructure:"session_id"`
	// HandshakeTimeout bounds the websocket handshake.
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	// ReplayDelay is waited before each replayed event.
	ReplayDelay time.Duration `mapstructure:"replay_delay"`
}

// SessionConfig holds client session behaviour.
type SessionConfig struct {
	// MaxReconnectAttempts: -1 retries forever, 0 never reconnects.
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts"`
	ReconnectDelay       time.Duration `mapstructure:"reconnect_delay"`
	// QueueSize is the outgoing request buffer. Requests beyond it are dropped.
	QueueSize int `mapstructure:"queue_size"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	Interactive bool `mapstructure:"interactive"`
	// CascadeStepX and CascadeStepY space windows apart, in cells.
	CascadeStepX int `mapstructure:"cascade_step_x"`
	CascadeStepY int `mapstructure:"cascade_step_y"`
	MaxLogLines  int `mapstructure:"max_log_lines"`
	// GroundTile is the map tile items dropped "on the ground" go to,
	// as [x, y, z]. Empty means the origin.
	GroundTile []int `mapstructure:"ground_tile"`
}

// ItemsConfig points at the item catalog.
type ItemsConfig struct {
	// Dir holds YAML item definition files. Empty means no catalog.
	Dir string `mapstructure:"dir"`
}

// CaptureConfig controls event recording.
type CaptureConfig struct {
	// Path is the capture file; a .zst suffix compresses it. Empty disables
	// recording.
	Path string `mapstructure:"path"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
	UI      UIConfig      `mapstructure:"ui"`
	Items   ItemsConfig   `mapstructure:"items"`
	Capture CaptureConfig `mapstructure:"capture"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateServer(c.Server),
		validateSession(c.Session),
		validateLogging(c.Logging),
		validateUI(c.UI),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	validTransports := map[string]bool{TransportWebsocket: true, TransportNATS: true, TransportReplay: true}
	if !validTransports[s.Transport] {
		errs = append(errs, fmt.Sprintf("server.transport must be one of [websocket, nats, replay], got %q", s.Transport))
	}
	if s.Address == "" {
		errs = append(errs, "server.address must not be empty")
	}
	if s.Transport == TransportNATS && s.SubjectPrefix == "" {
		errs = append(errs, "server.subject_prefix must not be empty for nats")
	}
	if strings.ContainsAny(s.SessionID, ". *>") {
		errs = append(errs, fmt.Sprintf("server.session_id must be a single subject token, got %q", s.SessionID))
	}
	if s.HandshakeTimeout < 0 {
		errs = append(errs, "server.handshake_timeout must not be negative")
	}
	if s.ReplayDelay < 0 {
		errs = append(errs, "server.replay_delay must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSession(s SessionConfig) error {
	var errs []string
	if s.MaxReconnectAttempts < -1 {
		errs = append(errs, fmt.Sprintf("session.max_reconnect_attempts must be >= -1, got %d", s.MaxReconnectAttempts))
	}
	if s.ReconnectDelay < 0 {
		errs = append(errs, "session.reconnect_delay must not be negative")
	}
	if s.QueueSize < 1 {
		errs = append(errs, fmt.Sprintf("session.queue_size must be >= 1, got %d", s.QueueSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateUI(u UIConfig) error {
	if u.CascadeStepX < 0 || u.CascadeStepY < 0 {
		return errors.New("ui.cascade_step_x and ui.cascade_step_y must not be negative")
	}
	if u.MaxLogLines < 1 {
		return fmt.Errorf("ui.max_log_lines must be >= 1, got %d", u.MaxLogLines)
	}
	if n := len(u.GroundTile); n != 0 && n != 3 {
		return fmt.Errorf("ui.ground_tile must be [x, y, z], got %d values", n)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default returns the configuration built from defaults and CONTAINERS_
// environment variables alone.
func Default() (Config, error) {
	return LoadFromViper(newViper())
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with CONTAINERS_ prefix
	v.SetEnvPrefix("CONTAINERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "ws://127.0.0.1:7171/session")
	v.SetDefault("server.transport", TransportWebsocket)
	v.SetDefault("server.subject_prefix", "containers")
	v.SetDefault("server.session_id", "")
	v.SetDefault("server.handshake_timeout", "5s")
	v.SetDefault("server.replay_delay", "0s")

	v.SetDefault("session.max_reconnect_attempts", 5)
	v.SetDefault("session.reconnect_delay", "3s")
	v.SetDefault("session.queue_size", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("ui.interactive", false)
	v.SetDefault("ui.cascade_step_x", 4)
	v.SetDefault("ui.cascade_step_y", 2)
	v.SetDefault("ui.max_log_lines", 500)
	v.SetDefault("ui.ground_tile", []int{})

	v.SetDefault("items.dir", "")
	v.SetDefault("capture.path", "")
}
