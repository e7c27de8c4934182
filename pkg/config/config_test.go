package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:          "ws://127.0.0.1:7171/session",
			Transport:        TransportWebsocket,
			SubjectPrefix:    "containers",
			HandshakeTimeout: 5 * time.Second,
		},
		Session: SessionConfig{
			MaxReconnectAttempts: 5,
			ReconnectDelay:       3 * time.Second,
			QueueSize:            100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			CascadeStepX: 4,
			CascadeStepY: 2,
			MaxLogLines:  500,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaults(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, TransportWebsocket, cfg.Server.Transport)
	assert.Equal(t, 5*time.Second, cfg.Server.HandshakeTimeout)
	assert.Equal(t, 100, cfg.Session.QueueSize)
	assert.Equal(t, 3*time.Second, cfg.Session.ReconnectDelay)
	assert.False(t, cfg.UI.Interactive)
	assert.Empty(t, cfg.Capture.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
server:
  address: nats://127.0.0.1:4222
  transport: nats
  subject_prefix: game
  session_id: player1
session:
  max_reconnect_attempts: -1
  reconnect_delay: 500ms
  queue_size: 16
logging:
  level: debug
  format: json
ui:
  interactive: true
  cascade_step_x: 3
  ground_tile: [4, 5, 6]
items:
  dir: ./items
capture:
  path: ./captures/session.jsonl.zst
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, TransportNATS, cfg.Server.Transport)
	assert.Equal(t, "game", cfg.Server.SubjectPrefix)
	assert.Equal(t, "player1", cfg.Server.SessionID)
	assert.Equal(t, -1, cfg.Session.MaxReconnectAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.ReconnectDelay)
	assert.Equal(t, 16, cfg.Session.QueueSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.UI.Interactive)
	assert.Equal(t, 3, cfg.UI.CascadeStepX)
	assert.Equal(t, 2, cfg.UI.CascadeStepY, "default kept")
	assert.Equal(t, []int{4, 5, 6}, cfg.UI.GroundTile)
	assert.Equal(t, "./items", cfg.Items.Dir)
	assert.Equal(t, "./captures/session.jsonl.zst", cfg.Capture.Path)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CONTAINERS_SERVER_TRANSPORT", "replay")
	t.Setenv("CONTAINERS_SERVER_ADDRESS", "/tmp/session.jsonl")
	t.Setenv("CONTAINERS_LOGGING_LEVEL", "warn")

	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, TransportReplay, cfg.Server.Transport)
	assert.Equal(t, "/tmp/session.jsonl", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("session.queue_size", 0)

	_, err := LoadFromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.queue_size")
}

func TestValidateTransport(t *testing.T) {
	for _, transport := range []string{TransportWebsocket, TransportNATS, TransportReplay} {
		cfg := validConfig()
		cfg.Server.Transport = transport
		assert.NoError(t, cfg.Validate(), "transport %q should be valid", transport)
	}
	cfg := validConfig()
	cfg.Server.Transport = "tcp"
	assert.Error(t, cfg.Validate())
}

func TestValidateSessionID(t *testing.T) {
	cfg := validConfig()
	cfg.Server.SessionID = "a.b"
	assert.Error(t, cfg.Validate())

	cfg.Server.SessionID = "abc-123"
	assert.NoError(t, cfg.Validate())
}

func TestValidateNATSPrefix(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Transport = TransportNATS
	cfg.Server.SubjectPrefix = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateGroundTile(t *testing.T) {
	cfg := validConfig()
	cfg.UI.GroundTile = []int{1, 2, 3}
	assert.NoError(t, cfg.Validate())

	cfg.UI.GroundTile = []int{1, 2}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui.ground_tile")
}

func TestValidateLoggingFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Address = ""
	cfg.Session.QueueSize = 0
	cfg.UI.MaxLogLines = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"server.address", "session.queue_size", "ui.max_log_lines"} {
		assert.Contains(t, err.Error(), field)
	}
}

// Property-based tests

func TestPropertyReconnectAttempts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(-100, 100).Draw(t, "attempts")
		cfg := validConfig()
		cfg.Session.MaxReconnectAttempts = n
		err := cfg.Validate()
		if n >= -1 && err != nil {
			t.Fatalf("valid attempts %d rejected: %v", n, err)
		}
		if n < -1 && err == nil {
			t.Fatalf("invalid attempts %d accepted", n)
		}
	})
}

func TestPropertyQueueSize(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(-10, 10000).Draw(t, "size")
		cfg := validConfig()
		cfg.Session.QueueSize = size
		if err := cfg.Validate(); (err == nil) != (size >= 1) {
			t.Fatalf("queue size %d: validate returned %v", size, err)
		}
	})
}
