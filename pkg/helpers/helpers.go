// Package helpers wires configuration, logging, transports and modules into
// a ready client for the example programs.
package helpers

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/capture"
	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/client/modules/containers"
	"github.com/go-mclib/containers/pkg/client/modules/interaction"
	"github.com/go-mclib/containers/pkg/client/modules/windows"
	"github.com/go-mclib/containers/pkg/config"
	"github.com/go-mclib/containers/pkg/item"
	"github.com/go-mclib/containers/pkg/observability"
	"github.com/go-mclib/containers/pkg/protocol"
	"github.com/go-mclib/containers/pkg/transport/natsbus"
	"github.com/go-mclib/containers/pkg/transport/ws"
	"github.com/go-mclib/containers/pkg/tui"
)

// Flags holds common CLI flags for example programs. Set flags override the
// config file.
type Flags struct {
	ConfigPath  string
	Address     string
	Transport   string
	Capture     string
	Verbose     bool
	Interactive bool
}

// RegisterFlags registers the standard CLI flags on the default flag set.
func RegisterFlags(f *Flags) {
	flag.StringVar(&f.ConfigPath, "c", "", "config file (yaml)")
	flag.StringVar(&f.Address, "s", "", "session address (ws:// URL, nats:// URL or capture file)")
	flag.StringVar(&f.Transport, "t", "", "transport: websocket, nats or replay")
	flag.StringVar(&f.Capture, "record", "", "record inbound events to this file (.zst to compress)")
	flag.BoolVar(&f.Verbose, "v", false, "verbose logging")
	flag.BoolVar(&f.Interactive, "i", false, "enable interactive mode")
}

// LoadConfig loads the config file named by the flags, or the defaults, and
// applies flag overrides.
func LoadConfig(f Flags) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if f.ConfigPath != "" {
		cfg, err = config.Load(f.ConfigPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return config.Config{}, err
	}

	if f.Address != "" {
		cfg.Server.Address = f.Address
	}
	if f.Transport != "" {
		cfg.Server.Transport = f.Transport
	}
	if f.Capture != "" {
		cfg.Capture.Path = f.Capture
	}
	if f.Verbose {
		cfg.Logging.Level = "debug"
	}
	if f.Interactive {
		cfg.UI.Interactive = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// LoadProvider loads the item catalog, or an empty one when no directory is
// configured.
func LoadProvider(cfg config.Config) (*item.Catalog, error) {
	if cfg.Items.Dir == "" {
		return item.NewCatalog()
	}
	return item.LoadCatalog(cfg.Items.Dir)
}

// NewDialer returns the dialer for the configured transport.
func NewDialer(cfg config.Config) (client.Dialer, error) {
	switch cfg.Server.Transport {
	case config.TransportWebsocket:
		return ws.Dialer{HandshakeTimeout: cfg.Server.HandshakeTimeout}, nil
	case config.TransportNATS:
		return natsbus.Dialer{Prefix: cfg.Server.SubjectPrefix, SessionID: cfg.Server.SessionID}, nil
	case config.TransportReplay:
		return capture.Dialer{Delay: cfg.Server.ReplayDelay}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Server.Transport)
	}
}

// NewClient creates a client with the container modules (containers,
// interaction, windows) registered. tk may be nil for a headless client.
func NewClient(cfg config.Config, provider item.Provider, tk windows.Toolkit, logger *zap.Logger) (*client.Client, error) {
	dialer, err := NewDialer(cfg)
	if err != nil {
		return nil, err
	}

	c := client.New(cfg.Server.Address, dialer)
	c.MaxReconnectAttempts = cfg.Session.MaxReconnectAttempts
	c.ReconnectDelay = cfg.Session.ReconnectDelay
	c.OutgoingRequestQueue = make(chan protocol.Request, cfg.Session.QueueSize)
	if logger != nil {
		c.Logger = logger
	}

	c.Register(containers.New())
	c.Register(interaction.New(provider))
	win := windows.New(tk)
	win.StepX = cfg.UI.CascadeStepX
	win.StepY = cfg.UI.CascadeStepY
	c.Register(win)

	return c, nil
}

// App is a configured client plus the optional UI and recorder around it.
type App struct {
	Config   config.Config
	Client   *client.Client
	Logger   *zap.Logger
	UI       *tui.TUI
	Recorder *capture.Recorder
}

// NewApp builds everything the config asks for. In interactive mode logs go
// to the UI log pane instead of stderr.
func NewApp(cfg config.Config) (*App, error) {
	catalog, err := LoadProvider(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg}
	var tk windows.Toolkit
	if cfg.UI.Interactive {
		app.UI = tui.New(catalog, cfg.UI.MaxLogLines)
		if g := cfg.UI.GroundTile; len(g) == 3 {
			app.UI.GroundTile = address.Position{X: g[0], Y: g[1], Z: g[2]}
		}
		tk = app.UI
	} else {
		if app.Logger, err = observability.NewLogger(cfg.Logging); err != nil {
			return nil, err
		}
	}

	if app.Client, err = NewClient(cfg, catalog, tk, app.Logger); err != nil {
		return nil, err
	}
	if app.UI != nil {
		app.UI.Bind(app.Client)
	}

	if cfg.Capture.Path != "" {
		if app.Recorder, err = capture.NewRecorder(cfg.Capture.Path); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Run connects and runs the session until ctx ends, the session gives up,
// or the user quits the UI.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if a.Recorder != nil {
			if err := a.Recorder.Close(); err != nil {
				a.Client.Logger.Warn("closing capture", zap.Error(err))
			}
		}
		_ = a.Client.Logger.Sync()
	}()

	if a.Recorder != nil {
		a.Client.RegisterHandler(a.Recorder.Handler(a.Client.Logger))
	}

	if a.UI == nil {
		return a.Client.ConnectAndStart(ctx)
	}

	program, writer := tui.Start(a.UI)
	logger, err := observability.NewLoggerTo(a.Config.Logging, writer)
	if err != nil {
		return err
	}
	a.Client.Logger = logger
	defer program.Quit()

	tuiDone := make(chan error, 1)
	go func() {
		_, err := program.Run()
		tuiDone <- err
	}()

	clientDone := make(chan error, 1)
	go func() {
		clientDone <- a.Client.ConnectAndStart(ctx)
	}()

	select {
	case err := <-tuiDone:
		// the quit key already disconnected; this covers other exits
		_ = a.Client.Disconnect(true)
		return err
	case err := <-clientDone:
		return err
	}
}
