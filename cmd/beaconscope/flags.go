package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/beacon.scope/internal/beacon"
	"github.com/banshee-data/beacon.scope/internal/config"
	"github.com/banshee-data/beacon.scope/internal/monitoring"
	"github.com/banshee-data/beacon.scope/internal/scope"
	"github.com/banshee-data/beacon.scope/internal/stream"
	"github.com/banshee-data/beacon.scope/internal/timeutil"
	"github.com/banshee-data/beacon.scope/internal/units"
	"github.com/banshee-data/beacon.scope/internal/viewport"
)

const syntheticURL = "synthetic://beacon"

type rootFlags struct {
	configFile string
	url        string
	host       string
	port       int
	secure     bool
	legacyInf  bool
	dev        bool
	logFile    string
	quiet      bool
	units      string

	cmd *cobra.Command
}

func (f *rootFlags) register(cmd *cobra.Command) {
	f.cmd = cmd
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "Path to a JSON or YAML config file")
	pf.StringVar(&f.url, "url", "", "WebSocket URL (overrides --host/--port)")
	pf.StringVar(&f.host, "host", "", "Moonraker host")
	pf.IntVar(&f.port, "port", 80, "Moonraker port")
	pf.BoolVar(&f.secure, "secure", false, "Use wss://")
	pf.BoolVar(&f.legacyInf, "legacy-negative-infinity", false, "Read -inf as +inf like older viewers")
	pf.BoolVar(&f.dev, "dev", false, "Use a synthetic sample stream instead of a printer")
	pf.StringVar(&f.logFile, "log-file", "", "Append diagnostics to this file")
	pf.BoolVar(&f.quiet, "quiet", false, "Discard diagnostics")
	pf.StringVar(&f.units, "units", units.MM, "Distance unit for readouts: "+units.GetValidUnitsString())
}

func (f *rootFlags) setupLogging() error {
	if !units.IsValid(f.units) {
		return fmt.Errorf("invalid --units %q: want one of %s", f.units, units.GetValidUnitsString())
	}
	switch {
	case f.logFile != "":
		if err := monitoring.LogToFile(f.logFile); err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
	case f.quiet:
		monitoring.SetLogger(nil)
	}
	return nil
}

func (f *rootFlags) closeLogging() error {
	if f.logFile == "" {
		return nil
	}
	return monitoring.CloseLogFile()
}

// loadConfig reads --config and lays explicitly set flags over it.
func (f *rootFlags) loadConfig() (*config.Config, error) {
	cfg := config.Empty()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	override := config.Empty()
	changed := f.cmd.PersistentFlags().Changed
	if changed("url") {
		override.URL = &f.url
	}
	if changed("host") {
		override.Host = &f.host
	}
	if changed("port") {
		override.Port = &f.port
	}
	if changed("secure") {
		override.Secure = &f.secure
	}
	if changed("legacy-negative-infinity") {
		override.LegacyNegativeInfinity = &f.legacyInf
	}
	cfg.Merge(override)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg     *config.Config
	url     string
	clock   timeutil.Clock
	session *stream.Session
	view    *scope.View
}

func (f *rootFlags) newApp() (*app, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, clock: timeutil.RealClock{}}
	var dialer stream.Dialer
	if f.dev {
		a.url = syntheticURL
		dialer = stream.NewSyntheticDialer(a.clock)
	} else {
		if a.url, err = cfg.GetURL(); err != nil {
			return nil, err
		}
		dialer = stream.WebsocketDialer{HandshakeTimeout: cfg.GetDialTimeout()}
	}

	a.session = stream.NewSession(dialer, stream.Options{
		Decoder:          beacon.Options{LegacyNegativeInfinity: cfg.GetLegacyNegativeInfinity()},
		SubscriberBuffer: cfg.GetSubscriberBuffer(),
	})
	a.view = scope.NewView(a.clock, scopeOptions(cfg))
	return a, nil
}

func scopeOptions(cfg *config.Config) scope.Options {
	o := scope.DefaultOptions()
	o.Viewport = viewport.Options{
		Window:      cfg.GetWindow(),
		PanStep:     cfg.GetPanStep(),
		FinePanStep: cfg.GetFinePanStep(),
		ZoomFactor:  cfg.GetZoomFactor(),
		Values:      viewport.Range{Min: cfg.GetValueMin(), Max: cfg.GetValueMax()},
		MinSpan:     o.Viewport.MinSpan,
	}
	o.HitRadiusPx = cfg.GetHitRadiusPx()
	o.InfinityClamp = cfg.GetInfinityClamp()
	return o
}

func (a *app) connect(ctx context.Context) error {
	return a.session.Connect(ctx, a.url)
}

func (a *app) close() {
	a.view.Detach()
	a.session.Close()
}
