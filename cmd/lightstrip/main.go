// Command lightstrip drives an encoder-selected LED strip.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coreman2200/funtimes-lightstrip/internal/config"
	"github.com/coreman2200/funtimes-lightstrip/internal/logging"
)

// env is what every subcommand starts from.
type env struct {
	cfg *config.Config
	log zerolog.Logger
}

var (
	configPath string
	logLevel   string
	logFormat  string

	overrides struct {
		driver     string
		length     int
		brightness int
		link       string
		linkAddr   string
		metrics    string
	}
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lightstrip",
		Short:         "Encoder-selected LED strip controller",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "lightstrip.yaml", "path to config (.yaml or .toml)")
	pf.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error); overrides config")
	pf.StringVar(&logFormat, "log-format", logging.FormatAuto, "log format: auto, console, json or journal")
	pf.StringVar(&overrides.driver, "driver", "", "strip driver: spi, console or sim")
	pf.IntVar(&overrides.length, "length", 0, "pixel count")
	pf.IntVar(&overrides.brightness, "brightness", 0, "global brightness 0..255")
	pf.StringVar(&overrides.link, "link", "", "link mode: always, ws or never")
	pf.StringVar(&overrides.linkAddr, "link-addr", "", "link websocket listen address")
	pf.StringVar(&overrides.metrics, "metrics-addr", "", "Prometheus listen address; empty disables")

	root.AddCommand(newRunCmd(), newSimCmd(), newSelftestCmd(), newConfigCmd())
	return root
}

// setup loads the config, applies flags the user actually set, and builds
// the logger. A missing config file at the default path is not an error.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, loadErr := config.Load(configPath)
	if loadErr != nil {
		cfg = config.Default()
	}
	applyFlags(cmd.Flags(), cfg)

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log, err := logging.New(logging.Options{Level: level, Format: logFormat, Out: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}

	if loadErr != nil {
		if errors.Is(loadErr, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
			log.Info().Str("path", configPath).Msg("no config file; using defaults")
		} else {
			return nil, loadErr
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}

func applyFlags(fl *pflag.FlagSet, cfg *config.Config) {
	if fl.Changed("driver") {
		cfg.Strip.Driver = overrides.driver
	}
	if fl.Changed("length") {
		cfg.Strip.Length = overrides.length
	}
	if fl.Changed("brightness") {
		cfg.Strip.Brightness = overrides.brightness
	}
	if fl.Changed("link") {
		cfg.Link.Mode = overrides.link
	}
	if fl.Changed("link-addr") {
		cfg.Link.Addr = overrides.linkAddr
	}
	if fl.Changed("metrics-addr") {
		cfg.Metrics.Addr = overrides.metrics
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case s := <-ch:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
