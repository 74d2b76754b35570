// Package main is the entry point for the harptabs CLI
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/0xlemi/harptabs/internal/config"
	"github.com/0xlemi/harptabs/internal/logging"
	"github.com/0xlemi/harptabs/internal/settings"
	"github.com/0xlemi/harptabs/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options holds the persistent flags shared by every command
type options struct {
	configPath string
	dbPath     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "harptabs",
		Short: "Chromatic harmonica tab library",
		Long: `harptabs keeps a library of chromatic harmonica tabs, plays them back
and listens to you practice them.

Examples:
  harptabs                      open the terminal UI
  harptabs list --favorites
  harptabs add --title "Ode to Joy" --notes "5 5 -5 6 | 6 -5 5 -4"
  harptabs render 3 -o ode.wav
  harptabs export 3 -o ode.mid
  harptabs serve --port 8080`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Database file, overrides the config")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newTUICmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newDeleteCmd(opts),
		newFavoriteCmd(opts),
		newSeedCmd(opts),
		newListenCmd(opts),
		newPlayCmd(opts),
		newRenderCmd(opts),
		newExportCmd(opts),
		newSettingsCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// loadConfig reads the config file and applies flag overrides
func (o *options) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.dbPath != "" {
		cfg.Database = o.dbPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// env is the opened configuration, logger and database of one command
type env struct {
	cfg      config.Config
	log      *logrus.Logger
	store    *store.SQLiteStore
	settings *settings.Repository
	closers  []io.Closer
}

// open loads the config and opens the database, logging to logOut
func (o *options) open(logOut io.Writer) (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logging.Setup(cfg.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	if cfg.Database != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	s, err := store.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	log.WithField("database", cfg.Database).Debug("opened database")

	return &env{
		cfg:      cfg,
		log:      log,
		store:    s,
		settings: settings.NewRepository(s),
		closers:  []io.Closer{s},
	}, nil
}

// openLogged is open with logs sent to the configured log file, for commands
// that take over the terminal
func (o *options) openLogged() (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	f, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	e, err := o.open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	// closed last
	e.closers = append([]io.Closer{f}, e.closers...)
	return e, nil
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			e.log.WithError(err).Warn("close failed")
		}
	}
}
