package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"locoboard/internal/app"
	"locoboard/internal/config"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "locoboard",
		Short: "Locomotive shed failure dashboard",
		Long: `locoboard reads locomotive inventory, schedules, modifications and failure
logs from a shared spreadsheet and serves financial-year failure summaries,
per-locomotive lookups and failure amendments.

Running without a subcommand starts the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath(), "path to config.toml")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	serve := newServeCmd(opts)
	cmd.RunE = serve.RunE
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.AddCommand(
		serve,
		newSummaryCmd(opts),
		newLookupCmd(opts),
		newValidateCmd(opts),
		newInitCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads the config file over the defaults.
func (o *rootOptions) loadConfig() (*config.AppConfig, config.LoadConfigInfo, error) {
	cfg, info, err := config.LoadConfigWithInfo(o.configPath)
	if err != nil {
		return nil, info, fmt.Errorf("load %s: %w", o.configPath, err)
	}
	return cfg, info, nil
}

// newLogger builds the process logger: text in dev mode, JSON otherwise.
func (o *rootOptions) newLogger(w io.Writer, devMode bool) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if devMode {
		h = slog.NewTextHandler(w, hopts)
	} else {
		h = slog.NewJSONHandler(w, hopts)
	}
	return slog.New(h)
}

// openApp wires the components for a one-shot command. Logs go to stderr so
// stdout carries only the command's output.
func (o *rootOptions) openApp(withStore bool) (*app.App, error) {
	cfg, _, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := o.newLogger(os.Stderr, true)
	return app.New(cfg, o.configPath, logger, app.Options{WithStore: withStore})
}
