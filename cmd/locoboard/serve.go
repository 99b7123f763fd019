package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"locoboard/internal/app"
	"locoboard/internal/config"
	"locoboard/internal/server"
	"locoboard/internal/store"
	"locoboard/internal/util"
)

// fetchLogRetention bounds the operational fetch log.
const fetchLogRetention = 30 * 24 * time.Hour

type serveOptions struct {
	port      int
	devMode   bool
	dataDir   string
	noBrowser bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root, opts)
		},
	}
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (ignored when config.toml sets one)")
	cmd.Flags().BoolVar(&opts.devMode, "dev", false, "development mode")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "data directory (overrides config)")
	cmd.Flags().BoolVar(&opts.noBrowser, "no-browser", false, "do not open a browser")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "==========================================")
	fmt.Fprintln(out, "  locoboard - shed failure dashboard")
	fmt.Fprintln(out, "==========================================")

	cfg, info, err := root.loadConfig()
	if err != nil {
		return err
	}
	if opts.port > 0 && !info.PortSpecified {
		cfg.Server.Port = opts.port
	}
	if opts.devMode {
		cfg.Server.DevMode = true
	}
	if opts.dataDir != "" {
		cfg.Data.DataDir = opts.dataDir
	}
	if opts.noBrowser {
		cfg.Server.OpenBrowser = false
	}

	logger := root.newLogger(os.Stderr, cfg.Server.DevMode)
	if info.Found {
		logger.Info("config loaded", "path", info.Path)
	} else {
		logger.Info("no config file, using defaults", "path", info.Path)
	}
	issues := config.Validate(cfg)
	for _, is := range issues {
		if is.Severity == config.SeverityError {
			logger.Error("config", "path", is.Path, "msg", is.Message)
		} else {
			logger.Warn("config", "path", is.Path, "msg", is.Message)
		}
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("invalid configuration in %s", info.Path)
	}

	a, err := app.New(cfg, root.configPath, logger, app.Options{WithStore: true, WithMetrics: true})
	if err != nil {
		return err
	}
	defer a.Close()

	now := time.Now()
	if err := a.Store.SetTime(store.SettingLastStartedAt, now); err != nil {
		logger.Warn("record start time", "err", err)
	}
	pruned, err := a.Store.PruneFetchLogs(cmd.Context(), now.Add(-fetchLogRetention))
	if err != nil {
		logger.Warn("prune fetch logs", "err", err)
	} else {
		_ = a.Store.SetTime(store.SettingLastPrunedAt, now)
		logger.Debug("fetch logs pruned", "rows", pruned)
	}

	srv := server.NewServer(a)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Run(addr)
	}()

	if cfg.Server.OpenBrowser && !cfg.Server.DevMode {
		fmt.Fprintf(out, "Opening browser: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Fprintf(out, "Could not open a browser, visit %s\n", url)
		}
	} else {
		fmt.Fprintf(out, "Listening on %s\n", url)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop...")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	fmt.Fprintln(out, "\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
