// Package app assembles the runtime components from the configuration.
package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"locoboard/internal/config"
	"locoboard/internal/dashboard"
	"locoboard/internal/editor"
	"locoboard/internal/metrics"
	"locoboard/internal/metrics/prom"
	"locoboard/internal/sheets"
	"locoboard/internal/store"
)

// App holds the wired components. Store and Metrics are nil when disabled.
type App struct {
	Config     *config.AppConfig
	ConfigPath string
	Labels     *config.Labels
	Store      *store.Store
	Sheets     *sheets.Client
	Service    *dashboard.Service
	Editor     *editor.Client
	Metrics    *prom.Backend
	Logger     *slog.Logger
}

// Options selects optional components.
type Options struct {
	WithStore   bool // open the operational log
	WithMetrics bool // install the Prometheus backend when enabled in config
}

// New wires an App. Call Close when done.
func New(cfg *config.AppConfig, configPath string, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, ConfigPath: configPath, Logger: logger}

	labelsPath := config.ResolvePath(configPath, cfg.Report.LabelsFile)
	labels, err := config.LoadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	a.Labels = labels

	if opts.WithStore {
		dataDir, err := config.EnsureDataDir(cfg, configPath)
		if err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		st, err := store.New(filepath.Join(dataDir, cfg.Data.LogDB))
		if err != nil {
			return nil, fmt.Errorf("open operational log: %w", err)
		}
		a.Store = st
	}

	if opts.WithMetrics && cfg.Metrics.Enabled {
		b, err := prom.NewBackend()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("metrics: %w", err)
		}
		metrics.SetBackend(b)
		a.Metrics = b
	}

	a.Sheets = sheets.NewClient(sheets.Config{
		BaseURL:       cfg.Source.BaseURL,
		SpreadsheetID: cfg.Source.SpreadsheetID,
		Timeout:       cfg.SourceTimeout(),
	})
	var fetchLogs dashboard.FetchLogWriter
	var editLogs editor.EditLogWriter
	if a.Store != nil {
		fetchLogs, editLogs = a.Store, a.Store
	}
	a.Sheets.SetRecorder(dashboard.NewRecorder(fetchLogs, logger))

	opt := dashboard.OptionsFromConfig(cfg, labels)
	opt.Logger = logger
	a.Service = dashboard.NewService(a.Sheets, opt)

	a.Editor = editor.NewClient(editor.Config{
		URL:     cfg.Edit.URL,
		Timeout: cfg.EditTimeout(),
		Logs:    editLogs,
		Logger:  logger,
	})
	return a, nil
}

// Close releases the operational log and resets the metrics backend.
func (a *App) Close() error {
	if a.Metrics != nil {
		metrics.SetBackend(nil)
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
