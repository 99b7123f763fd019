// Package v1 exposes the dashboard over HTTP.
package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"locoboard/internal/config"
	"locoboard/internal/dashboard"
	"locoboard/internal/editor"
	"locoboard/internal/model"
	"locoboard/internal/sheets"
)

// LogReader reads the operational log.
type LogReader interface {
	RecentFetchLogs(ctx context.Context, sheet string, limit int) ([]model.FetchLog, error)
	RecentEditLogs(ctx context.Context, locoNo string, limit int) ([]model.EditLog, error)
	GetTime(key string) (time.Time, error)
}

// Handler is the v1 API handler.
type Handler struct {
	svc       *dashboard.Service
	editor    *editor.Client
	logs      LogReader
	cfg       *config.AppConfig
	labels    *config.Labels
	logger    *slog.Logger
	downloads *exportDownloadStore
}

// Options wires a Handler. Logs may be nil.
type Options struct {
	Service *dashboard.Service
	Editor  *editor.Client
	Logs    LogReader
	Config  *config.AppConfig
	Labels  *config.Labels
	Logger  *slog.Logger
}

// NewHandler creates the v1 API handler.
func NewHandler(opts Options) *Handler {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Labels == nil {
		opts.Labels = config.DefaultLabels()
	}
	if opts.Editor == nil {
		opts.Editor = editor.NewClient(editor.Config{})
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{
		svc:       opts.Service,
		editor:    opts.Editor,
		logs:      opts.Logs,
		cfg:       opts.Config,
		labels:    opts.Labels,
		logger:    opts.Logger,
		downloads: newExportDownloadStore(),
	}
}

// RegisterRoutes registers the v1 routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.GET("/labels", h.GetLabels)

	// locomotives
	router.GET("/locos", h.SearchLocos)
	router.GET("/locos/:id", h.GetLoco)

	// failures and summaries
	router.GET("/fiscal-years", h.ListFiscalYears)
	router.GET("/failures", h.ListFailures)
	router.GET("/failure-sheets", h.ListFailureSheets)
	router.POST("/failures/edit", h.EditFailure)
	router.GET("/summary", h.GetSummary)
	router.GET("/summary/combined", h.GetCombined)
	router.GET("/summary/subsystems", h.GetSubsystems)
	router.GET("/summary/cell", h.GetCell)
	router.GET("/summary/trend", h.GetTrend)

	// export
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)

	// operational logs
	router.GET("/logs/fetches", h.ListFetchLogs)
	router.GET("/logs/edits", h.ListEditLogs)
}

// fail writes err with the status its type maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		qe  *dashboard.QueryError
		rue *editor.RemoteUpdateError
		sfe *sheets.SourceFormatError
		sae *sheets.SourceAPIError
		he  *sheets.HTTPError
	)
	switch {
	case errors.As(err, &qe):
		c.JSON(http.StatusBadRequest, gin.H{"error": qe.Error(), "param": qe.Param})
	case errors.As(err, &rue):
		c.JSON(rue.Code, gin.H{"status": "error", "error": rue.Message, "requestId": rue.RequestID})
	case errors.Is(err, editor.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &sfe), errors.As(err, &sae), errors.As(err, &he):
		h.logger.Warn("source error", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "data source timed out"})
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// intQuery reads a non-negative integer parameter.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	s := c.Query(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &dashboard.QueryError{Param: name, Message: strconv.Quote(s) + " is not a non-negative integer"}
	}
	return n, nil
}

func boolQuery(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(c.Query(name))
	return b
}
