// Package dashboard answers dashboard queries. Each query fetches the tables
// it needs concurrently, fails on the first fetch error, and then parses and
// aggregates on the calling goroutine.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"locoboard/internal/config"
	"locoboard/internal/lookup"
	"locoboard/internal/metrics"
	"locoboard/internal/model"
	"locoboard/internal/parser"
	"locoboard/internal/report"
)

// Source fetches one sheet as a raw table.
type Source interface {
	Fetch(ctx context.Context, sheet string) (model.RawTable, error)
}

// Options configures a Service.
type Options struct {
	Sheets      config.SheetNames
	Failures    []config.FailureSource
	LocoAccount []string
	GroupBy     string
	Classifier  *report.Classifier
	Logger      *slog.Logger
}

// OptionsFromConfig builds Options from the application config.
func OptionsFromConfig(cfg *config.AppConfig, labels *config.Labels) Options {
	return Options{
		Sheets:      cfg.Source.Sheets,
		Failures:    cfg.Source.Failures,
		LocoAccount: cfg.Report.LocoAccount,
		GroupBy:     cfg.Report.GroupBy,
		Classifier:  labels.Classifier(),
	}
}

// Service is the dashboard query layer.
type Service struct {
	src        Source
	opts       Options
	recognizer *parser.SheetRecognizer
	classifier *report.Classifier
	logger     *slog.Logger

	idsMu sync.Mutex
	ids   *lookup.Index
}

// NewService creates a service reading from src.
func NewService(src Source, opts Options) *Service {
	if opts.GroupBy == "" {
		opts.GroupBy = model.FieldEquipment
	}
	s := &Service{
		src:        src,
		opts:       opts,
		recognizer: parser.NewSheetRecognizer(),
		classifier: opts.Classifier,
		logger:     opts.Logger,
	}
	if s.classifier == nil {
		s.classifier = report.DefaultClassifier()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// DefaultGroupBy returns the configured grouping field.
func (s *Service) DefaultGroupBy() string {
	return s.opts.GroupBy
}

// FailureSheet describes how one failure sheet was read.
type FailureSheet struct {
	Sheet       string                     `json:"sheet"`
	Fleet       string                     `json:"fleet"`
	Variant     model.Variant              `json:"variant"`
	Recognition *parser.VariantRecognition `json:"recognition,omitempty"`
	Mappings    []parser.FieldMapping      `json:"mappings"`
	Rows        int                        `json:"rows"`
}

// Dataset holds the tables of one query.
type Dataset struct {
	Details       model.Table           `json:"details"`
	Schedules     model.Table           `json:"schedules"`
	Modifications model.Table           `json:"modifications"`
	Failures      []model.FailureRecord `json:"failures"`
	FailureSheets []FailureSheet        `json:"failureSheets"`
}

// Tables returns the dataset as lookup input.
func (d Dataset) Tables() lookup.Tables {
	return lookup.Tables{
		Details:       d.Details.Records,
		Schedules:     d.Schedules.Records,
		Modifications: d.Modifications.Records,
		Failures:      d.Failures,
	}
}

type fetchJob struct {
	kind   model.TableKind
	sheet  string
	source config.FailureSource
	raw    model.RawTable
}

// Load fetches the requested kinds concurrently. The first failed fetch
// cancels the rest and is returned; nothing is retried.
func (s *Service) Load(ctx context.Context, kinds ...model.TableKind) (Dataset, error) {
	jobs := s.jobs(kinds)

	g, gctx := errgroup.WithContext(ctx)
	for i := range jobs {
		job := &jobs[i]
		g.Go(func() error {
			raw, err := s.src.Fetch(gctx, job.sheet)
			if err != nil {
				return err
			}
			job.raw = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dataset{}, err
	}

	var ds Dataset
	for _, job := range jobs {
		switch job.kind {
		case model.TableDetails:
			ds.Details = parser.ParseSheet(job.sheet, job.kind, job.raw, false)
		case model.TableModifications:
			ds.Modifications = parser.ParseSheet(job.sheet, job.kind, job.raw, false)
		case model.TableSchedules:
			ds.Schedules = parser.ParseSheet(job.sheet, job.kind, job.raw, true)
		case model.TableFailures:
			records, info := s.reconcile(job.source, job.raw)
			ds.Failures = append(ds.Failures, records...)
			ds.FailureSheets = append(ds.FailureSheets, info)
		}
	}
	return ds, nil
}

func (s *Service) jobs(kinds []model.TableKind) []fetchJob {
	want := make(map[model.TableKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var jobs []fetchJob
	add := func(kind model.TableKind, sheet string) {
		if want[kind] && strings.TrimSpace(sheet) != "" {
			jobs = append(jobs, fetchJob{kind: kind, sheet: sheet})
		}
	}
	add(model.TableDetails, s.opts.Sheets.Details)
	add(model.TableSchedules, s.opts.Sheets.Schedules)
	add(model.TableModifications, s.opts.Sheets.Modifications)
	if want[model.TableFailures] {
		for _, f := range s.opts.Failures {
			jobs = append(jobs, fetchJob{kind: model.TableFailures, sheet: f.Sheet, source: f})
		}
	}
	return jobs
}

// reconcile parses a failure sheet and maps every row onto the canonical shape.
func (s *Service) reconcile(src config.FailureSource, raw model.RawTable) ([]model.FailureRecord, FailureSheet) {
	table := parser.ParseSheet(src.Sheet, model.TableFailures, raw, true)
	info := FailureSheet{Sheet: src.Sheet, Fleet: src.Fleet, Rows: len(table.Records)}

	variant, _ := model.ParseVariant(src.Variant)
	if variant == model.VariantAuto {
		rec := s.recognizer.Recognize(src.Sheet, table.Columns)
		info.Recognition = &rec
		variant = rec.Variant
		if variant == "" {
			s.logger.Warn("failure sheet not recognized, reading as variant A",
				"sheet", src.Sheet, "confidence", rec.Confidence)
			variant = model.VariantA
		}
	}
	info.Variant = variant
	info.Mappings = parser.NewFieldMapper(variant).Mappings(table.Columns)

	out := make([]model.FailureRecord, 0, len(table.Records))
	for i, rec := range table.Records {
		f := parser.Reconcile(variant, rec)
		f.Fleet = src.Fleet
		f.Sheet = src.Sheet
		f.Row = i + 1
		out = append(out, f)
	}
	return out, info
}

// Failures loads every failure sheet.
func (s *Service) Failures(ctx context.Context) ([]model.FailureRecord, error) {
	ds, err := s.Load(ctx, model.TableFailures)
	if err != nil {
		return nil, err
	}
	return ds.Failures, nil
}

// FailureSheets fetches every failure sheet and reports how each was read:
// its variant and the source column behind every canonical field.
func (s *Service) FailureSheets(ctx context.Context) ([]FailureSheet, error) {
	ds, err := s.Load(ctx, model.TableFailures)
	if err != nil {
		return nil, err
	}
	return ds.FailureSheets, nil
}

// SubsystemCategories lists the categories of the subsystem classification.
func (s *Service) SubsystemCategories() []string {
	return s.classifier.Categories()
}

// LocoData joins every table for one locomotive. ok is false when the
// locomotive is not in the detail table.
func (s *Service) LocoData(ctx context.Context, id string) (_ lookup.LocoData, _ bool, err error) {
	defer func() { metrics.RecordQuery("loco", err) }()

	ds, err := s.Load(ctx, model.TableDetails, model.TableSchedules, model.TableModifications, model.TableFailures)
	if err != nil {
		return lookup.LocoData{}, false, err
	}
	data, ok := lookup.Resolve(id, ds.Tables())
	return data, ok, nil
}

// LocoIDs returns the index of valid locomotive ids. It is loaded on first
// use and then reused read-only; a failed load is retried on the next call.
func (s *Service) LocoIDs(ctx context.Context) (*lookup.Index, error) {
	s.idsMu.Lock()
	defer s.idsMu.Unlock()
	if s.ids != nil {
		return s.ids, nil
	}
	ds, err := s.Load(ctx, model.TableDetails)
	if err != nil {
		return nil, fmt.Errorf("load locomotive ids: %w", err)
	}
	s.ids = lookup.NewIndex(ds.Details.Records)
	s.logger.Info("locomotive ids loaded", "count", s.ids.Len())
	return s.ids, nil
}

// LoadedIDs returns the number of cached ids, -1 before the first load.
func (s *Service) LoadedIDs() int {
	s.idsMu.Lock()
	defer s.idsMu.Unlock()
	if s.ids == nil {
		return -1
	}
	return s.ids.Len()
}

// Search looks up ids matching q.
func (s *Service) Search(ctx context.Context, q string, limit int) ([]string, error) {
	idx, err := s.LocoIDs(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Search(q, limit), nil
}
