package config

import (
	"fmt"
	"net/url"
	"strings"

	"locoboard/internal/model"
)

// IssueSeverity is the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks startup.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is logged; the affected feature degrades.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the
// config, e.g. "source.failures[1].variant".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints cfg without modifying it.
func Validate(cfg *AppConfig) []Issue {
	var issues []Issue
	issues = append(issues, validateServer(cfg.Server)...)
	issues = append(issues, validateSource(cfg.Source)...)
	issues = append(issues, validateEdit(cfg.Edit)...)
	issues = append(issues, validateReport(cfg.Report)...)
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		issues = append(issues, Issue{SeverityError, "metrics.path", "must start with /"})
	}
	return issues
}

func validateServer(s ServerConfig) []Issue {
	if s.Port < 1 || s.Port > 65535 {
		return []Issue{{SeverityError, "server.port", fmt.Sprintf("port %d out of range", s.Port)}}
	}
	return nil
}

func validateSource(s SourceConfig) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.SpreadsheetID) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.spreadsheet_id",
			Message:  "spreadsheet id must not be empty (or set " + EnvSpreadsheetID + ")",
		})
	}
	if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, Issue{SeverityError, "source.base_url", fmt.Sprintf("invalid url %q", s.BaseURL)})
	}
	if s.TimeoutSeconds < 0 {
		issues = append(issues, Issue{SeverityError, "source.timeout_seconds", "must not be negative"})
	}
	if strings.TrimSpace(s.Sheets.Details) == "" {
		issues = append(issues, Issue{SeverityError, "source.sheets.details", "details sheet is required for lookups"})
	}
	if strings.TrimSpace(s.Sheets.Schedules) == "" {
		issues = append(issues, Issue{SeverityWarning, "source.sheets.schedules", "no schedules sheet; lookups return no schedules"})
	}
	if strings.TrimSpace(s.Sheets.Modifications) == "" {
		issues = append(issues, Issue{SeverityWarning, "source.sheets.modifications", "no modifications sheet; lookups return no modifications"})
	}

	if len(s.Failures) == 0 {
		issues = append(issues, Issue{SeverityWarning, "source.failures", "no failure sheets configured; summaries will be empty"})
	}
	seen := make(map[string]int, len(s.Failures))
	for i, f := range s.Failures {
		path := fmt.Sprintf("source.failures[%d]", i)
		sheet := strings.TrimSpace(f.Sheet)
		if sheet == "" {
			issues = append(issues, Issue{SeverityError, path + ".sheet", "sheet must not be empty"})
		} else if j, dup := seen[sheet]; dup {
			issues = append(issues, Issue{SeverityError, path + ".sheet", fmt.Sprintf("sheet %q already listed at source.failures[%d]", sheet, j)})
		} else {
			seen[sheet] = i
		}
		if strings.TrimSpace(f.Fleet) == "" {
			issues = append(issues, Issue{SeverityWarning, path + ".fleet", "fleet is empty; fleet filters will not match"})
		}
		if _, ok := model.ParseVariant(f.Variant); !ok {
			issues = append(issues, Issue{SeverityError, path + ".variant", fmt.Sprintf("unknown variant %q; want A, B or auto", f.Variant)})
		}
	}
	return issues
}

func validateEdit(e EditConfig) []Issue {
	var issues []Issue
	if strings.TrimSpace(e.URL) == "" {
		issues = append(issues, Issue{SeverityWarning, "edit.url", "edit endpoint not configured; edits are disabled"})
	} else if u, err := url.Parse(e.URL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, Issue{SeverityError, "edit.url", fmt.Sprintf("invalid url %q", e.URL)})
	}
	if e.TimeoutSeconds < 0 {
		issues = append(issues, Issue{SeverityError, "edit.timeout_seconds", "must not be negative"})
	}
	return issues
}

func validateReport(r ReportConfig) []Issue {
	var issues []Issue
	if !model.IsCanonicalField(r.GroupBy) {
		issues = append(issues, Issue{SeverityError, "report.group_by", fmt.Sprintf("unknown field %q", r.GroupBy)})
	}
	if len(r.LocoAccount) == 0 {
		issues = append(issues, Issue{SeverityWarning, "report.loco_account", "no responsibility codes; every failure lands in Others"})
	}
	return issues
}
