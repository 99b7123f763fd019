package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"locoboard/internal/metrics"
	"locoboard/internal/model"
	"locoboard/internal/parser"
	"locoboard/internal/report"
)

// View names accepted by summary queries.
const (
	ViewAll          = "all"
	ViewLocoAccount  = "loco-account"
	ViewOthers       = "others"
	ViewICMS         = "icms"
	ViewMessage      = "message"
	ViewPending      = "pending"
	ViewInvestigated = "investigated"
)

// pendingStatuses are investigation statuses of failures still under
// investigation. A blank status also counts as pending.
var pendingStatuses = []string{"pending", "open", "under investigation", "awaited"}

// QueryError is a malformed query parameter.
type QueryError struct {
	Param   string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Message)
}

// SummaryQuery selects one summary table.
type SummaryQuery struct {
	FY      string
	GroupBy string
	View    string
	Fleet   string
	Status  string // comma-separated investigation statuses
}

type resolvedQuery struct {
	fy      model.FinancialYear
	groupBy string
	view    report.View
}

func (s *Service) resolve(q SummaryQuery) (resolvedQuery, error) {
	var rq resolvedQuery

	fy, err := model.ParseFinancialYear(q.FY)
	if err != nil {
		return rq, &QueryError{Param: "fy", Message: err.Error()}
	}
	rq.fy = fy

	rq.groupBy = strings.TrimSpace(q.GroupBy)
	if rq.groupBy == "" {
		rq.groupBy = s.opts.GroupBy
	}
	if !model.IsCanonicalField(rq.groupBy) {
		return rq, &QueryError{Param: "groupBy", Message: fmt.Sprintf("unknown field %q", rq.groupBy)}
	}

	v, err := s.view(q.View, rq.groupBy)
	if err != nil {
		return rq, err
	}
	if fleet := strings.TrimSpace(q.Fleet); fleet != "" {
		v.Include = report.And(report.Fleet(fleet), v.Include)
	}
	if statuses := splitList(q.Status); len(statuses) > 0 {
		v.Include = report.And(report.InvestigationStatus(statuses...), v.Include)
	}
	rq.view = v
	return rq, nil
}

// view builds a named view grouped by groupBy.
func (s *Service) view(name, groupBy string) (report.View, error) {
	v := report.View{GroupBy: groupBy, Classifier: s.classifier}
	own := report.Responsibility(s.opts.LocoAccount...)
	pending := report.Or(
		report.InvestigationStatus(pendingStatuses...),
		report.FieldIn(model.FieldInvestigationStatus, ""),
	)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ViewAll:
		v.Name = "All"
	case ViewLocoAccount:
		v.Name, v.Include = "Loco Account", own
	case ViewOthers:
		v.Name, v.Include = "Others", report.Not(own)
	case ViewICMS:
		v.Name, v.Include = "ICMS", report.ICMSOnly
	case ViewMessage:
		v.Name, v.Include = "Message", report.MessageOnly
	case ViewPending:
		v.Name, v.Include = "Pending Investigation", pending
	case ViewInvestigated:
		v.Name, v.Include = "Investigated", report.Not(pending)
	default:
		return v, &QueryError{Param: "view", Message: fmt.Sprintf("unknown view %q", name)}
	}
	return v, nil
}

// Summary computes one summary table.
func (s *Service) Summary(ctx context.Context, q SummaryQuery) (_ report.SummaryTable, err error) {
	defer func() { metrics.RecordQuery("summary", err) }()

	rq, err := s.resolve(q)
	if err != nil {
		return report.SummaryTable{}, err
	}
	failures, err := s.Failures(ctx)
	if err != nil {
		return report.SummaryTable{}, err
	}
	return report.SummarizeViews(failures, rq.fy, []report.View{rq.view})[0], nil
}

// Combined computes the Loco Account and Others views and their merged
// "All" table.
func (s *Service) Combined(ctx context.Context, q SummaryQuery) (_ []report.SummaryTable, err error) {
	defer func() { metrics.RecordQuery("combined", err) }()

	q.View = ViewAll
	rq, err := s.resolve(q)
	if err != nil {
		return nil, err
	}
	failures, err := s.Failures(ctx)
	if err != nil {
		return nil, err
	}
	return report.Combined(failures, rq.fy, s.accountViews(rq))
}

// accountViews narrows the Loco Account and Others views by rq's filters.
func (s *Service) accountViews(rq resolvedQuery) []report.View {
	views := report.AccountViews(s.opts.LocoAccount, rq.groupBy)
	for i := range views {
		views[i].Classifier = rq.view.Classifier
		views[i].Include = report.And(rq.view.Include, views[i].Include)
	}
	return views
}

// Subsystems groups the failures of fy by subsystem category.
func (s *Service) Subsystems(ctx context.Context, fy, fleet string) (report.SummaryTable, error) {
	t, err := s.Summary(ctx, SummaryQuery{FY: fy, GroupBy: model.FieldSubsystem, Fleet: fleet})
	if err != nil {
		return report.SummaryTable{}, err
	}
	t.Name = subsystemsName(fleet)
	return t, nil
}

func subsystemsName(fleet string) string {
	if fleet = strings.TrimSpace(fleet); fleet != "" {
		return "Subsystems " + fleet
	}
	return "Subsystems"
}

// WorkbookQuery selects the tables of an export. With no views it yields the
// Loco Account, Others and merged tables.
type WorkbookQuery struct {
	FY         string
	GroupBy    string
	Fleet      string
	Status     string
	Views      []string
	Subsystems bool
}

// Workbook computes every table of an export from a single load of the
// failure sheets.
func (s *Service) Workbook(ctx context.Context, q WorkbookQuery) (_ []report.SummaryTable, err error) {
	defer func() { metrics.RecordQuery("workbook", err) }()

	base := SummaryQuery{FY: q.FY, GroupBy: q.GroupBy, Fleet: q.Fleet, Status: q.Status}
	var (
		fy      model.FinancialYear
		account []report.View
		views   []report.View
	)
	if len(q.Views) == 0 {
		aq := base
		aq.View = ViewAll
		rq, err := s.resolve(aq)
		if err != nil {
			return nil, err
		}
		fy, account = rq.fy, s.accountViews(rq)
	}
	for _, name := range q.Views {
		vq := base
		vq.View = name
		rq, err := s.resolve(vq)
		if err != nil {
			return nil, err
		}
		fy = rq.fy
		views = append(views, rq.view)
	}
	if q.Subsystems {
		sq := base
		sq.GroupBy = model.FieldSubsystem
		rq, err := s.resolve(sq)
		if err != nil {
			return nil, err
		}
		rq.view.Name = subsystemsName(q.Fleet)
		fy = rq.fy
		views = append(views, rq.view)
	}

	failures, err := s.Failures(ctx)
	if err != nil {
		return nil, err
	}
	var tables []report.SummaryTable
	if account != nil {
		tables, err = report.Combined(failures, fy, account)
		if err != nil {
			return nil, err
		}
	}
	return append(tables, report.SummarizeViews(failures, fy, views)...), nil
}

// CellRef selects one summary cell. Grand selects the grand-total row and
// Key is then ignored. Month is an FY month label ("Jun"), a calendar month
// number ("6") or "total" for the row total.
type CellRef struct {
	Key   string
	Grand bool
	Month string
}

// Cell returns the members behind one summary cell. An unknown row yields an
// empty cell.
func (s *Service) Cell(ctx context.Context, q SummaryQuery, ref CellRef) (report.Cell, error) {
	slot, err := ParseMonth(ref.Month)
	if err != nil {
		return report.Cell{}, err
	}
	t, err := s.Summary(ctx, q)
	if err != nil {
		return report.Cell{}, err
	}

	row := t.GrandTotal
	if !ref.Grand {
		r, ok := t.Row(ref.Key)
		if !ok {
			return report.Cell{Members: []model.FailureRecord{}}, nil
		}
		row = r
	}
	if slot < 0 {
		return row.Total, nil
	}
	return row.Months[slot], nil
}

// TrendPoint is the failure count of one month of a financial year.
type TrendPoint struct {
	Label string `json:"label"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Count int    `json:"count"`
}

// Trend is the month-by-month failure count of one view.
type Trend struct {
	Name   string              `json:"name"`
	FY     model.FinancialYear `json:"fy"`
	Points []TrendPoint        `json:"points"`
	Total  int                 `json:"total"`
}

// Trend counts the failures selected by q per month of its financial year.
func (s *Service) Trend(ctx context.Context, q SummaryQuery) (_ Trend, err error) {
	defer func() { metrics.RecordQuery("trend", err) }()

	rq, err := s.resolve(q)
	if err != nil {
		return Trend{}, err
	}
	failures, err := s.Failures(ctx)
	if err != nil {
		return Trend{}, err
	}

	totals := report.MonthlyTotals(failures, rq.fy, rq.view.Include)
	tr := Trend{Name: rq.view.Name, FY: rq.fy, Points: make([]TrendPoint, 0, len(totals))}
	start := rq.fy.StartYear()
	for slot, n := range totals {
		m := model.SlotMonth(slot)
		year := start
		if m < time.April {
			year++
		}
		tr.Points = append(tr.Points, TrendPoint{
			Label: model.FYMonthLabels[slot],
			Year:  year,
			Month: int(m),
			Count: n,
		})
		tr.Total += n
	}
	return tr, nil
}

// ParseMonth maps a month parameter to an FY slot; -1 selects the row total.
func ParseMonth(month string) (int, error) {
	m := strings.TrimSpace(month)
	if m == "" || strings.EqualFold(m, "total") {
		return -1, nil
	}
	for i, label := range model.FYMonthLabels {
		if strings.EqualFold(m, label) {
			return i, nil
		}
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 || n > 12 {
		return 0, &QueryError{Param: "month", Message: fmt.Sprintf("%q is not a month", month)}
	}
	return model.FYSlot(time.Month(n)), nil
}

// FiscalYears lists the financial years present in the failure data.
func (s *Service) FiscalYears(ctx context.Context) ([]model.FinancialYear, error) {
	failures, err := s.Failures(ctx)
	if err != nil {
		return nil, err
	}
	return report.FiscalYears(failures), nil
}

// FailureFilter narrows a failure listing.
type FailureFilter struct {
	FY    string
	Fleet string
	Query string // substring over loco, equipment, component, cause and message
}

// ListFailures returns the failures matching f in sheet order.
func (s *Service) ListFailures(ctx context.Context, f FailureFilter) (_ []model.FailureRecord, err error) {
	defer func() { metrics.RecordQuery("failures", err) }()

	var preds []report.Predicate
	if strings.TrimSpace(f.FY) != "" {
		fy, err := model.ParseFinancialYear(f.FY)
		if err != nil {
			return nil, &QueryError{Param: "fy", Message: err.Error()}
		}
		preds = append(preds, inYear(fy))
	}
	if strings.TrimSpace(f.Fleet) != "" {
		preds = append(preds, report.Fleet(f.Fleet))
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		preds = append(preds, matches(q))
	}

	failures, err := s.Failures(ctx)
	if err != nil {
		return nil, err
	}
	return report.Filter(failures, report.And(preds...)), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func inYear(fy model.FinancialYear) report.Predicate {
	return func(f model.FailureRecord) bool {
		d, err := parser.ParseDate(f.DateFailed)
		return err == nil && fy.Contains(d)
	}
}

func matches(q string) report.Predicate {
	return func(f model.FailureRecord) bool {
		for _, v := range []string{f.LocoNo, f.Equipment, f.Component, f.CauseOfFailure, f.BriefMessage} {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
		return false
	}
}
