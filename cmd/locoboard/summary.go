package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"locoboard/internal/dashboard"
	"locoboard/internal/model"
	"locoboard/internal/report"
)

type summaryOptions struct {
	fy       string
	groupBy  string
	view     string
	fleet    string
	status   string
	combined bool
	xlsxPath string
}

func newSummaryCmd(root *rootOptions) *cobra.Command {
	opts := &summaryOptions{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a financial-year failure summary",
		Example: `  locoboard summary --fy 2024-25
  locoboard summary --fy 2024-25 --group-by causeoffailure --view icms
  locoboard summary --fy 2024-25 --combined --xlsx summary.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.fy, "fy", "", "financial year, e.g. 2024-25 (default: current)")
	cmd.Flags().StringVar(&opts.groupBy, "group-by", "", "grouping field (default from config)")
	cmd.Flags().StringVar(&opts.view, "view", dashboard.ViewAll, "all, loco-account, others, icms, message, pending or investigated")
	cmd.Flags().StringVar(&opts.fleet, "fleet", "", "restrict to one fleet")
	cmd.Flags().StringVar(&opts.status, "status", "", "restrict to investigation statuses (comma-separated)")
	cmd.Flags().BoolVar(&opts.combined, "combined", false, "print Loco Account, Others and their merge")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "also write the tables to this workbook")
	return cmd
}

func runSummary(cmd *cobra.Command, root *rootOptions, opts *summaryOptions) error {
	a, err := root.openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	fy := opts.fy
	if fy == "" {
		fy = string(model.FinancialYearOf(time.Now()))
	}
	q := dashboard.SummaryQuery{FY: fy, GroupBy: opts.groupBy, View: opts.view, Fleet: opts.fleet, Status: opts.status}

	var tables []report.SummaryTable
	if opts.combined {
		tables, err = a.Service.Combined(cmd.Context(), q)
	} else {
		var t report.SummaryTable
		t, err = a.Service.Summary(cmd.Context(), q)
		tables = []report.SummaryTable{t}
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := printTable(out, t, a.Labels.Label(model.TableFailures, t.GroupBy)); err != nil {
			return err
		}
	}

	if opts.xlsxPath != "" {
		f, err := os.Create(opts.xlsxPath)
		if err != nil {
			return err
		}
		if err := report.WriteXLSX(f, tables...); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nWrote %s\n", opts.xlsxPath)
	}
	return nil
}

// printTable writes t as an aligned grid.
func printTable(w io.Writer, t report.SummaryTable, groupLabel string) error {
	fmt.Fprintf(w, "%s  FY %s\n", t.Name, t.FY)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := append([]string{groupLabel}, model.FYMonthLabels[:]...)
	header = append(header, "Total")
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	rows := append(append([]report.Row{}, t.Rows...), t.GrandTotal)
	for _, r := range rows {
		cells := make([]string, 0, 14)
		cells = append(cells, r.Key)
		for _, c := range r.Months {
			cells = append(cells, fmt.Sprint(c.Count))
		}
		cells = append(cells, fmt.Sprint(r.Total.Count))
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}
