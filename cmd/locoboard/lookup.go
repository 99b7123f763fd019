package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"locoboard/internal/lookup"
	"locoboard/internal/model"
)

func newLookupCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lookup <loco-no>",
		Short: "Print every record joined to one locomotive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			data, ok, err := a.Service.LocoData(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("locomotive %q not found", args[0])
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(data)
			}
			printLoco(cmd.OutOrStdout(), data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printLoco(w io.Writer, d lookup.LocoData) {
	fmt.Fprintf(w, "Locomotive %s\n", d.ID)
	printRecord(w, "  ", d.Detail)

	fmt.Fprintf(w, "\nSchedules (%d)\n", len(d.Schedules))
	for i, r := range d.Schedules {
		fmt.Fprintf(w, "  #%d\n", i+1)
		printRecord(w, "    ", r)
	}

	fmt.Fprintf(w, "\nModifications (%d)\n", len(d.Modifications))
	for i, r := range d.Modifications {
		fmt.Fprintf(w, "  #%d\n", i+1)
		printRecord(w, "    ", r)
	}

	fmt.Fprintf(w, "\nFailures (%d)\n", len(d.Failures))
	for _, f := range d.Failures {
		fmt.Fprintf(w, "  %s  %-6s  %-14s  %s  [%s]\n", f.DateFailed, f.ICMSLabel(), f.Equipment, f.CauseOfFailure, f.Responsibility)
	}
}

func printRecord(w io.Writer, indent string, r model.Record) {
	keys := make([]string, 0, len(r))
	for k, v := range r {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s: %s\n", indent, k, r[k])
	}
}
