package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"locoboard/internal/config"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=...".
var (
	version   = "dev"
	buildDate = "unknown"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check config.toml without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, info, err := root.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !info.Found {
				fmt.Fprintf(out, "%s not found, checking defaults\n", info.Path)
			}
			issues := config.Validate(cfg)
			for _, is := range issues {
				fmt.Fprintln(out, is.Error())
			}
			if config.HasErrors(issues) {
				return errors.New("configuration has errors")
			}
			fmt.Fprintln(out, "configuration OK")
			return nil
		},
	}
}

func newInitCmd(root *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.toml and labels file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			labelsPath := config.ResolvePath(root.configPath, cfg.Report.LabelsFile)
			for _, p := range []string{root.configPath, labelsPath} {
				if _, err := os.Stat(p); err == nil && !force {
					return fmt.Errorf("%s exists (use --force to overwrite)", p)
				}
			}
			if err := config.SaveConfig(cfg, root.configPath); err != nil {
				return err
			}
			if err := config.SaveLabels(config.DefaultLabels(), labelsPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nWrote %s\n", root.configPath, labelsPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "locoboard")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
			fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		},
	}
}
