package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tilework-tech/nori/internal/installer"
	"github.com/tilework-tech/nori/internal/messages"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   messages.StatusUse,
		Short: messages.StatusShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, flags)
			if err != nil {
				return err
			}
			report, err := installer.Status(opts)
			if err != nil {
				return err
			}
			if outputJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(report)
			}
			return renderStatusText(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, messages.FlagJSON)
	return cmd
}

func renderStatusText(out io.Writer, report *installer.Report) error {
	fmt.Fprintf(out, "Install directory: %s\n", report.InstallDir)
	if !report.Installed {
		fmt.Fprintln(out, "No installation found.")
		return nil
	}
	if report.ConfigVersion != "" {
		fmt.Fprintf(out, "Config version: %s\n", report.ConfigVersion)
	}
	if len(report.Agents) > 0 {
		fmt.Fprintln(out, "Agents:")
		names := make([]string, 0, len(report.Agents))
		for name := range report.Agents {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  - %s: %s\n", name, report.Agents[name])
		}
	}
	if report.ProfileName != "" {
		fmt.Fprintf(out, "Tracked profile: %s (%d files", report.ProfileName, report.TrackedFiles)
		if report.ManifestCreatedAt != "" {
			fmt.Fprintf(out, ", installed %s", report.ManifestCreatedAt)
		}
		fmt.Fprintln(out, ")")
	}
	if !report.Drifted() {
		fmt.Fprintln(out, "No local modifications.")
		return nil
	}
	fmt.Fprintln(out, color.YellowString("Local modifications:"))
	for _, rel := range report.ChangedFiles {
		fmt.Fprintf(out, messages.ConflictFileFmt, rel)
	}
	return nil
}
