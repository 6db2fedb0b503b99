package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tilework-tech/nori/internal/installer"
	"github.com/tilework-tech/nori/internal/messages"
)

func newUpgradeCmd(flags *rootFlags) *cobra.Command {
	var fromVersion string

	cmd := &cobra.Command{
		Use:   messages.UpgradeUse,
		Short: messages.UpgradeShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, flags)
			if err != nil {
				return err
			}
			opts.FromVersion = fromVersion
			result, err := installer.Upgrade(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case !result.PreviousFound:
				fmt.Fprintf(out, messages.InstallUpgradeNothingFmt, opts.InstallDir)
			case !result.Applied:
				fmt.Fprintf(out, messages.InstallUpgradeUpToDateFmt, result.PreviousVersion)
			default:
				fmt.Fprintf(out, messages.InstallUpgradeAppliedFmt, len(result.Pending), result.ConfigVersion)
			}
			return nil
		},
	}
	cmd.AddCommand(newUpgradePlanCmd(flags, &fromVersion))
	cmd.PersistentFlags().StringVar(&fromVersion, "from", "", messages.FlagFrom)
	return cmd
}

func newUpgradePlanCmd(flags *rootFlags, fromVersion *string) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   messages.UpgradePlanUse,
		Short: messages.UpgradePlanShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, flags)
			if err != nil {
				return err
			}
			opts.FromVersion = *fromVersion
			result, err := installer.Plan(opts)
			if err != nil {
				return err
			}
			if outputJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}
			return renderPlanText(cmd.OutOrStdout(), opts.InstallDir, result)
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, messages.FlagJSON)
	return cmd
}

func renderPlanText(out io.Writer, installDir string, result *installer.UpgradeResult) error {
	fmt.Fprintln(out, "Upgrade plan (dry-run): nothing was written.")
	if !result.PreviousFound {
		fmt.Fprintf(out, messages.InstallUpgradeNothingFmt, installDir)
		return nil
	}
	fmt.Fprintf(out, "Previous version: %s\n", result.PreviousVersion)
	if len(result.Pending) == 0 {
		fmt.Fprintf(out, messages.InstallUpgradeUpToDateFmt, result.PreviousVersion)
		return nil
	}
	fmt.Fprintln(out, "Pending migrations:")
	for _, v := range result.Pending {
		fmt.Fprintf(out, "  - %s\n", v)
	}
	return nil
}
