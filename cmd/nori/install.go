package main

import (
	"github.com/spf13/cobra"

	"github.com/tilework-tech/nori/internal/config"
	"github.com/tilework-tech/nori/internal/installer"
	"github.com/tilework-tech/nori/internal/messages"
)

func newInstallCmd(flags *rootFlags) *cobra.Command {
	var agent string
	var force bool

	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, flags)
			if err != nil {
				return err
			}
			opts.Agent = agent
			opts.Force = force
			opts.ProfileName, err = resolveProfileName(args, opts)
			if err != nil {
				return err
			}
			return installer.Install(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&agent, "agent", config.DefaultAgent, messages.FlagAgent)
	cmd.Flags().BoolVar(&force, "force", false, messages.FlagForce)
	return cmd
}
