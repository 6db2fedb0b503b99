package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tilework-tech/nori/internal/messages"
)

func newProfilesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.ProfilesUse,
		Short: messages.ProfilesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, flags)
			if err != nil {
				return err
			}
			metas, err := opts.Source.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			for _, meta := range metas {
				profile, err := opts.Source.Open(meta.Name)
				if err != nil {
					return err
				}
				digest, err := profile.Digest()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  %s\n", bold.Sprint(meta.Name), digest)
				if meta.Description != "" {
					fmt.Fprintf(out, "  %s\n", meta.Description)
				}
			}
			return nil
		},
	}
	return cmd
}
