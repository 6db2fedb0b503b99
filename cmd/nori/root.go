package main

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tilework-tech/nori/internal/conflict"
	"github.com/tilework-tech/nori/internal/installer"
	"github.com/tilework-tech/nori/internal/messages"
	"github.com/tilework-tech/nori/internal/profiles"
	"github.com/tilework-tech/nori/internal/terminal"
	"github.com/tilework-tech/nori/internal/version"
	"github.com/tilework-tech/nori/internal/wizard"
)

// Seams replaced in tests.
var (
	isTerminal        = terminal.IsInteractive
	defaultInstallDir = homedir.Dir
	runPicker         = func(source profiles.Source) (string, error) {
		return wizard.PickProfile(wizard.NewHuhUI(), source)
	}
)

type rootFlags struct {
	installDir  string
	profilesDir string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.installDir, "install-dir", "", messages.FlagInstallDir)
	cmd.PersistentFlags().StringVar(&flags.profilesDir, "profiles-dir", "", messages.FlagProfilesDir)
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, messages.FlagVerbose)

	cmd.AddCommand(newInstallCmd(flags))
	cmd.AddCommand(newSwitchCmd(flags))
	cmd.AddCommand(newStatusCmd(flags))
	cmd.AddCommand(newProfilesCmd(flags))
	cmd.AddCommand(newUpgradeCmd(flags))
	return cmd
}

// buildOptions assembles installer options from the persistent flags and the
// command's I/O streams.
func buildOptions(cmd *cobra.Command, flags *rootFlags) (installer.Options, error) {
	installDir := strings.TrimSpace(flags.installDir)
	if installDir == "" {
		home, err := defaultInstallDir()
		if err != nil {
			return installer.Options{}, fmt.Errorf("resolve home directory: %w", err)
		}
		installDir = home
	} else {
		expanded, err := homedir.Expand(installDir)
		if err != nil {
			return installer.Options{}, fmt.Errorf("resolve install directory: %w", err)
		}
		installDir = expanded
	}

	source, err := profileSource(flags)
	if err != nil {
		return installer.Options{}, err
	}
	return installer.Options{
		InstallDir:  installDir,
		Source:      source,
		Prompter:    conflict.NewIOPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		Interactive: isTerminal(),
		ToolVersion: toolVersion(),
		Logger:      newLogger(cmd, flags),
		Out:         cmd.OutOrStdout(),
	}, nil
}

func profileSource(flags *rootFlags) (profiles.Source, error) {
	dir := strings.TrimSpace(flags.profilesDir)
	if dir == "" {
		return profiles.Embedded(), nil
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve profiles directory: %w", err)
	}
	return profiles.Dir(expanded), nil
}

func newLogger(cmd *cobra.Command, flags *rootFlags) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	if flags.verbose {
		return logger.Level(zerolog.DebugLevel)
	}
	return logger.Level(zerolog.WarnLevel)
}

// toolVersion returns the running build's version as canonical semver.
// Development builds without an injected version stamp as a 0.0.0 prerelease
// so the config's version field stays parseable.
func toolVersion() string {
	normalized, err := version.Normalize(Version)
	if err != nil {
		return "0.0.0-dev"
	}
	return normalized
}

// resolveProfileName returns the positional profile argument, or runs the
// interactive picker when invoked without one on a terminal.
func resolveProfileName(args []string, opts installer.Options) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !opts.Interactive {
		return "", fmt.Errorf(messages.WizardRequiresTerminal)
	}
	return runPicker(opts.Source)
}
