// Package installer orchestrates profile installation against an install
// directory: config load, migration, conflict gating, file copying, manifest
// bookkeeping, and config persistence, in that order. The conflict gate and
// the migration pipeline both run before the first destructive write.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tilework-tech/nori/internal/config"
	"github.com/tilework-tech/nori/internal/conflict"
	"github.com/tilework-tech/nori/internal/fsutil"
	"github.com/tilework-tech/nori/internal/manifest"
	"github.com/tilework-tech/nori/internal/messages"
	"github.com/tilework-tech/nori/internal/migrate"
	"github.com/tilework-tech/nori/internal/profiles"
)

// Options carries everything an installer operation needs. InstallDir and
// Source are always required; ProfileName and ToolVersion are required for
// Install and Switch.
type Options struct {
	InstallDir  string
	ProfileName string
	// Agent the profile is installed for; defaults to config.DefaultAgent.
	Agent  string
	Source profiles.Source
	// Prompter supplies conflict-gate input when Interactive is set.
	Prompter    conflict.Prompter
	Interactive bool
	// Force skips the conflict gate's extra confirmation, never the gate.
	Force bool
	// ToolVersion is the running tool's version, stamped into the config
	// after a successful operation.
	ToolVersion string
	// FromVersion overrides the detected previous version for Upgrade/Plan.
	FromVersion string
	// Registry defaults to migrate.DefaultRegistry().
	Registry *migrate.Registry
	Logger   zerolog.Logger
	// Out receives user-facing progress and conflict output.
	Out io.Writer
}

func (o *Options) normalize() error {
	if strings.TrimSpace(o.InstallDir) == "" {
		return errors.New(messages.ConfigInstallDirRequired)
	}
	if o.Source == nil {
		return errors.New(messages.InstallSourceRequired)
	}
	if o.Agent == "" {
		o.Agent = config.DefaultAgent
	}
	if o.Registry == nil {
		o.Registry = migrate.DefaultRegistry()
	}
	if o.Out == nil {
		o.Out = io.Discard
	}
	return nil
}

func (o *Options) requireProfile() error {
	if strings.TrimSpace(o.ProfileName) == "" {
		return errors.New(messages.InstallProfileRequired)
	}
	if strings.TrimSpace(o.ToolVersion) == "" {
		return errors.New(messages.InstallToolVersionRequired)
	}
	return nil
}

// Install performs a first install or reinstall of a profile: migrate any
// existing config, gate on local modifications, copy the bundle, record the
// manifest, and persist the updated config.
func Install(ctx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	if err := opts.requireProfile(); err != nil {
		return err
	}

	cfg, err := config.Load(opts.InstallDir)
	if err != nil {
		return err
	}
	base := cfg
	if base == nil {
		base = &config.Config{}
	}
	base, err = migrateIfNeeded(ctx, opts, cfg, base)
	if err != nil {
		return err
	}

	profile, err := opts.Source.Open(opts.ProfileName)
	if err != nil {
		return err
	}
	if _, err := runGate(opts); err != nil {
		return err
	}

	files, err := copyBundle(opts.InstallDir, profile)
	if err != nil {
		return err
	}
	if err := recordInstall(opts, base, files); err != nil {
		return err
	}
	fmt.Fprintf(opts.Out, messages.InstallSuccessFmt, opts.ProfileName, opts.Agent, opts.InstallDir)
	return nil
}

// Switch replaces the installed profile with another one. It requires an
// existing installation, and removes files the old profile tracked that the
// new one does not ship.
func Switch(ctx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	if err := opts.requireProfile(); err != nil {
		return err
	}

	cfg, err := config.Load(opts.InstallDir)
	if err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf(messages.InstallNoExistingConfigFmt, opts.InstallDir)
	}
	base, err := migrateIfNeeded(ctx, opts, cfg, cfg)
	if err != nil {
		return err
	}

	profile, err := opts.Source.Open(opts.ProfileName)
	if err != nil {
		return err
	}
	previous, err := runGate(opts)
	if err != nil {
		return err
	}

	files, err := copyBundle(opts.InstallDir, profile)
	if err != nil {
		return err
	}
	if previous != nil {
		if err := removeStale(opts.InstallDir, previous, files); err != nil {
			return err
		}
	}
	if err := recordInstall(opts, base, files); err != nil {
		return err
	}
	fmt.Fprintf(opts.Out, messages.InstallSwitchSuccessFmt, opts.ProfileName, opts.Agent)
	return nil
}

// migrateIfNeeded runs the migration pipeline when a previous version is
// detectable. cfg is the loaded document (possibly nil), base the non-nil
// working copy.
func migrateIfNeeded(ctx context.Context, opts Options, cfg *config.Config, base *config.Config) (*config.Config, error) {
	previous, found, err := config.PreviousVersion(opts.InstallDir, cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		return base, nil
	}
	pipeline := migrate.NewPipeline(opts.Registry, opts.Logger)
	return pipeline.Migrate(ctx, base, previous, opts.InstallDir)
}

// runGate loads the recorded manifest, detects local drift, and resolves it.
// It returns the manifest that was in effect (nil when absent or corrupt) so
// Switch can remove stale tracked files after the gate proceeds.
func runGate(opts Options) (*manifest.Manifest, error) {
	recorded, err := manifest.Load(opts.InstallDir)
	if err != nil {
		var readErr *manifest.ReadError
		if !errors.As(err, &readErr) {
			return nil, err
		}
		fmt.Fprintf(opts.Out, messages.ManifestCorruptWarningFmt, readErr.Path, readErr.Err)
		opts.Logger.Warn().Err(readErr.Err).Str("path", readErr.Path).Msg("unreadable manifest; treating as first install")
		recorded = nil
	}
	if recorded == nil {
		return nil, nil
	}

	changes, err := manifest.Detect(opts.InstallDir, recorded)
	if err != nil {
		return nil, err
	}
	mode := conflict.ModeNonInteractive
	if opts.Interactive {
		mode = conflict.ModeInteractive
	}
	resolver := &conflict.Resolver{
		InstallDir: opts.InstallDir,
		Prompter:   opts.Prompter,
		Pristine:   pristineReader(opts.Source, recorded.ProfileName),
		Out:        opts.Out,
		Logger:     opts.Logger,
		Force:      opts.Force,
	}
	if _, err := resolver.Resolve(changes, mode); err != nil {
		return nil, err
	}
	return recorded, nil
}

// pristineReader serves original file content for the conflict details view
// from the recorded profile, when the source still knows it.
func pristineReader(source profiles.Source, profileName string) conflict.PristineReader {
	profile, err := source.Open(profileName)
	if err != nil {
		return nil
	}
	return func(rel string) ([]byte, bool) {
		data, err := profile.Read(rel)
		if err != nil {
			return nil, false
		}
		return data, true
	}
}

// copyBundle writes every bundle file under installDir and returns the
// slash-relative paths written.
func copyBundle(installDir string, profile *profiles.Profile) ([]string, error) {
	files, err := profile.Files()
	if err != nil {
		return nil, err
	}
	for _, rel := range files {
		data, err := profile.Read(rel)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(installDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf(messages.InstallFailedCreateDirFmt, filepath.Dir(path), err)
		}
		if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return nil, fmt.Errorf(messages.InstallFailedWriteFmt, path, err)
		}
	}
	return files, nil
}

// removeStale deletes files the previous manifest tracked that the new
// bundle no longer ships, then prunes directories the deletions emptied.
func removeStale(installDir string, previous *manifest.Manifest, kept []string) error {
	keep := make(map[string]struct{}, len(kept))
	for _, rel := range kept {
		keep[rel] = struct{}{}
	}
	stale := make([]string, 0, len(previous.Files))
	for rel := range previous.Files {
		if _, ok := keep[rel]; !ok {
			stale = append(stale, rel)
		}
	}
	sort.Strings(stale)
	for _, rel := range stale {
		path := filepath.Join(installDir, filepath.FromSlash(rel))
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.InstallFailedRemoveFmt, path, err)
		}
		pruneEmptyDirs(installDir, filepath.Dir(path))
	}
	return nil
}

// pruneEmptyDirs removes dir and its now-empty ancestors, stopping at root
// or the first non-empty directory.
func pruneEmptyDirs(root string, dir string) {
	root = filepath.Clean(root)
	for dir != root && strings.HasPrefix(dir, root) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// recordInstall writes the new manifest and the updated config. The manifest
// is written first so a crash between the two leaves drift detection
// accurate for the files actually on disk.
func recordInstall(opts Options, cfg *config.Config, files []string) error {
	m, err := manifest.Build(opts.InstallDir, opts.ProfileName, files)
	if err != nil {
		return err
	}
	if err := manifest.Write(opts.InstallDir, m); err != nil {
		return err
	}
	cfg.SetAgentProfile(opts.Agent, config.ProfileRef{BaseProfile: opts.ProfileName})
	cfg.Version = opts.ToolVersion
	return config.Save(opts.InstallDir, cfg)
}
