package installer

import (
	"context"
	"strings"

	"github.com/tilework-tech/nori/internal/config"
	"github.com/tilework-tech/nori/internal/migrate"
	"github.com/tilework-tech/nori/internal/version"
)

// UpgradeResult describes what an upgrade did, or what a plan would do. It
// is shaped for direct JSON output by the upgrade command.
type UpgradeResult struct {
	InstallDir string `json:"installDir"`
	// PreviousFound is false when no prior installation was detected; the
	// other fields are then empty.
	PreviousFound   bool     `json:"previousFound"`
	PreviousVersion string   `json:"previousVersion,omitempty"`
	Pending         []string `json:"pending,omitempty"`
	// Applied is true once the pending migrations have run and the config
	// was persisted; Plan always leaves it false.
	Applied       bool   `json:"applied"`
	ConfigVersion string `json:"configVersion,omitempty"`
}

// Plan resolves the migrations an upgrade would run, without applying them.
// Options.FromVersion overrides the detected previous version.
func Plan(opts Options) (*UpgradeResult, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	result, _, _, err := resolvePending(opts)
	return result, err
}

// Upgrade runs the pending migrations against the install directory and
// persists the migrated config, whose version then records the last applied
// migration. With nothing pending it writes nothing. Unlike Install, it does
// not stamp the running tool version: upgrade only advances the config to
// the migration level it actually reached.
func Upgrade(ctx context.Context, opts Options) (*UpgradeResult, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	result, cfg, previous, err := resolvePending(opts)
	if err != nil || !result.PreviousFound || len(result.Pending) == 0 {
		return result, err
	}

	base := cfg
	if base == nil {
		base = &config.Config{}
	}
	pipeline := migrate.NewPipeline(opts.Registry, opts.Logger)
	migrated, err := pipeline.Migrate(ctx, base, previous, opts.InstallDir)
	if err != nil {
		return nil, err
	}
	if err := config.Save(opts.InstallDir, migrated); err != nil {
		return nil, err
	}
	result.Applied = true
	result.ConfigVersion = migrated.Version
	return result, nil
}

// resolvePending loads the config, determines the previous version (honoring
// the FromVersion override), and lists the migrations newer than it.
func resolvePending(opts Options) (*UpgradeResult, *config.Config, string, error) {
	result := &UpgradeResult{InstallDir: opts.InstallDir}
	cfg, err := config.Load(opts.InstallDir)
	if err != nil {
		return nil, nil, "", err
	}

	previous := strings.TrimSpace(opts.FromVersion)
	found := previous != ""
	if !found {
		previous, found, err = config.PreviousVersion(opts.InstallDir, cfg)
		if err != nil {
			return nil, nil, "", err
		}
	}
	if !found {
		return result, cfg, "", nil
	}

	parsed, err := version.Parse(previous)
	if err != nil {
		return nil, nil, "", err
	}
	result.PreviousFound = true
	result.PreviousVersion = parsed.String()
	if cfg != nil {
		result.ConfigVersion = cfg.Version
	}
	for _, m := range opts.Registry.After(parsed) {
		result.Pending = append(result.Pending, m.Version)
	}
	return result, cfg, previous, nil
}
