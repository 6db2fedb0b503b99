// Package migrate evolves the persisted config document (and, when required,
// the install directory) as the installed tool version advances.
package migrate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/tilework-tech/nori/internal/config"
	"github.com/tilework-tech/nori/internal/messages"
	"github.com/tilework-tech/nori/internal/version"
)

// Migration is one versioned, ordered transformation. Apply is the pure
// config transform; SideEffect is the optional filesystem step. Both must be
// safe no-ops when their preconditions are already satisfied, since a
// migration can be re-run after a crash between side effect and config
// persistence.
type Migration struct {
	Version    string
	Apply      func(cfg *config.Config) error
	SideEffect func(ctx context.Context, installDir string) error
}

type registryEntry struct {
	version   *semver.Version
	migration Migration
}

// Registry is an immutable, ascending-sorted set of migrations. Instances are
// constructed explicitly and passed to the pipeline; there is no process-wide
// registry, so tests build isolated chains.
type Registry struct {
	entries []registryEntry
}

// NewRegistry validates and sorts migrations ascending by version. Duplicate
// or invalid versions are rejected.
func NewRegistry(migrations ...Migration) (*Registry, error) {
	entries := make([]registryEntry, 0, len(migrations))
	seen := make(map[string]struct{}, len(migrations))
	for _, m := range migrations {
		parsed, err := version.Parse(m.Version)
		if err != nil {
			return nil, fmt.Errorf(messages.MigrateInvalidVersionFmt, m.Version, err)
		}
		key := parsed.String()
		if _, exists := seen[key]; exists {
			return nil, fmt.Errorf(messages.MigrateDuplicateVersionFmt, key)
		}
		seen[key] = struct{}{}
		entries = append(entries, registryEntry{version: parsed, migration: m})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].version.LessThan(entries[j].version)
	})
	return &Registry{entries: entries}, nil
}

// After returns, in ascending order, every migration whose version is
// strictly greater than previous.
func (r *Registry) After(previous *semver.Version) []Migration {
	selected := make([]Migration, 0, len(r.entries))
	for _, entry := range r.entries {
		if entry.version.GreaterThan(previous) {
			selected = append(selected, entry.migration)
		}
	}
	return selected
}

// Versions returns the registered migration versions in ascending order.
func (r *Registry) Versions() []string {
	out := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.version.String())
	}
	return out
}

// Pipeline applies the registered migrations that a given installation still
// needs.
type Pipeline struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewPipeline returns a pipeline over registry that logs per-migration
// progress to logger.
func NewPipeline(registry *Registry, logger zerolog.Logger) *Pipeline {
	return &Pipeline{registry: registry, logger: logger}
}

// Migrate folds the migrations newer than previousVersion over cfg, running
// each side effect against installDir, and returns the migrated config with
// its version field set to the last migration applied.
//
// The fold operates on a deep copy of cfg: on error the caller's value is
// untouched and no config is returned, so a half-migrated document can never
// be persisted. When no migration is selected, cfg itself is returned
// unchanged, version field included.
func (p *Pipeline) Migrate(ctx context.Context, cfg *config.Config, previousVersion string, installDir string) (*config.Config, error) {
	trimmed := strings.TrimSpace(previousVersion)
	if trimmed == "" {
		return nil, &ValidationError{Reason: messages.MigratePreviousVersionRequired}
	}
	previous, err := version.Parse(trimmed)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf(messages.MigrateInvalidPreviousVersionFmt, err)}
	}

	selected := p.registry.After(previous)
	if len(selected) == 0 {
		return cfg, nil
	}

	migrated, err := cfg.Clone()
	if err != nil {
		return nil, err
	}
	for _, m := range selected {
		if m.Apply != nil {
			if err := m.Apply(migrated); err != nil {
				return nil, fmt.Errorf(messages.MigrateApplyFailedFmt, m.Version, err)
			}
		}
		if m.SideEffect != nil {
			if err := m.SideEffect(ctx, installDir); err != nil {
				return nil, &SideEffectError{Version: m.Version, Err: err}
			}
		}
		migrated.Version = m.Version
		p.logger.Debug().Str("migration", m.Version).Msg("applied migration")
	}
	return migrated, nil
}
