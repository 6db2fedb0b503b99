package installer

import (
	"errors"
	"fmt"

	"github.com/tilework-tech/nori/internal/config"
	"github.com/tilework-tech/nori/internal/manifest"
	"github.com/tilework-tech/nori/internal/messages"
)

// Report is the read-only state of one install directory. It is shaped for
// direct JSON output by the status command.
type Report struct {
	InstallDir    string `json:"installDir"`
	Installed     bool   `json:"installed"`
	ConfigVersion string `json:"configVersion,omitempty"`
	// Agents maps agent name to installed base profile.
	Agents map[string]string `json:"agents,omitempty"`
	// ProfileName is the profile the manifest tracks.
	ProfileName       string   `json:"profileName,omitempty"`
	ManifestCreatedAt string   `json:"manifestCreatedAt,omitempty"`
	TrackedFiles      int      `json:"trackedFiles"`
	ChangedFiles      []string `json:"changedFiles,omitempty"`
}

// Drifted reports whether any tracked file was modified or deleted locally.
func (r *Report) Drifted() bool {
	return len(r.ChangedFiles) > 0
}

// Status inspects an install directory without mutating it: config version,
// installed agents, tracked profile, and current drift against the manifest.
func Status(opts Options) (*Report, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	report := &Report{InstallDir: opts.InstallDir}
	cfg, err := config.Load(opts.InstallDir)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		report.Installed = true
		report.ConfigVersion = cfg.Version
		report.Agents = installedAgents(cfg)
	}

	recorded, err := manifest.Load(opts.InstallDir)
	if err != nil {
		var readErr *manifest.ReadError
		if !errors.As(err, &readErr) {
			return nil, err
		}
		fmt.Fprintf(opts.Out, messages.ManifestCorruptWarningFmt, readErr.Path, readErr.Err)
		recorded = nil
	}
	if recorded == nil {
		return report, nil
	}

	report.Installed = true
	report.ProfileName = recorded.ProfileName
	report.ManifestCreatedAt = recorded.CreatedAt
	report.TrackedFiles = len(recorded.Files)
	changes, err := manifest.Detect(opts.InstallDir, recorded)
	if err != nil {
		return nil, err
	}
	report.ChangedFiles = changes.Changed
	return report, nil
}

// installedAgents flattens the config's per-agent records, resolving the
// legacy single-profile field through the same fallback the installer uses.
func installedAgents(cfg *config.Config) map[string]string {
	agents := make(map[string]string)
	for name := range cfg.Agents {
		if ref, ok := cfg.EffectiveProfile(name); ok {
			agents[name] = ref.BaseProfile
		}
	}
	if _, ok := agents[config.DefaultAgent]; !ok {
		if ref, ok := cfg.EffectiveProfile(config.DefaultAgent); ok {
			agents[config.DefaultAgent] = ref.BaseProfile
		}
	}
	if len(agents) == 0 {
		return nil
	}
	return agents
}
