package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tilework-tech/nori/internal/fsutil"
	"github.com/tilework-tech/nori/internal/messages"
	"github.com/tilework-tech/nori/internal/version"
)

// Path returns the config document path for installDir.
func Path(installDir string) string {
	return filepath.Join(installDir, FileName)
}

// MarkerPath returns the legacy version marker path for installDir.
func MarkerPath(installDir string) string {
	return filepath.Join(installDir, VersionMarkerName)
}

// Load reads the config document for installDir. An absent document is a
// valid state (first install) and yields (nil, nil).
func Load(installDir string) (*Config, error) {
	if strings.TrimSpace(installDir) == "" {
		return nil, errors.New(messages.ConfigInstallDirRequired)
	}
	path := Path(installDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(messages.ConfigFailedReadFmt, path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf(messages.ConfigFailedDecodeFmt, path, err)
	}
	return &cfg, nil
}

// Save writes cfg atomically as two-space indented JSON with a trailing
// newline, matching what older tool versions emit.
func Save(installDir string, cfg *Config) error {
	if strings.TrimSpace(installDir) == "" {
		return errors.New(messages.ConfigInstallDirRequired)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.ConfigFailedEncodeFmt, err)
	}
	data = append(data, '\n')
	path := Path(installDir)
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.ConfigFailedWriteFmt, path, err)
	}
	return nil
}

// PreviousVersion resolves the previously installed tool version for
// installDir: the config's version field when present, otherwise the legacy
// sibling marker file. The boolean is false for fresh installs with neither.
// cfg may be nil when no config document exists yet.
func PreviousVersion(installDir string, cfg *Config) (string, bool, error) {
	if cfg != nil && strings.TrimSpace(cfg.Version) != "" {
		return strings.TrimSpace(cfg.Version), true, nil
	}
	path := MarkerPath(installDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf(messages.ConfigFailedReadMarkerFmt, path, err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "", false, nil
	}
	normalized, err := version.Normalize(trimmed)
	if err != nil {
		// A corrupt marker is equivalent to no marker; the caller treats the
		// install as fresh rather than failing the whole operation.
		return "", false, nil
	}
	return normalized, true, nil
}
