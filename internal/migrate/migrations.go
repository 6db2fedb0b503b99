package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tilework-tech/nori/internal/config"
	"github.com/tilework-tech/nori/internal/fsutil"
	"github.com/tilework-tech/nori/internal/messages"
)

const (
	// LegacyProfilesDirName is the pre-0.14.0 per-install profiles directory.
	LegacyProfilesDirName = "profiles"
	// SharedProfilesRelPath is the shared profiles location introduced in 0.14.0.
	SharedProfilesRelPath = ".nori/profiles"
	// settingsFileName is the sibling settings document whose allow-list the
	// relocation migration rewrites.
	settingsFileName = "settings.json"
)

// DefaultRegistry returns the migration chain shipped with this tool version.
func DefaultRegistry() *Registry {
	registry, err := NewRegistry(
		Migration{Version: "0.9.0", Apply: consolidateCredentialsAndProfile},
		Migration{Version: "0.14.0", SideEffect: relocateProfilesDir},
	)
	if err != nil {
		// Versions above are compile-time constants; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return registry
}

// consolidateCredentialsAndProfile is the 0.9.0 transform. It folds the flat
// top-level credential fields into the nested auth object and the legacy
// single profile field into the agents map. Both halves are no-ops when their
// preconditions are already satisfied.
func consolidateCredentialsAndProfile(cfg *config.Config) error {
	if cfg.Auth == nil {
		username, hasUsername := stringExtra(cfg, "username")
		orgURL, hasOrgURL := stringExtra(cfg, "organizationUrl")
		password, hasPassword := stringExtra(cfg, "password")
		refreshToken, hasRefreshToken := stringExtra(cfg, "refreshToken")
		if hasUsername || hasOrgURL || hasPassword || hasRefreshToken {
			auth := &config.Auth{Username: username, OrganizationURL: orgURL}
			if hasPassword {
				auth.Password = &password
			}
			if hasRefreshToken {
				auth.RefreshToken = &refreshToken
			}
			cfg.Auth = auth
			delete(cfg.Extra, "username")
			delete(cfg.Extra, "organizationUrl")
			delete(cfg.Extra, "password")
			delete(cfg.Extra, "refreshToken")
		}
	}

	if cfg.LegacyProfile != nil {
		// Never overwrite an existing entry for the default agent; entries
		// for other agents are untouched either way.
		existing, ok := cfg.Agents[config.DefaultAgent]
		if !ok || existing.Profile == nil {
			cfg.SetAgentProfile(config.DefaultAgent, *cfg.LegacyProfile)
		}
		cfg.LegacyProfile = nil
	}
	return nil
}

// stringExtra reads a string-valued legacy field from the config's raw side
// map. Non-string values (including JSON null) count as absent.
func stringExtra(cfg *config.Config, key string) (string, bool) {
	raw, ok := cfg.Extra[key]
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

// relocateProfilesDir is the 0.14.0 side effect. When the legacy profiles
// directory exists it copies the full tree to the shared location, rewrites
// the settings allow-list, and only then removes the legacy tree, so a crash
// mid-migration leaves the original data intact and a re-run is a no-op.
func relocateProfilesDir(ctx context.Context, installDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	legacy := filepath.Join(installDir, LegacyProfilesDirName)
	info, err := os.Stat(legacy)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	shared := filepath.Join(installDir, filepath.FromSlash(SharedProfilesRelPath))
	if err := fsutil.CopyTree(legacy, shared); err != nil {
		return fmt.Errorf(messages.MigrateRelocateCopyFmt, shared, err)
	}
	if err := rewriteSettingsAllowList(installDir); err != nil {
		return err
	}
	if err := os.RemoveAll(legacy); err != nil {
		return fmt.Errorf(messages.MigrateRelocateRemoveFmt, legacy, err)
	}
	return nil
}

// rewriteSettingsAllowList drops permissions.allow entries that reference the
// legacy profiles location. Unrelated entries and every other settings field
// are preserved verbatim at the top level.
func rewriteSettingsAllowList(installDir string) error {
	path := filepath.Join(installDir, settingsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.MigrateSettingsReadFmt, path, err)
	}

	var settings map[string]json.RawMessage
	if err := json.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf(messages.MigrateSettingsDecodeFmt, path, err)
	}
	rawPermissions, ok := settings["permissions"]
	if !ok {
		return nil
	}
	var permissions map[string]json.RawMessage
	if err := json.Unmarshal(rawPermissions, &permissions); err != nil {
		return fmt.Errorf(messages.MigrateSettingsDecodeFmt, path, err)
	}
	rawAllow, ok := permissions["allow"]
	if !ok {
		return nil
	}
	var allow []string
	if err := json.Unmarshal(rawAllow, &allow); err != nil {
		return fmt.Errorf(messages.MigrateSettingsDecodeFmt, path, err)
	}

	kept := make([]string, 0, len(allow))
	dropped := false
	for _, entry := range allow {
		if referencesLegacyProfiles(entry) {
			dropped = true
			continue
		}
		kept = append(kept, entry)
	}
	if !dropped {
		return nil
	}

	encodedAllow, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf(messages.MigrateSettingsWriteFmt, path, err)
	}
	permissions["allow"] = encodedAllow
	encodedPermissions, err := json.Marshal(permissions)
	if err != nil {
		return fmt.Errorf(messages.MigrateSettingsWriteFmt, path, err)
	}
	settings["permissions"] = encodedPermissions
	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.MigrateSettingsWriteFmt, path, err)
	}
	out = append(out, '\n')
	if err := fsutil.WriteFileAtomic(path, out, 0o644); err != nil {
		return fmt.Errorf(messages.MigrateSettingsWriteFmt, path, err)
	}
	return nil
}

// referencesLegacyProfiles reports whether an allow-list entry points into
// the legacy top-level profiles directory. Entries already referencing the
// shared .nori location are never dropped.
func referencesLegacyProfiles(entry string) bool {
	if strings.Contains(entry, SharedProfilesRelPath) {
		return false
	}
	return strings.Contains(entry, LegacyProfilesDirName+"/") ||
		strings.HasSuffix(entry, "/"+LegacyProfilesDirName)
}
