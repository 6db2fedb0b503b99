package migrate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tilework-tech/nori/internal/config"
)

func TestDefaultRegistry_Chain(t *testing.T) {
	want := []string{"0.9.0", "0.14.0"}
	if got := DefaultRegistry().Versions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("versions = %v, want %v", got, want)
	}
}

func TestConsolidateCredentials_FoldsFlatFields(t *testing.T) {
	cfg := &config.Config{
		Extra: map[string]json.RawMessage{
			"username":        json.RawMessage(`"u"`),
			"password":        json.RawMessage(`"p"`),
			"organizationUrl": json.RawMessage(`"https://x"`),
			"autoupdate":      json.RawMessage(`true`),
		},
	}
	if err := consolidateCredentialsAndProfile(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if cfg.Auth == nil {
		t.Fatal("auth not created")
	}
	if cfg.Auth.Username != "u" || cfg.Auth.OrganizationURL != "https://x" {
		t.Fatalf("auth = %+v", cfg.Auth)
	}
	if cfg.Auth.Password == nil || *cfg.Auth.Password != "p" {
		t.Fatalf("password = %v, want p", cfg.Auth.Password)
	}
	if cfg.Auth.RefreshToken != nil {
		t.Fatalf("refreshToken = %v, want nil (serializes as null)", cfg.Auth.RefreshToken)
	}
	for _, key := range []string{"username", "password", "organizationUrl"} {
		if _, ok := cfg.Extra[key]; ok {
			t.Fatalf("flat field %q not removed", key)
		}
	}
	if _, ok := cfg.Extra["autoupdate"]; !ok {
		t.Fatal("unrelated field autoupdate dropped")
	}

	// The auth object must serialize with an explicit refreshToken null.
	out, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	auth, ok := decoded["auth"]
	if !ok {
		t.Fatal("auth missing from serialized config")
	}
	if value, present := auth["refreshToken"]; !present || value != nil {
		t.Fatalf("serialized refreshToken = %v (present=%t), want explicit null", value, present)
	}
}

func TestConsolidateCredentials_NeverOverwritesExistingAuth(t *testing.T) {
	password := "kept"
	cfg := &config.Config{
		Auth: &config.Auth{Username: "existing", Password: &password, OrganizationURL: "https://kept"},
		Extra: map[string]json.RawMessage{
			"username": json.RawMessage(`"stale"`),
		},
	}
	if err := consolidateCredentialsAndProfile(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Auth.Username != "existing" {
		t.Fatalf("existing auth overwritten: %+v", cfg.Auth)
	}
}

func TestConsolidateCredentials_NoFlatFieldsIsNoop(t *testing.T) {
	cfg := &config.Config{Extra: map[string]json.RawMessage{"autoupdate": json.RawMessage(`false`)}}
	if err := consolidateCredentialsAndProfile(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Auth != nil {
		t.Fatalf("auth created without flat fields: %+v", cfg.Auth)
	}
}

func TestConsolidateProfile_FoldsLegacyProfile(t *testing.T) {
	cfg := &config.Config{LegacyProfile: &config.ProfileRef{BaseProfile: "senior-swe"}}
	if err := consolidateCredentialsAndProfile(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.LegacyProfile != nil {
		t.Fatal("legacy profile not removed")
	}
	ref, ok := cfg.EffectiveProfile(config.DefaultAgent)
	if !ok || ref.BaseProfile != "senior-swe" {
		t.Fatalf("default agent profile = %+v (ok=%t), want senior-swe", ref, ok)
	}
}

func TestConsolidateProfile_PreservesOtherAgentsAndDefaultEntry(t *testing.T) {
	cfg := &config.Config{
		LegacyProfile: &config.ProfileRef{BaseProfile: "stale"},
		Agents: map[string]config.AgentEntry{
			config.DefaultAgent: {Profile: &config.ProfileRef{BaseProfile: "kept"}},
			"cursor":            {Profile: &config.ProfileRef{BaseProfile: "other"}},
		},
	}
	if err := consolidateCredentialsAndProfile(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Agents[config.DefaultAgent].Profile.BaseProfile != "kept" {
		t.Fatal("existing default-agent entry overwritten")
	}
	if cfg.Agents["cursor"].Profile.BaseProfile != "other" {
		t.Fatal("unrelated agent entry lost")
	}
	if cfg.LegacyProfile != nil {
		t.Fatal("legacy profile not removed")
	}
}

func writeTestFile(t *testing.T, dir string, rel string, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestRelocateProfilesDir_NoLegacyDirIsNoop(t *testing.T) {
	dir := t.TempDir()
	if err := relocateProfilesDir(context.Background(), dir); err != nil {
		t.Fatalf("relocate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(SharedProfilesRelPath))); !os.IsNotExist(err) {
		t.Fatal("shared profiles directory created without a legacy source")
	}
}

func TestRelocateProfilesDir_MovesNestedTrees(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"profiles/senior-swe/profile.json":          `{"name":"senior-swe"}`,
		"profiles/senior-swe/skills/a/SKILL.md":     "# a\n",
		"profiles/senior-swe/subagents/reviewer.md": "# reviewer\n",
		"profiles/code-reviewer/commands/review.md": "# review\n",
	}
	for rel, content := range files {
		writeTestFile(t, dir, rel, content)
	}

	if err := relocateProfilesDir(context.Background(), dir); err != nil {
		t.Fatalf("relocate: %v", err)
	}

	for rel, content := range files {
		moved := filepath.Join(dir, filepath.FromSlash(SharedProfilesRelPath), filepath.FromSlash(rel[len("profiles/"):]))
		data, err := os.ReadFile(moved)
		if err != nil {
			t.Fatalf("read relocated %s: %v", rel, err)
		}
		if string(data) != content {
			t.Fatalf("relocated %s = %q, want %q", rel, data, content)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, LegacyProfilesDirName)); !os.IsNotExist(err) {
		t.Fatal("legacy profiles directory not removed")
	}

	// Re-running after the move is a no-op.
	if err := relocateProfilesDir(context.Background(), dir); err != nil {
		t.Fatalf("relocate rerun: %v", err)
	}
}

func TestRewriteSettingsAllowList(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "settings.json", `{
  "permissions": {
    "allow": ["Read(profiles/**)", "Read(.nori/profiles/**)", "Bash(git status)"],
    "deny": ["WebFetch"]
  },
  "model": "opus"
}`)
	writeTestFile(t, dir, "profiles/p/profile.json", "{}")

	if err := relocateProfilesDir(context.Background(), dir); err != nil {
		t.Fatalf("relocate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	var settings struct {
		Permissions struct {
			Allow []string `json:"allow"`
			Deny  []string `json:"deny"`
		} `json:"permissions"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	wantAllow := []string{"Read(.nori/profiles/**)", "Bash(git status)"}
	if !reflect.DeepEqual(settings.Permissions.Allow, wantAllow) {
		t.Fatalf("allow = %v, want %v", settings.Permissions.Allow, wantAllow)
	}
	if !reflect.DeepEqual(settings.Permissions.Deny, []string{"WebFetch"}) {
		t.Fatalf("deny entries not preserved: %v", settings.Permissions.Deny)
	}
	if settings.Model != "opus" {
		t.Fatalf("unrelated settings field lost: %q", settings.Model)
	}
}

func TestRewriteSettingsAllowList_AbsentSettingsIsNoop(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "profiles/p/profile.json", "{}")

	if err := relocateProfilesDir(context.Background(), dir); err != nil {
		t.Fatalf("relocate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "settings.json")); !os.IsNotExist(err) {
		t.Fatal("settings.json created by migration")
	}
}

func TestReferencesLegacyProfiles(t *testing.T) {
	tests := []struct {
		entry string
		want  bool
	}{
		{"Read(profiles/**)", true},
		{"Read(/home/u/.nori-install/profiles/senior-swe/SKILL.md)", true},
		{"Read(/home/u/profiles)", true},
		{"Read(.nori/profiles/**)", false},
		{"Bash(git status)", false},
		{"Read(docs/**)", false},
	}
	for _, tt := range tests {
		if got := referencesLegacyProfiles(tt.entry); got != tt.want {
			t.Fatalf("referencesLegacyProfiles(%q) = %t, want %t", tt.entry, got, tt.want)
		}
	}
}
