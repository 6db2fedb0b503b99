// Package config models the persisted nori configuration document.
//
// The document admits both the canonical schema and legacy shapes left behind
// by older tool versions. Known fields are typed; everything else (including
// legacy flat credential fields awaiting migration) is preserved byte-for-byte
// in a raw side map so that saving a config never drops data a newer or older
// tool version may rely on.
package config

import (
	"encoding/json"
	"fmt"
)

const (
	// FileName is the config document name under an install directory.
	FileName = ".nori-config.json"
	// VersionMarkerName is the legacy sibling version marker consulted when
	// the config document carries no version field.
	VersionMarkerName = ".nori-version"
	// DefaultAgent is the agent that legacy single-profile configs belong to.
	DefaultAgent = "claude-code"
)

// ProfileRef names the base profile installed for an agent.
type ProfileRef struct {
	BaseProfile string `json:"baseProfile"`
}

// AgentEntry is the per-agent installation record.
type AgentEntry struct {
	Profile *ProfileRef `json:"profile,omitempty"`
}

// Auth is the nested credentials object. It is always either fully populated
// or absent; Password and RefreshToken serialize as explicit JSON null when
// unset so the object is recognizably complete.
type Auth struct {
	Username        string   `json:"username"`
	Password        *string  `json:"password"`
	RefreshToken    *string  `json:"refreshToken"`
	OrganizationURL string   `json:"organizationUrl"`
	Organizations   []string `json:"organizations,omitempty"`
	IsAdmin         bool     `json:"isAdmin,omitempty"`
}

// Config is the persisted configuration document for one install directory.
type Config struct {
	// Version is the semver of the tool that last wrote this config, or empty
	// for legacy installs that rely on the version marker file.
	Version string
	Auth    *Auth
	// Agents maps agent name to its installation record; keys indicate which
	// agents are installed. Authoritative once migrated.
	Agents map[string]AgentEntry
	// LegacyProfile is the pre-agents single profile field. Mutually redundant
	// with Agents; absent after migration.
	LegacyProfile *ProfileRef
	// Extra holds every field this tool version does not model, preserved
	// verbatim across load, migrate, and save. Auxiliary fields such as
	// installedAgents, registryAuths, sendSessionTranscript, autoupdate, and
	// installDir ride here, as do legacy flat credential fields until the
	// credential migration folds them into Auth.
	Extra map[string]json.RawMessage
}

// UnmarshalJSON decodes the known fields and routes everything else into Extra.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Config{}
	for key, value := range raw {
		switch key {
		case "version":
			if err := json.Unmarshal(value, &c.Version); err != nil {
				return fmt.Errorf("decode version: %w", err)
			}
		case "auth":
			if err := json.Unmarshal(value, &c.Auth); err != nil {
				return fmt.Errorf("decode auth: %w", err)
			}
		case "agents":
			if err := json.Unmarshal(value, &c.Agents); err != nil {
				return fmt.Errorf("decode agents: %w", err)
			}
		case "profile":
			if err := json.Unmarshal(value, &c.LegacyProfile); err != nil {
				return fmt.Errorf("decode profile: %w", err)
			}
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]json.RawMessage)
			}
			c.Extra[key] = value
		}
	}
	return nil
}

// MarshalJSON merges the typed fields over the preserved raw fields.
func (c *Config) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.Extra)+4)
	for key, value := range c.Extra {
		out[key] = value
	}
	if c.Version != "" {
		encoded, err := json.Marshal(c.Version)
		if err != nil {
			return nil, err
		}
		out["version"] = encoded
	}
	if c.Auth != nil {
		encoded, err := json.Marshal(c.Auth)
		if err != nil {
			return nil, err
		}
		out["auth"] = encoded
	}
	if len(c.Agents) > 0 {
		encoded, err := json.Marshal(c.Agents)
		if err != nil {
			return nil, err
		}
		out["agents"] = encoded
	}
	if c.LegacyProfile != nil {
		encoded, err := json.Marshal(c.LegacyProfile)
		if err != nil {
			return nil, err
		}
		out["profile"] = encoded
	}
	return json.Marshal(out)
}

// Clone returns a deep copy via a JSON round trip, so callers can hand a
// config to the migration pipeline without risking mutation of their value.
func (c *Config) Clone() (*Config, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("clone config: %w", err)
	}
	var out Config
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("clone config: %w", err)
	}
	return &out, nil
}

// EffectiveProfile returns the profile installed for agent. It is the single
// fallback point between the canonical agents map and the legacy top-level
// profile field, which only ever described the default agent.
func (c *Config) EffectiveProfile(agent string) (ProfileRef, bool) {
	if entry, ok := c.Agents[agent]; ok && entry.Profile != nil {
		return *entry.Profile, true
	}
	if agent == DefaultAgent && c.LegacyProfile != nil {
		return *c.LegacyProfile, true
	}
	return ProfileRef{}, false
}

// SetAgentProfile records ref as the installed profile for agent.
func (c *Config) SetAgentProfile(agent string, ref ProfileRef) {
	if c.Agents == nil {
		c.Agents = make(map[string]AgentEntry)
	}
	entry := c.Agents[agent]
	entry.Profile = &ref
	c.Agents[agent] = entry
}
