package messages

// Installer and profile messages.
const (
	InstallProfileRequired     = "profile name is required"
	InstallSourceRequired      = "profile source is required"
	InstallToolVersionRequired = "tool version is required"
	InstallNoExistingConfigFmt = "no existing installation found in %s; run `nori install` first"
	InstallFailedCreateDirFmt  = "failed to create directory %s: %w"
	InstallFailedWriteFmt      = "failed to write %s: %w"
	InstallFailedRemoveFmt     = "failed to remove %s: %w"
	InstallUnknownProfileFmt   = "unknown profile %q; run `nori profiles` to list available profiles"
	InstallSuccessFmt          = "Installed profile %s for agent %s into %s\n"
	InstallSwitchSuccessFmt    = "Switched to profile %s for agent %s\n"
	InstallUpgradeNothingFmt   = "No previous installation detected in %s; nothing to migrate.\n"
	InstallUpgradeUpToDateFmt  = "Configuration already at version %s; no migrations pending.\n"
	InstallUpgradeAppliedFmt   = "Applied %d migration(s); configuration now at version %s.\n"

	ProfileMetaUnknownKeysFmt  = "profile metadata %s has unknown keys: %w"
	ProfileMetaDecodeFmt       = "decode profile metadata %s: %w"
	ProfileMetaSchemaFmt       = "profile metadata %s: unsupported schema_version %d"
	ProfileMetaNameRequired    = "profile metadata name is required"
	ProfileMetaNameMismatchFmt = "profile metadata name %q does not match bundle directory %q"
)
