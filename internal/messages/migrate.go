package messages

// Migration pipeline messages.
const (
	// MigratePreviousVersionRequired indicates the caller passed an empty previous version.
	MigratePreviousVersionRequired = "previousVersion is required"
	// MigrateInvalidPreviousVersionFmt indicates the previous version is not valid semver.
	MigrateInvalidPreviousVersionFmt = "Invalid previousVersion: %v"
	MigrateDuplicateVersionFmt       = "duplicate migration version %s"
	MigrateInvalidVersionFmt         = "invalid migration version %q: %w"
	MigrateApplyFailedFmt            = "apply migration %s: %w"
	MigrateRelocateCopyFmt           = "copy legacy profiles to %s: %w"
	MigrateRelocateRemoveFmt         = "remove legacy profiles directory %s: %w"
	MigrateSettingsReadFmt           = "read settings %s: %w"
	MigrateSettingsDecodeFmt         = "decode settings %s: %w"
	MigrateSettingsWriteFmt          = "write settings %s: %w"
)
