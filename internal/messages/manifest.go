package messages

// Manifest and change-detection messages.
const (
	ManifestInstallDirRequired  = "install directory is required"
	ManifestProfileNameRequired = "profile name is required"
	ManifestFailedHashFmt       = "failed to hash %s: %w"
	ManifestFailedEncodeFmt     = "failed to encode manifest: %w"
	ManifestFailedWriteFmt      = "failed to write manifest %s: %w"
	ManifestCorruptWarningFmt   = "Warning: manifest %s is unreadable (%v); treating as first install\n"
)
