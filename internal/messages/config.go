package messages

// Config document messages.
const (
	ConfigInstallDirRequired  = "install directory is required"
	ConfigFailedReadFmt       = "failed to read config %s: %w"
	ConfigFailedDecodeFmt     = "failed to decode config %s: %w"
	ConfigFailedEncodeFmt     = "failed to encode config: %w"
	ConfigFailedWriteFmt      = "failed to write config %s: %w"
	ConfigFailedReadMarkerFmt = "failed to read version marker %s: %w"
)
