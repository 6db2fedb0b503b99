package messages

// CLI messages.
const (
	// VersionTemplate is the cobra version output template.
	VersionTemplate = "nori {{.Version}}\n"
	// VersionCommitFmt formats the build commit for version output.
	VersionCommitFmt = "commit %s"
	// VersionBuildFmt formats the build date for version output.
	VersionBuildFmt = "built %s"
	// VersionFullFmt combines the version and its metadata.
	VersionFullFmt = "%s (%s)"

	RootUse   = "nori"
	RootShort = "Install and manage AI agent configuration profiles"

	InstallUse       = "install [profile]"
	InstallShort     = "Install a configuration profile into the install directory"
	SwitchUse        = "switch [profile]"
	SwitchShort      = "Switch the installed configuration to another profile"
	StatusUse        = "status"
	StatusShort      = "Show the installed profile and any local modifications"
	ProfilesUse      = "profiles"
	ProfilesShort    = "List available configuration profiles"
	UpgradeUse       = "upgrade"
	UpgradeShort     = "Apply pending configuration migrations"
	UpgradePlanUse   = "plan"
	UpgradePlanShort = "Show pending migrations without applying them"

	FlagInstallDir  = "directory profiles are installed into"
	FlagProfilesDir = "load profiles from a local directory instead of the built-in set"
	FlagVerbose     = "enable debug logging"
	FlagForce       = "skip the overwrite confirmation after choosing to proceed"
	FlagJSON        = "emit machine-readable JSON"
	FlagAgent       = "agent the profile is installed for"
	FlagFrom        = "override the detected previous version"

	Aborted = "Aborted.\n"

	WizardRequiresTerminal = "profile selection requires an interactive terminal; pass the profile name as an argument"
	WizardPickProfileTitle = "Choose a profile"
)
