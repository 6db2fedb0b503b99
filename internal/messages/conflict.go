package messages

// Conflict resolution messages.
const (
	ConflictHeader          = "Local modifications detected in files installed by the current profile:"
	ConflictFileFmt         = "  - %s\n"
	ConflictPrompt          = "What would you like to do?\n  1) Proceed and overwrite local modifications\n  2) Show details\n  3) Abort\nChoice [1/2/3]: "
	ConflictConfirmPrompt   = "Overwrite the files listed above? This cannot be undone. [y/N]: "
	ConflictFileDeletedFmt  = "  %s: deleted locally\n"
	ConflictFileModifiedFmt = "  %s: modified locally (no pristine copy available for diff)\n"
	ConflictAborted         = "aborted by user"
	// ConflictNonInteractiveFmt is the hard-failure message when changes are
	// detected without an interactive channel.
	ConflictNonInteractiveFmt = "local modifications detected in %d tracked file(s): %s; resolve them manually or rerun in an interactive terminal"
)
