// Package conflict gates destructive operations on locally modified files.
//
// The decision policy is deliberately separate from prompt I/O: Resolver
// consumes an injected Prompter, so the policy is unit-testable with scripted
// responses instead of real stdin.
package conflict

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/rs/zerolog"

	"github.com/tilework-tech/nori/internal/manifest"
	"github.com/tilework-tech/nori/internal/messages"
)

// Mode selects between prompting and refusing when changes are detected.
type Mode int

const (
	// ModeNonInteractive refuses to overwrite changed files outright.
	ModeNonInteractive Mode = iota
	// ModeInteractive elicits a user decision before overwriting.
	ModeInteractive
)

// Decision is the gate outcome.
type Decision int

const (
	// Abort means the operation must not mutate the install directory.
	Abort Decision = iota
	// Proceed means the operation may overwrite tracked files.
	Proceed
)

// ErrUserAbort is returned when the user explicitly declines in interactive
// resolution. Callers exit cleanly without mutating state.
var ErrUserAbort = errors.New(messages.ConflictAborted)

// NonInteractiveConflictError is the hard failure raised when changes are
// detected with no interactive channel.
type NonInteractiveConflictError struct {
	Paths []string
}

func (e *NonInteractiveConflictError) Error() string {
	return fmt.Sprintf(messages.ConflictNonInteractiveFmt, len(e.Paths), strings.Join(e.Paths, ", "))
}

// PristineReader returns the originally installed content for a tracked
// relative path, when the recorded profile is still available to read from.
type PristineReader func(relPath string) ([]byte, bool)

// Resolver decides whether an operation may overwrite tracked files that the
// user modified locally. There is no silent-overwrite path: every Proceed for
// a changed file passes through either an explicit confirmation (interactive)
// or never happens (non-interactive).
type Resolver struct {
	// InstallDir is the root the changed paths are relative to.
	InstallDir string
	// Prompter supplies user input in interactive mode.
	Prompter Prompter
	// Pristine optionally supplies original file content for the details
	// view; without it, files are listed with modified/deleted markers only.
	Pristine PristineReader
	// Out receives the conflict listing, prompts context, and diffs.
	Out    io.Writer
	Logger zerolog.Logger
	// Force skips the extra confirmation after an explicit proceed choice.
	// It never bypasses the choice prompt itself, and it has no effect in
	// non-interactive mode, where conflicts always fail.
	Force bool
}

// Resolve runs the gate for the detected changes. It returns Proceed with a
// nil error, or Abort with ErrUserAbort or a *NonInteractiveConflictError.
// The caller must invoke it before mutating anything under InstallDir.
func (r *Resolver) Resolve(changes manifest.Changes, mode Mode) (Decision, error) {
	if !changes.HasChanges() {
		return Proceed, nil
	}
	if mode != ModeInteractive {
		r.Logger.Error().Strs("files", changes.Changed).Msg("local modifications block non-interactive overwrite")
		return Abort, &NonInteractiveConflictError{Paths: changes.Changed}
	}

	r.printChanged(changes.Changed)
	choice, err := r.ask(messages.ConflictPrompt)
	if err != nil {
		return Abort, ErrUserAbort
	}
	switch choice {
	case "1":
		return r.confirmOverwrite()
	case "2":
		r.printDetails(changes.Changed)
		return r.confirmOverwrite()
	default:
		// "3", empty input, and anything unrecognized all decline.
		return Abort, ErrUserAbort
	}
}

// confirmOverwrite is the single extra confirmation every overwrite passes
// through after the initial choice.
func (r *Resolver) confirmOverwrite() (Decision, error) {
	if r.Force {
		return Proceed, nil
	}
	answer, err := r.ask(messages.ConflictConfirmPrompt)
	if err != nil {
		return Abort, ErrUserAbort
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return Proceed, nil
	default:
		return Abort, ErrUserAbort
	}
}

func (r *Resolver) ask(prompt string) (string, error) {
	answer, err := r.Prompter.Ask(prompt)
	if err != nil {
		// End-of-input is a decline, not a failure.
		r.Logger.Debug().Err(err).Msg("prompt ended without an answer")
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (r *Resolver) printChanged(paths []string) {
	fmt.Fprintln(r.Out, messages.ConflictHeader)
	for _, rel := range paths {
		fmt.Fprintf(r.Out, messages.ConflictFileFmt, rel)
	}
}

// printDetails shows a per-file unified diff against the recorded profile's
// pristine content where available, and modified/deleted markers otherwise.
func (r *Resolver) printDetails(paths []string) {
	for _, rel := range paths {
		live, err := os.ReadFile(filepath.Join(r.InstallDir, filepath.FromSlash(rel)))
		if err != nil {
			fmt.Fprintf(r.Out, messages.ConflictFileDeletedFmt, rel)
			continue
		}
		if r.Pristine == nil {
			fmt.Fprintf(r.Out, messages.ConflictFileModifiedFmt, rel)
			continue
		}
		pristine, ok := r.Pristine(rel)
		if !ok {
			fmt.Fprintf(r.Out, messages.ConflictFileModifiedFmt, rel)
			continue
		}
		diff := udiff.Unified(rel+" (installed)", rel+" (local)", string(pristine), string(live))
		fmt.Fprintln(r.Out, diff)
	}
}
