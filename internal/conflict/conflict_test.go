package conflict

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tilework-tech/nori/internal/manifest"
)

// scriptPrompter replays canned answers and records every prompt asked.
type scriptPrompter struct {
	answers []string
	asked   []string
}

func (p *scriptPrompter) Ask(prompt string) (string, error) {
	p.asked = append(p.asked, prompt)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func newTestResolver(dir string, prompter Prompter, out io.Writer) *Resolver {
	return &Resolver{
		InstallDir: dir,
		Prompter:   prompter,
		Out:        out,
		Logger:     zerolog.Nop(),
	}
}

func TestResolve_NoChangesProceedsWithoutPrompting(t *testing.T) {
	prompter := &scriptPrompter{}
	resolver := newTestResolver(t.TempDir(), prompter, io.Discard)

	for _, mode := range []Mode{ModeInteractive, ModeNonInteractive} {
		decision, err := resolver.Resolve(manifest.Changes{}, mode)
		if err != nil {
			t.Fatalf("Resolve(mode=%d): %v", mode, err)
		}
		if decision != Proceed {
			t.Fatalf("decision = %d, want Proceed", decision)
		}
	}
	if len(prompter.asked) != 0 {
		t.Fatalf("prompted %d times with no changes", len(prompter.asked))
	}
}

func TestResolve_NonInteractiveConflictFails(t *testing.T) {
	prompter := &scriptPrompter{}
	resolver := newTestResolver(t.TempDir(), prompter, io.Discard)
	changes := manifest.Changes{Changed: []string{"skills/a/SKILL.md"}}

	decision, err := resolver.Resolve(changes, ModeNonInteractive)
	if decision != Abort {
		t.Fatalf("decision = %d, want Abort", decision)
	}
	var conflictErr *NonInteractiveConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("error = %v, want *NonInteractiveConflictError", err)
	}
	if len(conflictErr.Paths) != 1 || conflictErr.Paths[0] != "skills/a/SKILL.md" {
		t.Fatalf("paths = %v", conflictErr.Paths)
	}
	if len(prompter.asked) != 0 {
		t.Fatal("non-interactive mode must never prompt")
	}
}

func TestResolve_ProceedAnywayRequiresOneConfirmation(t *testing.T) {
	prompter := &scriptPrompter{answers: []string{"1", "y"}}
	var out bytes.Buffer
	resolver := newTestResolver(t.TempDir(), prompter, &out)

	decision, err := resolver.Resolve(manifest.Changes{Changed: []string{"CLAUDE.md"}}, ModeInteractive)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if decision != Proceed {
		t.Fatalf("decision = %d, want Proceed", decision)
	}
	if len(prompter.asked) != 2 {
		t.Fatalf("prompted %d times, want exactly 2 (choice + one confirmation)", len(prompter.asked))
	}
	if !strings.Contains(out.String(), "CLAUDE.md") {
		t.Fatalf("changed file not listed in output: %q", out.String())
	}
}

func TestResolve_ForceSkipsConfirmationNotChoice(t *testing.T) {
	prompter := &scriptPrompter{answers: []string{"1"}}
	resolver := newTestResolver(t.TempDir(), prompter, io.Discard)
	resolver.Force = true

	decision, err := resolver.Resolve(manifest.Changes{Changed: []string{"CLAUDE.md"}}, ModeInteractive)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if decision != Proceed {
		t.Fatalf("decision = %d, want Proceed", decision)
	}
	if len(prompter.asked) != 1 {
		t.Fatalf("prompted %d times, want 1 (choice only)", len(prompter.asked))
	}
}

func TestResolve_ForceDoesNotBypassNonInteractiveConflict(t *testing.T) {
	resolver := newTestResolver(t.TempDir(), &scriptPrompter{}, io.Discard)
	resolver.Force = true

	_, err := resolver.Resolve(manifest.Changes{Changed: []string{"CLAUDE.md"}}, ModeNonInteractive)
	var conflictErr *NonInteractiveConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("error = %v, want *NonInteractiveConflictError", err)
	}
}

func TestResolve_ProceedAnywayDeclinedConfirmation(t *testing.T) {
	prompter := &scriptPrompter{answers: []string{"1", "n"}}
	resolver := newTestResolver(t.TempDir(), prompter, io.Discard)

	decision, err := resolver.Resolve(manifest.Changes{Changed: []string{"CLAUDE.md"}}, ModeInteractive)
	if decision != Abort || !errors.Is(err, ErrUserAbort) {
		t.Fatalf("decision = %d, err = %v, want Abort with ErrUserAbort", decision, err)
	}
}

func TestResolve_AbortChoiceStopsImmediately(t *testing.T) {
	prompter := &scriptPrompter{answers: []string{"3"}}
	resolver := newTestResolver(t.TempDir(), prompter, io.Discard)

	decision, err := resolver.Resolve(manifest.Changes{Changed: []string{"CLAUDE.md"}}, ModeInteractive)
	if decision != Abort || !errors.Is(err, ErrUserAbort) {
		t.Fatalf("decision = %d, err = %v, want Abort with ErrUserAbort", decision, err)
	}
	if len(prompter.asked) != 1 {
		t.Fatalf("prompted %d times after abort choice, want 1", len(prompter.asked))
	}
}

func TestResolve_UnrecognizedChoiceDeclines(t *testing.T) {
	for _, answer := range []string{"", "x", "99"} {
		prompter := &scriptPrompter{answers: []string{answer}}
		resolver := newTestResolver(t.TempDir(), prompter, io.Discard)

		_, err := resolver.Resolve(manifest.Changes{Changed: []string{"a.md"}}, ModeInteractive)
		if !errors.Is(err, ErrUserAbort) {
			t.Fatalf("answer %q: err = %v, want ErrUserAbort", answer, err)
		}
	}
}

func TestResolve_EndOfInputDeclines(t *testing.T) {
	prompter := &scriptPrompter{} // answers exhausted: every Ask returns io.EOF
	resolver := newTestResolver(t.TempDir(), prompter, io.Discard)

	_, err := resolver.Resolve(manifest.Changes{Changed: []string{"a.md"}}, ModeInteractive)
	if !errors.Is(err, ErrUserAbort) {
		t.Fatalf("err = %v, want ErrUserAbort", err)
	}
}

func TestResolve_ShowDetailsRendersDiffThenConfirms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CLAUDE.md")
	if err := os.WriteFile(path, []byte("local edit\n"), 0o644); err != nil {
		t.Fatalf("write live file: %v", err)
	}

	prompter := &scriptPrompter{answers: []string{"2", "yes"}}
	var out bytes.Buffer
	resolver := newTestResolver(dir, prompter, &out)
	resolver.Pristine = func(rel string) ([]byte, bool) {
		if rel == "CLAUDE.md" {
			return []byte("original\n"), true
		}
		return nil, false
	}

	decision, err := resolver.Resolve(manifest.Changes{Changed: []string{"CLAUDE.md"}}, ModeInteractive)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if decision != Proceed {
		t.Fatalf("decision = %d, want Proceed", decision)
	}
	rendered := out.String()
	if !strings.Contains(rendered, "-original") || !strings.Contains(rendered, "+local edit") {
		t.Fatalf("diff not rendered:\n%s", rendered)
	}
}

func TestResolve_ShowDetailsMarkersWithoutPristine(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "kept.md"), []byte("edited\n"), 0o644); err != nil {
		t.Fatalf("write live file: %v", err)
	}

	prompter := &scriptPrompter{answers: []string{"2", "n"}}
	var out bytes.Buffer
	resolver := newTestResolver(dir, prompter, &out)

	_, err := resolver.Resolve(manifest.Changes{Changed: []string{"kept.md", "gone.md"}}, ModeInteractive)
	if !errors.Is(err, ErrUserAbort) {
		t.Fatalf("err = %v, want ErrUserAbort", err)
	}
	rendered := out.String()
	if !strings.Contains(rendered, "kept.md: modified locally") {
		t.Fatalf("modified marker missing:\n%s", rendered)
	}
	if !strings.Contains(rendered, "gone.md: deleted locally") {
		t.Fatalf("deleted marker missing:\n%s", rendered)
	}
}

func TestIOPrompter_Ask(t *testing.T) {
	in := strings.NewReader("  1  \n")
	var out bytes.Buffer
	prompter := NewIOPrompter(in, &out)

	answer, err := prompter.Ask("Choice: ")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "  1  " {
		t.Fatalf("answer = %q (trimming is the resolver's job)", answer)
	}
	if out.String() != "Choice: " {
		t.Fatalf("prompt output = %q", out.String())
	}
}

func TestIOPrompter_EndOfInput(t *testing.T) {
	prompter := NewIOPrompter(strings.NewReader(""), io.Discard)
	_, err := prompter.Ask("Choice: ")
	if !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}
