// Package wizard renders the interactive profile picker shown when switch or
// install is invoked without a profile argument on a terminal.
package wizard

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/tilework-tech/nori/internal/messages"
	"github.com/tilework-tech/nori/internal/terminal"
)

// ErrAborted is returned when the user leaves the picker without choosing,
// via Esc or Ctrl+C. Callers exit cleanly without mutating state.
var ErrAborted = errors.New("profile selection aborted")

// UI renders single-choice prompts.
type UI interface {
	Select(title string, options []Option, value *string) error
}

// Option is one selectable entry: Label is displayed, Value is stored.
type Option struct {
	Label string
	Value string
}

// HuhUI implements UI using charmbracelet/huh.
type HuhUI struct {
	isTerminal func() bool
}

// runFormFunc is the seam tests use to replace the real form loop.
var runFormFunc = func(form *huh.Form) error { return form.Run() }

// NewHuhUI creates a HuhUI using the default terminal check.
func NewHuhUI() *HuhUI {
	return &HuhUI{isTerminal: terminal.IsInteractive}
}

func (ui *HuhUI) ensureInteractive() error {
	checker := ui.isTerminal
	if checker == nil {
		checker = terminal.IsInteractive
	}
	if checker() {
		return nil
	}
	return fmt.Errorf(messages.WizardRequiresTerminal)
}

// pickerKeyMap binds both Esc and Ctrl+C to abort and disables list
// filtering, which would otherwise swallow the Esc key.
func pickerKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "abort"))
	km.Select.Filter.SetEnabled(false)
	km.Select.SetFilter.SetEnabled(false)
	km.Select.ClearFilter.SetEnabled(false)
	return km
}

// runForm validates terminal availability and runs the form, mapping huh's
// abort into ErrAborted.
func (ui *HuhUI) runForm(form *huh.Form) error {
	if err := ui.ensureInteractive(); err != nil {
		return err
	}
	form.WithKeyMap(pickerKeyMap())
	form.WithProgramOptions(
		tea.WithOutput(os.Stderr),
		tea.WithFilter(interruptFilter),
	)
	err := runFormFunc(form)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// interruptFilter converts InterruptMsg (huh's CancelCmd or an external
// SIGINT) into QuitMsg so bubbletea takes the graceful shutdown path and the
// renderer clears the form output.
func interruptFilter(_ tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.InterruptMsg); ok {
		return tea.QuitMsg{}
	}
	return msg
}

// Select renders a single-choice prompt.
func (ui *HuhUI) Select(title string, options []Option, value *string) error {
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label, o.Value)
	}
	return ui.runForm(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Value(value),
		),
	))
}
