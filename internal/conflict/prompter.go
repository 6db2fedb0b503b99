package conflict

import (
	"bufio"
	"io"
	"strings"
)

// Prompter solicits a single line of user input for a prompt.
type Prompter interface {
	Ask(prompt string) (string, error)
}

// IOPrompter is a Prompter over an input reader and output writer, normally
// stdin and stderr.
type IOPrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewIOPrompter returns a Prompter reading answers from in and writing
// prompt text to out.
func NewIOPrompter(in io.Reader, out io.Writer) *IOPrompter {
	return &IOPrompter{reader: bufio.NewReader(in), out: out}
}

// Ask writes prompt and reads one line. End-of-input before a newline
// returns the error along with whatever was read.
func (p *IOPrompter) Ask(prompt string) (string, error) {
	if _, err := io.WriteString(p.out, prompt); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil {
		return line, err
	}
	return line, nil
}
