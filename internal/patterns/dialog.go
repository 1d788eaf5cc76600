package patterns

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Dialog is the user-facing confirmation/prompt surface. Operations that
// need an answer from the user take one instead of talking to a terminal or
// browser directly.
type Dialog interface {
	// Confirm asks a yes/no question.
	Confirm(message string) bool
	// Prompt asks for a line of text. ok is false when the user cancelled.
	Prompt(message, defaultValue string) (value string, ok bool)
	// Alert shows a message that needs no answer.
	Alert(message string)
}

// ScriptedDialog answers every question from fixed values and records alerts.
type ScriptedDialog struct {
	Confirmed bool
	// Answer is returned by Prompt. nil means the prompt is cancelled.
	Answer *string

	mu     sync.Mutex
	alerts []string
}

// Answer is a convenience for building ScriptedDialog.Answer.
func Answer(s string) *string {
	return &s
}

func (d *ScriptedDialog) Confirm(string) bool {
	return d.Confirmed
}

func (d *ScriptedDialog) Prompt(string, string) (string, bool) {
	if d.Answer == nil {
		return "", false
	}
	return *d.Answer, true
}

func (d *ScriptedDialog) Alert(message string) {
	d.mu.Lock()
	d.alerts = append(d.alerts, message)
	d.mu.Unlock()
}

// Alerts returns the alerts shown so far.
func (d *ScriptedDialog) Alerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.alerts...)
}

// TerminalDialog asks questions on a line-oriented terminal.
type TerminalDialog struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalDialog reads answers from in and writes questions to out.
func NewTerminalDialog(in io.Reader, out io.Writer) *TerminalDialog {
	return &TerminalDialog{in: bufio.NewReader(in), out: out}
}

func (d *TerminalDialog) Confirm(message string) bool {
	fmt.Fprintf(d.out, "%s [y/N]: ", message)
	line, ok := d.readLine()
	if !ok {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

// Prompt shows defaultValue in brackets; an empty line accepts it and EOF
// cancels.
func (d *TerminalDialog) Prompt(message, defaultValue string) (string, bool) {
	fmt.Fprintf(d.out, "%s [%s]: ", message, defaultValue)
	line, ok := d.readLine()
	if !ok {
		return "", false
	}
	if line == "" {
		return defaultValue, true
	}
	return line, true
}

func (d *TerminalDialog) Alert(message string) {
	fmt.Fprintln(d.out, message)
}

func (d *TerminalDialog) readLine() (string, bool) {
	line, err := d.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
