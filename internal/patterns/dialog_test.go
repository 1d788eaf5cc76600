package patterns

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalDialogConfirm(t *testing.T) {
	var out bytes.Buffer
	d := NewTerminalDialog(strings.NewReader("yes\nno\n"), &out)

	assert.True(t, d.Confirm("sure?"))
	assert.False(t, d.Confirm("sure?"))
	assert.False(t, d.Confirm("sure?"), "EOF declines")
	assert.Contains(t, out.String(), "sure? [y/N]: ")
}

func TestTerminalDialogPrompt(t *testing.T) {
	var out bytes.Buffer
	d := NewTerminalDialog(strings.NewReader("\nrenamed\n"), &out)

	v, ok := d.Prompt(MsgRenamePrompt, "old")
	assert.True(t, ok)
	assert.Equal(t, "old", v)

	v, ok = d.Prompt(MsgRenamePrompt, "old")
	assert.True(t, ok)
	assert.Equal(t, "renamed", v)

	_, ok = d.Prompt(MsgRenamePrompt, "old")
	assert.False(t, ok)

	d.Alert(MsgNameTaken)
	assert.Contains(t, out.String(), MsgNameTaken+"\n")
}

func TestScriptedDialog(t *testing.T) {
	d := &ScriptedDialog{Confirmed: true, Answer: Answer("x")}
	assert.True(t, d.Confirm("?"))
	v, ok := d.Prompt("?", "")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	d.Alert("one")
	assert.Equal(t, []string{"one"}, d.Alerts())
}
