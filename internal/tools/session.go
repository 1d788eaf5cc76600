package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/patterns"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/session"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/storage"
)

// SessionTools holds references needed by cursor and settings tool handlers.
type SessionTools struct {
	Library  *patterns.Library
	Session  *session.Session
	Settings *storage.SettingsStore
}

// --- Input types ---

type SelectPatternInput struct {
	ID     string `json:"id" jsonschema:"Pattern id to select; empty clears the selection"`
	Target string `json:"target,omitempty" jsonschema:"Which cell to set: active, viewing, or both (default both)"`
}

type InitUserCodeInput struct {
	Code string `json:"code" jsonschema:"Code currently in the editor"`
}

type SetSettingInput struct {
	Key   string `json:"key" jsonschema:"Setting key, e.g. theme or fontSize"`
	Value string `json:"value" jsonschema:"New value"`
}

// --- Handlers ---

func (t *SessionTools) GetCursor(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.Session.Current())
}

func (t *SessionTools) SelectPattern(_ context.Context, _ *mcp.CallToolRequest, input SelectPatternInput) (*mcp.CallToolResult, any, error) {
	target := strings.ToLower(input.Target)
	if target == "" {
		target = "both"
	}
	if target != "active" && target != "viewing" && target != "both" {
		return toolError("Unknown target %q (use active, viewing or both)", input.Target), nil, nil
	}

	if input.ID != "" {
		if _, err := t.Library.Get(input.ID); err != nil {
			return toolError("Failed to select pattern: %v", err), nil, nil
		}
	}

	if target != "viewing" {
		if err := t.Session.SetActivePattern(input.ID); err != nil {
			return toolError("Failed to set active pattern: %v", err), nil, nil
		}
	}
	if target != "active" {
		if err := t.Session.SetViewingPattern(input.ID); err != nil {
			return toolError("Failed to set viewing pattern: %v", err), nil, nil
		}
	}
	return toolJSON(t.Session.Current())
}

func (t *SessionTools) InitUserCode(_ context.Context, _ *mcp.CallToolRequest, input InitUserCodeInput) (*mcp.CallToolResult, any, error) {
	id, found, err := t.Library.InitUserCode(input.Code)
	if err != nil {
		return toolError("Failed to match code: %v", err), nil, nil
	}
	if !found {
		return toolText("No stored pattern matches this code; selection unchanged."), nil, nil
	}
	return toolText(fmt.Sprintf("Selected pattern %q.", id)), nil, nil
}

func (t *SessionTools) GetSettings(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	s, err := t.Settings.Settings()
	if err != nil {
		return toolError("Failed to read settings: %v", err), nil, nil
	}
	return toolJSON(s)
}

func (t *SessionTools) SetSetting(_ context.Context, _ *mcp.CallToolRequest, input SetSettingInput) (*mcp.CallToolResult, any, error) {
	if input.Key == "" {
		return toolError("Setting key is required"), nil, nil
	}
	if input.Key == storage.KeyUserPatterns {
		return toolError("%s is managed by the pattern tools", storage.KeyUserPatterns), nil, nil
	}
	if _, known := storage.DefaultSettings[input.Key]; !known {
		return toolError("Unknown setting %q", input.Key), nil, nil
	}
	if err := t.Settings.SetKey(input.Key, input.Value); err != nil {
		return toolError("Failed to set %s: %v", input.Key, err), nil, nil
	}
	return toolText(fmt.Sprintf("%s = %q", input.Key, input.Value)), nil, nil
}
