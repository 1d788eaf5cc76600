package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/server"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/storage"
)

var integrationNow = time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)

// setupIntegration creates a real MCP server with in-memory transport and returns a connected client session.
func setupIntegration(t *testing.T) (*mcp.ClientSession, string) {
	t.Helper()

	dir := t.TempDir()
	settings, err := storage.OpenSettings(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { settings.Close() })

	exportDir := filepath.Join(dir, "exports")
	srv, err := server.New(settings, server.Options{
		ExportDir:         exportDir,
		ImportConcurrency: 2,
		Now:               func() time.Time { return integrationNow },
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	if _, err := srv.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return session, exportDir
}

// callTool is a helper that calls a tool and returns the text content.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
	}
	return tc.Text
}

// callToolExpectError calls a tool and expects an error response (IsError=true).
func callToolExpectError(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): protocol error: %v", name, err)
	}
	if !result.IsError {
		tc := result.Content[0].(*mcp.TextContent)
		t.Fatalf("CallTool(%s): expected error but got success: %s", name, tc.Text)
	}
	tc := result.Content[0].(*mcp.TextContent)
	return tc.Text
}

func decode[T any](t *testing.T, text string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	return v
}

func TestIntegration_ListTools(t *testing.T) {
	session, _ := setupIntegration(t)

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	expectedTools := []string{
		"list_patterns", "get_pattern", "create_pattern", "update_pattern",
		"duplicate_pattern", "rename_pattern", "delete_pattern", "clear_patterns",
		"import_patterns", "export_patterns", "search_patterns",
		"get_cursor", "select_pattern", "init_user_code",
		"get_settings", "set_setting",
	}

	toolNames := make(map[string]bool)
	for _, tool := range result.Tools {
		toolNames[tool.Name] = true
	}

	for _, name := range expectedTools {
		if !toolNames[name] {
			t.Errorf("Missing tool: %s", name)
		}
	}

	if len(result.Tools) != len(expectedTools) {
		t.Errorf("Expected %d tools, got %d", len(expectedTools), len(result.Tools))
	}
}

func TestIntegration_FullWorkflow(t *testing.T) {
	session, exportDir := setupIntegration(t)

	// Step 1: create_pattern
	created := decode[models.Entry](t, callTool(t, session, "create_pattern", map[string]any{}))
	x := created.ID
	if len(x) != 12 {
		t.Errorf("id %q should have 12 characters", x)
	}
	if created.Data == nil || created.Data.Code != "" || created.Data.Collection != models.CollectionUser {
		t.Errorf("unexpected created pattern: %+v", created.Data)
	}
	if created.Data.CreatedAt != integrationNow.UnixMilli() {
		t.Errorf("created_at = %d, want %d", created.Data.CreatedAt, integrationNow.UnixMilli())
	}

	// Step 2: update_pattern keeps created_at
	updated := decode[models.Entry](t, callTool(t, session, "update_pattern", map[string]any{
		"id":   x,
		"code": `s("bd")`,
	}))
	if updated.Data.Code != `s("bd")` || updated.Data.CreatedAt != integrationNow.UnixMilli() {
		t.Errorf("unexpected updated pattern: %+v", updated.Data)
	}

	// Step 3: select it, then duplicate
	callTool(t, session, "select_pattern", map[string]any{"id": x})
	dup := decode[models.Entry](t, callTool(t, session, "duplicate_pattern", map[string]any{"id": x}))
	if dup.ID == x || dup.Data.Code != `s("bd")` {
		t.Errorf("unexpected duplicate: %+v", dup)
	}

	// Step 4: rename the active pattern; the cursor follows
	renamed := decode[models.Entry](t, callTool(t, session, "rename_pattern", map[string]any{
		"id":       x,
		"new_name": "groove",
	}))
	if renamed.ID != "groove" {
		t.Errorf("renamed id = %q, want groove", renamed.ID)
	}
	cursor := decode[models.Cursor](t, callTool(t, session, "get_cursor", map[string]any{}))
	if cursor.Active != "groove" {
		t.Errorf("active = %q, want groove", cursor.Active)
	}

	// Step 5: export, clear, import back
	exported := decode[struct {
		Name string `json:"name"`
		Path string `json:"path"`
	}](t, callTool(t, session, "export_patterns", map[string]any{}))
	if exported.Name != "strudel_patterns_2025-01-31.json" {
		t.Errorf("export name = %q", exported.Name)
	}
	if filepath.Dir(exported.Path) != exportDir {
		t.Errorf("export written to %q, want dir %q", exported.Path, exportDir)
	}
	if _, err := os.Stat(exported.Path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	before := callTool(t, session, "list_patterns", map[string]any{"collection": "user"})

	text := callTool(t, session, "clear_patterns", map[string]any{"confirm": false})
	if !strings.Contains(text, "Nothing deleted") {
		t.Errorf("clear without confirm should not delete: %s", text)
	}
	callTool(t, session, "clear_patterns", map[string]any{"confirm": true})
	cursor = decode[models.Cursor](t, callTool(t, session, "get_cursor", map[string]any{}))
	if cursor.Active != "" {
		t.Errorf("active should be cleared, got %q", cursor.Active)
	}

	res := decode[models.ImportResult](t, callTool(t, session, "import_patterns", map[string]any{
		"paths": []any{exported.Path},
	}))
	if res.FilesApplied != 1 || res.PatternsImported != 2 {
		t.Errorf("unexpected import result: %+v", res)
	}
	after := callTool(t, session, "list_patterns", map[string]any{"collection": "user"})
	if before != after {
		t.Errorf("round trip changed the collection:\nbefore %s\nafter  %s", before, after)
	}

	// Step 6: delete the viewed pattern
	callTool(t, session, "select_pattern", map[string]any{"id": "groove"})
	deleted := decode[models.Entry](t, callTool(t, session, "delete_pattern", map[string]any{"id": "groove"}))
	if deleted.ID != "" || deleted.Data == nil || deleted.Data.Code != "" {
		t.Errorf("deleting the viewed pattern should return a blank pattern, got %+v", deleted)
	}
	cursor = decode[models.Cursor](t, callTool(t, session, "get_cursor", map[string]any{}))
	if cursor.Active != "" {
		t.Errorf("active should be cleared after delete, got %q", cursor.Active)
	}
}

func TestIntegration_ExamplesAndSearch(t *testing.T) {
	session, _ := setupIntegration(t)

	list := decode[struct {
		Examples []models.Pattern `json:"examples"`
	}](t, callTool(t, session, "list_patterns", map[string]any{"collection": "examples"}))
	if len(list.Examples) == 0 {
		t.Fatal("expected bundled examples")
	}
	first := list.Examples[0]
	if first.ID != "0" {
		t.Errorf("first example id = %q, want 0", first.ID)
	}

	text := callTool(t, session, "init_user_code", map[string]any{"code": first.Code})
	if !strings.Contains(text, `"0"`) {
		t.Errorf("init_user_code should select example 0: %s", text)
	}
	cursor := decode[models.Cursor](t, callTool(t, session, "get_cursor", map[string]any{}))
	if cursor.Active != "0" || cursor.Viewing != "0" {
		t.Errorf("cursor = %+v, want both 0", cursor)
	}

	// Clearing while an example is viewed hands the example back.
	cleared := decode[models.Entry](t, callTool(t, session, "clear_patterns", map[string]any{"confirm": true}))
	if cleared.ID != "0" || cleared.Data.Code != first.Code {
		t.Errorf("clear should return the viewed example, got %+v", cleared)
	}

	found := decode[[]models.Pattern](t, callTool(t, session, "search_patterns", map[string]any{"query": "swimming"}))
	if len(found) != 1 || found[0].ID != "0" {
		t.Errorf("search by tune name: %+v", found)
	}
}

func TestIntegration_Settings(t *testing.T) {
	session, _ := setupIntegration(t)

	callTool(t, session, "set_setting", map[string]any{"key": "fontSize", "value": "22"})
	callTool(t, session, "set_setting", map[string]any{"key": "isZen", "value": "true"})

	s := decode[models.Settings](t, callTool(t, session, "get_settings", map[string]any{}))
	if s.FontSize != 22 {
		t.Errorf("fontSize = %v, want 22", s.FontSize)
	}
	if !s.IsZen {
		t.Error("isZen should be true")
	}

	callToolExpectError(t, session, "set_setting", map[string]any{"key": "userPatterns", "value": "{}"})
	callToolExpectError(t, session, "set_setting", map[string]any{"key": "nonsense", "value": "1"})
}

func TestIntegration_ErrorCases(t *testing.T) {
	session, _ := setupIntegration(t)

	callTool(t, session, "update_pattern", map[string]any{"id": "a", "code": "1"})
	callTool(t, session, "update_pattern", map[string]any{"id": "b", "code": "2"})

	text := callToolExpectError(t, session, "rename_pattern", map[string]any{"id": "a", "new_name": "b"})
	if !strings.Contains(text, "Name already taken!") {
		t.Errorf("unexpected rename error: %s", text)
	}
	a := decode[models.Pattern](t, callTool(t, session, "get_pattern", map[string]any{"id": "a"}))
	if a.Code != "1" {
		t.Errorf("pattern a changed after rejected rename: %+v", a)
	}

	// No new name means the prompt was cancelled.
	cancelled := decode[models.Entry](t, callTool(t, session, "rename_pattern", map[string]any{"id": "a"}))
	if cancelled.ID != "a" {
		t.Errorf("cancelled rename returned %q", cancelled.ID)
	}

	callToolExpectError(t, session, "duplicate_pattern", map[string]any{"id": "ghost"})
	callToolExpectError(t, session, "get_pattern", map[string]any{"id": "ghost"})
	callToolExpectError(t, session, "select_pattern", map[string]any{"id": "ghost"})
	callToolExpectError(t, session, "list_patterns", map[string]any{"collection": "public"})
	callToolExpectError(t, session, "import_patterns", map[string]any{})
	callToolExpectError(t, session, "import_patterns", map[string]any{
		"files": []any{map[string]any{"name": "x.json", "type": "application/json", "content": "{"}},
	})
	callToolExpectError(t, session, "search_patterns", map[string]any{"query": ""})
}

func TestIntegration_InlineImport(t *testing.T) {
	session, _ := setupIntegration(t)

	res := decode[models.ImportResult](t, callTool(t, session, "import_patterns", map[string]any{
		"files": []any{
			map[string]any{"name": "loop.txt", "type": "text/plain", "content": `s("hh*8")`},
			map[string]any{"name": "broken.json", "type": "application/json", "content": "{"},
		},
	}))
	if res.FilesApplied != 1 || res.FilesFailed != 1 || len(res.Errors) != 1 {
		t.Errorf("unexpected import result: %+v", res)
	}

	p := decode[models.Pattern](t, callTool(t, session, "get_pattern", map[string]any{"id": "loop"}))
	if p.Code != `s("hh*8")` {
		t.Errorf("loop code = %q", p.Code)
	}
}
