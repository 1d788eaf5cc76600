package tools

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/patterns"
)

// PatternTools holds references needed by pattern tool handlers.
type PatternTools struct {
	Library           *patterns.Library
	ExportDir         string
	ImportConcurrency int
}

// --- Input types ---

type ListPatternsInput struct {
	Collection string `json:"collection,omitempty" jsonschema:"Which collection to list: user, examples, or all (default all)"`
}

type PatternIDInput struct {
	ID string `json:"id" jsonschema:"Pattern id"`
}

type UpdatePatternInput struct {
	ID   string `json:"id" jsonschema:"Pattern id; created when it does not exist"`
	Code string `json:"code" jsonschema:"Pattern source code"`
}

type RenamePatternInput struct {
	ID      string `json:"id" jsonschema:"Id of the user pattern to rename"`
	NewName string `json:"new_name,omitempty" jsonschema:"New id; leave empty to cancel"`
}

type ClearPatternsInput struct {
	Confirm bool `json:"confirm" jsonschema:"Must be true to delete every user pattern"`
}

type ImportFileInput struct {
	Name    string `json:"name" jsonschema:"File name; the pattern id for text files is the name without extension"`
	Type    string `json:"type" jsonschema:"MIME type: application/json or text/plain"`
	Content string `json:"content" jsonschema:"File content"`
}

type ImportPatternsInput struct {
	Files []ImportFileInput `json:"files,omitempty" jsonschema:"Inline files to import"`
	Paths []string          `json:"paths,omitempty" jsonschema:"Paths of local files to import"`
}

type ExportPatternsInput struct {
	Dir    string `json:"dir,omitempty" jsonschema:"Directory to write the export into (default: configured export dir)"`
	Inline bool   `json:"inline,omitempty" jsonschema:"Also return the exported JSON document"`
}

type SearchPatternsInput struct {
	Query string `json:"query" jsonschema:"Text to look for in pattern ids, names and code"`
}

type listPatternsOutput struct {
	User     []models.Pattern `json:"user,omitempty"`
	Examples []models.Pattern `json:"examples,omitempty"`
}

type exportOutput struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
}

// --- Handlers ---

func (t *PatternTools) ListPatterns(_ context.Context, _ *mcp.CallToolRequest, input ListPatternsInput) (*mcp.CallToolResult, any, error) {
	collection := strings.ToLower(input.Collection)
	if collection == "" {
		collection = "all"
	}

	var out listPatternsOutput
	switch collection {
	case "user", "all":
		user, err := t.Library.User.GetAll()
		if err != nil {
			return toolError("Failed to list patterns: %v", err), nil, nil
		}
		out.User = sortedPatterns(user)
		if out.User == nil {
			out.User = []models.Pattern{}
		}
		if collection == "user" {
			return toolJSON(out)
		}
		fallthrough
	case "examples":
		for _, id := range t.Library.Examples.IDs() {
			out.Examples = append(out.Examples, *t.Library.Examples.GetPatternData(id))
		}
	default:
		return toolError("Unknown collection %q (use user, examples or all)", input.Collection), nil, nil
	}
	return toolJSON(out)
}

func (t *PatternTools) GetPattern(_ context.Context, _ *mcp.CallToolRequest, input PatternIDInput) (*mcp.CallToolResult, any, error) {
	if input.ID == "" {
		return toolError("Pattern id is required"), nil, nil
	}
	p, err := t.Library.Get(input.ID)
	if err != nil {
		return toolError("Failed to get pattern: %v", err), nil, nil
	}
	return toolJSON(p)
}

func (t *PatternTools) CreatePattern(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	entry, err := t.Library.User.Create()
	if err != nil {
		return toolError("Failed to create pattern: %v", err), nil, nil
	}
	return toolJSON(entry)
}

func (t *PatternTools) UpdatePattern(_ context.Context, _ *mcp.CallToolRequest, input UpdatePatternInput) (*mcp.CallToolResult, any, error) {
	if input.ID == "" {
		return toolError("Pattern id is required"), nil, nil
	}

	// Keep the creation time of an existing pattern.
	data := models.Pattern{Code: input.Code}
	if old, err := t.Library.User.GetPatternData(input.ID); err == nil && old != nil {
		data.CreatedAt = old.CreatedAt
	}

	entry, err := t.Library.User.Update(input.ID, data)
	if err != nil {
		return toolError("Failed to update pattern: %v", err), nil, nil
	}
	return toolJSON(entry)
}

func (t *PatternTools) DuplicatePattern(_ context.Context, _ *mcp.CallToolRequest, input PatternIDInput) (*mcp.CallToolResult, any, error) {
	if input.ID == "" {
		return toolError("Pattern id is required"), nil, nil
	}
	entry, err := t.Library.User.Duplicate(input.ID)
	if err != nil {
		return toolError("Failed to duplicate pattern: %v", err), nil, nil
	}
	return toolJSON(entry)
}

func (t *PatternTools) RenamePattern(_ context.Context, _ *mcp.CallToolRequest, input RenamePatternInput) (*mcp.CallToolResult, any, error) {
	if input.ID == "" {
		return toolError("Pattern id is required"), nil, nil
	}

	d := &patterns.ScriptedDialog{}
	if input.NewName != "" {
		d.Answer = patterns.Answer(input.NewName)
	}

	entry, err := t.Library.User.Rename(input.ID, d)
	if err != nil {
		return toolError("Failed to rename pattern: %v", err), nil, nil
	}
	if alerts := d.Alerts(); len(alerts) > 0 {
		return toolError("%s", strings.Join(alerts, "\n")), nil, nil
	}
	return toolJSON(entry)
}

func (t *PatternTools) DeletePattern(_ context.Context, _ *mcp.CallToolRequest, input PatternIDInput) (*mcp.CallToolResult, any, error) {
	if input.ID == "" {
		return toolError("Pattern id is required"), nil, nil
	}
	entry, err := t.Library.User.Delete(input.ID)
	if err != nil {
		return toolError("Failed to delete pattern: %v", err), nil, nil
	}
	return toolJSON(entry)
}

func (t *PatternTools) ClearPatterns(_ context.Context, _ *mcp.CallToolRequest, input ClearPatternsInput) (*mcp.CallToolResult, any, error) {
	entry, err := t.Library.User.ClearAll(&patterns.ScriptedDialog{Confirmed: input.Confirm})
	if errors.Is(err, patterns.ErrCancelled) {
		return toolText("Nothing deleted. Pass confirm=true to delete all user patterns."), nil, nil
	}
	if err != nil {
		return toolError("Failed to clear patterns: %v", err), nil, nil
	}
	return toolJSON(entry)
}

func (t *PatternTools) ImportPatterns(ctx context.Context, _ *mcp.CallToolRequest, input ImportPatternsInput) (*mcp.CallToolResult, any, error) {
	if len(input.Files) == 0 && len(input.Paths) == 0 {
		return toolError("Nothing to import: pass files or paths"), nil, nil
	}

	files := make([]patterns.File, 0, len(input.Files)+len(input.Paths))
	for _, f := range input.Files {
		files = append(files, patterns.InlineFile{FileName: f.Name, MIMEType: f.Type, Content: f.Content})
	}
	for _, p := range input.Paths {
		files = append(files, patterns.DiskFile{Path: p})
	}

	res, err := t.Library.Import(ctx, files, t.ImportConcurrency)
	if err != nil && res.FilesApplied == 0 {
		return toolError("Import failed: %v", err), nil, nil
	}
	// Partial failures are listed in the result.
	return toolJSON(res)
}

func (t *PatternTools) ExportPatterns(_ context.Context, _ *mcp.CallToolRequest, input ExportPatternsInput) (*mcp.CallToolResult, any, error) {
	dir := input.Dir
	if dir == "" {
		dir = t.ExportDir
	}

	f, err := t.Library.Export()
	if err != nil {
		return toolError("Failed to export patterns: %v", err), nil, nil
	}
	path, err := t.Library.WriteExport(dir, f)
	if err != nil {
		return toolError("Failed to export patterns: %v", err), nil, nil
	}

	out := exportOutput{Name: f.Name, Path: path}
	if input.Inline {
		out.Content = string(f.Data)
	}
	return toolJSON(out)
}

func (t *PatternTools) SearchPatterns(_ context.Context, _ *mcp.CallToolRequest, input SearchPatternsInput) (*mcp.CallToolResult, any, error) {
	if input.Query == "" {
		return toolError("Search query is required"), nil, nil
	}
	found, err := t.Library.Search(input.Query)
	if err != nil {
		return toolError("Search failed: %v", err), nil, nil
	}
	if found == nil {
		found = []models.Pattern{}
	}
	return toolJSON(found)
}

func sortedPatterns(pats map[string]models.Pattern) []models.Pattern {
	ids := make([]string, 0, len(pats))
	for id := range pats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.Pattern, 0, len(ids))
	for _, id := range ids {
		out = append(out, pats[id])
	}
	return out
}
