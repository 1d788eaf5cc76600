package server

import (
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/logger"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/patterns"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/session"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/storage"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/tools"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/tunes"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Options tunes the server.
type Options struct {
	ExportDir         string
	ImportConcurrency int
	Logger            *logger.Logger
	// Now overrides time.Now, mostly for tests.
	Now func() time.Time
}

// New creates a fully configured MCP server with all tools registered.
func New(settings *storage.SettingsStore, opts Options) (*mcp.Server, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	table, err := tunes.All()
	if err != nil {
		return nil, err
	}
	sess, err := session.New(settings)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	libOpts := []patterns.Option{patterns.WithLogger(log)}
	if opts.Now != nil {
		libOpts = append(libOpts, patterns.WithClock(opts.Now))
	}
	lib := patterns.New(settings, sess, table, libOpts...)

	settings.Subscribe(storage.ObserverFunc(func(c storage.Change) {
		if c.Key == storage.KeyUserPatterns {
			log.Debug("user patterns written", "bytes", len(c.Value))
			return
		}
		log.Debug("setting changed", "key", c.Key, "value", c.Value)
	}))

	pt := &tools.PatternTools{Library: lib, ExportDir: opts.ExportDir, ImportConcurrency: opts.ImportConcurrency}
	st := &tools.SessionTools{Library: lib, Session: sess, Settings: settings}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "pattern-mcp",
		Version: Version,
	}, nil)

	// Pattern tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_patterns",
		Description: "List user patterns, stock example patterns, or both",
	}, pt.ListPatterns)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_pattern",
		Description: "Get one pattern by id (user patterns first, then examples)",
	}, pt.GetPattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_pattern",
		Description: "Create a new empty user pattern with a fresh id",
	}, pt.CreatePattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_pattern",
		Description: "Store code under a user pattern id, creating it if needed",
	}, pt.UpdatePattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "duplicate_pattern",
		Description: "Copy an example or user pattern into a new user pattern",
	}, pt.DuplicatePattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "rename_pattern",
		Description: "Rename a user pattern (fails if the new name is taken)",
	}, pt.RenamePattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_pattern",
		Description: "Delete a user pattern and return the pattern to display next",
	}, pt.DeletePattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "clear_patterns",
		Description: "Delete every user pattern (requires confirm=true, irreversible)",
	}, pt.ClearPatterns)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "import_patterns",
		Description: "Import patterns from JSON exports or plain-text files",
	}, pt.ImportPatterns)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "export_patterns",
		Description: "Export all user patterns to a date-stamped JSON file",
	}, pt.ExportPatterns)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_patterns",
		Description: "Search user and example patterns by id, name or code",
	}, pt.SearchPatterns)

	// Session and settings tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_cursor",
		Description: "Get the active and viewing pattern of this session",
	}, st.GetCursor)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "select_pattern",
		Description: "Set the active and/or viewing pattern",
	}, st.SelectPattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "init_user_code",
		Description: "Select the stored pattern whose code matches the given code exactly",
	}, st.InitUserCode)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_settings",
		Description: "Read the editor settings",
	}, st.GetSettings)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "set_setting",
		Description: "Change one editor setting",
	}, st.SetSetting)

	return srv, nil
}
