package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/config"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/logger"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/patterns"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/server"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/session"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/storage"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/tunes"
)

// RootCmd creates the pattern-mcp command tree. Without a subcommand it
// serves MCP, like "serve".
func RootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "pattern-mcp",
		Short: "Live-coding pattern store with an MCP interface",
		Long: `pattern-mcp keeps your live-coding patterns, tracks which one is active
and which one is on screen, and moves them in and out as JSON.

Run without arguments to serve MCP over stdio.`,
		Version:       server.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default: ./pattern-mcp.yaml or $HOME/.pattern-mcp/pattern-mcp.yaml)")
	pf.String("data-dir", "./data", "Directory for the settings database")
	pf.String("log-mode", "dev", "Log format: dev or prod")
	pf.String("log-level", "", "Minimum log level (debug, info, warn, error)")
	pf.String("export-dir", ".", "Directory exports are written to")

	serve := serveCmd(&configFile)
	cmd.Flags().AddFlagSet(serve.Flags())
	cmd.RunE = serve.RunE

	cmd.AddCommand(
		serve,
		listCmd(&configFile),
		exportCmd(&configFile),
		importCmd(&configFile),
		renameCmd(&configFile),
		clearCmd(&configFile),
	)
	return cmd
}

// env is everything a command needs to work on the pattern store.
type env struct {
	cfg      *config.Config
	log      *logger.Logger
	settings *storage.SettingsStore
	session  *session.Session
	library  *patterns.Library
}

func (e *env) Close() {
	e.settings.Close()
	e.log.Sync()
}

func openEnv(cmd *cobra.Command, configFile string) (*env, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	settings, err := storage.OpenSettings(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	sess, err := session.New(settings)
	if err != nil {
		settings.Close()
		return nil, err
	}
	table, err := tunes.All()
	if err != nil {
		settings.Close()
		return nil, err
	}

	lib := patterns.New(settings, sess, table, patterns.WithLogger(log))
	return &env{cfg: cfg, log: log, settings: settings, session: sess, library: lib}, nil
}
