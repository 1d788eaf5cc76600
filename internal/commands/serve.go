package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/config"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/logger"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/server"
	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/storage"
)

func serveCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pattern store over MCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile, cmd.Flags())
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogMode, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			settings, err := storage.OpenSettings(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("open settings store: %w", err)
			}
			defer settings.Close()

			srv, err := server.New(settings, server.Options{
				ExportDir:         cfg.ExportDir,
				ImportConcurrency: cfg.ImportConcurrency,
				Logger:            log,
			})
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, srv, cfg, log)
		},
	}

	cmd.Flags().String("transport", "stdio", "Transport mode: stdio or http")
	cmd.Flags().String("port", "8081", "HTTP port (only used with --transport http)")
	cmd.Flags().Int("import-concurrency", 4, "Files read in parallel during import")
	return cmd
}

func run(ctx context.Context, srv *mcp.Server, cfg *config.Config, log *logger.Logger) error {
	switch cfg.Transport {
	case "stdio":
		log.Info("pattern MCP server starting", "transport", "stdio", "data_dir", cfg.DataDir)
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case "http":
		addr := ":" + cfg.Port
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		httpSrv := &http.Server{Addr: addr, Handler: handler}
		go func() {
			<-ctx.Done()
			httpSrv.Shutdown(context.Background())
		}()
		log.Info("pattern MCP server listening", "addr", addr, "data_dir", cfg.DataDir)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (use stdio or http)", cfg.Transport)
	}
}
