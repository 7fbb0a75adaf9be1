package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chatwarden/internal/mcp"
)

var (
	serveDB          string
	serveSchema      string
	serveDecisionLog string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveDB, "db", defaultDBPath(), "Path to conversation store")
	serveCmd.Flags().StringVar(&serveSchema, "schema", "", "Path to policy schema (JSON or YAML)")
	serveCmd.Flags().StringVar(&serveDecisionLog, "decision-log", "", "Path to decision log JSONL file")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reviewer surface as an MCP server",
	Long:  "Runs chatwarden as an MCP server on stdio. Exposes audit, resolution,\nand incident tools over stored conversations.\nSupports hot-reload of the schema file.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mcp.Config{
		DBPath:          serveDB,
		SchemaPath:      serveSchema,
		DecisionLogPath: serveDecisionLog,
	}

	srv, err := mcp.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start hot-reload watcher for the schema file
	reloader, err := mcp.NewReloader(srv, serveSchema)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
	}
	if reloader != nil {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down reviewer surface...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "chatwarden MCP server on stdio")
	if serveSchema != "" {
		fmt.Fprintf(os.Stderr, "Schema: %s (hot-reload enabled)\n", serveSchema)
	}

	return srv.Run(ctx)
}
