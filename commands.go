package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/httpapi"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and /mcp) until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		var mcpHandler http.Handler
		if cfg.Server.MCP {
			mcpSrv := server.New(a.svc)
			mcpHandler = mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
				return mcpSrv
			}, nil)
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return httpapi.New(cfg.Server, a.svc, mcpHandler, logger.Named("http")).Serve(ctx)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		logger.Info("mcp server starting (stdio)")
		if err := server.New(a.svc).Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <text...>",
	Short: "Run one standard query and print data and chart as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.svc.Analyze(cmd.Context(), joinArgs(args))
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <text...>",
	Short: "Send one advanced query to the model",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		answer, err := a.svc.Advanced(cmd.Context(), joinArgs(args))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

var (
	historyPage    int
	historyPerPage int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recorded queries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.svc.History(cmd.Context(), historyPage, min(historyPerPage, 100))
		if err != nil {
			return err
		}
		return printJSON(cmd, entries)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "Page number, starting at 1")
	historyCmd.Flags().IntVar(&historyPerPage, "per-page", 10, "Entries per page (max 100)")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
