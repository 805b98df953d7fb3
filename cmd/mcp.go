package cmd

import (
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/gitval/internal/daemon"
	"github.com/joescharf/gitval/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio so assistants can
run gitval analyses as tools. Configure your client with:

  {
    "mcpServers": {
      "gitval": { "command": "gitval", "args": ["mcp"] }
    }
  }

Available tools: gitval_resolve_repository, gitval_fetch_pull_requests,
gitval_analyze_repository, gitval_score_commits, gitval_demo_analysis,
gitval_list_archetypes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), daemon.ShutdownSignals()...)
		defer stop()
		return mcp.NewServer(svc, buildVersion).ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
