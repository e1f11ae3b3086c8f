package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/hotelops/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for AI assistant integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an MCP-capable assistant report, update, and summarize
maintenance requests. Configure it with:

  {
    "mcpServers": {
      "hotelops": { "command": "hotelops", "args": ["mcp"] }
    }
  }

Available tools: hotelops_list_requests, hotelops_get_request,
hotelops_create_request, hotelops_update_request,
hotelops_delete_request, hotelops_stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := getService()
		if err != nil {
			return err
		}
		agg, err := getAggregator()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return mcp.NewServer(svc, agg, buildVersion).ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
