//go:build mcp

package main

import (
	"github.com/spf13/cobra"

	"github.com/drover-ai/drover/pkg/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve drover's launch and extract tools over MCP on stdio.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, prov, runCfg, cleanup, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		return mcpserver.New(client, prov, runCfg, Version).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
