package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"xai-assistant/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the response selector as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		selector, err := newSelector(cfg)
		if err != nil {
			return err
		}
		return mcpserver.Run(ctx, mcpserver.NewTools(selector, logger), version)
	},
}
