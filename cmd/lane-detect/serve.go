package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/lane-tools/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server on stdin/stdout",
	Long: `Serves the lane detection tools over the Model Context Protocol
(JSON-RPC 2.0, one message per line on stdin and stdout).

Configure it in your MCP client as:

  {"command": "lane-detect", "args": ["serve"]}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server.Version = Version
		srv, err := server.New(cfg, logger)
		if err != nil {
			return err
		}

		logger.Debug("mcp server starting",
			zap.String("version", Version),
			zap.String("build_time", BuildTime),
			zap.String("commit", GitCommit))
		return srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}
