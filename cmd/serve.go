package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/kakuhq/kaku/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing your writing
corpus, style profile and prompt composer to agents.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		mcpserver.Version = Version

		if stats, err := a.corpus.Stats(cmd.Context(), localOwner); err == nil {
			fmt.Fprintf(os.Stderr, "kaku MCP server started on stdio (documents=%d)\n", stats.DocumentCount)
		}

		srv := mcpserver.NewServer(a.corpus, a.retrieval, localOwner)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
