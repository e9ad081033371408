package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kakuhq/kaku/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "kaku",
	Short: "A writing assistant that learns your style",
	Long: `Kaku learns how you write from your own samples. Upload essays, letters
or notes, and Kaku measures your style, indexes the text for retrieval and
drafts new writing that sounds like you. Run it as a local CLI, an HTTP
server, or an MCP server for AI agents.`,
	SilenceUsage: true,
}

// Execute runs the root command. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
