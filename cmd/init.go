package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kakuhq/kaku/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a kaku configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that picks a model provider, quality tier, data directory and retrieval backend, and writes the result to the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
