package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/report-bot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize reportbot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the Slack connection and report registry, and generates a .reportbot.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
