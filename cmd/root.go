package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "reportbot",
	Short: "Slack bot that captures dashboard report screenshots",
	Long: `Reportbot listens in Slack for capture commands, renders the requested
dashboard report in a headless browser for a relative date range, and replies
with a screenshot of it.

Ask it for a report with:

    @reportbot capture report <report name> last {3|5|7} days`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Load .env if present (for SLACK_BOT_TOKEN and friends).
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".reportbot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
