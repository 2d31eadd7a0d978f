package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/report-bot/internal/config"
	"github.com/ziadkadry99/report-bot/internal/registry"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the registered dashboard reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		reg := registry.New(cfg.Reports)
		names := reg.Names()
		if len(names) == 0 {
			fmt.Println("No reports registered. Run `reportbot init` to add some.")
			return nil
		}

		for _, name := range names {
			rep, _ := reg.Lookup(name)
			fmt.Printf("%-30s %s\n", rep.Name, rep.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
}
