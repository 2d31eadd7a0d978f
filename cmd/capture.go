package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/report-bot/internal/capture"
	"github.com/ziadkadry99/report-bot/internal/capture/chromedriver"
	"github.com/ziadkadry99/report-bot/internal/command"
	"github.com/ziadkadry99/report-bot/internal/config"
	"github.com/ziadkadry99/report-bot/internal/logging"
	"github.com/ziadkadry99/report-bot/internal/registry"
	"github.com/ziadkadry99/report-bot/internal/timerange"
)

var (
	captureReport string
	captureRange  string
	captureOut    string
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture one report screenshot from the command line",
	Long: `Runs the same capture pipeline as the bot, once, without connecting to
Slack, and writes the screenshot to a file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.ValidateCapture(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if !command.IsRange(captureRange) {
			return fmt.Errorf("unrecognized range %q: recognized ranges are %s",
				captureRange, strings.Join(command.Ranges(), ", "))
		}
		iv, err := timerange.Resolve(captureRange, time.Now().UTC())
		if err != nil {
			return err
		}

		logger := logging.New(verbose)
		reg := registry.New(cfg.Reports)
		driver := chromedriver.New(cfg.Capture.Headless, logger)
		orch := capture.New(reg, driver, capture.Options{
			PageLoadTimeout:   cfg.Capture.PageLoadTimeout(),
			RangeApplyTimeout: cfg.Capture.RangeApplyTimeout(),
		}, logger)

		art, fail := orch.Capture(context.Background(), capture.Request{
			Report:   captureReport,
			Interval: iv,
		})
		if fail != nil {
			if fail.Kind == capture.ReportNotFound {
				return fmt.Errorf("report %q not found: known reports are %s",
					captureReport, strings.Join(reg.Names(), ", "))
			}
			return fmt.Errorf("capture failed: %s", fail.Detail)
		}

		out, err := writeArtifact(art, captureOut)
		if err != nil {
			return err
		}

		fmt.Printf("Captured %s (%s) to %s\n", art.Report, art.Interval, out)
		if art.Note != "" {
			fmt.Printf("Note: %s\n", art.Note)
		}
		return nil
	},
}

// writeArtifact writes the captured image to out, defaulting to the
// artifact's derived filename in the working directory. Returns the path
// actually written.
func writeArtifact(art *capture.Artifact, out string) (string, error) {
	if out == "" {
		out = art.Filename()
	}
	if err := os.WriteFile(out, art.Image, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	return out, nil
}

func init() {
	captureCmd.Flags().StringVar(&captureReport, "report", "", "report name, exactly as registered")
	captureCmd.Flags().StringVar(&captureRange, "range", "last 7 days", `date range, e.g. "last 3 days"`)
	captureCmd.Flags().StringVar(&captureOut, "out", "", "output file (default derived from report and range)")
	captureCmd.MarkFlagRequired("report")

	rootCmd.AddCommand(captureCmd)
}
