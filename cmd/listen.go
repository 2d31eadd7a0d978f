package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/report-bot/internal/bots"
	"github.com/ziadkadry99/report-bot/internal/capture"
	"github.com/ziadkadry99/report-bot/internal/capture/chromedriver"
	"github.com/ziadkadry99/report-bot/internal/config"
	"github.com/ziadkadry99/report-bot/internal/logging"
	"github.com/ziadkadry99/report-bot/internal/registry"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Start the bot and listen for capture commands in Slack",
	Long: `Connects to Slack (Socket Mode or Events API webhook, per config) and
answers capture commands until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger := logging.New(verbose)
		reg := registry.New(cfg.Reports)

		driver := chromedriver.New(cfg.Capture.Headless, logger)
		orch := capture.New(reg, driver, capture.Options{
			PageLoadTimeout:   cfg.Capture.PageLoadTimeout(),
			RangeApplyTimeout: cfg.Capture.RangeApplyTimeout(),
		}, logger)

		gateway := bots.NewSlackGateway(cfg.Slack.BotToken, cfg.Slack.AppToken, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		botUserID, botName, err := gateway.BotIdentity(ctx)
		if err != nil {
			if cfg.Slack.RequireMention {
				return fmt.Errorf("resolving bot identity: %w", err)
			}
			logger.Warn("could not resolve bot identity; mention matching degraded", "err", err)
		}

		responder := bots.NewResponder(gateway, reg, botName, cfg.Slack.RequireMention, logger)
		router := bots.NewRouter(orch, responder, botUserID, cfg.Slack.RequireMention, logger)

		logger.Info("reportbot listening",
			"mode", cfg.Slack.Mode, "reports", len(cfg.Reports), "require_mention", cfg.Slack.RequireMention)

		switch cfg.Slack.Mode {
		case config.ModeWebhook:
			srv := bots.NewWebhookServer(cfg.Slack.WebhookAddr, cfg.Slack.SigningSecret, router.HandleEvent, logger)
			return srv.Run(ctx)
		default:
			return gateway.Listen(ctx, router.HandleEvent)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
}
