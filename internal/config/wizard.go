package config

import (
	"fmt"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to reportbot! Let's configure your bot.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Connection mode.
	modePrompt := promptui.Select{
		Label: "How should the bot connect to Slack",
		Items: []string{
			"socket  - Socket Mode, no public endpoint needed",
			"webhook - Events API over HTTP",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("mode selection: %w", err)
	}
	modes := []SlackMode{ModeSocket, ModeWebhook}
	cfg.Slack.Mode = modes[modeIdx]

	// 2. Credentials. Tokens are masked and stored in the config file; leave
	// them blank here to supply them via SLACK_* environment variables instead.
	botTokenPrompt := promptui.Prompt{
		Label: "Bot token (xoxb-..., blank to use SLACK_BOT_TOKEN)",
		Mask:  '*',
	}
	if cfg.Slack.BotToken, err = botTokenPrompt.Run(); err != nil {
		return nil, fmt.Errorf("bot token: %w", err)
	}

	switch cfg.Slack.Mode {
	case ModeSocket:
		appTokenPrompt := promptui.Prompt{
			Label: "App-level token (xapp-..., blank to use SLACK_APP_TOKEN)",
			Mask:  '*',
		}
		if cfg.Slack.AppToken, err = appTokenPrompt.Run(); err != nil {
			return nil, fmt.Errorf("app token: %w", err)
		}
	case ModeWebhook:
		secretPrompt := promptui.Prompt{
			Label: "Signing secret (blank to use SLACK_SIGNING_SECRET)",
			Mask:  '*',
		}
		if cfg.Slack.SigningSecret, err = secretPrompt.Run(); err != nil {
			return nil, fmt.Errorf("signing secret: %w", err)
		}
		addrPrompt := promptui.Prompt{
			Label:   "Listen address",
			Default: cfg.Slack.WebhookAddr,
		}
		if cfg.Slack.WebhookAddr, err = addrPrompt.Run(); err != nil {
			return nil, fmt.Errorf("listen address: %w", err)
		}
	}

	// 3. Mention requirement.
	mentionPrompt := promptui.Select{
		Label: "Require the bot to be @-mentioned in channels",
		Items: []string{"yes", "no"},
	}
	mentionIdx, _, err := mentionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("mention selection: %w", err)
	}
	cfg.Slack.RequireMention = mentionIdx == 0

	// 4. Reports.
	fmt.Println()
	fmt.Println("Register the dashboard reports the bot can capture.")
	for {
		namePrompt := promptui.Prompt{Label: "Report name"}
		name, err := namePrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("report name: %w", err)
		}

		urlPrompt := promptui.Prompt{Label: "Report URL"}
		reportURL, err := urlPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("report url: %w", err)
		}

		rangePrompt := promptui.Select{
			Label: "Does this dashboard accept from/to query parameters",
			Items: []string{"yes", "no"},
		}
		rangeIdx, _, err := rangePrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("range selection: %w", err)
		}

		cfg.Reports = append(cfg.Reports, ReportConfig{
			Name:        name,
			URL:         reportURL,
			RangeParams: rangeIdx == 0,
		})

		morePrompt := promptui.Select{
			Label: "Add another report",
			Items: []string{"no", "yes"},
		}
		moreIdx, _, err := morePrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("add another: %w", err)
		}
		if moreIdx == 0 {
			break
		}
	}

	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Printf("Configuration written to %s\n", path)
	return cfg, nil
}
