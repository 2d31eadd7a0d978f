package config

// DefaultConfig returns the configuration used when no .reportbot.yml exists.
// Tokens and reports always come from the config file or environment; there is
// no sensible default for either.
func DefaultConfig() *Config {
	return &Config{
		Slack: SlackConfig{
			Mode:           ModeSocket,
			WebhookAddr:    ":8080",
			RequireMention: true,
		},
		Capture: CaptureConfig{
			PageLoadTimeoutSecs:   45,
			RangeApplyTimeoutSecs: 10,
			Headless:              true,
		},
	}
}
