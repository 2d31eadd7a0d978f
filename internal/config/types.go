package config

import "time"

// SlackMode selects how the bot receives events from Slack.
type SlackMode string

const (
	// ModeSocket connects outbound via Socket Mode (no public endpoint needed).
	ModeSocket SlackMode = "socket"
	// ModeWebhook serves the Events API over HTTP (requires a public endpoint).
	ModeWebhook SlackMode = "webhook"
)

// SlackConfig holds the Slack connection settings.
type SlackConfig struct {
	Mode           SlackMode `yaml:"mode" koanf:"mode"`
	BotToken       string    `yaml:"bot_token,omitempty" koanf:"bot_token"`
	AppToken       string    `yaml:"app_token,omitempty" koanf:"app_token"`
	SigningSecret  string    `yaml:"signing_secret,omitempty" koanf:"signing_secret"`
	WebhookAddr    string    `yaml:"webhook_addr" koanf:"webhook_addr"`
	RequireMention bool      `yaml:"require_mention" koanf:"require_mention"`
}

// CaptureConfig holds browser capture settings.
type CaptureConfig struct {
	PageLoadTimeoutSecs   int  `yaml:"page_load_timeout_secs" koanf:"page_load_timeout_secs"`
	RangeApplyTimeoutSecs int  `yaml:"range_apply_timeout_secs" koanf:"range_apply_timeout_secs"`
	Headless              bool `yaml:"headless" koanf:"headless"`
}

// PageLoadTimeout returns the page readiness wait as a duration.
func (c CaptureConfig) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutSecs) * time.Second
}

// RangeApplyTimeout returns the date-range application wait as a duration.
func (c CaptureConfig) RangeApplyTimeout() time.Duration {
	return time.Duration(c.RangeApplyTimeoutSecs) * time.Second
}

// ReportConfig describes one capturable dashboard report.
type ReportConfig struct {
	Name string `yaml:"name" koanf:"name"`
	URL  string `yaml:"url" koanf:"url"`
	// RangeParams marks dashboards that accept from/to epoch-millis query
	// parameters; dashboards without it keep whatever range they render by default.
	RangeParams bool `yaml:"range_params" koanf:"range_params"`
}

// Config is the top-level reportbot configuration, corresponding to .reportbot.yml.
type Config struct {
	Slack   SlackConfig    `yaml:"slack" koanf:"slack"`
	Capture CaptureConfig  `yaml:"capture" koanf:"capture"`
	Reports []ReportConfig `yaml:"reports" koanf:"reports"`
}
