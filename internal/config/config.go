package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (REPORTBOT_*). A double underscore in the
// variable name maps to a nesting level: REPORTBOT_SLACK__BOT_TOKEN sets
// slack.bot_token. The conventional SLACK_BOT_TOKEN / SLACK_APP_TOKEN /
// SLACK_SIGNING_SECRET variables are honored as a fallback so tokens can stay
// out of the config file entirely.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: REPORTBOT_SLACK__BOT_TOKEN -> slack.bot_token.
	if err := k.Load(env.Provider("REPORTBOT_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "REPORTBOT_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Conventional Slack env vars win only when the config left a blank.
	if cfg.Slack.BotToken == "" {
		cfg.Slack.BotToken = os.Getenv("SLACK_BOT_TOKEN")
	}
	if cfg.Slack.AppToken == "" {
		cfg.Slack.AppToken = os.Getenv("SLACK_APP_TOKEN")
	}
	if cfg.Slack.SigningSecret == "" {
		cfg.Slack.SigningSecret = os.Getenv("SLACK_SIGNING_SECRET")
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validModes is the set of recognized slack mode values.
var validModes = map[SlackMode]bool{
	ModeSocket:  true,
	ModeWebhook: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validModes[c.Slack.Mode] {
		return fmt.Errorf("invalid slack mode %q: must be one of socket, webhook", c.Slack.Mode)
	}

	switch c.Slack.Mode {
	case ModeSocket:
		if c.Slack.BotToken == "" {
			return fmt.Errorf("slack bot_token is required (set SLACK_BOT_TOKEN or slack.bot_token)")
		}
		if c.Slack.AppToken == "" {
			return fmt.Errorf("slack app_token is required for socket mode (set SLACK_APP_TOKEN or slack.app_token)")
		}
	case ModeWebhook:
		if c.Slack.BotToken == "" {
			return fmt.Errorf("slack bot_token is required (set SLACK_BOT_TOKEN or slack.bot_token)")
		}
		if c.Slack.SigningSecret == "" {
			return fmt.Errorf("slack signing_secret is required for webhook mode")
		}
		if c.Slack.WebhookAddr == "" {
			return fmt.Errorf("slack webhook_addr is required for webhook mode")
		}
	}

	return c.ValidateCapture()
}

// ValidateCapture checks only the capture and report settings. The one-shot
// capture command uses this so a missing Slack token does not block CLI use.
func (c *Config) ValidateCapture() error {
	if c.Capture.PageLoadTimeoutSecs <= 0 {
		return fmt.Errorf("capture page_load_timeout_secs must be positive")
	}
	if c.Capture.RangeApplyTimeoutSecs <= 0 {
		return fmt.Errorf("capture range_apply_timeout_secs must be positive")
	}

	if len(c.Reports) == 0 {
		return fmt.Errorf("at least one report is required (run `reportbot init`)")
	}
	seen := make(map[string]bool, len(c.Reports))
	for i, r := range c.Reports {
		if r.Name == "" {
			return fmt.Errorf("reports[%d]: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("reports[%d]: duplicate report name %q", i, r.Name)
		}
		seen[r.Name] = true
		if r.URL == "" {
			return fmt.Errorf("report %q: url is required", r.Name)
		}
		u, err := url.Parse(r.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("report %q: invalid url %q", r.Name, r.URL)
		}
	}

	return nil
}
