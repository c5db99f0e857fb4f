package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "PAPERS_NOTIFIER_CONFIG"
	webhookURLEnv   = "SLACK_WEBHOOK_URL"
	pendingPathEnv  = "PENDING_PAPERS_PATH"
	ledgerPathEnv   = "EMAILED_PAPERS_PATH"
	logLevelEnv     = "PAPERS_NOTIFIER_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Files         FilesConfig        `yaml:"files"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// FilesConfig locates the two flat data files the notifier works with.
type FilesConfig struct {
	PendingPath string `yaml:"pendingPath"`
	LedgerPath  string `yaml:"ledgerPath"`
}

// SchedulerConfig defines the optional recurring-run mode.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Slack, etc.).
type NotificationConfig struct {
	Slack SlackConfig `yaml:"slack"`
}

// SlackConfig wires all data required to post to the webhook.
type SlackConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Notifications.Slack.WebhookURL = v
	}

	if v := os.Getenv(pendingPathEnv); v != "" {
		c.Files.PendingPath = v
	}

	if v := os.Getenv(ledgerPathEnv); v != "" {
		c.Files.LedgerPath = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Files.PendingPath != "" {
		base.Files.PendingPath = override.Files.PendingPath
	}
	if override.Files.LedgerPath != "" {
		base.Files.LedgerPath = override.Files.LedgerPath
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Slack.WebhookURL != "" {
		base.Notifications.Slack.WebhookURL = override.Notifications.Slack.WebhookURL
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Files: FilesConfig{
			PendingPath: "union_papers_to_email.csv",
			LedgerPath:  "emailed_papers.csv",
		},
		Scheduler: SchedulerConfig{
			Enabled:        false,
			CronExpression: "0 6 * * 1",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		Notifications: NotificationConfig{
			Slack: SlackConfig{WebhookURL: ""},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
