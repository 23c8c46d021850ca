package config

import (
	"fmt"
	"time"
)

// Config holds the full slackline configuration
type Config struct {
	SlackBotToken  string `mapstructure:"slack_bot_token"`
	SlackChannelID string `mapstructure:"slack_channel_id"`

	// SlackAPIBase overrides the Web API root; empty means the real Slack API
	SlackAPIBase string `mapstructure:"slack_api_base"`

	DataDir   string `mapstructure:"data_dir"`
	StateFile string `mapstructure:"state_file"`

	Logging  LoggingConfig  `mapstructure:"logging"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Listener ListenerConfig `mapstructure:"listener"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	File     string `mapstructure:"file"`
	MaxSize  int    `mapstructure:"max_size"` // MB before rotation
	MaxAge   int    `mapstructure:"max_age"`  // days
	Compress bool   `mapstructure:"compress"`
}

// LimitsConfig holds platform and protocol limits. Carried on the config
// object so components never reach for package-level globals.
type LimitsConfig struct {
	MaxMessageLen        int `mapstructure:"max_message_len"`
	MaxSessions          int `mapstructure:"max_sessions"`
	UploadTimeoutSeconds int `mapstructure:"upload_timeout_seconds"`
}

// ListenerConfig holds reply-listener daemon configuration
type ListenerConfig struct {
	PollIntervalSeconds  int    `mapstructure:"poll_interval_seconds"`
	InjectCommand        string `mapstructure:"inject_command"`
	InjectTimeoutSeconds int    `mapstructure:"inject_timeout_seconds"`
	PIDFile              string `mapstructure:"pid_file"`
	StateFile            string `mapstructure:"state_file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			MaxSize:  10,
			MaxAge:   7,
			Compress: true,
		},
		Limits: LimitsConfig{
			MaxMessageLen:        3000,
			MaxSessions:          100,
			UploadTimeoutSeconds: 60,
		},
		Listener: ListenerConfig{
			PollIntervalSeconds:  5,
			InjectTimeoutSeconds: 10,
		},
	}
}

// Validate checks that the required credentials are present
func (c *Config) Validate() error {
	if c.SlackBotToken == "" {
		return fmt.Errorf("slack bot token is required (slack_bot_token or SLACK_BOT_TOKEN)")
	}
	if c.SlackChannelID == "" {
		return fmt.Errorf("slack channel id is required (slack_channel_id or SLACK_CHANNEL_ID)")
	}
	return nil
}

// UploadTimeout returns the raw byte-upload timeout as a duration
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Limits.UploadTimeoutSeconds) * time.Second
}

// PollInterval returns the listener polling interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Listener.PollIntervalSeconds) * time.Second
}

// InjectTimeout returns the reply-injection command timeout as a duration
func (c *Config) InjectTimeout() time.Duration {
	return time.Duration(c.Listener.InjectTimeoutSeconds) * time.Second
}
