package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Loader handles configuration loading
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads the configuration from file, with environment variables filling
// in anything the file does not set (SLACK_BOT_TOKEN, SLACK_CHANNEL_ID).
func (l *Loader) Load() (*Config, error) {
	configPath := l.configPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".slackline", "config.json")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	// Credentials may come from the environment when the config file does
	// not provide them. The defaults register the keys so Unmarshal picks up
	// env-only values.
	v.SetDefault("slack_bot_token", "")
	v.SetDefault("slack_channel_id", "")
	v.MustBindEnv("slack_bot_token", "SLACK_BOT_TOKEN")
	v.MustBindEnv("slack_channel_id", "SLACK_CHANNEL_ID")

	// A missing config file is not an error: env vars alone are a valid setup.
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set data directory if not specified
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".slackline")
	}

	// Derived paths default into the data directory
	if cfg.StateFile == "" {
		cfg.StateFile = filepath.Join(cfg.DataDir, "threads.json")
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.DataDir, "slackline.log")
	}
	if cfg.Listener.PIDFile == "" {
		cfg.Listener.PIDFile = filepath.Join(cfg.DataDir, "listener.pid")
	}
	if cfg.Listener.StateFile == "" {
		cfg.Listener.StateFile = filepath.Join(cfg.DataDir, "listener.json")
	}

	return cfg, nil
}

// Save saves the configuration to file
func (l *Loader) Save(cfg *Config) error {
	configPath := l.GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.Set("slack_bot_token", cfg.SlackBotToken)
	v.Set("slack_channel_id", cfg.SlackChannelID)
	v.Set("data_dir", cfg.DataDir)
	v.Set("state_file", cfg.StateFile)
	v.Set("logging", cfg.Logging)
	v.Set("limits", cfg.Limits)
	v.Set("listener", cfg.Listener)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the resolved config file path
func (l *Loader) GetConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".slackline", "config.json")
}
