package config

import (
	"fmt"
	"time"

	"github.com/longkey1/llmchat/internal/llmchat"
	"github.com/spf13/viper"
)

// DefaultSystemPrompt is sent ahead of every user message unless a prompt
// template or the system_prompt key replaces it.
const DefaultSystemPrompt = "You are an overexcited greedy guy. You format your answers in Markdown."

// Config holds the configuration for the chat client
type Config struct {
	BaseURL      string   `toml:"base_url" mapstructure:"base_url"`
	Token        string   `toml:"token" mapstructure:"token"`
	Model        string   `toml:"model" mapstructure:"model"` // Format: "vendor/model[:variant]"
	SystemPrompt string   `toml:"system_prompt" mapstructure:"system_prompt"`
	Prompt       string   `toml:"prompt" mapstructure:"prompt"` // Prompt template name, overrides SystemPrompt
	PromptDirs   []string `toml:"prompt_dirs" mapstructure:"prompt_dirs"`
	Timeout      int      `toml:"timeout" mapstructure:"timeout"` // Seconds
	Title        string   `toml:"title" mapstructure:"title"`
	SiteURL      string   `toml:"site_url" mapstructure:"site_url"`
	SiteName     string   `toml:"site_name" mapstructure:"site_name"`
	LogFile      string   `toml:"log_file" mapstructure:"log_file"`
}

// GetModel returns the model name
func (c *Config) GetModel() string {
	return c.Model
}

// GetTimeout returns the request deadline as a duration
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// Validate checks the fields every request depends on
func (c *Config) Validate() error {
	if _, err := llmchat.ParseModelID(c.Model); err != nil {
		return fmt.Errorf("invalid model: %w", err)
	}
	if _, err := c.GetBaseURL(); err != nil {
		return err
	}
	if _, err := c.GetToken(); err != nil {
		return err
	}
	return nil
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(promptDir string) *Config {
	return &Config{
		BaseURL:      "https://openrouter.ai/api/v1",
		Token:        "$OPENROUTER_API_KEY", // Default to env var
		Model:        "meta-llama/llama-3.3-70b-instruct:free",
		SystemPrompt: DefaultSystemPrompt,
		PromptDirs:   []string{promptDir},
		Timeout:      30,
		Title:        "llmchat",
		SiteName:     "llmchat",
	}
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	// Expand $VAR references so credentials never live in the config file
	token, err := expandEnvVar(config.Token)
	if err != nil {
		return nil, fmt.Errorf("error expanding token: %v", err)
	}
	config.Token = token

	baseURL, err := expandEnvVar(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("error expanding base URL: %v", err)
	}
	config.BaseURL = baseURL

	// Convert prompt directories to absolute paths
	for i, promptDir := range config.PromptDirs {
		absPath, err := ResolvePath(promptDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving prompt directory path '%s': %v", promptDir, err)
		}
		config.PromptDirs[i] = absPath
	}

	if config.LogFile != "" {
		logFile, err := ResolvePath(config.LogFile)
		if err != nil {
			return nil, fmt.Errorf("error resolving log file path '%s': %v", config.LogFile, err)
		}
		config.LogFile = logFile
	}

	return config, nil
}
