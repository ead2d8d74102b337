package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// expandEnvVar expands environment variable references in the given value
// Supports both $VAR and ${VAR} syntax
// Returns the expanded value. If the environment variable is not set, returns empty string.
func expandEnvVar(value string) (string, error) {
	if !strings.HasPrefix(value, "$") {
		return value, nil
	}

	var envVarName string
	if strings.HasPrefix(value, "${") {
		if !strings.HasSuffix(value, "}") {
			return "", fmt.Errorf("unterminated variable reference: %s", value)
		}
		envVarName = value[2 : len(value)-1]
	} else {
		envVarName = strings.TrimPrefix(value, "$")
	}

	if envVarName == "" {
		return "", fmt.Errorf("empty variable reference: %s", value)
	}

	// If not set, return empty string (no error)
	return os.Getenv(envVarName), nil
}

// GetBaseURL returns the chat-completion base URL without a trailing slash
func (c *Config) GetBaseURL() (string, error) {
	if c.BaseURL == "" {
		return "", fmt.Errorf("base URL is not configured. Set it in config file (base_url) or environment variable (LLMCHAT_BASE_URL)")
	}
	return strings.TrimSuffix(c.BaseURL, "/"), nil
}

// GetToken returns the bearer token
// Environment variables are already expanded during LoadConfig()
func (c *Config) GetToken() (string, error) {
	if c.Token == "" {
		return "", fmt.Errorf("token is not configured. Set it in config file (token), environment variable (LLMCHAT_TOKEN or OPENROUTER_API_KEY) or a .env file")
	}
	return c.Token, nil
}

// ResolvePath converts a relative path to absolute path if needed
func ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("error getting home directory: %v", err)
		}
		return filepath.Join(home, path[2:]), nil
	}

	// Get config file directory as base directory
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		// If no config file is used, fall back to current working directory
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("error getting current working directory: %v", err)
		}
		return filepath.Join(cwd, path), nil
	}

	configDir := filepath.Dir(configFile)

	if !filepath.IsAbs(configDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("error getting current working directory: %v", err)
		}
		configDir = filepath.Join(cwd, configDir)
	}

	return filepath.Join(configDir, path), nil
}
