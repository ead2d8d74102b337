/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/longkey1/llmchat/internal/llmchat/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	logger  = slog.New(slog.DiscardHandler)
	logFile io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "llmchat",
	Short: "A terminal chat client for OpenRouter",
	Long: `llmchat is a terminal chat client for OpenRouter and other
OpenAI-compatible chat-completion endpoints.
Replies are written in Markdown and shown as styled text.

Running llmchat without a subcommand opens the chat screen.
You can configure the tool using a TOML configuration file, environment
variables (LLMCHAT_*) or a .env file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, nil)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/llmchat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// userConfigDir returns $HOME/.config/llmchat
func userConfigDir() string {
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	return filepath.Join(home, ".config", "llmchat")
}

// initConfig reads in .env files, config file and ENV variables if set.
func initConfig() {
	configDir := userConfigDir()

	// .env files only fill variables that are not already set
	loadDotEnv(".env", filepath.Join(configDir, ".env"))

	// Set environment variable prefix and automatic env
	viper.SetEnvPrefix("LLMCHAT")
	viper.AutomaticEnv()

	// Note: Later directories in the array take precedence over earlier ones
	defaultPromptDirs := []string{
		"/usr/share/llmchat/prompts",
		"/usr/local/share/llmchat/prompts",
		filepath.Join(configDir, "prompts"),
	}
	defaultConfig := config.NewDefaultConfig(filepath.Join(configDir, "prompts"))

	viper.SetDefault("base_url", defaultConfig.BaseURL)
	viper.SetDefault("token", defaultConfig.Token)
	viper.SetDefault("model", defaultConfig.Model)
	viper.SetDefault("system_prompt", defaultConfig.SystemPrompt)
	viper.SetDefault("prompt", defaultConfig.Prompt)
	viper.SetDefault("prompt_dirs", defaultPromptDirs)
	viper.SetDefault("timeout", defaultConfig.Timeout)
	viper.SetDefault("title", defaultConfig.Title)
	viper.SetDefault("site_url", defaultConfig.SiteURL)
	viper.SetDefault("site_name", defaultConfig.SiteName)
	viper.SetDefault("log_file", defaultConfig.LogFile)

	// Bind environment variables
	viper.BindEnv("base_url", "LLMCHAT_BASE_URL")
	viper.BindEnv("token", "LLMCHAT_TOKEN")
	viper.BindEnv("model", "LLMCHAT_MODEL")
	viper.BindEnv("timeout", "LLMCHAT_TIMEOUT")
	viper.BindEnv("log_file", "LLMCHAT_LOG_FILE")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		readConfigFiles(configDir)
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  LLMCHAT_BASE_URL:", viper.GetString("base_url"))
		fmt.Fprintln(os.Stderr, "  LLMCHAT_MODEL:", viper.GetString("model"))
		fmt.Fprintln(os.Stderr, "  LLMCHAT_TIMEOUT:", viper.GetInt("timeout"))
		fmt.Fprintln(os.Stderr, "  LLMCHAT_PROMPT_DIRS:", viper.GetStringSlice("prompt_dirs"))
		fmt.Fprintln(os.Stderr, "  LLMCHAT_LOG_FILE:", viper.GetString("log_file"))
	}
}

// readConfigFiles loads the system-wide config and merges the user config on top.
func readConfigFiles(configDir string) {
	viper.SetConfigType("toml")
	viper.SetConfigName("config")
	viper.AddConfigPath("/etc/llmchat")
	viper.AddConfigPath("/usr/local/etc/llmchat")

	systemConfigLoaded := false
	if err := viper.ReadInConfig(); err == nil {
		systemConfigLoaded = true
		if verbose {
			fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
		}
	}

	userConfig := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(userConfig); err != nil {
		return
	}
	viper.SetConfigFile(userConfig)

	if systemConfigLoaded {
		if err := viper.MergeInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
		} else if verbose {
			fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
		}
		return
	}
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
	}
}

// loadDotEnv loads every existing file, earlier files winning
func loadDotEnv(files ...string) {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", file, err)
		} else if verbose {
			fmt.Fprintln(os.Stderr, "Loaded env file:", file)
		}
	}
}

// setupLogging points the command logger at the configured log file.
// The chat screen owns the terminal, so without a log file logs are discarded.
func setupLogging(cfg *config.Config) error {
	if cfg.LogFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %v", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logFile = f
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return nil
}
