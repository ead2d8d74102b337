package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/longkey1/llmchat/internal/llmchat/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, base_url, token, model, system_prompt, prompt, prompt_dirs, timeout, title, site_url, site_name, log_file"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file, .env files and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  llmchat config             # Show all configuration
  llmchat config model       # Show only model
  llmchat config base_url    # Show only base URL
  llmchat config token       # Show only token (masked)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if len(args) > 0 {
			value, ok := configField(cfg, args[0])
			if !ok {
				fmt.Fprintf(os.Stderr, "Available fields: %s\n", configFields)
				return fmt.Errorf("unknown field: %s", args[0])
			}
			fmt.Println(value)
			return nil
		}

		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("BaseURL: %s\n", cfg.BaseURL)
		fmt.Printf("Token: %s\n", maskToken(cfg.Token))
		fmt.Printf("Model: %s\n", cfg.Model)
		fmt.Printf("SystemPrompt: %s\n", cfg.SystemPrompt)
		fmt.Printf("Prompt: %s\n", cfg.Prompt)
		// PromptDirs are already absolute paths
		fmt.Printf("PromptDirectories: %s\n", strings.Join(cfg.PromptDirs, ","))
		fmt.Printf("Timeout: %s\n", cfg.GetTimeout())
		fmt.Printf("Title: %s\n", cfg.Title)
		fmt.Printf("SiteURL: %s\n", cfg.SiteURL)
		fmt.Printf("SiteName: %s\n", cfg.SiteName)
		fmt.Printf("LogFile: %s\n", cfg.LogFile)
		return nil
	},
}

func configField(cfg *config.Config, field string) (string, bool) {
	switch strings.ReplaceAll(strings.ToLower(field), "_", "") {
	case "configfile":
		return viper.ConfigFileUsed(), true
	case "baseurl":
		return cfg.BaseURL, true
	case "token":
		return maskToken(cfg.Token), true
	case "model":
		return cfg.Model, true
	case "systemprompt":
		return cfg.SystemPrompt, true
	case "prompt":
		return cfg.Prompt, true
	case "promptdirs":
		return strings.Join(cfg.PromptDirs, ","), true
	case "timeout":
		return cfg.GetTimeout().String(), true
	case "title":
		return cfg.Title, true
	case "siteurl":
		return cfg.SiteURL, true
	case "sitename":
		return cfg.SiteName, true
	case "logfile":
		return cfg.LogFile, true
	}
	return "", false
}

// maskToken returns a masked version of the token for security
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
}
