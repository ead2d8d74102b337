package cmd

import (
	"fmt"
	"os"

	"github.com/longkey1/llmchat/internal/llmchat"
	"github.com/longkey1/llmchat/internal/llmchat/config"
	promptpkg "github.com/longkey1/llmchat/internal/llmchat/prompt"
	"github.com/longkey1/llmchat/internal/openrouter"
	"github.com/spf13/cobra"
)

// newClient creates the completion client for the configuration
func newClient(cfg *config.Config) *openrouter.Client {
	return openrouter.NewClient(cfg).
		WithLogger(logger).
		WithAttribution(cfg.SiteURL, cfg.SiteName)
}

// loadChatConfig loads the configuration and resolves the prompt template.
// Model priority: flag > env > prompt template > config file
func loadChatConfig(cmd *cobra.Command) (*config.Config, *promptpkg.Prompt, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("prompt") {
		cfg.Prompt = promptName
	}
	if cmd.Flags().Changed("system") {
		cfg.SystemPrompt = systemPrompt
		cfg.Prompt = ""
	}

	tmpl, err := promptpkg.Resolve(cfg.Prompt, cfg.SystemPrompt, cfg.PromptDirs)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving prompt: %w", err)
	}

	envModel := os.Getenv("LLMCHAT_MODEL")
	switch {
	case cmd.Flags().Changed("model"):
		if _, err := llmchat.ParseModelID(model); err != nil {
			return nil, nil, fmt.Errorf("invalid model from flag: %w", err)
		}
		cfg.Model = model
	case envModel != "":
		cfg.Model = envModel
	case tmpl.Model != nil:
		cfg.Model = *tmpl.Model
		if verbose {
			fmt.Fprintf(os.Stderr, "Using model from prompt file: %s\n", cfg.Model)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, tmpl, nil
}
