/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/longkey1/llmchat/internal/llmchat/config"
	"github.com/spf13/cobra"
)

var freeOnly bool

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models [filter]",
	Short: "List available models",
	Long: `List all models offered by the configured endpoint.
Fetches the latest model information directly from the API.

If a filter is given, only models whose ID contains it are shown.

Example:
  llmchat models            # List all models
  llmchat models llama      # List models with "llama" in the ID
  llmchat models --free     # List free variants only`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := setupLogging(cfg); err != nil {
			return err
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Listing models from: %s\n", cfg.BaseURL)
		}

		models, err := newClient(cfg).ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}

		var filter string
		if len(args) > 0 {
			filter = strings.ToLower(args[0])
		}

		maxIDWidth := 15
		shown := models[:0]
		for _, m := range models {
			if filter != "" && !strings.Contains(strings.ToLower(m.ID), filter) {
				continue
			}
			if freeOnly && !strings.HasSuffix(m.ID, ":free") {
				continue
			}
			shown = append(shown, m)
			maxIDWidth = max(maxIDWidth, len(m.ID))
		}

		if len(shown) == 0 {
			return fmt.Errorf("no models returned from API")
		}

		fmt.Printf("%-*s  %-10s  %-8s  %s\n", maxIDWidth, "MODEL ID", "CONTEXT", "DEFAULT", "NAME")
		fmt.Printf("%s  %s  %s  %s\n",
			strings.Repeat("-", maxIDWidth),
			strings.Repeat("-", 10),
			strings.Repeat("-", 8),
			strings.Repeat("-", 40))

		for _, m := range shown {
			defaultMark := ""
			if m.IsDefault {
				defaultMark = "Yes"
			}
			contextSize := "-"
			if m.ContextSize > 0 {
				contextSize = strconv.Itoa(m.ContextSize)
			}
			fmt.Printf("%-*s  %-10s  %-8s  %s\n", maxIDWidth, m.ID, contextSize, defaultMark, m.Name)
		}

		fmt.Printf("\nUse a model with: llmchat chat --model <model> [message]\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&freeOnly, "free", false, "Show only free model variants")
}
