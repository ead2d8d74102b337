/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/llmchat/internal/chat"
	"github.com/longkey1/llmchat/internal/markup"
	"github.com/longkey1/llmchat/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	model        string
	promptName   string
	systemPrompt string
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the model",
	Long: `Open the chat screen, or send a single message and print the reply.

Without arguments and with a terminal on stdin, the chat screen opens.
Type a message and press Enter to send it. Replies appear as they arrive.
Links in replies are numbered; type "/open N" to open link N in the browser
and "/quit" (or Esc, Ctrl+C) to leave.

With a message argument, or with input piped on stdin, the reply is printed
and the command exits. The reply is styled when stdout is a terminal and plain
text otherwise.

The prompt file should be in TOML format with the following structure:
system = "System prompt with optional {{input}} placeholder"
user = "User prompt with optional {{input}} placeholder"
model = "optional-model-name"  # Optional: overrides the default model for this prompt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, tmpl, err := loadChatConfig(cmd)
	if err != nil {
		return err
	}

	session := chat.NewSession(newClient(cfg), tmpl).WithLogger(logger)
	logger.Info("session started", "session", session.GetShortID(), "model", cfg.Model)

	if len(args) == 0 && term.IsTerminal(int(os.Stdin.Fd())) {
		return tui.Run(cmd.Context(), session, tui.Options{
			Title: cfg.Title,
			Model: cfg.Model,
		})
	}

	message := strings.Join(args, " ")
	if len(args) == 0 {
		input, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading from stdin: %w", err)
		}
		message = string(input)
	}

	reply, err := sendOnce(cmd.Context(), session, message)
	if err != nil {
		return err
	}
	printReply(cmd.OutOrStdout(), reply, term.IsTerminal(int(os.Stdout.Fd())))
	return nil
}

// sendOnce runs a single submission to completion and returns the reply markup.
func sendOnce(ctx context.Context, session *chat.Session, message string) (string, error) {
	job, ok := session.Submit(message)
	if !ok {
		return "", fmt.Errorf("no message given")
	}
	outcome := job(ctx)
	if outcome.Err != nil {
		return "", fmt.Errorf("chat request failed: %w", outcome.Err)
	}
	session.Complete(outcome)
	return chat.RenderReply(outcome.Reply), nil
}

// printReply writes styled text with a link list to terminals and plain text elsewhere.
func printReply(w io.Writer, reply string, styled bool) {
	if !styled {
		fmt.Fprintln(w, markup.Strip(reply))
		return
	}

	painted := markup.NewPainter(lipgloss.DefaultRenderer()).Paint(reply, 1)
	fmt.Fprintln(w, painted.Text)
	if len(painted.Refs) > 0 {
		fmt.Fprintln(w)
		for _, ref := range painted.Refs {
			fmt.Fprintf(w, "[%d] %s\n", ref.N, ref.URL)
		}
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&model, "model", "m", "", "Model to use (format: vendor/model[:variant], e.g., meta-llama/llama-3.3-70b-instruct:free)")
	chatCmd.Flags().StringVarP(&promptName, "prompt", "p", "", "Name of the prompt template (without .toml extension)")
	chatCmd.Flags().StringVarP(&systemPrompt, "system", "s", "", "System prompt to use instead of the configured one")
}
