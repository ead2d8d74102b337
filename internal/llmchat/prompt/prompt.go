package prompt

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/longkey1/llmchat/internal/llmchat"
)

// Prompt represents the structure of a TOML prompt file
type Prompt struct {
	System string  `toml:"system"`
	User   string  `toml:"user"`
	Model  *string `toml:"model,omitempty"`
}

// LoadPrompt loads a prompt file and returns its contents
func LoadPrompt(filePath string) (*Prompt, error) {
	var prompt Prompt
	if _, err := toml.DecodeFile(filePath, &prompt); err != nil {
		return nil, fmt.Errorf("error decoding prompt file: %v", err)
	}
	if prompt.Model != nil {
		if _, err := llmchat.ParseModelID(*prompt.Model); err != nil {
			return nil, fmt.Errorf("invalid model format in prompt template: %w", err)
		}
	}
	return &prompt, nil
}

// Messages builds the [system, user] pair for one input.
// A template without a user part sends the input unchanged.
func (p *Prompt) Messages(input string) []llmchat.Message {
	user := input
	if strings.TrimSpace(p.User) != "" {
		user = strings.ReplaceAll(p.User, "{{input}}", input)
	}

	var messages []llmchat.Message
	if system := strings.ReplaceAll(p.System, "{{input}}", input); system != "" {
		messages = append(messages, llmchat.Message{Role: llmchat.RoleSystem, Content: system})
	}
	return append(messages, llmchat.Message{Role: llmchat.RoleUser, Content: user})
}
