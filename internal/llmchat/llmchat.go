// Package llmchat provides the core abstractions shared by the chat screen,
// the one-shot command and the completion backends.
package llmchat

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when a successful response lacks the reply text.
var ErrMalformedResponse = errors.New("invalid response from server")

// StatusError is implemented by errors that carry a non-2xx response.
type StatusError interface {
	error
	HTTPStatus() int
	// DisplayMessage is the most human-readable description available.
	DisplayMessage() string
}

// Message roles understood by chat-completion endpoints.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role/content pair sent to a completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelInfo represents information about an available model from the endpoint.
type ModelInfo struct {
	ID          string // Model identifier (e.g., "meta-llama/llama-3.3-70b-instruct:free")
	Name        string // Human-readable name
	ContextSize int
	IsDefault   bool // Whether this is the configured model
}

// Completer sends an ordered conversation and returns the reply text.
//
// Example usage:
//
//	client := openrouter.NewClient(cfg)
//	reply, err := client.Complete(ctx, []llmchat.Message{
//		{Role: llmchat.RoleSystem, Content: "Answer in Markdown."},
//		{Role: llmchat.RoleUser, Content: "Hello!"},
//	})
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ModelID is a parsed OpenRouter-style model identifier.
type ModelID struct {
	Vendor  string // "meta-llama"
	Name    string // "llama-3.3-70b-instruct"
	Variant string // "free", optional
}

// String formats the identifier back into "vendor/name[:variant]" form.
func (m ModelID) String() string {
	s := m.Vendor + "/" + m.Name
	if m.Variant != "" {
		s += ":" + m.Variant
	}
	return s
}

// ParseModelID parses a model string in "vendor/name[:variant]" format.
//
// Example:
//
//	id, err := ParseModelID("meta-llama/llama-3.3-70b-instruct:free")
//	// id.Vendor = "meta-llama", id.Name = "llama-3.3-70b-instruct", id.Variant = "free"
func ParseModelID(s string) (ModelID, error) {
	s = strings.TrimSpace(s)
	vendor, rest, ok := strings.Cut(s, "/")
	if !ok {
		return ModelID{}, fmt.Errorf("invalid model format: %s (expected format: vendor/model, e.g., openai/gpt-4o)", s)
	}

	name, variant, _ := strings.Cut(rest, ":")
	vendor = strings.TrimSpace(vendor)
	name = strings.TrimSpace(name)
	variant = strings.TrimSpace(variant)

	if vendor == "" || name == "" {
		return ModelID{}, fmt.Errorf("vendor and model cannot be empty")
	}
	if strings.Contains(name, "/") {
		return ModelID{}, fmt.Errorf("invalid model format: %s (too many path segments)", s)
	}

	return ModelID{Vendor: vendor, Name: name, Variant: variant}, nil
}
