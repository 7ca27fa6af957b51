// Package llm defines the chat provider abstraction used by the agent and
// the project generator. Concrete clients live in subpackages.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatProvider is a synchronous chat completion backend.
type ChatProvider interface {
	// Chat sends the conversation and returns the assistant's reply text.
	Chat(ctx context.Context, messages []Message) (string, error)
	// Name identifies the provider in logs and status responses.
	Name() string
}

// Verifier is implemented by providers that can cheaply check whether their
// credentials work.
type Verifier interface {
	Verify(ctx context.Context) error
}

var (
	ErrNoAPIKey   = errors.New("llm: api key not configured")
	ErrEmptyReply = errors.New("llm: provider returned no content")
)
