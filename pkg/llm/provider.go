package llm

import (
	"context"
)

// Provider is a chat-completion capability. Implementations return the
// assistant reply as a single string.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a single-turn user prompt.
func UserMessage(content string) []Message {
	return []Message{{Role: "user", Content: content}}
}

// SystemAndUser builds a system-primed single-turn prompt.
func SystemAndUser(system, user string) []Message {
	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}
