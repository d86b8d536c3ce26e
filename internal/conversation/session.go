// Package conversation holds the per-session message history. The history is
// append-only: messages are never edited in place, and the only removal path
// is budget trimming which drops whole turns from the oldest end.
package conversation

import (
	"time"

	"github.com/google/uuid"

	"crucible/internal/provider"
)

// Session is the serializable state of one conversation.
type Session struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Messages  []provider.Message `json:"messages"`
}

// NewSession creates a session seeded with the system prompt. An empty
// systemPrompt leaves the history empty.
func NewSession(name, systemPrompt string) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if systemPrompt != "" {
		s.Messages = append(s.Messages, provider.Message{
			Role:    provider.RoleSystem,
			Content: systemPrompt,
		})
	}
	return s
}
