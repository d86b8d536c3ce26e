package conversation

import (
	"errors"
	"sync"
	"time"

	"crucible/internal/provider"
)

// ErrSessionBusy is returned when a second writer tries to acquire a session
// that is already driving a run.
var ErrSessionBusy = errors.New("session is busy")

// Store wraps a session with concurrency-safe access. Mutation is limited to
// Append and Trim; readers get defensive copies.
type Store struct {
	mu      sync.Mutex
	session *Session
	busy    bool
}

// NewStore wraps an existing session.
func NewStore(session *Session) *Store {
	return &Store{session: session}
}

// Session returns a deep copy of the current session state, suitable for
// persisting without racing ongoing appends.
func (s *Store) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *s.session
	copied.Messages = append([]provider.Message(nil), s.session.Messages...)
	return &copied
}

// Snapshot returns a copy of the message history.
func (s *Store) Snapshot() []provider.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]provider.Message(nil), s.session.Messages...)
}

// Len returns the number of messages in the history.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.session.Messages)
}

// Append adds messages to the end of the history.
func (s *Store) Append(messages ...provider.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Messages = append(s.session.Messages, messages...)
	s.session.UpdatedAt = time.Now().UTC()
}

// Acquire marks the session as driven by a single writer. It fails with
// ErrSessionBusy if another writer holds it.
func (s *Store) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrSessionBusy
	}
	s.busy = true
	return nil
}

// Release clears the writer mark.
func (s *Store) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

// Trim drops the oldest messages until the history fits the budget. The
// system message is never dropped. Messages are dropped as whole turns: an
// assistant message carrying tool calls and the tool messages answering it
// go together, so the backend never sees a call without its result or a
// result without its call.
func (s *Store) Trim(budget int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if budget <= 0 || len(s.session.Messages) <= budget {
		return 0
	}

	messages := s.session.Messages
	var head []provider.Message
	if len(messages) > 0 && messages[0].Role == provider.RoleSystem {
		head = messages[:1]
		messages = messages[1:]
	}

	turns := groupTurns(messages)

	total := len(head) + len(messages)
	dropped := 0
	for i := 0; i < len(turns) && total > budget; i++ {
		total -= len(turns[i])
		dropped += len(turns[i])
	}

	if dropped == 0 {
		return 0
	}

	kept := make([]provider.Message, 0, total)
	kept = append(kept, head...)
	kept = append(kept, messages[dropped:]...)
	s.session.Messages = kept
	return dropped
}

// groupTurns slices the history into droppable units. An assistant message
// with tool calls claims every tool message that follows it; all other
// messages stand alone.
func groupTurns(messages []provider.Message) [][]provider.Message {
	var turns [][]provider.Message
	for i := 0; i < len(messages); {
		if messages[i].Role == provider.RoleAssistant && len(messages[i].ToolCalls) > 0 {
			j := i + 1
			for j < len(messages) && messages[j].Role == provider.RoleTool {
				j++
			}
			turns = append(turns, messages[i:j])
			i = j
			continue
		}
		turns = append(turns, messages[i:i+1])
		i++
	}
	return turns
}
