package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TurnRole is the author of a conversation turn.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// ConversationTurn is one message in the transcript.
// An assistant turn for a successful question embeds the SQL block, the table,
// and the explanation as one text blob.
type ConversationTurn struct {
	ID        uuid.UUID `json:"id"`
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewConversationTurn creates a turn stamped with a new ID and the current time.
func NewConversationTurn(role TurnRole, content string) ConversationTurn {
	return ConversationTurn{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// Transcript is an append-only ordered sequence of turns.
// Turns are never edited or removed.
type Transcript struct {
	mu    sync.RWMutex
	turns []ConversationTurn
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a turn to the end of the transcript.
func (t *Transcript) Append(turn ConversationTurn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of all turns in order.
func (t *Transcript) Turns() []ConversationTurn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ConversationTurn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Last returns the most recent turn, or false if the transcript is empty.
func (t *Transcript) Last() (ConversationTurn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.turns) == 0 {
		return ConversationTurn{}, false
	}
	return t.turns[len(t.turns)-1], true
}
