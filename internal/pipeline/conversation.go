package pipeline

import (
	"sync"

	"github.com/ppiankov/naysayer/internal/model"
)

// DefaultHistorySize is the conversation buffer capacity when none is configured
const DefaultHistorySize = 20

// Conversation is a bounded FIFO of exchanged messages, safe for concurrent use
type Conversation struct {
	mu       sync.Mutex
	messages []model.Message
	limit    int
}

// NewConversation creates a new conversation buffer holding at most limit messages
func NewConversation(limit int) *Conversation {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &Conversation{
		messages: make([]model.Message, 0, limit),
		limit:    limit,
	}
}

// Append adds messages, evicting the oldest once the buffer is full
func (c *Conversation) Append(msgs ...model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, msgs...)
	if overflow := len(c.messages) - c.limit; overflow > 0 {
		kept := make([]model.Message, c.limit)
		copy(kept, c.messages[overflow:])
		c.messages = kept
	}
}

// Messages returns a copy of the buffer, oldest first
func (c *Conversation) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of buffered messages
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Limit returns the buffer capacity
func (c *Conversation) Limit() int {
	return c.limit
}

// Clear drops every message
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = c.messages[:0]
}
