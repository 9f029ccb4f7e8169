package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("message text is required")

// Advisor answers a message; it never fails, failures come back as text.
type Advisor interface {
	GetAdviceWithHistory(ctx context.Context, history []domain.ChatMessage, message string) string
}

// Conversation is an append-only transcript between one shopper and the assistant.
type Conversation struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
	pending  *domain.ChatMessage
	advisor  Advisor
	// historyTurns is how many earlier messages go with each request.
	historyTurns int
	now          func() time.Time
}

func NewConversation(advisor Advisor, historyTurns int) *Conversation {
	if historyTurns < 0 {
		historyTurns = 0
	}
	return &Conversation{
		advisor:      advisor,
		historyTurns: historyTurns,
		now:          time.Now,
	}
}

// Send records the user's message, asks the assistant and records the reply.
// While the assistant is working Messages ends with a loading placeholder.
func (c *Conversation) Send(ctx context.Context, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, ErrEmptyMessage
	}

	c.mu.Lock()
	history := c.recentLocked(c.historyTurns)
	c.messages = append(c.messages, domain.ChatMessage{
		ID:        uuid.New().String(),
		Role:      domain.RoleUser,
		Text:      text,
		CreatedAt: c.now(),
	})
	placeholder := domain.ChatMessage{
		ID:        uuid.New().String(),
		Role:      domain.RoleModel,
		Loading:   true,
		CreatedAt: c.now(),
	}
	c.pending = &placeholder
	c.mu.Unlock()

	reply := c.advisor.GetAdviceWithHistory(ctx, history, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	msg := domain.ChatMessage{
		ID:        placeholder.ID,
		Role:      domain.RoleModel,
		Text:      reply,
		CreatedAt: c.now(),
	}
	c.messages = append(c.messages, msg)
	if c.pending != nil && c.pending.ID == placeholder.ID {
		c.pending = nil
	}
	return msg, nil
}

// Messages returns the transcript, with the loading placeholder last when a reply is pending.
func (c *Conversation) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.messages), len(c.messages)+1)
	copy(out, c.messages)
	if c.pending != nil {
		out = append(out, *c.pending)
	}
	return out
}

// Recent returns up to n of the latest completed messages, oldest first.
func (c *Conversation) Recent(n int) []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recentLocked(n)
}

func (c *Conversation) recentLocked(n int) []domain.ChatMessage {
	if n <= 0 || len(c.messages) == 0 {
		return nil
	}
	start := len(c.messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]domain.ChatMessage, len(c.messages)-start)
	copy(out, c.messages[start:])
	return out
}
