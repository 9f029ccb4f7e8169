package domain

import "time"

type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Loading   bool      `json:"is_loading,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
