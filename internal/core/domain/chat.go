package domain

import "time"

// ChatRole identifies who wrote a chat message.
type ChatRole string

// Chat roles.
const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of the ask-anything history.
type ChatMessage struct {
	Role    ChatRole      `json:"role"`
	Content string        `json:"content"`
	Result  *AnswerResult `json:"result,omitempty"`
	At      time.Time     `json:"at"`
}
