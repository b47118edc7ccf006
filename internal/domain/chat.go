package domain

import "time"

// Chat message roles, mirroring the completion API convention.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one turn of a regulation-assistant conversation.
// PK: conversation_id, SK: message_id (ULID, so time-ordered).
type ChatMessage struct {
	ConversationID string    `json:"conversation_id" dynamodbav:"conversation_id"`
	MessageID      string    `json:"id" dynamodbav:"message_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Role           string    `json:"role" dynamodbav:"role"`
	Content        string    `json:"content" dynamodbav:"content"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}

type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Question       string `json:"question" validate:"required"`
	Category       string `json:"category"`
}
