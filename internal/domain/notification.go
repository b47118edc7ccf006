package domain

import "time"

// Notification kinds.
const (
	NotifyComment = "comment"
	NotifyLike    = "like"
)

type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Kind           string    `json:"kind" dynamodbav:"kind"` // "comment" | "like"
	PostID         string    `json:"post_id" dynamodbav:"post_id"`
	ActorName      string    `json:"actor_name" dynamodbav:"actor_name"`
	Message        string    `json:"message" dynamodbav:"message"`
	Read           int       `json:"read" dynamodbav:"read"` // 0 = unread, 1 = read
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}
