package domain

import "time"

// Comment belongs to a post. PK: post_id, SK: comment_id, so a post's
// comments are a single query in creation order (ULIDs sort by time).
type Comment struct {
	PostID     string    `json:"post_id" dynamodbav:"post_id"`
	CommentID  string    `json:"id" dynamodbav:"comment_id"`
	AuthorID   string    `json:"author_id" dynamodbav:"author_id"`
	AuthorName string    `json:"author_name" dynamodbav:"author_name"`
	Body       string    `json:"body" dynamodbav:"body"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required"`
}
