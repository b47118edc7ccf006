package domain

import "time"

// Post is one bulletin-board entry. Likes is the set of user IDs that liked
// the post; toggling is done server-side so a user counts at most once.
type Post struct {
	PostID        string    `json:"id" dynamodbav:"post_id"`
	AuthorID      string    `json:"author_id" dynamodbav:"author_id"`
	AuthorName    string    `json:"author_name" dynamodbav:"author_name"`
	Title         string    `json:"title" dynamodbav:"title"`
	Body          string    `json:"body" dynamodbav:"body"`
	Category      string    `json:"category" dynamodbav:"category"`
	Likes         []string  `json:"-" dynamodbav:"likes,stringset,omitempty"`
	LikeCount     int       `json:"like_count" dynamodbav:"-"`
	CommentCount  int       `json:"comment_count" dynamodbav:"comment_count"`
	AttachmentKey string    `json:"attachment_key,omitempty" dynamodbav:"attachment_key"`
	AttachmentURL string    `json:"attachment_url,omitempty" dynamodbav:"attachment_url"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreatePostRequest struct {
	Title         string `json:"title" validate:"required,max=120"`
	Body          string `json:"body" validate:"required"`
	Category      string `json:"category"`
	AttachmentKey string `json:"attachment_key"`
	AttachmentURL string `json:"attachment_url"`
}
