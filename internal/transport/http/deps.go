package http

import (
	"github.com/unimate-backend/internal/infrastructure/dynamo"
	jwtinfra "github.com/unimate-backend/internal/infrastructure/jwt"
	"github.com/unimate-backend/internal/infrastructure/llm"
	s3infra "github.com/unimate-backend/internal/infrastructure/s3"
	"github.com/unimate-backend/internal/infrastructure/sheets"
	"github.com/unimate-backend/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *sheets.UserRepo
	RuleRepo         *sheets.RuleRepo
	PostRepo         *dynamo.PostRepo
	CommentRepo      *dynamo.CommentRepo
	NotificationRepo *dynamo.NotificationRepo
	TimetableRepo    *dynamo.TimetableRepo
	ChatMessageRepo  *dynamo.ChatMessageRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	JWTProvider      *jwtinfra.Provider
	LLMClient        *llm.Client
}
