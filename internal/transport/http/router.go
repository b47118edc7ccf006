package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/unimate-backend/internal/application/board"
	"github.com/unimate-backend/internal/application/chat"
	"github.com/unimate-backend/internal/application/passwordreset"
	"github.com/unimate-backend/internal/application/timetable"
	"github.com/unimate-backend/internal/application/user"
	"github.com/unimate-backend/internal/config"
	"github.com/unimate-backend/internal/transport/http/handler"
	appmiddleware "github.com/unimate-backend/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo, JWTProvider: deps.JWTProvider})
	resetSvc := passwordreset.NewService(passwordreset.ServiceDeps{
		UserRepo: deps.UserRepo,
		Mailer:   deps.Mailer,
		CodeTTL:  cfg.ResetCodeTTL,
	})
	boardSvc := board.NewService(board.ServiceDeps{
		PostRepo:         deps.PostRepo,
		CommentRepo:      deps.CommentRepo,
		NotificationRepo: deps.NotificationRepo,
		AttachmentStore:  deps.S3Store,
	})
	timetableSvc := timetable.NewService(timetable.ServiceDeps{EntryRepo: deps.TimetableRepo})
	chatSvc := chat.NewService(chat.ServiceDeps{
		RuleRepo:    deps.RuleRepo,
		MessageRepo: deps.ChatMessageRepo,
		Completer:   deps.LLMClient,
	})

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc)
	resetH := handler.NewPasswordResetHandler(resetSvc)
	postH := handler.NewPostHandler(boardSvc)
	commentH := handler.NewCommentHandler(boardSvc)
	notifH := handler.NewNotificationHandler(boardSvc)
	timetableH := handler.NewTimetableHandler(timetableSvc)
	chatH := handler.NewChatHandler(chatSvc)
	attachmentH := handler.NewAttachmentHandler(deps.S3Store)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/users", userH.Signup)
		r.With(sensitiveRL.Limit).Post("/sessions/login", userH.Login)
		r.With(sensitiveRL.Limit).Post("/password-reset/request", resetH.Request)
		r.With(sensitiveRL.Limit).Post("/password-reset/confirm", resetH.Confirm)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me", userH.UpdateMe)
			r.Delete("/users/me", userH.DeleteMe)
			r.Post("/users/me/password", userH.ChangePassword)

			r.Get("/posts", postH.List)
			r.Post("/posts", postH.Create)
			r.Get("/posts/{id}", postH.Get)
			r.Delete("/posts/{id}", postH.Delete)
			r.Post("/posts/{id}/like", postH.ToggleLike)
			r.Post("/posts/{id}/comments", commentH.Create)
			r.Delete("/posts/{id}/comments/{cid}", commentH.Delete)

			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			r.Get("/timetable", timetableH.List)
			r.Post("/timetable", timetableH.Create)
			r.Put("/timetable/{id}", timetableH.Update)
			r.Delete("/timetable/{id}", timetableH.Delete)

			r.Post("/chat", chatH.Ask)
			r.Get("/chat/{id}", chatH.History)

			r.Post("/attachments", attachmentH.Upload)
			r.Get("/attachments/{key}", attachmentH.GetURL)
			r.Get("/attachments/{key}/download", attachmentH.Download)
		})
	})

	return r
}
