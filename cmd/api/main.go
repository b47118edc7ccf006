package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/unimate-backend/internal/config"
	"github.com/unimate-backend/internal/infrastructure/dynamo"
	jwtinfra "github.com/unimate-backend/internal/infrastructure/jwt"
	"github.com/unimate-backend/internal/infrastructure/llm"
	s3infra "github.com/unimate-backend/internal/infrastructure/s3"
	"github.com/unimate-backend/internal/infrastructure/sheets"
	"github.com/unimate-backend/internal/infrastructure/smtp"
	transporthttp "github.com/unimate-backend/internal/transport/http"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	// Spreadsheet backing store for accounts and regulation text.
	sheetsSvc := sheets.NewService(ctx, cfg)
	tabular, err := sheets.NewGoogleTabular(ctx, sheetsSvc, cfg.SpreadsheetID)
	if err != nil {
		slog.Error("spreadsheet not reachable", "error", err)
		os.Exit(1)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		slog.Warn("JWT provider not available", "error", err)
	}

	// S3 store for post attachments.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer for reset codes.
	mailer := smtp.NewMailer(cfg)

	deps := &transporthttp.Deps{
		UserRepo:         sheets.NewUserRepo(tabular, cfg.UsersTab),
		RuleRepo:         sheets.NewRuleRepo(tabular, cfg.RulesTab),
		PostRepo:         dynamo.NewPostRepo(dynamoClient, cfg.DynamoTables.Posts),
		CommentRepo:      dynamo.NewCommentRepo(dynamoClient, cfg.DynamoTables.Comments),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		TimetableRepo:    dynamo.NewTimetableRepo(dynamoClient, cfg.DynamoTables.Timetables),
		ChatMessageRepo:  dynamo.NewChatMessageRepo(dynamoClient, cfg.DynamoTables.ChatMessages),
		S3Store:          s3Store,
		Mailer:           mailer,
		JWTProvider:      jwtProvider,
		LLMClient:        llm.NewClient(cfg),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.AppPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No write timeout: the assistant endpoint streams replies that can
		// outlive any fixed deadline. Cancellation comes from the client.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
