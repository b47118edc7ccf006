package passwordreset

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/unimate-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Stable user-facing reasons. Handlers surface these verbatim; store errors
// never reach the caller.
const (
	ReasonAccountNotFound = "account not found"
	ReasonEmailMismatch   = "email does not match"
	ReasonNoActiveReset   = "no active reset request"
	ReasonCodeMismatch    = "code does not match"
	ReasonCodeExpired     = "code expired"
)

type Service interface {
	// Request issues a fresh 6-digit code for the account and mails it.
	// Any previously issued code is overwritten, which doubles as the
	// cancellation path for a stale request.
	Request(ctx context.Context, userID, email string) error

	// VerifyAndReset checks the submitted code and, if valid, changes the
	// password and consumes the code in one store write.
	VerifyAndReset(ctx context.Context, userID, code, newPassword string) error
}

type userStore interface {
	FindByUserID(ctx context.Context, userID string) (*domain.User, error)
	SetResetCode(ctx context.Context, userID, code string, expires time.Time) error
	ConsumeResetCode(ctx context.Context, userID, newPasswordHash string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	repo    userStore
	mailer  mailer
	codeTTL time.Duration
}

type ServiceDeps struct {
	UserRepo userStore
	Mailer   mailer
	CodeTTL  time.Duration
}

func NewService(deps ServiceDeps) Service {
	ttl := deps.CodeTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{repo: deps.UserRepo, mailer: deps.Mailer, codeTTL: ttl}
}

func (s *service) Request(ctx context.Context, userID, email string) error {
	u, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return translateLookup(err)
	}
	if u.Email != email {
		return fmt.Errorf("%s: %w", ReasonEmailMismatch, domain.ErrBadRequest)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	expires := time.Now().Add(s.codeTTL)

	if err := s.repo.SetResetCode(ctx, userID, code, expires); err != nil {
		return err
	}

	// The code is already persisted at this point. A failed send leaves it
	// in place and the user re-requests, which overwrites it.
	if err := s.mailer.SendEmail(u.Email, "UniMate password reset code",
		fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, int(s.codeTTL.Minutes()))); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}
	return nil
}

func (s *service) VerifyAndReset(ctx context.Context, userID, code, newPassword string) error {
	u, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return translateLookup(err)
	}
	if !u.HasActiveReset() {
		return fmt.Errorf("%s: %w", ReasonNoActiveReset, domain.ErrBadRequest)
	}
	// Exact string compare after trimming; "012345" and "12345" are
	// different codes even though they are numerically equal.
	if strings.TrimSpace(code) != strings.TrimSpace(*u.ResetCode) {
		return fmt.Errorf("%s: %w", ReasonCodeMismatch, domain.ErrUnauthorized)
	}
	// Strictly after: the expiry instant itself is still valid.
	if time.Now().After(*u.ResetExpires) {
		return fmt.Errorf("%s: %w", ReasonCodeExpired, domain.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.ConsumeResetCode(ctx, userID, string(hash))
}

func translateLookup(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", ReasonAccountNotFound, domain.ErrNotFound)
	}
	return err
}

// generateCode draws a 6-digit code uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
