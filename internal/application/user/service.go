package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unimate-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	FindByUserID(ctx context.Context, userID string) (*domain.User, error)
	Append(ctx context.Context, u *domain.User) error
	UpdateProfile(ctx context.Context, userID, displayName, affiliation, email string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type jwtSigner interface {
	Sign(userID, displayName string) (string, error)
}

type service struct {
	repo        userStore
	jwtProvider jwtSigner
}

type ServiceDeps struct {
	UserRepo    userStore
	JWTProvider jwtSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo, jwtProvider: deps.JWTProvider}
}

// Signup pre-checks for a duplicate ID with a scan; the backing sheet cannot
// enforce uniqueness, so two simultaneous signups with the same ID can still
// both land. Accepted at this scale.
func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	_, err := s.repo.FindByUserID(ctx, req.UserID)
	if err == nil {
		return nil, fmt.Errorf("id already registered: %w", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		UserID:       req.UserID,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Affiliation:  req.Affiliation,
		CreatedAt:    time.Now().UTC(),
		Email:        req.Email,
	}
	if err := s.repo.Append(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error) {
	u, err := s.repo.FindByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("invalid id or password: %w", domain.ErrUnauthorized)
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("invalid id or password: %w", domain.ErrUnauthorized)
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.DisplayName)
	if err != nil {
		return "", nil, err
	}
	return bearer, u, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	u, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.DisplayName == nil && req.Affiliation == nil && req.Email == nil {
		return u, nil
	}
	displayName, affiliation, email := u.DisplayName, u.Affiliation, u.Email
	if req.DisplayName != nil {
		displayName = *req.DisplayName
	}
	if req.Affiliation != nil {
		affiliation = *req.Affiliation
	}
	if req.Email != nil {
		email = *req.Email
	}
	if err := s.repo.UpdateProfile(ctx, userID, displayName, affiliation, email); err != nil {
		return nil, err
	}
	return s.repo.FindByUserID(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

func (s *service) Delete(ctx context.Context, userID string) error {
	return s.repo.DeleteByUserID(ctx, userID)
}
