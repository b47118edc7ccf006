package domain

import "time"

// User is one row of the users sheet. UserID is the student number and the
// only lookup key; matches are exact and case-sensitive.
type User struct {
	UserID       string     `json:"id"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `json:"display_name"`
	Affiliation  string     `json:"affiliation"`
	CreatedAt    time.Time  `json:"created"`
	Email        string     `json:"email"`
	ResetCode    *string    `json:"-"`
	ResetExpires *time.Time `json:"-"`
}

// HasActiveReset reports whether a reset code pair is present. The two fields
// are always set and cleared together.
func (u *User) HasActiveReset() bool {
	return u.ResetCode != nil && u.ResetExpires != nil
}

type SignupRequest struct {
	UserID      string `json:"id" validate:"required"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"required"`
	Affiliation string `json:"affiliation"`
	Email       string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	UserID   string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Affiliation *string `json:"affiliation"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}
