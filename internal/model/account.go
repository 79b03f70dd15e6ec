package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the fixed access level of an account. It is assigned once at
// signup and never changes; there is no promotion or demotion flow.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleDoctor, RolePatient:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Account is the identity record behind every principal. Exactly one
// account exists per principal; the ids are shared.
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	HospitalID   *string   `db:"hospital_id" json:"hospital_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type SignupRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Name           string `json:"name" binding:"required"`
	Role           string `json:"role" binding:"required,oneof=admin doctor patient"`
	Phone          string `json:"phone"`
	HospitalID     string `json:"hospital_id"`
	Specialization string `json:"specialization"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// TokenClaims carries principal id and email only. Role is deliberately
// not a token claim: it is re-resolved from the store on every protected
// request.
type TokenClaims struct {
	AccountID uuid.UUID
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
