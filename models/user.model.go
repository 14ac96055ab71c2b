package models

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles. Role checks switch on these
// constants exhaustively; there is no other valid value.
type Role string

const (
	RolePlayer Role = "player"
	RoleCoach  Role = "coach"
	RoleAdmin  Role = "admin"
)

// ParseRole validates a raw role string from input.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePlayer, RoleCoach, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// AutoApproved reports whether accounts with this role are usable
// immediately after sign-up. Coaches and admins wait for an
// administrator to approve them.
func (r Role) AutoApproved() bool {
	switch r {
	case RolePlayer:
		return true
	case RoleCoach, RoleAdmin:
		return false
	}
	return false
}

func (r Role) String() string { return string(r) }

// Identity is an auth account. Profiles in the users table are mirrored
// from identities by the provisioner; the two are keyed by the same id.
type Identity struct {
	ID               string     `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	FullName         string     `json:"full_name" db:"full_name"`
	Role             Role       `json:"role" db:"role"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at" db:"email_confirmed_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// User is the application profile row.
type User struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	FullName      string    `json:"full_name" db:"full_name"`
	Role          Role      `json:"role" db:"role"`
	Approved      bool      `json:"approved" db:"approved"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	AvatarURL     *string   `json:"avatar_url" db:"avatar_url"`
	Phone         *string   `json:"phone" db:"phone"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type RefreshToken struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Token     string     `json:"token" db:"token"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

type PasswordResetToken struct {
	Email     string    `json:"email" db:"email"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
