package domain

import (
	"errors"
	"time"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrUnknownRegion      = errors.New("region does not exist")
	ErrUnknownCommune     = errors.New("commune does not exist or does not belong to the region")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSelfDelete         = errors.New("cannot delete own account")

	ErrMissingToken      = errors.New("token not provided")
	ErrTokenInvalid      = errors.New("token is invalid")
	ErrTokenExpired      = errors.New("token is expired")
	ErrWrongTokenPurpose = errors.New("token purpose does not match")
	ErrForbidden         = errors.New("forbidden")
)

type Role string

const (
	RoleUser  Role = "usuario"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the credential-store record. PasswordHash must never leave the
// service boundary; handlers render PublicUser instead.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	RegisteredAt time.Time
}

// Identity is what a verified token proves about the caller.
type Identity struct {
	UserID  int64
	Email   string
	Role    Role
	Purpose TokenPurpose
	// ResetID is set only on password-reset tokens.
	ResetID int64
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type TokenPurpose string

const (
	PurposeSession       TokenPurpose = "session"
	PurposePasswordReset TokenPurpose = "password_reset"
)

const (
	SessionTokenTTL = 7 * 24 * time.Hour
	ResetTokenTTL   = 15 * time.Minute
	MinPasswordLen  = 8
)

// ValidationError names the input field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
