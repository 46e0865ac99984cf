package domain

import (
	"errors"
	"time"
)

// ErrInvalidResetCode covers unknown email, wrong code, expired code and
// consumed code alike. Callers must not be able to tell them apart.
var ErrInvalidResetCode = errors.New("reset code is invalid or expired")

const (
	ResetCodeTTL    = 15 * time.Minute
	ResetCodeDigits = 6
)

// ResetState tracks one password-reset attempt.
//
//	requested -> verified -> completed
//	requested -> revoked
type ResetState string

const (
	ResetRequested ResetState = "requested"
	ResetVerified  ResetState = "verified"
	ResetCompleted ResetState = "completed"
	ResetRevoked   ResetState = "revoked"
)

var resetTransitions = map[ResetState][]ResetState{
	ResetRequested: {ResetVerified, ResetRevoked},
	ResetVerified:  {ResetCompleted},
}

func (s ResetState) CanTransition(to ResetState) bool {
	for _, next := range resetTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type ResetCode struct {
	ID        int64
	UserID    int64
	Code      string
	State     ResetState
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Redeemable reports whether the code may still pass verification at now.
// A code expiring exactly at now is already dead.
func (c *ResetCode) Redeemable(now time.Time) bool {
	return c.State == ResetRequested && now.Before(c.ExpiresAt)
}
