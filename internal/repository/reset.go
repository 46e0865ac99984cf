package repository

import (
	"context"
	"time"

	"github.com/kipusaplus/kipus-api/internal/domain"
)

type ResetCodeRepository interface {
	Create(ctx context.Context, userID int64, code string, expiresAt time.Time) (*domain.ResetCode, error)
	// FindRequested returns the newest code still in the requested state that
	// matches code for the user. Expiry is left to the caller.
	FindRequested(ctx context.Context, userID int64, code string) (*domain.ResetCode, error)
	// Transition moves one attempt between states. It fails with
	// ErrInvalidResetCode when the attempt is no longer in from.
	Transition(ctx context.Context, id int64, from, to domain.ResetState) error
	// Complete atomically finishes attempt id, stores the new hash and revokes
	// every other requested code of the user.
	Complete(ctx context.Context, id, userID int64, passwordHash string) error
	// Purge deletes codes that expired before cutoff or left the requested
	// state before cutoff.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}
