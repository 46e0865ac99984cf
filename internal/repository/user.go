package repository

import (
	"context"

	"github.com/kipusaplus/kipus-api/internal/domain"
)

// RegisterInput is everything registration writes: the user row and its dwelling.
type RegisterInput struct {
	Email        string
	Name         string
	PasswordHash string
	Region       string
	Commune      string
	Occupants    int
	Area1        float64
	Area2        float64
}

type UserRepository interface {
	// Register creates the user and the dwelling in one transaction. Nothing is
	// written unless both rows are.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
