package repository

import (
	"context"

	"github.com/kipusaplus/kipus-api/internal/domain"
)

// All reads and deletes are scoped to the owning user; another user's id
// behaves exactly like a missing one.
type EvaluationRepository interface {
	SaveHeating(ctx context.Context, e *domain.HeatingEvaluation) (*domain.HeatingEvaluation, error)
	ListHeating(ctx context.Context, userID int64) ([]*domain.HeatingEvaluation, error)
	GetHeating(ctx context.Context, id, userID int64) (*domain.HeatingEvaluation, error)
	DeleteHeating(ctx context.Context, id, userID int64) error
	HeatingStats(ctx context.Context, userID int64) (*domain.HeatingStats, error)

	SaveWater(ctx context.Context, e *domain.WaterEvaluation) (*domain.WaterEvaluation, error)
	ListWater(ctx context.Context, userID int64) ([]*domain.WaterEvaluation, error)
	GetWater(ctx context.Context, id, userID int64) (*domain.WaterEvaluation, error)
	DeleteWater(ctx context.Context, id, userID int64) error
}
