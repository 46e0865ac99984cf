package repository

import (
	"context"
	"time"

	"github.com/kipusaplus/kipus-api/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	List(ctx context.Context) ([]*domain.Comment, error)
	Stats(ctx context.Context, since time.Time) (*domain.CommentStats, error)
}

type RatingRepository interface {
	// Create fails with ErrAlreadyRatedToday when the user already rated on day.
	Create(ctx context.Context, r *domain.Rating) (*domain.Rating, error)
	FindForDay(ctx context.Context, userID int64, day time.Time) (*domain.Rating, error)
	List(ctx context.Context) ([]*domain.Rating, error)
	Stats(ctx context.Context) (*domain.RatingStats, error)
}
