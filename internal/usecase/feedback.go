package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/repository"
)

const maxCommentLen = 2000

type FeedbackUsecase struct {
	comments repository.CommentRepository
	ratings  repository.RatingRepository
	now      func() time.Time
}

// NewFeedbackUsecase uses time.Now when now is nil.
func NewFeedbackUsecase(comments repository.CommentRepository, ratings repository.RatingRepository, now func() time.Time) *FeedbackUsecase {
	if now == nil {
		now = time.Now
	}
	return &FeedbackUsecase{comments: comments, ratings: ratings, now: now}
}

// today is the calendar day of now in the server's zone, at midnight UTC so it
// binds cleanly to a DATE column.
func (u *FeedbackUsecase) today() time.Time {
	y, m, d := u.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (u *FeedbackUsecase) CreateComment(ctx context.Context, userID int64, kind domain.CommentType, message string) (*domain.Comment, error) {
	message = strings.TrimSpace(message)
	if !kind.Valid() {
		return nil, domain.Invalid("tipoComentario", "must be one of sugerencia, problema, mejora, felicitacion, otro")
	}
	if message == "" {
		return nil, domain.Invalid("mensaje", "is required")
	}
	if len(message) > maxCommentLen {
		return nil, domain.Invalid("mensaje", fmt.Sprintf("must be at most %d characters", maxCommentLen))
	}

	c, err := u.comments.Create(ctx, &domain.Comment{UserID: userID, Type: kind, Message: message})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// Rate stores the caller's rating for today. A second rating on the same day
// fails with ErrAlreadyRatedToday.
func (u *FeedbackUsecase) Rate(ctx context.Context, userID int64, value int, feedback string) (*domain.Rating, error) {
	feedback = strings.TrimSpace(feedback)
	if value < 1 || value > 5 {
		return nil, domain.Invalid("puntuacion", "must be between 1 and 5")
	}
	if feedback == "" {
		return nil, domain.Invalid("feedback", "is required")
	}

	r, err := u.ratings.Create(ctx, &domain.Rating{
		UserID:   userID,
		Value:    value,
		Feedback: feedback,
		Date:     u.today(),
	})
	if err != nil {
		return nil, fmt.Errorf("create rating: %w", err)
	}
	return r, nil
}

// TodayRating returns nil without error when the caller has not rated today.
func (u *FeedbackUsecase) TodayRating(ctx context.Context, userID int64) (*domain.Rating, error) {
	r, err := u.ratings.FindForDay(ctx, userID, u.today())
	if err != nil {
		if errors.Is(err, domain.ErrRatingNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find today's rating: %w", err)
	}
	return r, nil
}

func (u *FeedbackUsecase) RatingStats(ctx context.Context) (*domain.RatingStats, error) {
	s, err := u.ratings.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("rating stats: %w", err)
	}
	return s, nil
}
