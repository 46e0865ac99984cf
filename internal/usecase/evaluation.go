package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/repository"
)

// EvaluationUsecase stores the results the client computed. Nothing is
// recalculated server side; only required fields and signs are checked.
type EvaluationUsecase struct {
	repo   repository.EvaluationRepository
	logger *slog.Logger
}

func NewEvaluationUsecase(repo repository.EvaluationRepository, logger *slog.Logger) *EvaluationUsecase {
	return &EvaluationUsecase{repo: repo, logger: logger.With("component", "evaluations")}
}

func validateHeating(e *domain.HeatingEvaluation) error {
	switch {
	case e.Area1 <= 0:
		return domain.Invalid("superficie_1", "is required")
	case e.FuelID < 1:
		return domain.Invalid("id_combustible", "is required")
	case e.AnnualConsumption <= 0:
		return domain.Invalid("consumoAnual", "is required")
	case e.Area2 < 0 || e.WindowArea1 < 0 || e.WindowArea2 < 0:
		return domain.Invalid("", "areas must not be negative")
	}
	return nil
}

func (u *EvaluationUsecase) SaveHeating(ctx context.Context, e *domain.HeatingEvaluation) (*domain.HeatingEvaluation, error) {
	if err := validateHeating(e); err != nil {
		return nil, err
	}
	saved, err := u.repo.SaveHeating(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("save heating evaluation: %w", err)
	}
	u.logger.InfoContext(ctx, "heating evaluation saved", "user_id", e.UserID, "evaluation_id", saved.ID)
	return saved, nil
}

func (u *EvaluationUsecase) ListHeating(ctx context.Context, userID int64) ([]*domain.HeatingEvaluation, error) {
	list, err := u.repo.ListHeating(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list heating evaluations: %w", err)
	}
	return list, nil
}

func (u *EvaluationUsecase) GetHeating(ctx context.Context, id, userID int64) (*domain.HeatingEvaluation, error) {
	e, err := u.repo.GetHeating(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get heating evaluation: %w", err)
	}
	return e, nil
}

func (u *EvaluationUsecase) DeleteHeating(ctx context.Context, id, userID int64) error {
	if err := u.repo.DeleteHeating(ctx, id, userID); err != nil {
		return fmt.Errorf("delete heating evaluation: %w", err)
	}
	return nil
}

func (u *EvaluationUsecase) HeatingStats(ctx context.Context, userID int64) (*domain.HeatingStats, error) {
	s, err := u.repo.HeatingStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("heating stats: %w", err)
	}
	return s, nil
}

func validateWater(e *domain.WaterEvaluation) error {
	switch {
	case e.WaterPrice <= 0:
		return domain.Invalid("precio_agua", "is required")
	case e.Consumption <= 0:
		return domain.Invalid("consumo_agua_potable", "is required")
	case e.Showers < 0 || e.Sinks < 0 || e.Toilets < 0 || e.Dishwashers < 0:
		return domain.Invalid("", "fixture counts must not be negative")
	}
	return nil
}

func (u *EvaluationUsecase) SaveWater(ctx context.Context, e *domain.WaterEvaluation) (*domain.WaterEvaluation, error) {
	if err := validateWater(e); err != nil {
		return nil, err
	}
	saved, err := u.repo.SaveWater(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("save water evaluation: %w", err)
	}
	u.logger.InfoContext(ctx, "water evaluation saved", "user_id", e.UserID, "evaluation_id", saved.ID)
	return saved, nil
}

func (u *EvaluationUsecase) ListWater(ctx context.Context, userID int64) ([]*domain.WaterEvaluation, error) {
	list, err := u.repo.ListWater(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list water evaluations: %w", err)
	}
	return list, nil
}

func (u *EvaluationUsecase) GetWater(ctx context.Context, id, userID int64) (*domain.WaterEvaluation, error) {
	e, err := u.repo.GetWater(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get water evaluation: %w", err)
	}
	return e, nil
}

func (u *EvaluationUsecase) DeleteWater(ctx context.Context, id, userID int64) error {
	if err := u.repo.DeleteWater(ctx, id, userID); err != nil {
		return fmt.Errorf("delete water evaluation: %w", err)
	}
	return nil
}
