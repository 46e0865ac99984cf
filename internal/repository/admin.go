package repository

import (
	"context"
	"time"

	"github.com/kipusaplus/kipus-api/internal/domain"
)

type AdminRepository interface {
	SystemStats(ctx context.Context, since time.Time) (*domain.SystemStats, error)
	UsersByRegion(ctx context.Context) ([]domain.RegionCount, error)
	EvaluationCounts(ctx context.Context) (*domain.EvaluationCounts, error)
	AverageSavings(ctx context.Context) ([]domain.SavingsAverage, error)
	RecommendedMeasures(ctx context.Context) ([]domain.MeasureCount, error)
	SignupsByMonth(ctx context.Context, since time.Time) ([]domain.MonthCount, error)

	ListRows(ctx context.Context, t *domain.Table, limit int) (*domain.TableRows, error)
	InsertRow(ctx context.Context, t *domain.Table, values []domain.ColumnValue) (map[string]any, error)
	UpdateRow(ctx context.Context, t *domain.Table, id int64, values []domain.ColumnValue) (map[string]any, error)
	DeleteRow(ctx context.Context, t *domain.Table, id int64) error
}
