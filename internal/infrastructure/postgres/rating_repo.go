package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

type RatingRepository struct {
	db DB
}

func NewRatingRepository(db DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) Create(ctx context.Context, in *domain.Rating) (*domain.Rating, error) {
	var out domain.Rating
	err := r.db.QueryRow(ctx, `
		INSERT INTO valoracion (valor, feedback, id_usuario, fecha)
		VALUES ($1, $2, $3, $4)
		RETURNING id, valor, feedback, id_usuario, fecha`,
		in.Value, in.Feedback, in.UserID, in.Date,
	).Scan(&out.ID, &out.Value, &out.Feedback, &out.UserID, &out.Date)
	if err != nil {
		switch pgCode(err) {
		case codeUniqueViolation:
			return nil, domain.ErrAlreadyRatedToday
		case codeForeignKeyViolation:
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert rating: %w", err)
	}
	return &out, nil
}

func (r *RatingRepository) FindForDay(ctx context.Context, userID int64, day time.Time) (*domain.Rating, error) {
	var out domain.Rating
	err := r.db.QueryRow(ctx, `
		SELECT id, valor, feedback, id_usuario, fecha
		FROM valoracion
		WHERE id_usuario = $1 AND fecha = $2`,
		userID, day,
	).Scan(&out.ID, &out.Value, &out.Feedback, &out.UserID, &out.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRatingNotFound
		}
		return nil, fmt.Errorf("find rating: %w", err)
	}
	return &out, nil
}

func (r *RatingRepository) List(ctx context.Context) ([]*domain.Rating, error) {
	rows, err := r.db.Query(ctx, `
		SELECT v.id, v.valor, v.feedback, v.id_usuario, v.fecha, u.nombre_completo, u.correo
		FROM valoracion v
		JOIN usuario u ON u.id = v.id_usuario
		ORDER BY v.fecha DESC, v.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var out []*domain.Rating
	for rows.Next() {
		var v domain.Rating
		if err := rows.Scan(&v.ID, &v.Value, &v.Feedback, &v.UserID, &v.Date, &v.AuthorName, &v.AuthorEmail); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

// Stats aggregates per value in SQL and derives the average from the buckets.
func (r *RatingRepository) Stats(ctx context.Context) (*domain.RatingStats, error) {
	rows, err := r.db.Query(ctx, `SELECT valor, COUNT(*) FROM valoracion GROUP BY valor`)
	if err != nil {
		return nil, fmt.Errorf("rating stats: %w", err)
	}
	defer rows.Close()

	var stats domain.RatingStats
	sum := 0
	for rows.Next() {
		var value, count int
		if err := rows.Scan(&value, &count); err != nil {
			return nil, fmt.Errorf("scan rating stats: %w", err)
		}
		if value < 1 || value > 5 {
			continue
		}
		stats.Distribution[value-1] = count
		stats.Total += count
		sum += value * count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating stats: %w", err)
	}
	if stats.Total > 0 {
		stats.Average = float64(sum) / float64(stats.Total)
	}
	return &stats, nil
}
