package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/kipusaplus/kipus-api/internal/domain"
)

type CommentRepository struct {
	db DB
}

func NewCommentRepository(db DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	var out domain.Comment
	err := r.db.QueryRow(ctx, `
		INSERT INTO comentario (tipo, descripcion, id_usuario)
		VALUES ($1, $2, $3)
		RETURNING id, tipo, descripcion, id_usuario, fecha`,
		c.Type, c.Message, c.UserID,
	).Scan(&out.ID, &out.Type, &out.Message, &out.UserID, &out.Date)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &out, nil
}

func (r *CommentRepository) List(ctx context.Context) ([]*domain.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.tipo, c.descripcion, c.id_usuario, c.fecha, u.nombre_completo, u.correo
		FROM comentario c
		JOIN usuario u ON u.id = c.id_usuario
		ORDER BY c.fecha DESC, c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.Type, &c.Message, &c.UserID, &c.Date, &c.AuthorName, &c.AuthorEmail); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return out, nil
}

func (r *CommentRepository) Stats(ctx context.Context, since time.Time) (*domain.CommentStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tipo, COUNT(*), COUNT(*) FILTER (WHERE fecha >= $1)
		FROM comentario
		GROUP BY tipo`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("comment stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.CommentStats{ByType: make(map[domain.CommentType]int)}
	for rows.Next() {
		var t domain.CommentType
		var total, recent int
		if err := rows.Scan(&t, &total, &recent); err != nil {
			return nil, fmt.Errorf("scan comment stats: %w", err)
		}
		stats.ByType[t] = total
		stats.Total += total
		stats.LastWeek += recent
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment stats: %w", err)
	}
	return stats, nil
}
