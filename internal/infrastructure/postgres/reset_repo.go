package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

const resetColumns = `id, id_usuario, codigo, estado, fecha_expiracion, fecha_creacion, fecha_actualizacion`

type ResetCodeRepository struct {
	db     DB
	logger *slog.Logger
}

func NewResetCodeRepository(db DB, logger *slog.Logger) *ResetCodeRepository {
	return &ResetCodeRepository{db: db, logger: logger.With("component", "reset_repo")}
}

func (r *ResetCodeRepository) Create(ctx context.Context, userID int64, code string, expiresAt time.Time) (*domain.ResetCode, error) {
	return scanResetCode(r.db.QueryRow(ctx, `
		INSERT INTO codigos_recuperacion (id_usuario, codigo, estado, fecha_expiracion)
		VALUES ($1, $2, $3, $4)
		RETURNING `+resetColumns,
		userID, code, domain.ResetRequested, expiresAt,
	))
}

func (r *ResetCodeRepository) FindRequested(ctx context.Context, userID int64, code string) (*domain.ResetCode, error) {
	return scanResetCode(r.db.QueryRow(ctx, `
		SELECT `+resetColumns+`
		FROM codigos_recuperacion
		WHERE id_usuario = $1 AND codigo = $2 AND estado = $3
		ORDER BY fecha_creacion DESC, id DESC
		LIMIT 1`,
		userID, code, domain.ResetRequested,
	))
}

// Transition is a compare-and-set on estado. Of two concurrent callers moving
// the same attempt out of from, exactly one succeeds.
func (r *ResetCodeRepository) Transition(ctx context.Context, id int64, from, to domain.ResetState) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("illegal reset transition %s -> %s", from, to)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE codigos_recuperacion
		SET estado = $3, fecha_actualizacion = NOW()
		WHERE id = $1 AND estado = $2`,
		id, from, to,
	)
	if err != nil {
		return fmt.Errorf("transition reset code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidResetCode
	}
	return nil
}

func (r *ResetCodeRepository) Complete(ctx context.Context, id, userID int64, passwordHash string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE codigos_recuperacion
		SET estado = $4, fecha_actualizacion = NOW()
		WHERE id = $1 AND id_usuario = $2 AND estado = $3`,
		id, userID, domain.ResetVerified, domain.ResetCompleted,
	)
	if err != nil {
		return fmt.Errorf("complete reset code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrInvalidResetCode
		return err
	}

	tag, err = tx.Exec(ctx, `UPDATE usuario SET contrasena = $2 WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrUserNotFound
		return err
	}

	tag, err = tx.Exec(ctx, `
		UPDATE codigos_recuperacion
		SET estado = $3, fecha_actualizacion = NOW()
		WHERE id_usuario = $1 AND estado = $2`,
		userID, domain.ResetRequested, domain.ResetRevoked,
	)
	if err != nil {
		return fmt.Errorf("revoke outstanding codes: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		r.logger.Info("revoked outstanding reset codes", "user_id", userID, "count", n)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *ResetCodeRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM codigos_recuperacion
		WHERE fecha_expiracion < $1
		   OR (estado <> $2 AND fecha_actualizacion < $1)`,
		cutoff, domain.ResetRequested,
	)
	if err != nil {
		return 0, fmt.Errorf("purge reset codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanResetCode(row rowScanner) (*domain.ResetCode, error) {
	var c domain.ResetCode
	err := row.Scan(&c.ID, &c.UserID, &c.Code, &c.State, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidResetCode
		}
		return nil, fmt.Errorf("scan reset code: %w", err)
	}
	return &c, nil
}
