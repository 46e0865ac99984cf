package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/repository"
)

const userColumns = `id, correo, nombre_completo, contrasena, tipo_usuario, fecha_registro`

type UserRepository struct {
	db     DB
	logger *slog.Logger
}

func NewUserRepository(db DB, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger.With("component", "user_repo")}
}

// Register runs the whole registration in one transaction: uniqueness check,
// region and commune resolution, then the user and dwelling inserts. Any
// failure rolls everything back.
func (r *UserRepository) Register(ctx context.Context, in repository.RegisterInput) (u *domain.User, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error("rollback registration", "error", rbErr)
			}
		}
	}()

	var exists bool
	if err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM usuario WHERE LOWER(correo) = LOWER($1))`,
		in.Email,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		err = domain.ErrDuplicateEmail
		return nil, err
	}

	regionName, communeID, err := resolveCommune(ctx, tx, in.Region, in.Commune)
	if err != nil {
		return nil, err
	}

	u, err = scanUser(tx.QueryRow(ctx, `
		INSERT INTO usuario (correo, nombre_completo, contrasena, tipo_usuario)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		in.Email, in.Name, in.PasswordHash, domain.RoleUser,
	))
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			err = domain.ErrDuplicateEmail
		}
		return nil, err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO vivienda (id_usuario, region, comuna, cantidad_personas, superficie_1, superficie_2)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, regionName, communeID, in.Occupants, in.Area1, in.Area2,
	); err != nil {
		return nil, fmt.Errorf("insert dwelling: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return u, nil
}

// Create inserts a bare user without a dwelling. Used for operator-created
// accounts such as admins.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := scanUser(r.db.QueryRow(ctx, `
		INSERT INTO usuario (correo, nombre_completo, contrasena, tipo_usuario)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		u.Email, u.Name, u.PasswordHash, u.Role,
	))
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return created, nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// resolveCommune maps a region name and a commune name inside it to the
// stored region name and commune id.
func resolveCommune(ctx context.Context, q rowQuerier, region, commune string) (string, int64, error) {
	var regionID int64
	var regionName string
	err := q.QueryRow(ctx,
		`SELECT id, nombre FROM region WHERE nombre = $1`,
		region,
	).Scan(&regionID, &regionName)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, domain.ErrUnknownRegion
	}
	if err != nil {
		return "", 0, fmt.Errorf("resolve region: %w", err)
	}

	var communeID int64
	err = q.QueryRow(ctx,
		`SELECT id FROM comuna WHERE nombre = $1 AND id_region = $2`,
		commune, regionID,
	).Scan(&communeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, domain.ErrUnknownCommune
	}
	if err != nil {
		return "", 0, fmt.Errorf("resolve commune: %w", err)
	}
	return regionName, communeID, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM usuario WHERE LOWER(correo) = LOWER($1)`,
		email,
	))
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM usuario WHERE id = $1`,
		id,
	))
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM usuario ORDER BY fecha_registro DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Update applies the non-nil fields of patch. Column names are fixed here;
// only values come from the caller.
func (r *UserRepository) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	if patch.Empty() {
		return nil, domain.ErrNothingToWrite
	}

	args := []any{id}
	var sets []string
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Email != nil {
		add("correo", *patch.Email)
	}
	if patch.Name != nil {
		add("nombre_completo", *patch.Name)
	}
	if patch.Role != nil {
		add("tipo_usuario", *patch.Role)
	}
	if patch.PasswordHash != nil {
		add("contrasena", *patch.PasswordHash)
	}

	query := fmt.Sprintf(`UPDATE usuario SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), userColumns)

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM usuario WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
