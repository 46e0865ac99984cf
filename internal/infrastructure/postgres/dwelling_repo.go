package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

type DwellingRepository struct {
	db     DB
	logger *slog.Logger
}

func NewDwellingRepository(db DB, logger *slog.Logger) *DwellingRepository {
	return &DwellingRepository{db: db, logger: logger.With("component", "dwelling_repo")}
}

// A user normally has one dwelling. Should older rows exist, the newest wins.
const dwellingSelect = `
	SELECT v.id_vivienda, v.id_usuario, v.region, v.comuna, c.nombre,
	       v.cantidad_personas, v.superficie_1, v.superficie_2
	FROM vivienda v
	JOIN comuna c ON c.id = v.comuna`

func (r *DwellingRepository) GetByUser(ctx context.Context, userID int64) (*domain.Dwelling, error) {
	return scanDwelling(r.db.QueryRow(ctx,
		dwellingSelect+` WHERE v.id_usuario = $1 ORDER BY v.id_vivienda DESC LIMIT 1`,
		userID,
	))
}

// Create locks the owner's row so two concurrent creates cannot both pass the
// existence check.
func (r *DwellingRepository) Create(ctx context.Context, nd domain.NewDwelling) (d *domain.Dwelling, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error("rollback dwelling create", "error", rbErr)
			}
		}
	}()

	var owner int64
	err = tx.QueryRow(ctx, `SELECT id FROM usuario WHERE id = $1 FOR UPDATE`, nd.UserID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		err = domain.ErrUserNotFound
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}

	var exists bool
	if err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM vivienda WHERE id_usuario = $1)`,
		nd.UserID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check dwelling: %w", err)
	}
	if exists {
		err = domain.ErrDwellingExists
		return nil, err
	}

	regionName, communeID, err := resolveCommune(ctx, tx, nd.Region, nd.Commune)
	if err != nil {
		return nil, err
	}

	var id int64
	if err = tx.QueryRow(ctx, `
		INSERT INTO vivienda (id_usuario, region, comuna, cantidad_personas, superficie_1, superficie_2)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_vivienda`,
		nd.UserID, regionName, communeID, nd.Occupants, nd.Area1, nd.Area2,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert dwelling: %w", err)
	}

	d, err = scanDwelling(tx.QueryRow(ctx, dwellingSelect+` WHERE v.id_vivienda = $1`, id))
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return d, nil
}

func (r *DwellingRepository) UpdateOccupants(ctx context.Context, userID int64, occupants int) (*domain.Dwelling, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE vivienda SET cantidad_personas = $2 WHERE id_usuario = $1`,
		userID, occupants,
	)
	if err != nil {
		return nil, fmt.Errorf("update occupants: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrDwellingNotFound
	}
	return r.GetByUser(ctx, userID)
}

func (r *DwellingRepository) UpdateAreas(ctx context.Context, userID int64, area1, area2 float64) (*domain.Dwelling, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE vivienda SET superficie_1 = $2, superficie_2 = $3 WHERE id_usuario = $1`,
		userID, area1, area2,
	)
	if err != nil {
		return nil, fmt.Errorf("update areas: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrDwellingNotFound
	}
	return r.GetByUser(ctx, userID)
}

func scanDwelling(row rowScanner) (*domain.Dwelling, error) {
	var d domain.Dwelling
	err := row.Scan(&d.ID, &d.UserID, &d.Region, &d.CommuneID, &d.CommuneName,
		&d.Occupants, &d.Area1, &d.Area2)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDwellingNotFound
		}
		return nil, fmt.Errorf("scan dwelling: %w", err)
	}
	return &d, nil
}
