package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

type LocationRepository struct {
	db DB
}

func NewLocationRepository(db DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Regions(ctx context.Context) ([]domain.Region, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nombre FROM region ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	regions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Region, error) {
		var reg domain.Region
		err := row.Scan(&reg.ID, &reg.Name)
		return reg, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan regions: %w", err)
	}
	return regions, nil
}

func (r *LocationRepository) Communes(ctx context.Context) ([]domain.Commune, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nombre, id_region FROM comuna ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("list communes: %w", err)
	}
	return collectCommunes(rows)
}

func (r *LocationRepository) CommunesByRegion(ctx context.Context, regionID int64) ([]domain.Commune, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, nombre, id_region FROM comuna WHERE id_region = $1 ORDER BY nombre`,
		regionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list communes by region: %w", err)
	}
	return collectCommunes(rows)
}

func collectCommunes(rows pgx.Rows) ([]domain.Commune, error) {
	communes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Commune, error) {
		var c domain.Commune
		err := row.Scan(&c.ID, &c.Name, &c.RegionID)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan communes: %w", err)
	}
	return communes, nil
}
