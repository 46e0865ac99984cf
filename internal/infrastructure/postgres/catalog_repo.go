package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

type CatalogRepository struct {
	db DB
}

func NewCatalogRepository(db DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// List returns the active entries of c by name. The table name comes from
// the Catalog constants only.
func (r *CatalogRepository) List(ctx context.Context, c domain.Catalog) ([]domain.CatalogItem, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTable, c)
	}
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT id, nombre, descripcion FROM %s WHERE activo ORDER BY nombre`,
		pgx.Identifier{string(c)}.Sanitize(),
	))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CatalogItem, error) {
		var it domain.CatalogItem
		err := row.Scan(&it.ID, &it.Name, &it.Description)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", c, err)
	}
	return items, nil
}
