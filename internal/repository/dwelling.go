package repository

import (
	"context"

	"github.com/kipusaplus/kipus-api/internal/domain"
)

type DwellingRepository interface {
	GetByUser(ctx context.Context, userID int64) (*domain.Dwelling, error)
	// Create fails with ErrDwellingExists when the user already has one.
	Create(ctx context.Context, d domain.NewDwelling) (*domain.Dwelling, error)
	UpdateOccupants(ctx context.Context, userID int64, occupants int) (*domain.Dwelling, error)
	UpdateAreas(ctx context.Context, userID int64, area1, area2 float64) (*domain.Dwelling, error)
}

type LocationRepository interface {
	Regions(ctx context.Context) ([]domain.Region, error)
	Communes(ctx context.Context) ([]domain.Commune, error)
	CommunesByRegion(ctx context.Context, regionID int64) ([]domain.Commune, error)
}

type CatalogRepository interface {
	List(ctx context.Context, c domain.Catalog) ([]domain.CatalogItem, error)
}
