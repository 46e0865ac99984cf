package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/repository"
)

type DwellingUsecase struct {
	repo repository.DwellingRepository
}

func NewDwellingUsecase(repo repository.DwellingRepository) *DwellingUsecase {
	return &DwellingUsecase{repo: repo}
}

func (u *DwellingUsecase) Get(ctx context.Context, userID int64) (*domain.Dwelling, error) {
	d, err := u.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get dwelling: %w", err)
	}
	return d, nil
}

// Create adds a dwelling for a user who has none, such as an account made
// with kipusctl.
func (u *DwellingUsecase) Create(ctx context.Context, nd domain.NewDwelling) (*domain.Dwelling, error) {
	nd.Region = strings.TrimSpace(nd.Region)
	nd.Commune = strings.TrimSpace(nd.Commune)
	switch {
	case nd.Region == "":
		return nil, domain.Invalid("region", "is required")
	case nd.Commune == "":
		return nil, domain.Invalid("comuna", "is required")
	case nd.Occupants < 1:
		return nil, domain.Invalid("cantidad_personas", "must be at least 1")
	case nd.Area1 <= 0:
		return nil, domain.Invalid("superficie_1", "must be greater than 0")
	case nd.Area2 < 0:
		return nil, domain.Invalid("superficie_2", "must not be negative")
	}

	d, err := u.repo.Create(ctx, nd)
	if err != nil {
		return nil, fmt.Errorf("create dwelling: %w", err)
	}
	return d, nil
}

func (u *DwellingUsecase) UpdateOccupants(ctx context.Context, userID int64, occupants int) (*domain.Dwelling, error) {
	if occupants < 1 {
		return nil, domain.Invalid("cantidad_personas", "must be at least 1")
	}
	d, err := u.repo.UpdateOccupants(ctx, userID, occupants)
	if err != nil {
		return nil, fmt.Errorf("update occupants: %w", err)
	}
	return d, nil
}

func (u *DwellingUsecase) UpdateAreas(ctx context.Context, userID int64, area1, area2 float64) (*domain.Dwelling, error) {
	if area1 <= 0 {
		return nil, domain.Invalid("superficie_1", "must be greater than 0")
	}
	if area2 < 0 {
		return nil, domain.Invalid("superficie_2", "must not be negative")
	}
	d, err := u.repo.UpdateAreas(ctx, userID, area1, area2)
	if err != nil {
		return nil, fmt.Errorf("update areas: %w", err)
	}
	return d, nil
}

type LocationUsecase struct {
	repo repository.LocationRepository
}

func NewLocationUsecase(repo repository.LocationRepository) *LocationUsecase {
	return &LocationUsecase{repo: repo}
}

func (u *LocationUsecase) Regions(ctx context.Context) ([]domain.Region, error) {
	regions, err := u.repo.Regions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return regions, nil
}

func (u *LocationUsecase) Communes(ctx context.Context) ([]domain.Commune, error) {
	communes, err := u.repo.Communes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list communes: %w", err)
	}
	return communes, nil
}

func (u *LocationUsecase) CommunesByRegion(ctx context.Context, regionID int64) ([]domain.Commune, error) {
	if regionID < 1 {
		return nil, domain.Invalid("regionId", "must be a positive integer")
	}
	communes, err := u.repo.CommunesByRegion(ctx, regionID)
	if err != nil {
		return nil, fmt.Errorf("list communes for region %d: %w", regionID, err)
	}
	return communes, nil
}

type CatalogUsecase struct {
	repo repository.CatalogRepository
}

func NewCatalogUsecase(repo repository.CatalogRepository) *CatalogUsecase {
	return &CatalogUsecase{repo: repo}
}

func (u *CatalogUsecase) List(ctx context.Context, c domain.Catalog) ([]domain.CatalogItem, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTable, c)
	}
	items, err := u.repo.List(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	return items, nil
}
