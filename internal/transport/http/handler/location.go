package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

type locationUsecaser interface {
	Regions(ctx context.Context) ([]domain.Region, error)
	Communes(ctx context.Context) ([]domain.Commune, error)
	CommunesByRegion(ctx context.Context, regionID int64) ([]domain.Commune, error)
}

type LocationHandler struct {
	uc   locationUsecaser
	resp *Responder
}

func NewLocationHandler(uc locationUsecaser, resp *Responder) *LocationHandler {
	return &LocationHandler{uc: uc, resp: resp}
}

func toRegion(r domain.Region) regionResponse { return regionResponse{ID: r.ID, Name: r.Name} }

func toCommune(c domain.Commune) communeResponse {
	return communeResponse{ID: c.ID, Name: c.Name, RegionID: c.RegionID}
}

// GET /api/ubicacion/regiones
func (h *LocationHandler) Regions(c *gin.Context) {
	regions, err := h.uc.Regions(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "list regions", err)
		return
	}
	ok(c, http.StatusOK, mapSlice(regions, toRegion))
}

// GET /api/ubicacion/comunas
func (h *LocationHandler) Communes(c *gin.Context) {
	communes, err := h.uc.Communes(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "list communes", err)
		return
	}
	ok(c, http.StatusOK, mapSlice(communes, toCommune))
}

// GET /api/ubicacion/comunas/region/:regionId
func (h *LocationHandler) CommunesByRegion(c *gin.Context) {
	regionID, valid := pathID(c, "regionId")
	if !valid {
		return
	}
	communes, err := h.uc.CommunesByRegion(c.Request.Context(), regionID)
	if err != nil {
		h.resp.Error(c, "list communes by region", err)
		return
	}
	ok(c, http.StatusOK, mapSlice(communes, toCommune))
}
