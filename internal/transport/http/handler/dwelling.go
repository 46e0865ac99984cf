package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/transport/http/middleware"
)

type dwellingUsecaser interface {
	Get(ctx context.Context, userID int64) (*domain.Dwelling, error)
	Create(ctx context.Context, nd domain.NewDwelling) (*domain.Dwelling, error)
	UpdateOccupants(ctx context.Context, userID int64, occupants int) (*domain.Dwelling, error)
	UpdateAreas(ctx context.Context, userID int64, area1, area2 float64) (*domain.Dwelling, error)
}

type DwellingHandler struct {
	uc   dwellingUsecaser
	resp *Responder
}

func NewDwellingHandler(uc dwellingUsecaser, resp *Responder) *DwellingHandler {
	return &DwellingHandler{uc: uc, resp: resp}
}

// GET /api/vivienda/datos
func (h *DwellingHandler) Get(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	d, err := h.uc.Get(c.Request.Context(), id.UserID)
	if err != nil {
		h.resp.Error(c, "get dwelling", err)
		return
	}
	ok(c, http.StatusOK, toDwelling(d))
}

type createDwellingRequest struct {
	Region    string  `json:"region"            binding:"required"`
	Commune   string  `json:"comuna"            binding:"required"`
	Occupants int     `json:"cantidad_personas" binding:"gte=1"`
	Area1     float64 `json:"superficie_1"      binding:"gt=0"`
	Area2     float64 `json:"superficie_2"      binding:"gte=0"`
}

// POST /api/vivienda/crear
func (h *DwellingHandler) Create(c *gin.Context) {
	var req createDwellingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}
	id, _ := middleware.IdentityFrom(c)
	d, err := h.uc.Create(c.Request.Context(), domain.NewDwelling{
		UserID:    id.UserID,
		Region:    req.Region,
		Commune:   req.Commune,
		Occupants: req.Occupants,
		Area1:     req.Area1,
		Area2:     req.Area2,
	})
	if err != nil {
		h.resp.Error(c, "create dwelling", err)
		return
	}
	okMessage(c, http.StatusCreated, msgDwellingCreated, toDwelling(d))
}

type occupantsRequest struct {
	Occupants int `json:"cantidad_personas" binding:"gte=1"`
}

// PUT /api/vivienda/actualizar-personas
func (h *DwellingHandler) UpdateOccupants(c *gin.Context) {
	var req occupantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}
	id, _ := middleware.IdentityFrom(c)
	d, err := h.uc.UpdateOccupants(c.Request.Context(), id.UserID, req.Occupants)
	if err != nil {
		h.resp.Error(c, "update occupants", err)
		return
	}
	ok(c, http.StatusOK, toDwelling(d))
}

type areasRequest struct {
	Area1 float64 `json:"superficie_1" binding:"gt=0"`
	Area2 float64 `json:"superficie_2" binding:"gte=0"`
}

// PUT /api/vivienda/actualizar-superficies
func (h *DwellingHandler) UpdateAreas(c *gin.Context) {
	var req areasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}
	id, _ := middleware.IdentityFrom(c)
	d, err := h.uc.UpdateAreas(c.Request.Context(), id.UserID, req.Area1, req.Area2)
	if err != nil {
		h.resp.Error(c, "update areas", err)
		return
	}
	ok(c, http.StatusOK, toDwelling(d))
}
