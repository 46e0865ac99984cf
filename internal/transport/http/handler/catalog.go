package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

type catalogUsecaser interface {
	List(ctx context.Context, c domain.Catalog) ([]domain.CatalogItem, error)
}

// CatalogHandler serves the read-only material and solution catalogs the
// evaluation forms are built from.
type CatalogHandler struct {
	uc   catalogUsecaser
	resp *Responder
}

func NewCatalogHandler(uc catalogUsecaser, resp *Responder) *CatalogHandler {
	return &CatalogHandler{uc: uc, resp: resp}
}

type catalogItemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

func toCatalogItem(i domain.CatalogItem) catalogItemResponse {
	return catalogItemResponse{ID: i.ID, Name: i.Name, Description: i.Description}
}

// List returns the active rows of one catalog.
func (h *CatalogHandler) List(catalog domain.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.uc.List(c.Request.Context(), catalog)
		if err != nil {
			h.resp.Error(c, "list "+string(catalog), err)
			return
		}
		ok(c, http.StatusOK, mapSlice(items, toCatalogItem))
	}
}
