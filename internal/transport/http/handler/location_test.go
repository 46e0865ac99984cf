package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/transport/http/handler"
)

type fakeLocationUsecase struct {
	communesByRegion func(ctx context.Context, regionID int64) ([]domain.Commune, error)
}

func (f *fakeLocationUsecase) Regions(context.Context) ([]domain.Region, error) {
	return []domain.Region{{ID: 7, Name: "Maule"}}, nil
}

func (f *fakeLocationUsecase) Communes(context.Context) ([]domain.Commune, error) {
	return nil, errors.New("connection reset")
}

func (f *fakeLocationUsecase) CommunesByRegion(ctx context.Context, regionID int64) ([]domain.Commune, error) {
	return f.communesByRegion(ctx, regionID)
}

func newLocationEngine(uc *fakeLocationUsecase) *gin.Engine {
	h := handler.NewLocationHandler(uc, handler.NewResponder(discard, false))
	r := gin.New()
	loc := r.Group("/api/ubicacion")
	loc.GET("/regiones", h.Regions)
	loc.GET("/comunas", h.Communes)
	loc.GET("/comunas/region/:regionId", h.CommunesByRegion)
	return r
}

func TestLocation_CommunesByRegion(t *testing.T) {
	uc := &fakeLocationUsecase{
		communesByRegion: func(_ context.Context, regionID int64) ([]domain.Commune, error) {
			return []domain.Commune{{ID: 101, Name: "Talca", RegionID: regionID}}, nil
		},
	}
	r := newLocationEngine(uc)

	w := send(r, http.MethodGet, "/api/ubicacion/comunas/region/7", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Data []struct {
			ID       int64  `json:"id"`
			Name     string `json:"nombre"`
			RegionID int64  `json:"id_region"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data) != 1 || body.Data[0].Name != "Talca" || body.Data[0].RegionID != 7 {
		t.Errorf("data = %+v", body.Data)
	}
}

func TestLocation_CommunesByRegionBadID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3", "1.5"} {
		t.Run(id, func(t *testing.T) {
			uc := &fakeLocationUsecase{
				communesByRegion: func(context.Context, int64) ([]domain.Commune, error) {
					t.Error("usecase called with bad id")
					return nil, nil
				},
			}
			w := send(newLocationEngine(uc), http.MethodGet, "/api/ubicacion/comunas/region/"+id, "", "")
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestLocation_EmptyListIsArray(t *testing.T) {
	uc := &fakeLocationUsecase{
		communesByRegion: func(context.Context, int64) ([]domain.Commune, error) { return nil, nil },
	}
	w := send(newLocationEngine(uc), http.MethodGet, "/api/ubicacion/comunas/region/99", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if string(body["data"]) != "[]" {
		t.Errorf("data = %s, want []", body["data"])
	}
}

func TestLocation_RepositoryFailureIs500(t *testing.T) {
	w := send(newLocationEngine(&fakeLocationUsecase{}), http.MethodGet, "/api/ubicacion/comunas", "", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestLocation_Regions(t *testing.T) {
	w := send(newLocationEngine(&fakeLocationUsecase{}), http.MethodGet, "/api/ubicacion/regiones", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Data []struct {
			ID   int64  `json:"id"`
			Name string `json:"nombre"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data) != 1 || body.Data[0].ID != 7 {
		t.Errorf("data = %+v", body.Data)
	}
}
