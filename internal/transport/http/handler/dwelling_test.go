package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/token"
	"github.com/kipusaplus/kipus-api/internal/transport/http/handler"
	"github.com/kipusaplus/kipus-api/internal/transport/http/middleware"
)

// newUserEngine returns an engine, an /api group behind Authenticate and a
// session token for regular user 9.
func newUserEngine(t *testing.T) (*gin.Engine, *gin.RouterGroup, string) {
	t.Helper()
	tokens := token.NewService(adminKey, nil)
	tok, err := tokens.IssueSession(9, "vecina@kipus.cl", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	r := gin.New()
	return r, r.Group("/api", middleware.Authenticate(tokens)), tok
}

type fakeDwellingUsecase struct {
	get             func(ctx context.Context, userID int64) (*domain.Dwelling, error)
	create          func(ctx context.Context, nd domain.NewDwelling) (*domain.Dwelling, error)
	updateOccupants func(ctx context.Context, userID int64, occupants int) (*domain.Dwelling, error)
}

func (f *fakeDwellingUsecase) Get(ctx context.Context, userID int64) (*domain.Dwelling, error) {
	return f.get(ctx, userID)
}

func (f *fakeDwellingUsecase) Create(ctx context.Context, nd domain.NewDwelling) (*domain.Dwelling, error) {
	return f.create(ctx, nd)
}

func (f *fakeDwellingUsecase) UpdateOccupants(ctx context.Context, userID int64, occupants int) (*domain.Dwelling, error) {
	return f.updateOccupants(ctx, userID, occupants)
}

func (f *fakeDwellingUsecase) UpdateAreas(context.Context, int64, float64, float64) (*domain.Dwelling, error) {
	return &domain.Dwelling{}, nil
}

func newDwellingEngine(t *testing.T, uc *fakeDwellingUsecase) (*gin.Engine, string) {
	t.Helper()
	r, api, tok := newUserEngine(t)
	h := handler.NewDwellingHandler(uc, handler.NewResponder(discard, false))
	api.GET("/vivienda/datos", h.Get)
	api.POST("/vivienda/crear", h.Create)
	api.PUT("/vivienda/actualizar-personas", h.UpdateOccupants)
	return r, tok
}

func TestDwelling_CreateUsesCaller(t *testing.T) {
	var got domain.NewDwelling
	uc := &fakeDwellingUsecase{
		create: func(_ context.Context, nd domain.NewDwelling) (*domain.Dwelling, error) {
			got = nd
			return &domain.Dwelling{ID: 3, UserID: nd.UserID, Region: nd.Region, CommuneName: nd.Commune, Occupants: nd.Occupants}, nil
		},
	}
	r, tok := newDwellingEngine(t, uc)

	w := send(r, http.MethodPost, "/api/vivienda/crear", tok,
		`{"region":"Maule","comuna":"Talca","cantidad_personas":4,"superficie_1":60,"superficie_2":0}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body)
	}
	want := domain.NewDwelling{UserID: 9, Region: "Maule", Commune: "Talca", Occupants: 4, Area1: 60}
	if got != want {
		t.Errorf("usecase got %+v, want %+v", got, want)
	}
	var body struct {
		Data struct {
			ID int64 `json:"id_vivienda"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Data.ID != 3 {
		t.Errorf("id_vivienda = %d, want 3", body.Data.ID)
	}
}

func TestDwelling_CreateRejectsBadBody(t *testing.T) {
	bodies := map[string]string{
		"missing region":  `{"comuna":"Talca","cantidad_personas":4,"superficie_1":60}`,
		"no occupants":    `{"region":"Maule","comuna":"Talca","cantidad_personas":0,"superficie_1":60}`,
		"zero area":       `{"region":"Maule","comuna":"Talca","cantidad_personas":4,"superficie_1":0}`,
		"negative area 2": `{"region":"Maule","comuna":"Talca","cantidad_personas":4,"superficie_1":60,"superficie_2":-1}`,
		"not json":        `region=Maule`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			uc := &fakeDwellingUsecase{
				create: func(context.Context, domain.NewDwelling) (*domain.Dwelling, error) {
					t.Error("usecase called with invalid body")
					return nil, nil
				},
			}
			r, tok := newDwellingEngine(t, uc)

			w := send(r, http.MethodPost, "/api/vivienda/crear", tok, body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body)
			}
		})
	}
}

func TestDwelling_CreateSecondDwelling(t *testing.T) {
	uc := &fakeDwellingUsecase{
		create: func(context.Context, domain.NewDwelling) (*domain.Dwelling, error) {
			return nil, domain.ErrDwellingExists
		},
	}
	r, tok := newDwellingEngine(t, uc)

	w := send(r, http.MethodPost, "/api/vivienda/crear", tok,
		`{"region":"Maule","comuna":"Talca","cantidad_personas":4,"superficie_1":60}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDwelling_GetMissingIs404(t *testing.T) {
	uc := &fakeDwellingUsecase{
		get: func(_ context.Context, userID int64) (*domain.Dwelling, error) {
			if userID != 9 {
				t.Errorf("userID = %d, want 9", userID)
			}
			return nil, domain.ErrDwellingNotFound
		},
	}
	r, tok := newDwellingEngine(t, uc)

	w := send(r, http.MethodGet, "/api/vivienda/datos", tok, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDwelling_UpdateOccupantsNeedsOne(t *testing.T) {
	uc := &fakeDwellingUsecase{
		updateOccupants: func(context.Context, int64, int) (*domain.Dwelling, error) {
			t.Error("usecase called with zero occupants")
			return nil, nil
		},
	}
	r, tok := newDwellingEngine(t, uc)

	w := send(r, http.MethodPut, "/api/vivienda/actualizar-personas", tok, `{"cantidad_personas":0}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDwelling_RequiresSession(t *testing.T) {
	r, _ := newDwellingEngine(t, &fakeDwellingUsecase{})

	w := send(r, http.MethodGet, "/api/vivienda/datos", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
