package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/transport/http/handler"
)

type fakeEvaluationUsecase struct {
	saveHeating func(ctx context.Context, e *domain.HeatingEvaluation) (*domain.HeatingEvaluation, error)
	getHeating  func(ctx context.Context, id, userID int64) (*domain.HeatingEvaluation, error)
	saveWater   func(ctx context.Context, e *domain.WaterEvaluation) (*domain.WaterEvaluation, error)
	deleteWater func(ctx context.Context, id, userID int64) error
}

func (f *fakeEvaluationUsecase) SaveHeating(ctx context.Context, e *domain.HeatingEvaluation) (*domain.HeatingEvaluation, error) {
	return f.saveHeating(ctx, e)
}

func (f *fakeEvaluationUsecase) ListHeating(context.Context, int64) ([]*domain.HeatingEvaluation, error) {
	return nil, nil
}

func (f *fakeEvaluationUsecase) GetHeating(ctx context.Context, id, userID int64) (*domain.HeatingEvaluation, error) {
	return f.getHeating(ctx, id, userID)
}

func (f *fakeEvaluationUsecase) DeleteHeating(context.Context, int64, int64) error { return nil }

func (f *fakeEvaluationUsecase) HeatingStats(context.Context, int64) (*domain.HeatingStats, error) {
	return &domain.HeatingStats{}, nil
}

func (f *fakeEvaluationUsecase) SaveWater(ctx context.Context, e *domain.WaterEvaluation) (*domain.WaterEvaluation, error) {
	return f.saveWater(ctx, e)
}

func (f *fakeEvaluationUsecase) ListWater(context.Context, int64) ([]*domain.WaterEvaluation, error) {
	return nil, nil
}

func (f *fakeEvaluationUsecase) GetWater(context.Context, int64, int64) (*domain.WaterEvaluation, error) {
	return nil, domain.ErrEvaluationNotFound
}

func (f *fakeEvaluationUsecase) DeleteWater(ctx context.Context, id, userID int64) error {
	return f.deleteWater(ctx, id, userID)
}

func newEvaluationEngine(t *testing.T, uc *fakeEvaluationUsecase) (*gin.Engine, string) {
	t.Helper()
	r, api, tok := newUserEngine(t)
	h := handler.NewEvaluationHandler(uc, handler.NewResponder(discard, false))
	api.POST("/evaluaciones/guardar", h.SaveHeating)
	api.GET("/evaluaciones/:id", h.GetHeating)
	api.POST("/evaluacion-agua/guardar", h.SaveWater)
	api.GET("/evaluacion-agua/:id", h.GetWater)
	api.DELETE("/evaluacion-agua/:id", h.DeleteWater)
	return r, tok
}

const validHeatingBody = `{"superficie_1":60,"superficie_2":20,"areaVentana1":4,"areaVentana2":2,` +
	`"id_combustible":2,"consumoAnual":1500,"id_solucion_techo":3,"eficiencia":72.5,` +
	`"inversion":850000,"ahorroAnual":210000,"payback":4.05,"reduccionCo2":1.2}`

func TestEvaluation_SaveHeatingStampsCaller(t *testing.T) {
	var got *domain.HeatingEvaluation
	uc := &fakeEvaluationUsecase{
		saveHeating: func(_ context.Context, e *domain.HeatingEvaluation) (*domain.HeatingEvaluation, error) {
			got = e
			saved := *e
			saved.ID = 41
			return &saved, nil
		},
	}
	r, tok := newEvaluationEngine(t, uc)

	w := send(r, http.MethodPost, "/api/evaluaciones/guardar", tok, validHeatingBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body)
	}
	if got.UserID != 9 || got.FuelID != 2 || got.RoofSolutionID == nil || *got.RoofSolutionID != 3 {
		t.Errorf("usecase got %+v", got)
	}
	if got.WallSolution1ID != nil {
		t.Errorf("absent solution should stay nil, got %d", *got.WallSolution1ID)
	}
}

func TestEvaluation_SaveHeatingRejectsBadBody(t *testing.T) {
	bodies := map[string]string{
		"zero area":       `{"superficie_1":0,"id_combustible":2,"consumoAnual":1500}`,
		"no fuel":         `{"superficie_1":60,"consumoAnual":1500}`,
		"no consumption":  `{"superficie_1":60,"id_combustible":2}`,
		"negative window": `{"superficie_1":60,"id_combustible":2,"consumoAnual":1500,"areaVentana1":-1}`,
		"zero solution":   `{"superficie_1":60,"id_combustible":2,"consumoAnual":1500,"id_solucion_muro1":0}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			uc := &fakeEvaluationUsecase{
				saveHeating: func(context.Context, *domain.HeatingEvaluation) (*domain.HeatingEvaluation, error) {
					t.Error("usecase called with invalid body")
					return nil, nil
				},
			}
			r, tok := newEvaluationEngine(t, uc)

			w := send(r, http.MethodPost, "/api/evaluaciones/guardar", tok, body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body)
			}
		})
	}
}

func TestEvaluation_SaveHeatingDuplicateIs409(t *testing.T) {
	uc := &fakeEvaluationUsecase{
		saveHeating: func(context.Context, *domain.HeatingEvaluation) (*domain.HeatingEvaluation, error) {
			return nil, domain.ErrDuplicateEvaluation
		},
	}
	r, tok := newEvaluationEngine(t, uc)

	w := send(r, http.MethodPost, "/api/evaluaciones/guardar", tok, validHeatingBody)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestEvaluation_GetHeatingOfAnotherUserIs404(t *testing.T) {
	uc := &fakeEvaluationUsecase{
		getHeating: func(_ context.Context, id, userID int64) (*domain.HeatingEvaluation, error) {
			if id != 15 || userID != 9 {
				t.Errorf("id, userID = %d, %d", id, userID)
			}
			return nil, domain.ErrEvaluationNotFound
		},
	}
	r, tok := newEvaluationEngine(t, uc)

	w := send(r, http.MethodGet, "/api/evaluaciones/15", tok, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestEvaluation_SaveWaterRejectsBadBody(t *testing.T) {
	bodies := map[string]string{
		"no price":        `{"consumo_agua_potable":12}`,
		"no consumption":  `{"precio_agua":1.2}`,
		"negative shower": `{"precio_agua":1.2,"consumo_agua_potable":12,"cantidad_duchas":-1}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			uc := &fakeEvaluationUsecase{
				saveWater: func(context.Context, *domain.WaterEvaluation) (*domain.WaterEvaluation, error) {
					t.Error("usecase called with invalid body")
					return nil, nil
				},
			}
			r, tok := newEvaluationEngine(t, uc)

			w := send(r, http.MethodPost, "/api/evaluacion-agua/guardar", tok, body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body)
			}
		})
	}
}

func TestEvaluation_SaveWater(t *testing.T) {
	uc := &fakeEvaluationUsecase{
		saveWater: func(_ context.Context, e *domain.WaterEvaluation) (*domain.WaterEvaluation, error) {
			if e.UserID != 9 || e.Consumption != 12 || e.Showers != 2 {
				t.Errorf("usecase got %+v", e)
			}
			return e, nil
		},
	}
	r, tok := newEvaluationEngine(t, uc)

	w := send(r, http.MethodPost, "/api/evaluacion-agua/guardar", tok,
		`{"precio_agua":1.2,"consumo_agua_potable":12,"cantidad_duchas":2,"medida_ducha":1}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201: %s", w.Code, w.Body)
	}
}

func TestEvaluation_WaterRoutes(t *testing.T) {
	uc := &fakeEvaluationUsecase{
		deleteWater: func(_ context.Context, id, userID int64) error {
			if id != 4 || userID != 9 {
				t.Errorf("id, userID = %d, %d", id, userID)
			}
			return nil
		},
	}
	r, tok := newEvaluationEngine(t, uc)

	if w := send(r, http.MethodGet, "/api/evaluacion-agua/4", tok, ""); w.Code != http.StatusNotFound {
		t.Errorf("get status = %d, want 404", w.Code)
	}
	if w := send(r, http.MethodDelete, "/api/evaluacion-agua/4", tok, ""); w.Code != http.StatusOK {
		t.Errorf("delete status = %d, want 200", w.Code)
	}
	if w := send(r, http.MethodDelete, "/api/evaluacion-agua/x", tok, ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}
