package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/transport/http/middleware"
)

type evaluationUsecaser interface {
	SaveHeating(ctx context.Context, e *domain.HeatingEvaluation) (*domain.HeatingEvaluation, error)
	ListHeating(ctx context.Context, userID int64) ([]*domain.HeatingEvaluation, error)
	GetHeating(ctx context.Context, id, userID int64) (*domain.HeatingEvaluation, error)
	DeleteHeating(ctx context.Context, id, userID int64) error
	HeatingStats(ctx context.Context, userID int64) (*domain.HeatingStats, error)
	SaveWater(ctx context.Context, e *domain.WaterEvaluation) (*domain.WaterEvaluation, error)
	ListWater(ctx context.Context, userID int64) ([]*domain.WaterEvaluation, error)
	GetWater(ctx context.Context, id, userID int64) (*domain.WaterEvaluation, error)
	DeleteWater(ctx context.Context, id, userID int64) error
}

type EvaluationHandler struct {
	uc   evaluationUsecaser
	resp *Responder
}

func NewEvaluationHandler(uc evaluationUsecaser, resp *Responder) *EvaluationHandler {
	return &EvaluationHandler{uc: uc, resp: resp}
}

type heatingRequest struct {
	Area1             float64 `json:"superficie_1"        binding:"gt=0"`
	Area2             float64 `json:"superficie_2"        binding:"gte=0"`
	WindowArea1       float64 `json:"areaVentana1"        binding:"gte=0"`
	WindowArea2       float64 `json:"areaVentana2"        binding:"gte=0"`
	FuelID            int64   `json:"id_combustible"      binding:"gte=1"`
	AnnualConsumption float64 `json:"consumoAnual"        binding:"gt=0"`
	WallSolution1ID   *int64  `json:"id_solucion_muro1"   binding:"omitempty,gte=1"`
	WallSolution2ID   *int64  `json:"id_solucion_muro2"   binding:"omitempty,gte=1"`
	RoofSolutionID    *int64  `json:"id_solucion_techo"   binding:"omitempty,gte=1"`
	WindowSolutionID  *int64  `json:"id_solucion_ventana" binding:"omitempty,gte=1"`
	Efficiency        float64 `json:"eficiencia"`
	Investment        float64 `json:"inversion"`
	AnnualSavings     float64 `json:"ahorroAnual"`
	Payback           float64 `json:"payback"`
	CO2Reduction      float64 `json:"reduccionCo2"`
}

// POST /api/evaluaciones/guardar
func (h *EvaluationHandler) SaveHeating(c *gin.Context) {
	var req heatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}
	id, _ := middleware.IdentityFrom(c)

	saved, err := h.uc.SaveHeating(c.Request.Context(), &domain.HeatingEvaluation{
		UserID:            id.UserID,
		Area1:             req.Area1,
		Area2:             req.Area2,
		WindowArea1:       req.WindowArea1,
		WindowArea2:       req.WindowArea2,
		FuelID:            req.FuelID,
		AnnualConsumption: req.AnnualConsumption,
		WallSolution1ID:   req.WallSolution1ID,
		WallSolution2ID:   req.WallSolution2ID,
		RoofSolutionID:    req.RoofSolutionID,
		WindowSolutionID:  req.WindowSolutionID,
		Efficiency:        req.Efficiency,
		Investment:        req.Investment,
		AnnualSavings:     req.AnnualSavings,
		Payback:           req.Payback,
		CO2Reduction:      req.CO2Reduction,
	})
	if err != nil {
		h.resp.Error(c, "save heating evaluation", err)
		return
	}
	ok(c, http.StatusCreated, toHeating(saved))
}

// GET /api/evaluaciones/mis-evaluaciones
func (h *EvaluationHandler) ListHeating(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	list, err := h.uc.ListHeating(c.Request.Context(), id.UserID)
	if err != nil {
		h.resp.Error(c, "list heating evaluations", err)
		return
	}
	ok(c, http.StatusOK, mapSlice(list, toHeating))
}

// GET /api/evaluaciones/:id
func (h *EvaluationHandler) GetHeating(c *gin.Context) {
	evalID, valid := pathID(c, "id")
	if !valid {
		return
	}
	id, _ := middleware.IdentityFrom(c)
	e, err := h.uc.GetHeating(c.Request.Context(), evalID, id.UserID)
	if err != nil {
		h.resp.Error(c, "get heating evaluation", err)
		return
	}
	ok(c, http.StatusOK, toHeating(e))
}

// DELETE /api/evaluaciones/:id
func (h *EvaluationHandler) DeleteHeating(c *gin.Context) {
	evalID, valid := pathID(c, "id")
	if !valid {
		return
	}
	id, _ := middleware.IdentityFrom(c)
	if err := h.uc.DeleteHeating(c.Request.Context(), evalID, id.UserID); err != nil {
		h.resp.Error(c, "delete heating evaluation", err)
		return
	}
	okMessage(c, http.StatusOK, msgDeleted, nil)
}

// GET /api/evaluaciones/estadisticas/generales
func (h *EvaluationHandler) HeatingStats(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	s, err := h.uc.HeatingStats(c.Request.Context(), id.UserID)
	if err != nil {
		h.resp.Error(c, "heating stats", err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"total_evaluaciones":  s.Total,
		"eficiencia_promedio": s.AvgEfficiency,
		"inversion_promedio":  s.AvgInvestment,
		"ahorro_promedio":     s.AvgSavings,
		"payback_promedio":    s.AvgPayback,
		"co2_promedio":        s.AvgCO2,
	})
}

type waterRequest struct {
	WaterPrice        float64 `json:"precio_agua"             binding:"gt=0"`
	Consumption       int     `json:"consumo_agua_potable"    binding:"gt=0"`
	SewerService      *int    `json:"servicio_alcantarillado"`
	Showers           int     `json:"cantidad_duchas"         binding:"gte=0"`
	Sinks             int     `json:"cantidad_lavamanos"      binding:"gte=0"`
	Toilets           int     `json:"cantidad_wc"             binding:"gte=0"`
	Dishwashers       int     `json:"cantidad_lavaplatos"     binding:"gte=0"`
	ShowerFixture     *int    `json:"medida_ducha"`
	SinkFixture       *int    `json:"medida_lavamanos"`
	ToiletFixture     *int    `json:"medida_wc"`
	DishwasherFixture *int    `json:"medida_lavaplatos"`
	SavingsM3PerMonth float64 `json:"ahorro_m3_mes"`
	SavingsMoney      float64 `json:"ahorro_dinero"`
	Investment        int     `json:"inversion"`
	PaybackMonths     int     `json:"retorno"`
	BathtubEquivalent float64 `json:"equivalente_tinas"`
}

// POST /api/evaluacion-agua/guardar
func (h *EvaluationHandler) SaveWater(c *gin.Context) {
	var req waterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}
	id, _ := middleware.IdentityFrom(c)

	saved, err := h.uc.SaveWater(c.Request.Context(), &domain.WaterEvaluation{
		UserID:            id.UserID,
		WaterPrice:        req.WaterPrice,
		Consumption:       req.Consumption,
		SewerService:      req.SewerService,
		Showers:           req.Showers,
		Sinks:             req.Sinks,
		Toilets:           req.Toilets,
		Dishwashers:       req.Dishwashers,
		ShowerFixture:     req.ShowerFixture,
		SinkFixture:       req.SinkFixture,
		ToiletFixture:     req.ToiletFixture,
		DishwasherFixture: req.DishwasherFixture,
		SavingsM3PerMonth: req.SavingsM3PerMonth,
		SavingsMoney:      req.SavingsMoney,
		Investment:        req.Investment,
		PaybackMonths:     req.PaybackMonths,
		BathtubEquivalent: req.BathtubEquivalent,
	})
	if err != nil {
		h.resp.Error(c, "save water evaluation", err)
		return
	}
	ok(c, http.StatusCreated, toWater(saved))
}

// GET /api/evaluacion-agua/mis-evaluaciones
func (h *EvaluationHandler) ListWater(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	list, err := h.uc.ListWater(c.Request.Context(), id.UserID)
	if err != nil {
		h.resp.Error(c, "list water evaluations", err)
		return
	}
	ok(c, http.StatusOK, mapSlice(list, toWater))
}

// GET /api/evaluacion-agua/:id
func (h *EvaluationHandler) GetWater(c *gin.Context) {
	evalID, valid := pathID(c, "id")
	if !valid {
		return
	}
	id, _ := middleware.IdentityFrom(c)
	e, err := h.uc.GetWater(c.Request.Context(), evalID, id.UserID)
	if err != nil {
		h.resp.Error(c, "get water evaluation", err)
		return
	}
	ok(c, http.StatusOK, toWater(e))
}

// DELETE /api/evaluacion-agua/:id
func (h *EvaluationHandler) DeleteWater(c *gin.Context) {
	evalID, valid := pathID(c, "id")
	if !valid {
		return
	}
	id, _ := middleware.IdentityFrom(c)
	if err := h.uc.DeleteWater(c.Request.Context(), evalID, id.UserID); err != nil {
		h.resp.Error(c, "delete water evaluation", err)
		return
	}
	okMessage(c, http.StatusOK, msgDeleted, nil)
}
