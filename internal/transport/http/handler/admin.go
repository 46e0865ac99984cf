package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/transport/http/middleware"
	"github.com/kipusaplus/kipus-api/internal/usecase"
)

type adminUsecaser interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, actorID, id int64, in usecase.UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
	Comments(ctx context.Context) ([]*domain.Comment, *domain.CommentStats, error)
	Ratings(ctx context.Context) ([]*domain.Rating, *domain.RatingStats, error)
	SystemStats(ctx context.Context) (*domain.SystemStats, error)
	UsersByRegion(ctx context.Context) ([]domain.RegionCount, error)
	EvaluationsByType(ctx context.Context) (*domain.EvaluationCounts, error)
	AverageSavings(ctx context.Context) ([]domain.SavingsAverage, error)
	RatingDistribution(ctx context.Context) ([5]int, error)
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	ListTable(ctx context.Context, name string) (*domain.TableRows, error)
	CreateTableRow(ctx context.Context, actorID int64, name string, body map[string]any) (map[string]any, error)
	UpdateTableRow(ctx context.Context, actorID int64, name string, id int64, body map[string]any) (map[string]any, error)
	DeleteTableRow(ctx context.Context, actorID int64, name string, id int64) error
}

// AdminHandler serves routes behind RequireAdmin.
type AdminHandler struct {
	uc   adminUsecaser
	resp *Responder
}

func NewAdminHandler(uc adminUsecaser, resp *Responder) *AdminHandler {
	return &AdminHandler{uc: uc, resp: resp}
}

// GET /api/admin/usuarios
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "admin list users", err)
		return
	}
	ok(c, http.StatusOK, mapSlice(users, toUser))
}

type updateUserRequest struct {
	Email       *string `json:"correo"           binding:"omitempty,email"`
	Name        *string `json:"nombre_completo"  binding:"omitempty,max=255"`
	Role        *string `json:"tipo_usuario"     binding:"omitempty,oneof=usuario admin"`
	NewPassword *string `json:"nueva_contrasena" binding:"omitempty,min=8,max=72"`
}

// PUT /api/admin/usuarios/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	userID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}
	actor, _ := middleware.IdentityFrom(c)

	u, err := h.uc.UpdateUser(c.Request.Context(), actor.UserID, userID, usecase.UpdateUserInput{
		Email:       req.Email,
		Name:        req.Name,
		Role:        req.Role,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.resp.Error(c, "admin update user", err)
		return
	}
	ok(c, http.StatusOK, toUser(u))
}

// DELETE /api/admin/usuarios/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, valid := pathID(c, "id")
	if !valid {
		return
	}
	actor, _ := middleware.IdentityFrom(c)
	if err := h.uc.DeleteUser(c.Request.Context(), actor.UserID, userID); err != nil {
		h.resp.Error(c, "admin delete user", err)
		return
	}
	okMessage(c, http.StatusOK, msgDeleted, nil)
}

// GET /api/admin/comentarios
func (h *AdminHandler) Comments(c *gin.Context) {
	list, stats, err := h.uc.Comments(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "admin comments", err)
		return
	}
	byType := make(map[string]int, len(stats.ByType))
	for k, v := range stats.ByType {
		byType[string(k)] = v
	}
	ok(c, http.StatusOK, gin.H{
		"comentarios":  mapSlice(list, toComment),
		"estadisticas": gin.H{
			"total":         stats.Total,
			"por_tipo":      byType,
			"ultima_semana": stats.LastWeek,
		},
	})
}

// GET /api/admin/valoraciones
func (h *AdminHandler) Ratings(c *gin.Context) {
	list, stats, err := h.uc.Ratings(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "admin ratings", err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"valoraciones": mapSlice(list, toRating),
		"estadisticas": toRatingStats(stats),
	})
}

// GET /api/admin/estadisticas
func (h *AdminHandler) SystemStats(c *gin.Context) {
	s, err := h.uc.SystemStats(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "admin system stats", err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"usuarios": gin.H{
			"total":         s.Users.Total,
			"admins":        s.Users.Admins,
			"regulares":     s.Users.Regular,
			"ultima_semana": s.Users.LastWeek,
		},
		"comentarios": gin.H{
			"total":         s.Comments.Total,
			"ultima_semana": s.Comments.LastWeek,
		},
		"valoraciones": gin.H{
			"total":         s.Ratings.Total,
			"promedio":      s.Ratings.Average,
			"ultima_semana": s.Ratings.LastWeek,
		},
		"evaluaciones": gin.H{
			"calefaccion": s.Evaluations.Heating,
			"agua":        s.Evaluations.Water,
		},
	})
}

// GET /api/admin/estadisticas/usuarios-region
func (h *AdminHandler) UsersByRegion(c *gin.Context) {
	counts, err := h.uc.UsersByRegion(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "admin users by region", err)
		return
	}
	ok(c, http.StatusOK, mapSlice(counts, toRegionCount))
}

// GET /api/admin/estadisticas/evaluaciones-tipo
func (h *AdminHandler) EvaluationsByType(c *gin.Context) {
	counts, err := h.uc.EvaluationsByType(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "admin evaluations by type", err)
		return
	}
	ok(c, http.StatusOK, toEvaluationCounts(*counts))
}

// GET /api/admin/estadisticas/ahorro-promedio
func (h *AdminHandler) AverageSavings(c *gin.Context) {
	s, err := h.uc.AverageSavings(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "admin average savings", err)
		return
	}
	ok(c, http.StatusOK, mapSlice(s, toSavings))
}

// GET /api/admin/estadisticas/valoraciones-distribucion
func (h *AdminHandler) RatingDistribution(c *gin.Context) {
	dist, err := h.uc.RatingDistribution(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "admin rating distribution", err)
		return
	}
	ok(c, http.StatusOK, dist)
}

// GET /api/admin/estadisticas/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.uc.Dashboard(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "admin dashboard", err)
		return
	}
	months := make([]string, 0, len(d.Signups))
	signups := make([]int64, 0, len(d.Signups))
	for _, m := range d.Signups {
		months = append(months, m.Month)
		signups = append(signups, m.Count)
	}
	measures := mapSlice(d.Measures, func(m domain.MeasureCount) gin.H {
		return gin.H{"medida": m.Measure, "cantidad": m.Count}
	})
	ok(c, http.StatusOK, gin.H{
		"usuariosRegion":           mapSlice(d.UsersByRegion, toRegionCount),
		"evaluacionesTipo":         toEvaluationCounts(d.Evaluations),
		"ahorroPromedio":           mapSlice(d.Savings, toSavings),
		"distribucionValoraciones": d.Ratings,
		"medidasRecomendadas":      measures,
		"adopcion":                 gin.H{"meses": months, "nuevos_usuarios": signups},
	})
}

func toRegionCount(rc domain.RegionCount) gin.H {
	return gin.H{"region": rc.Region, "usuarios": rc.Users}
}

func toEvaluationCounts(c domain.EvaluationCounts) gin.H {
	return gin.H{"calefaccion": c.Heating, "agua": c.Water}
}

func toSavings(s domain.SavingsAverage) gin.H {
	return gin.H{"tipo": s.Kind, "ahorro": s.Average}
}

// GET /api/admin/tablas/:tabla
func (h *AdminHandler) ListTable(c *gin.Context) {
	rows, err := h.uc.ListTable(c.Request.Context(), c.Param("tabla"))
	if err != nil {
		h.resp.Error(c, "admin list table", err)
		return
	}
	ok(c, http.StatusOK, gin.H{"columnas": rows.Columns, "filas": rows.Rows})
}

// decodeRow reads a JSON object with UseNumber so integers survive intact.
func (h *AdminHandler) decodeRow(c *gin.Context) (map[string]any, bool) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.resp.BadBody(c, err)
		return nil, false
	}
	var body map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		h.resp.BadBody(c, err)
		return nil, false
	}
	return body, true
}

// POST /api/admin/tablas/:tabla
func (h *AdminHandler) CreateTableRow(c *gin.Context) {
	body, valid := h.decodeRow(c)
	if !valid {
		return
	}
	actor, _ := middleware.IdentityFrom(c)

	row, err := h.uc.CreateTableRow(c.Request.Context(), actor.UserID, c.Param("tabla"), body)
	if err != nil {
		h.resp.Error(c, "admin create table row", err)
		return
	}
	okMessage(c, http.StatusCreated, msgCreated, row)
}

// PUT /api/admin/tablas/:tabla/:id
func (h *AdminHandler) UpdateTableRow(c *gin.Context) {
	rowID, valid := pathID(c, "id")
	if !valid {
		return
	}
	body, valid := h.decodeRow(c)
	if !valid {
		return
	}
	actor, _ := middleware.IdentityFrom(c)

	row, err := h.uc.UpdateTableRow(c.Request.Context(), actor.UserID, c.Param("tabla"), rowID, body)
	if err != nil {
		h.resp.Error(c, "admin update table row", err)
		return
	}
	ok(c, http.StatusOK, row)
}

// DELETE /api/admin/tablas/:tabla/:id
func (h *AdminHandler) DeleteTableRow(c *gin.Context) {
	rowID, valid := pathID(c, "id")
	if !valid {
		return
	}
	actor, _ := middleware.IdentityFrom(c)
	if err := h.uc.DeleteTableRow(c.Request.Context(), actor.UserID, c.Param("tabla"), rowID); err != nil {
		h.resp.Error(c, "admin delete table row", err)
		return
	}
	okMessage(c, http.StatusOK, msgDeleted, nil)
}
