package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/transport/http/middleware"
)

type feedbackUsecaser interface {
	CreateComment(ctx context.Context, userID int64, kind domain.CommentType, message string) (*domain.Comment, error)
	Rate(ctx context.Context, userID int64, value int, feedback string) (*domain.Rating, error)
	TodayRating(ctx context.Context, userID int64) (*domain.Rating, error)
	RatingStats(ctx context.Context) (*domain.RatingStats, error)
}

type FeedbackHandler struct {
	uc   feedbackUsecaser
	resp *Responder
}

func NewFeedbackHandler(uc feedbackUsecaser, resp *Responder) *FeedbackHandler {
	return &FeedbackHandler{uc: uc, resp: resp}
}

type commentRequest struct {
	Type    domain.CommentType `json:"tipoComentario" binding:"required,oneof=sugerencia problema mejora felicitacion otro"`
	Message string             `json:"mensaje"        binding:"required,max=2000"`
}

// POST /api/comentarios
func (h *FeedbackHandler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}
	id, _ := middleware.IdentityFrom(c)

	comment, err := h.uc.CreateComment(c.Request.Context(), id.UserID, req.Type, req.Message)
	if err != nil {
		h.resp.Error(c, "create comment", err)
		return
	}
	ok(c, http.StatusCreated, toComment(comment))
}

type ratingRequest struct {
	Value    int    `json:"puntuacion" binding:"min=1,max=5"`
	Feedback string `json:"feedback"   binding:"required"`
}

// POST /api/valoraciones
func (h *FeedbackHandler) Rate(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}
	id, _ := middleware.IdentityFrom(c)

	r, err := h.uc.Rate(c.Request.Context(), id.UserID, req.Value, req.Feedback)
	if err != nil {
		h.resp.Error(c, "create rating", err)
		return
	}
	ok(c, http.StatusCreated, toRating(r))
}

// GET /api/valoraciones/mi-valoracion-hoy
func (h *FeedbackHandler) TodayRating(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	r, err := h.uc.TodayRating(c.Request.Context(), id.UserID)
	if err != nil {
		h.resp.Error(c, "today rating", err)
		return
	}
	if r == nil {
		ok(c, http.StatusOK, gin.H{"ya_valoro": false})
		return
	}
	ok(c, http.StatusOK, gin.H{"ya_valoro": true, "valoracion": toRating(r)})
}

// GET /api/valoraciones/estadisticas
func (h *FeedbackHandler) RatingStats(c *gin.Context) {
	s, err := h.uc.RatingStats(c.Request.Context())
	if err != nil {
		h.resp.Error(c, "rating stats", err)
		return
	}
	ok(c, http.StatusOK, toRatingStats(s))
}
