package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/transport/http/middleware"
	"github.com/kipusaplus/kipus-api/internal/usecase"
)

// authUsecaser and resetUsecaser are declared at the point of use so tests can
// inject fakes.
type authUsecaser interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.Session, error)
	Login(ctx context.Context, email, password string) (*usecase.Session, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
}

type resetUsecaser interface {
	Request(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) (string, error)
	Complete(ctx context.Context, rawToken, newPassword string) error
}

type AuthHandler struct {
	auth   authUsecaser
	reset  resetUsecaser
	resp   *Responder
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, reset resetUsecaser, resp *Responder, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		reset:  reset,
		resp:   resp,
		logger: logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Email     string  `json:"email"       binding:"required,email"`
	Password  string  `json:"password"    binding:"required,min=8,max=72"`
	Name      string  `json:"nombre"      binding:"required,max=255"`
	Region    string  `json:"region"      binding:"required"`
	Commune   string  `json:"comuna"      binding:"required"`
	Occupants int     `json:"personas"    binding:"gte=1"`
	Area1     float64 `json:"superficie1" binding:"gt=0"`
	Area2     float64 `json:"superficie2" binding:"gte=0"`
}

// POST /api/auth/registro
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}

	sess, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Region:    req.Region,
		Commune:   req.Commune,
		Occupants: req.Occupants,
		Area1:     req.Area1,
		Area2:     req.Area2,
	})
	if err != nil {
		h.resp.Error(c, "register", err)
		return
	}

	okMessage(c, http.StatusCreated, msgRegistered, sessionResponse{User: toUser(sess.User), Token: sess.Token})
}

type loginRequest struct {
	Email    string `json:"correo"     binding:"required,email"`
	Password string `json:"contraseña" binding:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}

	sess, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.resp.Error(c, "login", err)
		return
	}

	okMessage(c, http.StatusOK, msgLoggedIn, sessionResponse{User: toUser(sess.User), Token: sess.Token})
}

// GET /api/auth/perfil
func (h *AuthHandler) Profile(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)

	user, err := h.auth.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		h.resp.Error(c, "profile", err)
		return
	}
	ok(c, http.StatusOK, toUser(user))
}

// POST /api/auth/verificar-token
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	okMessage(c, http.StatusOK, msgTokenValid, gin.H{
		"id":           id.UserID,
		"correo":       id.Email,
		"tipo_usuario": id.Role,
	})
}

type resetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /api/auth/solicitar-reset-password
// Answers 200 whether or not the email exists.
func (h *AuthHandler) RequestReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}

	if err := h.reset.Request(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.resp.Error(c, "request reset", err)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "request reset", "error", err)
	}

	okMessage(c, http.StatusOK, msgResetRequested, nil)
}

type verifyCodeRequest struct {
	Email string `json:"email"  binding:"required,email"`
	Code  string `json:"codigo" binding:"required"`
}

// POST /api/auth/verificar-codigo
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}

	tok, err := h.reset.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.resp.Error(c, "verify reset code", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgCodeVerified, "token": tok})
}

type changePasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"nuevaPassword" binding:"required,min=8,max=72"`
}

// POST /api/auth/cambiar-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadBody(c, err)
		return
	}

	if err := h.reset.Complete(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.resp.Error(c, "change password", err)
		return
	}

	okMessage(c, http.StatusOK, msgPasswordChanged, nil)
}
