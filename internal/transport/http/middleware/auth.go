package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
	kipuslog "github.com/kipusaplus/kipus-api/internal/log"
)

const identityKey = "identity"

const (
	errMissingToken = "Token no proporcionado"
	errTokenInvalid = "Token inválido"
	errTokenExpired = "Token expirado"
	errWrongPurpose = "Token no válido para esta operación"
	errForbidden    = "Acceso denegado: se requieren permisos de administrador"
)

// TokenVerifier is the part of token.Service the guard needs.
type TokenVerifier interface {
	VerifyPurpose(raw string, want domain.TokenPurpose) (*domain.Identity, error)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

// Authenticate requires a Bearer session token and stores the caller's
// identity in the gin context. Reset tokens are refused here.
func Authenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			abort(c, http.StatusUnauthorized, errMissingToken)
			return
		}

		id, err := tokens.VerifyPurpose(raw, domain.PurposeSession)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				abort(c, http.StatusUnauthorized, errTokenExpired)
			case errors.Is(err, domain.ErrWrongTokenPurpose):
				abort(c, http.StatusUnauthorized, errWrongPurpose)
			default:
				abort(c, http.StatusUnauthorized, errTokenInvalid)
			}
			return
		}

		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(kipuslog.WithUserID(c.Request.Context(), id.UserID))
		c.Next()
	}
}

// RequireAdmin runs after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok || !id.IsAdmin() {
			abort(c, http.StatusForbidden, errForbidden)
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity Authenticate stored, if any.
func IdentityFrom(c *gin.Context) (*domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*domain.Identity)
	return id, ok
}
