package httptransport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/transport/http/handler"
	"github.com/kipusaplus/kipus-api/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

const (
	healthPath = "/api/health"
	readyPath  = "/api/health/ready"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Location   *handler.LocationHandler
	Dwelling   *handler.DwellingHandler
	Evaluation *handler.EvaluationHandler
	Feedback   *handler.FeedbackHandler
	Admin      *handler.AdminHandler
	Catalog    *handler.CatalogHandler
	Liveness   http.Handler
	Readiness  http.Handler
}

type RouterConfig struct {
	Tokens      middleware.TokenVerifier
	CORSOrigins []string
	// Limiter is nil when Redis is not configured; auth routes then run
	// without rate limiting.
	Limiter middleware.Allower
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty means the socket address is the client IP.
	TrustedProxies []string
}

func NewRouter(logger *slog.Logger, cfg RouterConfig, h Handlers) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics(healthPath, readyPath))

	limit := func(scope string) gin.HandlerFunc {
		if cfg.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimit(cfg.Limiter, scope, logger)
	}
	// A second bucket per target account, so spreading guesses over many
	// addresses does not reset the count.
	limitEmail := func(scope string) gin.HandlerFunc {
		if cfg.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimitBy(cfg.Limiter, scope, middleware.BodyEmail, logger)
	}
	authMW := middleware.Authenticate(cfg.Tokens)

	api := r.Group("/api")

	r.GET(healthPath, gin.WrapH(h.Liveness))
	r.GET(readyPath, gin.WrapH(h.Readiness))

	auth := api.Group("/auth")
	auth.POST("/registro", h.Auth.Register)
	auth.POST("/login", limit("login"), h.Auth.Login)
	auth.GET("/perfil", authMW, h.Auth.Profile)
	auth.POST("/verificar-token", authMW, h.Auth.VerifyToken)
	auth.POST("/solicitar-reset-password", limit("reset_request"), h.Auth.RequestReset)
	auth.POST("/verificar-codigo", limit("reset_verify"), limitEmail("reset_verify_email"), h.Auth.VerifyCode)
	auth.POST("/cambiar-password", h.Auth.ChangePassword)

	loc := api.Group("/ubicacion")
	loc.GET("/regiones", h.Location.Regions)
	loc.GET("/comunas", h.Location.Communes)
	loc.GET("/comunas/region/:regionId", h.Location.CommunesByRegion)

	dwelling := api.Group("/vivienda", authMW)
	dwelling.GET("/datos", h.Dwelling.Get)
	dwelling.POST("/crear", h.Dwelling.Create)
	dwelling.PUT("/actualizar-personas", h.Dwelling.UpdateOccupants)
	dwelling.PUT("/actualizar-superficies", h.Dwelling.UpdateAreas)

	heating := api.Group("/evaluaciones", authMW)
	heating.POST("/guardar", h.Evaluation.SaveHeating)
	heating.GET("/mis-evaluaciones", h.Evaluation.ListHeating)
	heating.GET("/estadisticas/generales", h.Evaluation.HeatingStats)
	heating.GET("/:id", h.Evaluation.GetHeating)
	heating.DELETE("/:id", h.Evaluation.DeleteHeating)

	water := api.Group("/evaluacion-agua", authMW)
	water.POST("/guardar", h.Evaluation.SaveWater)
	water.GET("/mis-evaluaciones", h.Evaluation.ListWater)
	water.GET("/:id", h.Evaluation.GetWater)
	water.DELETE("/:id", h.Evaluation.DeleteWater)

	api.POST("/comentarios", authMW, h.Feedback.CreateComment)

	ratings := api.Group("/valoraciones")
	ratings.GET("/estadisticas", h.Feedback.RatingStats)
	ratings.POST("", authMW, h.Feedback.Rate)
	ratings.GET("/mi-valoracion-hoy", authMW, h.Feedback.TodayRating)

	api.GET("/materiales/sistemas-calefaccion", h.Catalog.List(domain.CatalogFuel))
	sol := api.Group("/soluciones")
	sol.GET("/muro", h.Catalog.List(domain.CatalogWall))
	sol.GET("/techo", h.Catalog.List(domain.CatalogRoof))
	sol.GET("/ventana", h.Catalog.List(domain.CatalogWindow))

	admin := api.Group("/admin", authMW, middleware.RequireAdmin())
	admin.GET("/usuarios", h.Admin.ListUsers)
	admin.PUT("/usuarios/:id", h.Admin.UpdateUser)
	admin.DELETE("/usuarios/:id", h.Admin.DeleteUser)
	admin.GET("/comentarios", h.Admin.Comments)
	admin.GET("/valoraciones", h.Admin.Ratings)
	admin.GET("/estadisticas", h.Admin.SystemStats)
	admin.GET("/estadisticas/usuarios-region", h.Admin.UsersByRegion)
	admin.GET("/estadisticas/evaluaciones-tipo", h.Admin.EvaluationsByType)
	admin.GET("/estadisticas/ahorro-promedio", h.Admin.AverageSavings)
	admin.GET("/estadisticas/valoraciones-distribucion", h.Admin.RatingDistribution)
	admin.GET("/estadisticas/dashboard", h.Admin.Dashboard)
	admin.GET("/tablas/:tabla", h.Admin.ListTable)
	admin.POST("/tablas/:tabla", h.Admin.CreateTableRow)
	admin.PUT("/tablas/:tabla/:id", h.Admin.UpdateTableRow)
	admin.DELETE("/tablas/:tabla/:id", h.Admin.DeleteTableRow)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Ruta no encontrada"})
	})

	return r, nil
}
