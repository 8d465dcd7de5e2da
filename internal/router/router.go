package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prepkit/ielts-backend/internal/config"
	"github.com/prepkit/ielts-backend/internal/handler"
	"github.com/prepkit/ielts-backend/internal/middleware"
	"github.com/prepkit/ielts-backend/internal/model"
	"github.com/prepkit/ielts-backend/internal/response"
	"github.com/prepkit/ielts-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Portal *handler.PortalHandler
	WS     *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Every response carries request metadata.
	router.Use(response.RequestIDMiddleware())

	// Compress large bodies (papers, results) when the client supports it.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.GetProfile)
	}

	// ─── 2. Portal Group (Student JWT + Single Device) ─────────────────
	portalAPI := router.Group("/api/v1/portal")
	portalAPI.Use(
		middleware.RequireJWT(authService),
		middleware.RequireRole(model.RoleUser),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		portalAPI.GET("/tests", handlers.Portal.GetLobby)
		portalAPI.POST("/tests/:test_id/start", handlers.Portal.StartTest)
		portalAPI.GET("/tests/:test_id/paper",
			middleware.CacheControl(300),
			handlers.Portal.GetPaper,
		)
		portalAPI.GET("/tests/:test_id/session", handlers.Portal.GetSession)
		portalAPI.POST("/tests/:test_id/session/answer", handlers.Portal.RecordAnswer)
		portalAPI.POST("/tests/:test_id/session/advance", handlers.Portal.Advance)
		portalAPI.POST("/tests/:test_id/session/retreat", handlers.Portal.Retreat)
		portalAPI.POST("/tests/:test_id/session/resume", handlers.Portal.Resume)
		portalAPI.GET("/tests/:test_id/session/review", handlers.Portal.GetReview)
		portalAPI.POST("/tests/:test_id/submit", handlers.Portal.Submit)

		portalAPI.GET("/results", handlers.Portal.ListResults)
		portalAPI.GET("/results/:result_id", handlers.Portal.GetResult)
	}

	// ─── 3. WebSocket Group (Query-Token Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireWSAuth(authService),
		middleware.RequireRole(model.RoleUser),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/portal/tests/:test_id/stream", handlers.WS.TestStream)
	}

	return router
}
