package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ramgerassy/ace-ai-sub001/internal/config"
	"github.com/ramgerassy/ace-ai-sub001/internal/handler"
	"github.com/ramgerassy/ace-ai-sub001/internal/metrics"
	"github.com/ramgerassy/ace-ai-sub001/internal/middleware"
	"github.com/ramgerassy/ace-ai-sub001/internal/response"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Quiz   *handler.QuizHandler
	System *handler.SystemHandler
}

// Limiters holds one admission gate per named budget.
type Limiters struct {
	Global              middleware.Limiter
	SubjectVerification middleware.Limiter
	QuizGeneration      middleware.Limiter
	QuizReview          middleware.Limiter
}

// SetupRouter configures the engine, global middleware and all routes.
func SetupRouter(handlers *Handlers, limiters *Limiters, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.Recovery())
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.AccessLog(log))
	router.Use(metrics.Middleware())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Brotli())

	// Process health and metrics sit outside the global budget so probes
	// and scrapers are never throttled.
	router.GET("/health", handlers.System.ProcessHealth)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	api.Use(middleware.RateLimit("global", limiters.Global, cfg.GlobalRateLimit, log))
	{
		api.GET("/health", handlers.System.APIHealth)

		subjectGate := middleware.RateLimit("subjectVerification", limiters.SubjectVerification, cfg.SubjectRateLimit, log)
		api.POST("/verify-subject", subjectGate, handlers.Quiz.VerifySubject)
		api.POST("/verify-sub-subject", subjectGate, handlers.Quiz.VerifySubSubject)

		api.POST("/generate-quiz",
			middleware.RateLimit("quizGeneration", limiters.QuizGeneration, cfg.GenerateRateLimit, log),
			handlers.Quiz.GenerateQuiz,
		)
		api.POST("/review-quiz",
			middleware.RateLimit("quizReview", limiters.QuizReview, cfg.ReviewRateLimit, log),
			handlers.Quiz.ReviewQuiz,
		)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		response.Fail(c, http.StatusMethodNotAllowed, response.ErrMethodNotAllowed)
	})

	return router
}
