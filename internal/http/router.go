package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/qbank/internal/auth"
)

// corsMiddleware allows the configured origins to call the API and read
// the progress stream.
func corsMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.EnableHSTS {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	if len(cfg.CORSOrigins) > 0 {
		router.Use(corsMiddleware(cfg.CORSOrigins))
	}

	health := NewHealthController(cfg.Database, cfg.Store, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Taxonomy browse endpoints
	if cfg.Taxonomy != nil {
		subjects := NewSubjectsController(cfg.Taxonomy, cfg.Questions)
		router.GET("/api/subjects", subjects.List)
		if cfg.Questions != nil {
			router.GET("/api/lectures/:id/questions", subjects.LectureQuestions)
		}
	}

	admin := router.Group("/api/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.Handler())
	} else {
		admin.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Import endpoints
	if cfg.Importer != nil {
		importer := NewQuestionImportController(cfg.Importer, cfg.MaxUploadBytes)
		admin.POST("/questions/import", importer.Import)
	}
	if cfg.Sessions != nil {
		progress := NewProgressController(cfg.Sessions, cfg.Evictor, cfg.PollInterval, cfg.Retention)
		admin.GET("/questions/import/progress", progress.Stream)
	}

	// Import history endpoints
	if cfg.Runs != nil {
		history := NewImportHistoryController(cfg.Runs)
		admin.GET("/imports", history.List)
		admin.GET("/imports/:session_id", history.Get)
	}

	// Audit log endpoint
	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		admin.GET("/audit", auditController.ListEvents)
	}

	return router
}
