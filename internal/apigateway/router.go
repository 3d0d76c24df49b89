// Package apigateway assembles the HTTP surface: route table, CORS policy
// and the auth middleware chain.
package apigateway

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"asr-benchmark-hub/backend/internal/aiservice"
	"asr-benchmark-hub/backend/internal/auth"
	"asr-benchmark-hub/backend/internal/benchmarks"
	"asr-benchmark-hub/backend/internal/datastore"
	"asr-benchmark-hub/backend/internal/posts"
	"asr-benchmark-hub/backend/internal/users"
)

const apiVersion = "1.0.0"

// Deps carries everything the route table needs. AI is nil when no Gemini
// key is configured; its routes then answer 503.
type Deps struct {
	Tokens     *auth.TokenService
	Identities auth.IdentityResolver

	Users      *users.Handler
	Posts      *posts.Handler
	Benchmarks *benchmarks.Handler
	AI         *aiservice.Handler

	AllowedOrigins []string
	Debug          bool
}

// SetupRouter builds the Gin engine with all routes registered.
func SetupRouter(d Deps) *gin.Engine {
	if !d.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "ASR Benchmark Hub API",
			"version":     apiVersion,
			"description": "Backend API for ASR benchmark data management and AI analysis",
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   apiVersion,
		})
	})

	requireAuth := auth.RequireAuth(d.Tokens, d.Identities)
	optionalAuth := auth.OptionalAuth(d.Tokens, d.Identities)

	// Identity and account routes.
	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", d.Users.Register)
		authRoutes.POST("/login", d.Users.Login)
		authRoutes.POST("/refresh", d.Users.Refresh)

		profile := authRoutes.Group("", requireAuth)
		{
			profile.GET("/profile", d.Users.Profile)
			profile.PUT("/profile", d.Users.UpdateProfile)
		}

		admin := authRoutes.Group("", requireAuth, auth.RequireRole(datastore.RoleAdmin))
		{
			admin.GET("/users", d.Users.ListUsers)
			admin.GET("/users/:id", d.Users.GetUser)
			admin.PUT("/users/:id", d.Users.UpdateUser)
			admin.GET("/audit-logs", d.Users.AuditLogs)
			admin.GET("/stats", d.Users.Stats)
		}
	}

	// Blog routes: reading is public, writing needs an editor, deleting an
	// admin.
	postRoutes := router.Group("/api/posts")
	{
		postRoutes.GET("", d.Posts.List)
		postRoutes.GET("/:id", d.Posts.Get)

		editing := postRoutes.Group("", requireAuth, auth.RequireRole(datastore.RoleEditor))
		{
			editing.POST("", d.Posts.Create)
			editing.PUT("/:id", d.Posts.Update)
		}
		postRoutes.DELETE("/:id", requireAuth, auth.RequireRole(datastore.RoleAdmin), d.Posts.Delete)
	}

	// Benchmark routes. Upload works anonymously but attributes rows to the
	// caller when a valid token is presented.
	benchmarkRoutes := router.Group("/api/benchmarks")
	{
		benchmarkRoutes.POST("/upload", optionalAuth, d.Benchmarks.Upload)
		benchmarkRoutes.GET("/dashboard", d.Benchmarks.Dashboard)
	}

	// AI routes need an editor: they spend third-party API quota.
	aiRoutes := router.Group("/api/ai", requireAuth, auth.RequireRole(datastore.RoleEditor))
	{
		if d.AI != nil {
			aiRoutes.POST("/summarize", d.AI.Summarize)
			aiRoutes.POST("/generate-report", d.AI.GenerateReport)
			aiRoutes.POST("/analyze-errors", d.AI.AnalyzeErrors)
			aiRoutes.POST("/compare-models", d.AI.CompareModels)
		} else {
			aiRoutes.POST("/:any", func(c *gin.Context) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service is not configured"})
			})
		}
	}

	return router
}
