package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/resumeiq/skilltest-backend/internal/config"
	"github.com/resumeiq/skilltest-backend/internal/handler"
	"github.com/resumeiq/skilltest-backend/internal/middleware"
	"github.com/resumeiq/skilltest-backend/internal/response"
	"github.com/resumeiq/skilltest-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Resume   *handler.ResumeHandler
	Question *handler.QuestionHandler
	Test     *handler.TestHandler
	WS       *handler.WSHandler
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.ServiceKeyHeader}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for resume uploads (10 per minute per IP); extraction is
	// the most expensive unauthenticated thing this server does.
	uploadLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Resume Group ───────────────────────────────────────────────
	resumes := router.Group("/api/v1/resumes")
	{
		resumes.POST("", uploadLimiter.Middleware(), handlers.Resume.UploadResume)

		// Service-to-service: the question-generation collaborator reads
		// extracted text and pushes generated question sets.
		resumes.GET("/:resume_id", middleware.RequireServiceKey(cfg), handlers.Resume.GetResume)
		resumes.PUT("/:resume_id/questions", middleware.RequireServiceKey(cfg), handlers.Question.IngestQuestions)

		// Candidate-facing paper, answers stripped.
		resumes.GET("/:resume_id/questions", middleware.RequireCandidateJWT(authService), handlers.Question.GetPaper)
	}

	// ─── 2. Test Group (Candidate JWT) ─────────────────────────────────
	tests := router.Group("/api/v1/tests")
	tests.Use(middleware.RequireCandidateJWT(authService))
	{
		tests.POST("/:resume_id/start", handlers.Test.StartTest)
		tests.GET("/:resume_id/state", handlers.Test.GetState)
		tests.POST("/:resume_id/answer", handlers.Test.SelectAnswer)
		tests.POST("/:resume_id/next", handlers.Test.NextQuestion)
		tests.POST("/:resume_id/previous", handlers.Test.PreviousQuestion)
		tests.POST("/:resume_id/submit", handlers.Test.SubmitTest)
		tests.GET("/:resume_id/result", handlers.Test.GetResult)
	}

	// ─── 3. WebSocket Group (Candidate WS Auth) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireCandidateWSAuth(authService))
	{
		ws.GET("/tests/:resume_id/stream", handlers.WS.TestStream)
	}

	return router
}
