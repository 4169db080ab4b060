package router

import (
	"net/http"
	"time"

	"github.com/careprep/careprep-backend/internal/config"
	"github.com/careprep/careprep-backend/internal/handler"
	"github.com/careprep/careprep-backend/internal/middleware"
	"github.com/careprep/careprep-backend/internal/response"
	"github.com/careprep/careprep-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Exam   *handler.ExamHandler
	Result *handler.ResultHandler
	Course *handler.CourseHandler
	Staff  *handler.StaffHandler
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

	// Request ID first so every response carries tracing metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the login endpoints (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/learner/login", authLimiter.Middleware(), handlers.Auth.LearnerLogin)
		auth.POST("/staff/login", authLimiter.Middleware(), handlers.Auth.StaffLogin)

		// Authenticated profile routes
		auth.POST("/learner/logout", middleware.RequireLearnerJWT(authService), handlers.Auth.LearnerLogout)
		auth.GET("/learner/me", middleware.RequireLearnerJWT(authService), handlers.Auth.GetLearnerProfile)
	}

	// ─── 2. Learner Group (JWT + Single Device) ────────────────────────
	learnerAPI := router.Group("/api/v1/learner")
	learnerAPI.Use(
		middleware.RequireLearnerJWT(authService),
		middleware.CheckSingleDeviceLogin(authService),
	)
	{
		learnerAPI.GET("/courses", handlers.Course.ListCourses)

		learnerAPI.POST("/exams/start", handlers.Exam.StartExam)
		learnerAPI.GET("/sessions/:session_id/paper", handlers.Exam.GetPaper)
		learnerAPI.GET("/sessions/:session_id/state", handlers.Exam.GetState)
		learnerAPI.PUT("/sessions/:session_id/answers", handlers.Exam.CaptureAnswer)
		learnerAPI.PUT("/sessions/:session_id/flags", handlers.Exam.ToggleFlag)
		learnerAPI.POST("/sessions/:session_id/submit", handlers.Exam.SubmitExam)

		learnerAPI.GET("/results", handlers.Result.ListResults)
		learnerAPI.GET("/results/:session_id", handlers.Result.GetResult)
		learnerAPI.GET("/results/:session_id/review", handlers.Result.GetReview)
	}

	// ─── 3. WebSocket Group (Learner WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireLearnerWSAuth(authService))
	{
		ws.GET("/learner/sessions/:session_id/timer", handlers.WS.SessionTimerStream)
	}

	// ─── 4. Staff Group (JWT) ──────────────────────────────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(middleware.RequireStaffJWT(authService))
	{
		staffAPI.GET("/results", handlers.Staff.ListResults)
		staffAPI.GET("/results/:session_id", handlers.Staff.GetResult)
		staffAPI.GET("/dashboard", handlers.Staff.GetDashboard)
		staffAPI.POST("/learners/:id/reset-login", handlers.Staff.ResetLearnerLogin)
	}

	return router
}
