package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/edulab/assess-backend/internal/config"
	"github.com/edulab/assess-backend/internal/handler"
	"github.com/edulab/assess-backend/internal/middleware"
	"github.com/edulab/assess-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam     *handler.ExamHandler
	Question *handler.QuestionHandler
	Omr      *handler.OmrHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	verifier *middleware.TokenVerifier,
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

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Exam taking (student JWT) ──────────────────────────────────
	studentAPI := router.Group("/api/v1/exams")
	studentAPI.Use(middleware.RequireStudentJWT(verifier))
	{
		studentAPI.GET("/:exam_id", handlers.Exam.GetExam)
		studentAPI.POST("/:exam_id/submit", handlers.Exam.SubmitExam)
		studentAPI.GET("/:exam_id/results/me", handlers.Exam.GetMyResult)
	}

	// SEB config download works for any authenticated caller; the lockdown
	// browser is not running yet when this file is fetched.
	router.GET("/api/v1/exams/:exam_id/seb-config",
		middleware.RequireJWT(verifier), handlers.Exam.GetSebConfig)

	// ─── 2. Exam authoring (teacher JWT) ───────────────────────────────
	teacherAPI := router.Group("/api/v1")
	teacherAPI.Use(middleware.RequireTeacherJWT(verifier))
	{
		teacherAPI.POST("/exams", handlers.Exam.CreateExam)
		teacherAPI.GET("/exams", handlers.Exam.ListExams)
		teacherAPI.POST("/exams/:exam_id/questions", handlers.Exam.AddQuestions)
		teacherAPI.GET("/exams/:exam_id/results", handlers.Exam.GetResults)

		// Question bank
		teacherAPI.POST("/courses/:course_id/questions", handlers.Question.CreateQuestion)
		teacherAPI.GET("/courses/:course_id/questions", handlers.Question.ListQuestions)
		teacherAPI.DELETE("/courses/:course_id/questions/:question_id", handlers.Question.DeleteQuestion)
	}

	// ─── 3. Optical scanning (teacher JWT, rate limited uploads) ───────
	scanLimiter := middleware.NewRateLimiter(30, time.Minute)
	omrAPI := router.Group("/api/v1/omr")
	omrAPI.Use(middleware.RequireTeacherJWT(verifier), scanLimiter.Middleware())
	{
		omrAPI.POST("/preflight", handlers.Omr.Preflight)
		omrAPI.POST("/reconcile", handlers.Omr.Reconcile)
	}

	return router
}
