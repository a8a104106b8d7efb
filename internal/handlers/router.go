package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/chronoquiz/quiz-service/internal/services"
	"github.com/chronoquiz/quiz-service/internal/utils"
)

type HandlerManager struct {
	quizHandler        *QuizHandler
	sessionHandler     *SessionHandler
	leaderboardHandler *LeaderboardHandler
}

func NewHandlerManager(
	quizService services.QuizService,
	sessionService services.SessionService,
	leaderboardService services.LeaderboardService,
	exportService services.ExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:        NewQuizHandler(quizService, exportService, logger),
		sessionHandler:     NewSessionHandler(sessionService, logger),
		leaderboardHandler: NewLeaderboardHandler(leaderboardService, exportService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", UserIDHeader, "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
	}))
	router.Use(UserIDMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("/:code", hm.quizHandler.GetQuiz)
			quizzes.GET("/:code/leaderboard", hm.leaderboardHandler.QuizLeaderboard)
			quizzes.GET("/:code/leaderboard/export", hm.leaderboardHandler.ExportQuizLeaderboard)
		}

		// Session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.POST("/:token/answers", hm.sessionHandler.RecordAnswer)
			sessions.POST("/:token/finish", hm.sessionHandler.FinishSession)
		}

		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("", hm.quizHandler.SaveAttempt)
			attempts.GET("", hm.quizHandler.ListAttempts)
			attempts.GET("/export", hm.quizHandler.ExportAttempts)
		}

		// Global leaderboard
		v1.GET("/leaderboard", hm.leaderboardHandler.GlobalLeaderboard)
	}
}
