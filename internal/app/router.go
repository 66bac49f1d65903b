package app

import (
	"quiz_platform_backend/docs"
	"quiz_platform_backend/internal/config"
	"quiz_platform_backend/internal/middleware"
	"quiz_platform_backend/internal/model"
	"quiz_platform_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.Profile)

		// 测验与作答
		authGroup.GET("/quizzes", c.quiz.ListAvailable)
		authGroup.GET("/quizzes/:id", c.quiz.GetForTaking)
		authGroup.POST("/quizzes/:id/attempts/start", c.attempt.Start)
		authGroup.POST("/attempts/:id/submit", c.attempt.Submit)
		authGroup.POST("/attempts/:id/anti-cheat", c.antiCheat.Record)
		authGroup.GET("/attempts/my", c.attempt.My)
		authGroup.GET("/attempts/:id/result", c.attempt.Result)
	}

	// 管理端路由
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/quizzes", c.quiz.CreateQuiz)
		admin.GET("/quizzes", c.quiz.ListMine)
		admin.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		admin.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
		admin.GET("/quizzes/:id/questions", c.quiz.ListQuestions)
		admin.POST("/quizzes/:id/questions", c.quiz.AddQuestion)
		admin.PUT("/questions/:id", c.quiz.UpdateQuestion)
		admin.DELETE("/questions/:id", c.quiz.DeleteQuestion)
		admin.POST("/questions/:id/options", c.quiz.AddOption)
		admin.PUT("/options/:id", c.quiz.UpdateOption)
		admin.DELETE("/options/:id", c.quiz.DeleteOption)
		admin.GET("/quizzes/:id/analytics", c.quiz.Analytics)
		admin.GET("/quizzes/:id/attempts", c.quiz.ListAttempts)
		admin.POST("/quizzes/:id/images", c.quiz.UploadImage)
		admin.GET("/attempts/:id/events", c.antiCheat.Events)
		admin.POST("/attempts/:id/answers/:questionId/grade", c.grade.Override)
	}
}
