package app

import (
	"course_media_backend/internal/config"
	"course_media_backend/internal/middleware"
	"course_media_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/courses", c.course.ListCourses)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/courses/:courseId", c.course.GetCourse)

		authGroup.POST("/quizzes/save-answer", c.quiz.SaveAnswer)
		authGroup.GET("/quizzes/my-answers/:courseId", c.quiz.MyAnswers)

		// 3. 流式代理：防盗链白名单在任何上游调用之前生效
		stream := authGroup.Group("/")
		stream.Use(a.originChecker.Middleware())
		{
			stream.GET("/stream/:courseId/:videoId", c.stream.StreamVideo)
			stream.GET("/content-stream/:courseId/:contentId", c.stream.StreamContent)
		}
	}
}
