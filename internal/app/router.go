package app

import (
	"eduquiz_backend/docs"
	"eduquiz_backend/internal/config"
	"eduquiz_backend/internal/middleware"
	"eduquiz_backend/internal/model"
	"eduquiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.Health)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.Profile)

		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/quizzes", c.student.ListQuizzes)
	group.GET("/quizzes/:id", c.student.GetQuiz)

	student := group.Group("/student")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.POST("/quizzes/:id/submit", c.student.SubmitQuiz)
		student.GET("/quizzes/:id/status", c.student.QuizStatus)
		student.GET("/quizzes/:id/attempts", c.student.MyAttempts)
		student.GET("/quizzes/:id/assistance/:level", c.student.GetAssistance)

		student.POST("/assistance/level1/:id/submit", c.student.SubmitLevel1)
		student.POST("/assistance/level2/:id/submit", c.student.SubmitLevel2)
		student.POST("/assistance/level3/:id/complete", c.student.CompleteLevel3)
	}
}

func (a *App) registerTeacherRoutes(group *gin.RouterGroup, c *controllers) {
	teacher := group.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/classes", c.class.CreateClass)
		teacher.GET("/classes", c.class.ListClasses)
		teacher.PUT("/classes/:id", c.class.UpdateClass)
		teacher.DELETE("/classes/:id", c.class.DeleteClass)
		teacher.GET("/classes/:id/students", c.class.ListStudents)
		teacher.POST("/classes/:id/students", c.class.EnrollStudent)
		teacher.DELETE("/classes/:id/students/:studentId", c.class.UnenrollStudent)
		teacher.GET("/classes/:id/quizzes", c.quiz.ListByClass)

		teacher.POST("/quizzes", c.quiz.CreateQuiz)
		teacher.GET("/quizzes/:id", c.quiz.GetQuiz)
		teacher.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		teacher.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
		teacher.PUT("/quizzes/:id/questions", c.quiz.ReplaceQuestions)
		teacher.POST("/quizzes/:id/publish", c.quiz.PublishQuiz)

		teacher.PUT("/quizzes/:id/assistance/level1", c.quiz.UpsertLevel1)
		teacher.PUT("/quizzes/:id/assistance/level2", c.quiz.UpsertLevel2)
		teacher.PUT("/quizzes/:id/assistance/level3", c.quiz.UpsertLevel3)

		teacher.GET("/quizzes/:id/submissions", c.grading.ListSubmissions)
		teacher.GET("/submissions/:id", c.grading.GetSubmission)
		teacher.POST("/submissions/:id/grade", c.grading.GradeSubmission)
		teacher.GET("/quizzes/:id/assistance/level2/pending", c.grading.ListPendingEssays)
		teacher.POST("/assistance/level2/submissions/:id/approve", c.grading.ReviewEssay)
		teacher.POST("/quizzes/:id/students/:studentId/override", c.grading.OverrideStatus)

		teacher.POST("/upload", c.upload.Upload)
	}
}
