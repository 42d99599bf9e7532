package routes

import (
	"coursetrack/backend/config"
	"coursetrack/backend/controllers"
	"coursetrack/backend/middleware"
	"coursetrack/backend/repository"
	"coursetrack/backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, cfg *config.Config, repos *repository.Repos, svc *services.Services) {
	api := app.Group("/api")

	// Public routes
	certificatesController := controllers.NewCertificatesController(svc)
	api.Get("/certificates/verify/:number", certificatesController.VerifyCertificate)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(repos.Users)

	// Progress routes
	progressController := controllers.NewProgressController(svc)
	progress := api.Group("/progress", authMiddleware)
	progress.Get("/overview", progressController.GetProgressOverview)
	progress.Get("/lessons/:lessonId", progressController.GetLessonProgress)
	progress.Post("/lessons/:lessonId", progressController.UpdateLessonProgress)
	progress.Post("/lessons/:lessonId/complete", progressController.CompleteLesson)
	progress.Get("/courses/:courseId", progressController.GetCourseProgress)
	progress.Get("/courses/:courseId/completion", progressController.GetCourseCompletion)

	// Quiz routes
	quizzesController := controllers.NewQuizzesController(svc)
	quizzes := api.Group("/quizzes", authMiddleware)
	quizzes.Get("/summary", quizzesController.GetSummary)
	quizzes.Get("/history", quizzesController.GetScoreHistory)
	quizzes.Get("/lesson/:lessonId", quizzesController.GetByLesson)
	quizzes.Get("/:id/questions", quizzesController.GetQuestions)
	quizzes.Post("/:id/attempts", quizzesController.SubmitAttempt)
	quizzes.Get("/:id/attempts", quizzesController.GetAttempts)
	quizzes.Get("/:id/best", quizzesController.GetBestScore)
	quizzes.Get("/:id/last", quizzesController.GetLastAttempt)

	// Courses routes
	coursesController := controllers.NewCoursesController(svc)
	courses := api.Group("/courses", authMiddleware)
	courses.Get("/", coursesController.GetUserCourses)
	courses.Post("/:id/enroll", coursesController.Enroll)
	courses.Get("/:id/quiz-attempts", quizzesController.GetCourseAttempts)
	courses.Post("/:id/certificate", certificatesController.IssueCertificate)
	courses.Get("/:id/certificate", certificatesController.GetCourseCertificate)

	api.Get("/certificates", authMiddleware, certificatesController.ListCertificates)

	// User routes
	userController := controllers.NewUserController(svc)
	users := api.Group("/users", authMiddleware)
	users.Get("/profile", userController.GetProfile)
	api.Get("/leaderboard", authMiddleware, userController.GetLeaderboard)

	// Admin routes
	admin := api.Group("/admin", authMiddleware, adminMiddleware)
	admin.Post("/courses", coursesController.CreateCourse)
	admin.Post("/courses/:id/lessons", coursesController.AddLesson)
	admin.Put("/lessons/:id/publish", coursesController.PublishLesson)
	admin.Post("/quizzes", quizzesController.CreateQuiz)
}
