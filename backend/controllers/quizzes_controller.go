package controllers

import (
	"coursetrack/backend/models"
	"coursetrack/backend/services"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type QuizzesController struct {
	Quizzes services.QuizService
}

func NewQuizzesController(svc *services.Services) *QuizzesController {
	return &QuizzesController{Quizzes: svc.Quizzes}
}

type submitAttemptRequest struct {
	LessonID         uint  `json:"lesson_id"`
	CourseID         uint  `json:"course_id"`
	Answers          []int `json:"answers"`
	TimeTakenSeconds int   `json:"time_taken_seconds"`
}

// publicQuestion hides the answer key from learners.
type publicQuestion struct {
	ID       uint     `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Order    int      `json:"order"`
}

func toPublicQuestions(questions []*models.QuizQuestion) []publicQuestion {
	out := make([]publicQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, publicQuestion{
			ID:       q.ID,
			Question: q.Question,
			Options:  q.Options,
			Order:    q.SequenceOrder,
		})
	}
	return out
}

func (qc *QuizzesController) GetByLesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return utils.FromError(c, err)
	}
	quizzes, err := qc.Quizzes.GetByLesson(c.UserContext(), lessonID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, quizzes)
}

func (qc *QuizzesController) GetQuestions(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}
	questions, err := qc.Quizzes.GetQuestions(c.UserContext(), quizID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, toPublicQuestions(questions))
}

// SubmitAttempt godoc
// @Summary Submit quiz answers
// @Description Grades the answers, stores the attempt and returns the result with its attempt number
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 201 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/attempts [post]
func (qc *QuizzesController) SubmitAttempt(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}

	var req submitAttemptRequest
	if err := utils.BindAndValidate(c, &req); err != nil {
		return utils.FromError(c, err)
	}

	result, err := qc.Quizzes.SubmitEnhancedAttempt(c.UserContext(), services.SubmitAttemptInput{
		UserID:           userID,
		QuizID:           quizID,
		LessonID:         req.LessonID,
		CourseID:         req.CourseID,
		Answers:          req.Answers,
		TimeTakenSeconds: req.TimeTakenSeconds,
	})
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Created(c, result)
}

func (qc *QuizzesController) GetAttempts(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}
	attempts, err := qc.Quizzes.GetAttemptsByUserAndQuiz(c.UserContext(), userID, quizID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, attempts)
}

func (qc *QuizzesController) GetBestScore(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}
	best, err := qc.Quizzes.GetBestScore(c.UserContext(), userID, quizID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, best)
}

func (qc *QuizzesController) GetLastAttempt(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}
	last, err := qc.Quizzes.GetLastAttempt(c.UserContext(), userID, quizID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, last)
}

// GetSummary godoc
// @Summary Quiz summary
// @Description Totals, average and best score over all of the caller's attempts
// @Tags quizzes
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /quizzes/summary [get]
func (qc *QuizzesController) GetSummary(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	summary, err := qc.Quizzes.GetUserQuizSummary(c.UserContext(), userID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, summary)
}

func (qc *QuizzesController) GetScoreHistory(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	history, err := qc.Quizzes.GetScoreHistory(c.UserContext(), userID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, history)
}

func (qc *QuizzesController) GetCourseAttempts(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}
	attempts, err := qc.Quizzes.GetAttemptsByUserAndCourse(c.UserContext(), userID, courseID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, attempts)
}

// CreateQuiz godoc
// @Summary Create quiz
// @Description Admin: creates a quiz with its questions for a lesson
// @Tags admin
// @Accept json
// @Produce json
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/quizzes [post]
func (qc *QuizzesController) CreateQuiz(c *fiber.Ctx) error {
	var req services.CreateQuizInput
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "malformed request body")
	}
	quiz, err := qc.Quizzes.Create(c.UserContext(), req)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Created(c, quiz)
}
