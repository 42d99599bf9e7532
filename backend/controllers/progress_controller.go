package controllers

import (
	"coursetrack/backend/services"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Progress   services.ProgressService
	Completion services.CompletionService
	Profile    services.ProfileService
}

func NewProgressController(svc *services.Services) *ProgressController {
	return &ProgressController{
		Progress:   svc.Progress,
		Completion: svc.Completion,
		Profile:    svc.Profile,
	}
}

type updateProgressRequest struct {
	CourseID        uint    `json:"course_id" validate:"required"`
	ProgressPercent float64 `json:"progress_percent" validate:"gte=0"`
}

type markCompleteRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

// GetLessonProgress godoc
// @Summary Get lesson progress
// @Description Returns the caller's progress record for one lesson, null if none
// @Tags progress
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/lessons/{lessonId} [get]
func (pc *ProgressController) GetLessonProgress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return utils.FromError(c, err)
	}

	rec, err := pc.Progress.GetForLesson(c.UserContext(), userID, lessonID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, rec)
}

// UpdateLessonProgress godoc
// @Summary Report watch progress
// @Description Merges the reported percent into the caller's lesson progress
// @Tags progress
// @Accept json
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/lessons/{lessonId} [post]
func (pc *ProgressController) UpdateLessonProgress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return utils.FromError(c, err)
	}

	var req updateProgressRequest
	if err := utils.BindAndValidate(c, &req); err != nil {
		return utils.FromError(c, err)
	}

	rec, err := pc.Progress.UpdateProgress(c.UserContext(), userID, lessonID, req.CourseID, req.ProgressPercent)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, rec)
}

func (pc *ProgressController) CompleteLesson(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return utils.FromError(c, err)
	}

	var req markCompleteRequest
	if err := utils.BindAndValidate(c, &req); err != nil {
		return utils.FromError(c, err)
	}

	rec, err := pc.Progress.MarkComplete(c.UserContext(), userID, lessonID, req.CourseID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, rec)
}

func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return utils.FromError(c, err)
	}

	recs, err := pc.Progress.GetForCourse(c.UserContext(), userID, courseID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, recs)
}

// GetCourseCompletion godoc
// @Summary Get course completion
// @Description Percent of the course's published lessons the caller completed
// @Tags progress
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /progress/courses/{courseId}/completion [get]
func (pc *ProgressController) GetCourseCompletion(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return utils.FromError(c, err)
	}

	completion, err := pc.Completion.Measure(c.UserContext(), nil, userID, courseID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, completion)
}

// GetProgressOverview godoc
// @Summary Get progress overview
// @Description Returns the learner dashboard: per-course progress, level, streak and badges
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/overview [get]
func (pc *ProgressController) GetProgressOverview(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}

	dashboard, err := pc.Profile.GetDashboard(c.UserContext(), userID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, dashboard)
}
