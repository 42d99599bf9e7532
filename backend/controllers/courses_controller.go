package controllers

import (
	"coursetrack/backend/services"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Courses     services.CourseService
	Enrollments services.EnrollmentService
}

func NewCoursesController(svc *services.Services) *CoursesController {
	return &CoursesController{Courses: svc.Courses, Enrollments: svc.Enrollments}
}

type publishLessonRequest struct {
	Published *bool `json:"published" validate:"required"`
}

// GetUserCourses godoc
// @Summary Enrolled courses
// @Description Returns the courses the caller is enrolled in, oldest enrollment first
// @Tags courses
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /courses [get]
func (cc *CoursesController) GetUserCourses(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	courses, err := cc.Enrollments.ListByUser(c.UserContext(), userID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, courses)
}

func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}

	enrollment, err := cc.Enrollments.Enroll(c.UserContext(), userID, courseID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, enrollment)
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var req services.CreateCourseInput
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := cc.Courses.CreateCourse(c.UserContext(), req)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Created(c, course)
}

func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}

	var req services.CreateLessonInput
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	lesson, err := cc.Courses.AddLesson(c.UserContext(), courseID, req)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.Created(c, lesson)
}

func (cc *CoursesController) PublishLesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.FromError(c, err)
	}

	var req publishLessonRequest
	if err := utils.BindAndValidate(c, &req); err != nil {
		return utils.FromError(c, err)
	}

	if err := cc.Courses.SetLessonPublished(c.UserContext(), lessonID, *req.Published); err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, fiber.Map{"lesson_id": lessonID, "published": *req.Published})
}
