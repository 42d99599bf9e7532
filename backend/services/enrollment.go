package services

import (
	"context"
	"fmt"
	"time"

	"coursetrack/backend/apperr"
	"coursetrack/backend/models"
	"coursetrack/backend/repository"
	"coursetrack/backend/utils"
)

type EnrolledCourse struct {
	Course     *models.Course `json:"course"`
	EnrolledAt time.Time      `json:"enrolled_at"`
}

type EnrollmentService interface {
	Enroll(ctx context.Context, userID, courseID uint) (*models.Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]EnrolledCourse, error)
}

type enrollmentService struct {
	log         *utils.Logger
	enrollments repository.EnrollmentRepo
	courses     repository.CourseRepo
	opts        options
}

func NewEnrollmentService(log *utils.Logger, enrollments repository.EnrollmentRepo, courses repository.CourseRepo, opts ...Option) EnrollmentService {
	return &enrollmentService{
		log:         log.With("service", "EnrollmentService"),
		enrollments: enrollments,
		courses:     courses,
		opts:        buildOptions(opts),
	}
}

// Enroll is idempotent: enrolling twice returns the first enrollment.
func (s *enrollmentService) Enroll(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	course, err := s.courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, apperr.ErrCourseNotFound
	}
	if !course.Published {
		return nil, apperr.ErrCourseNotPublished
	}

	created, err := s.enrollments.CreateIfAbsent(ctx, nil, &models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: s.opts.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("enroll: %w", err)
	}
	if created {
		s.log.Info("user enrolled", "user_id", userID, "course_id", courseID)
	}
	return s.enrollments.GetByUserAndCourse(ctx, nil, userID, courseID)
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	e, err := s.enrollments.GetByUserAndCourse(ctx, nil, userID, courseID)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

func (s *enrollmentService) ListByUser(ctx context.Context, userID uint) ([]EnrolledCourse, error) {
	enrollments, err := s.enrollments.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	ids := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.CourseID)
	}
	courses, err := s.courses.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	byID := make(map[uint]*models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	out := make([]EnrolledCourse, 0, len(enrollments))
	for _, e := range enrollments {
		if c, ok := byID[e.CourseID]; ok {
			out = append(out, EnrolledCourse{Course: c, EnrolledAt: e.EnrolledAt})
		}
	}
	return out, nil
}
