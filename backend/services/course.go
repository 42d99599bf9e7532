package services

import (
	"context"
	"errors"
	"fmt"

	"coursetrack/backend/apperr"
	"coursetrack/backend/models"
	"coursetrack/backend/repository"
	"coursetrack/backend/utils"

	"gorm.io/gorm"
)

type CreateCourseInput struct {
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url" validate:"omitempty,url"`
	Published     bool   `json:"published"`
	SequenceOrder int    `json:"sequence_order"`
}

type CreateLessonInput struct {
	Title         string `json:"title" validate:"required,max=200"`
	Content       string `json:"content"`
	VideoURL      string `json:"video_url" validate:"omitempty,url"`
	Duration      int    `json:"duration" validate:"gte=0"`
	SequenceOrder int    `json:"sequence_order"`
	Published     bool   `json:"published"`
}

// CourseService covers the administrative side of the catalogue.
type CourseService interface {
	CreateCourse(ctx context.Context, in CreateCourseInput) (*models.Course, error)
	AddLesson(ctx context.Context, courseID uint, in CreateLessonInput) (*models.Lesson, error)
	SetLessonPublished(ctx context.Context, lessonID uint, published bool) error
}

type courseService struct {
	log     *utils.Logger
	courses repository.CourseRepo
	lessons repository.LessonRepo
}

func NewCourseService(log *utils.Logger, courses repository.CourseRepo, lessons repository.LessonRepo) CourseService {
	return &courseService{
		log:     log.With("service", "CourseService"),
		courses: courses,
		lessons: lessons,
	}
}

func (s *courseService) CreateCourse(ctx context.Context, in CreateCourseInput) (*models.Course, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	course := &models.Course{
		Title:         in.Title,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		Published:     in.Published,
		SequenceOrder: in.SequenceOrder,
	}
	if err := s.courses.Create(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

func (s *courseService) AddLesson(ctx context.Context, courseID uint, in CreateLessonInput) (*models.Lesson, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	course, err := s.courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, apperr.ErrCourseNotFound
	}

	lesson := &models.Lesson{
		CourseID:      course.ID,
		Title:         in.Title,
		Content:       in.Content,
		VideoURL:      in.VideoURL,
		Duration:      in.Duration,
		SequenceOrder: in.SequenceOrder,
		Published:     in.Published,
	}
	if err := s.lessons.Create(ctx, nil, lesson); err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return lesson, nil
}

func (s *courseService) SetLessonPublished(ctx context.Context, lessonID uint, published bool) error {
	err := s.lessons.SetPublished(ctx, nil, lessonID, published)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrLessonNotFound
	}
	if err != nil {
		return fmt.Errorf("publish lesson: %w", err)
	}
	s.log.Info("lesson publication changed", "lesson_id", lessonID, "published", published)
	return nil
}
