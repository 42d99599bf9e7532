package services

import (
	"context"
	"fmt"

	"coursetrack/backend/gamification"
	"coursetrack/backend/repository"
	"coursetrack/backend/utils"

	"gorm.io/gorm"
)

// CourseCompletion is the measured completion of one learner in one course.
type CourseCompletion struct {
	CourseID         uint `json:"course_id"`
	CompletedLessons int  `json:"completed_lessons"`
	PublishedLessons int  `json:"published_lessons"`
	Percent          int  `json:"percent"`
}

type CompletionService interface {
	GetCourseCompletion(ctx context.Context, userID, courseID uint) (int, error)
	Measure(ctx context.Context, tx *gorm.DB, userID, courseID uint) (CourseCompletion, error)
}

type completionService struct {
	log      *utils.Logger
	lessons  repository.LessonRepo
	progress repository.ProgressRepo
}

func NewCompletionService(log *utils.Logger, lessons repository.LessonRepo, progress repository.ProgressRepo) CompletionService {
	return &completionService{
		log:      log.With("service", "CompletionService"),
		lessons:  lessons,
		progress: progress,
	}
}

func (s *completionService) GetCourseCompletion(ctx context.Context, userID, courseID uint) (int, error) {
	c, err := s.Measure(ctx, nil, userID, courseID)
	if err != nil {
		return 0, err
	}
	return c.Percent, nil
}

// Measure counts published lessons as the denominator and the learner's
// completed progress records in the course as the numerator.
func (s *completionService) Measure(ctx context.Context, tx *gorm.DB, userID, courseID uint) (CourseCompletion, error) {
	counts, err := s.lessons.CountPublishedByCourseIDs(ctx, tx, []uint{courseID})
	if err != nil {
		return CourseCompletion{}, fmt.Errorf("count published lessons: %w", err)
	}
	completed, err := s.progress.CountCompleted(ctx, tx, userID, courseID)
	if err != nil {
		return CourseCompletion{}, fmt.Errorf("count completed lessons: %w", err)
	}

	published := counts[courseID]
	return CourseCompletion{
		CourseID:         courseID,
		CompletedLessons: completed,
		PublishedLessons: published,
		Percent:          gamification.CompletionPercent(completed, published),
	}, nil
}
