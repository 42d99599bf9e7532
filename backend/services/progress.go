package services

import (
	"context"
	"fmt"

	"coursetrack/backend/apperr"
	"coursetrack/backend/models"
	"coursetrack/backend/repository"
	"coursetrack/backend/utils"
)

// LessonCompletionThreshold is the watch percent at which a lesson counts as completed.
const LessonCompletionThreshold = 90.0

type ProgressService interface {
	UpdateProgress(ctx context.Context, userID, lessonID, courseID uint, percent float64) (*models.ProgressRecord, error)
	MarkComplete(ctx context.Context, userID, lessonID, courseID uint) (*models.ProgressRecord, error)
	GetForLesson(ctx context.Context, userID, lessonID uint) (*models.ProgressRecord, error)
	GetForCourse(ctx context.Context, userID, courseID uint) ([]*models.ProgressRecord, error)
}

type progressService struct {
	log      *utils.Logger
	progress repository.ProgressRepo
	opts     options
}

func NewProgressService(log *utils.Logger, progress repository.ProgressRepo, opts ...Option) ProgressService {
	return &progressService{
		log:      log.With("service", "ProgressService"),
		progress: progress,
		opts:     buildOptions(opts),
	}
}

func checkKey(userID, lessonID, courseID uint) error {
	fields := map[string]string{}
	if userID == 0 {
		fields["user_id"] = "required"
	}
	if lessonID == 0 {
		fields["lesson_id"] = "required"
	}
	if courseID == 0 {
		fields["course_id"] = "required"
	}
	if len(fields) > 0 {
		return apperr.InvalidInput(fields)
	}
	return nil
}

// UpdateProgress keeps the highest percent seen. Reaching the completion
// threshold completes the lesson for good.
func (s *progressService) UpdateProgress(ctx context.Context, userID, lessonID, courseID uint, percent float64) (*models.ProgressRecord, error) {
	if err := checkKey(userID, lessonID, courseID); err != nil {
		return nil, err
	}

	rec, err := s.progress.Merge(ctx, nil, repository.WatchUpdate{
		UserID:   userID,
		LessonID: lessonID,
		CourseID: courseID,
		Percent:  percent,
		Complete: percent >= LessonCompletionThreshold,
		At:       s.opts.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return rec, nil
}

func (s *progressService) MarkComplete(ctx context.Context, userID, lessonID, courseID uint) (*models.ProgressRecord, error) {
	if err := checkKey(userID, lessonID, courseID); err != nil {
		return nil, err
	}

	rec, err := s.progress.Merge(ctx, nil, repository.WatchUpdate{
		UserID:   userID,
		LessonID: lessonID,
		CourseID: courseID,
		Percent:  100,
		Complete: true,
		Force:    true,
		At:       s.opts.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("mark complete: %w", err)
	}
	s.log.Debug("lesson marked complete", "user_id", userID, "lesson_id", lessonID)
	return rec, nil
}

func (s *progressService) GetForLesson(ctx context.Context, userID, lessonID uint) (*models.ProgressRecord, error) {
	rec, err := s.progress.GetByUserAndLesson(ctx, nil, userID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson progress: %w", err)
	}
	return rec, nil
}

func (s *progressService) GetForCourse(ctx context.Context, userID, courseID uint) ([]*models.ProgressRecord, error) {
	recs, err := s.progress.GetByUserAndCourse(ctx, nil, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course progress: %w", err)
	}
	return recs, nil
}
