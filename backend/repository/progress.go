package repository

import (
	"context"
	"time"

	"coursetrack/backend/models"
	"coursetrack/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchUpdate is one observation of a learner in a lesson.
type WatchUpdate struct {
	UserID   uint
	LessonID uint
	CourseID uint
	Percent  float64
	// Complete marks the lesson completed by this update.
	Complete bool
	// Force overwrites the stored percent instead of keeping the maximum.
	Force bool
	At    time.Time
}

type ProgressRepo interface {
	// Merge folds u into the (user, lesson) record, creating it if absent,
	// and returns the stored row. The merge is one conditional UPDATE so
	// concurrent writers cannot lower the percent, un-complete the lesson or
	// move completed_at once it is set.
	Merge(ctx context.Context, tx *gorm.DB, u WatchUpdate) (*models.ProgressRecord, error)
	GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID, lessonID uint) (*models.ProgressRecord, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) ([]*models.ProgressRecord, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.ProgressRecord, error)
	CountCompleted(ctx context.Context, tx *gorm.DB, userID, courseID uint) (int, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *utils.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) Merge(ctx context.Context, tx *gorm.DB, u WatchUpdate) (*models.ProgressRecord, error) {
	if tx != nil {
		return r.merge(tx.WithContext(ctx), u)
	}
	var out *models.ProgressRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := r.merge(tx, u)
		out = rec
		return err
	})
	return out, err
}

func (r *progressRepo) merge(tx *gorm.DB, u WatchUpdate) (*models.ProgressRecord, error) {
	seed := models.ProgressRecord{
		UserID:          u.UserID,
		LessonID:        u.LessonID,
		CourseID:        u.CourseID,
		ProgressPercent: u.Percent,
		Completed:       u.Complete,
		LastWatchedAt:   u.At,
	}
	if u.Complete {
		at := u.At
		seed.CompletedAt = &at
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, err
	}

	percent := gorm.Expr("CASE WHEN progress_percent < ? THEN ? ELSE progress_percent END", u.Percent, u.Percent)
	if u.Force {
		percent = gorm.Expr("?", u.Percent)
	}
	if err := tx.Model(&models.ProgressRecord{}).
		Where("user_id = ? AND lesson_id = ?", u.UserID, u.LessonID).
		Updates(map[string]interface{}{
			"progress_percent": percent,
			"completed":        gorm.Expr("CASE WHEN completed THEN completed ELSE ? END", u.Complete),
			"completed_at":     gorm.Expr("CASE WHEN completed_at IS NULL AND ? THEN ? ELSE completed_at END", u.Complete, u.At),
			"last_watched_at":  u.At,
		}).Error; err != nil {
		return nil, err
	}

	return first[models.ProgressRecord](tx.Where("user_id = ? AND lesson_id = ?", u.UserID, u.LessonID))
}

func (r *progressRepo) GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID, lessonID uint) (*models.ProgressRecord, error) {
	return first[models.ProgressRecord](conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID))
}

func (r *progressRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) ([]*models.ProgressRecord, error) {
	var results []*models.ProgressRecord
	if err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *progressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.ProgressRecord, error) {
	var results []*models.ProgressRecord
	if err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *progressRepo) CountCompleted(ctx context.Context, tx *gorm.DB, userID, courseID uint) (int, error) {
	var n int64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.ProgressRecord{}).
		Where("user_id = ? AND course_id = ? AND completed = ?", userID, courseID, true).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
