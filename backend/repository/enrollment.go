package repository

import (
	"context"

	"coursetrack/backend/models"
	"coursetrack/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepo interface {
	// CreateIfAbsent inserts the enrollment unless (user, course) already
	// exists and reports whether a row was written.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, e *models.Enrollment) (bool, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Enrollment, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *utils.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, e *models.Enrollment) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(e)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *enrollmentRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error) {
	return first[models.Enrollment](conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID))
}

func (r *enrollmentRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Enrollment, error) {
	var results []*models.Enrollment
	if err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("enrolled_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
