package repository

import (
	"context"

	"coursetrack/backend/models"
	"coursetrack/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CertificateRepo interface {
	// CreateIfAbsent inserts cert unless it collides with an existing row on
	// (user_id, course_id) or certificate_number. It reports whether the row
	// was written; on false the caller decides which constraint was hit.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, cert *models.Certificate) (bool, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Certificate, error)
	GetByNumber(ctx context.Context, tx *gorm.DB, number string) (*models.Certificate, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Certificate, error)
}

type certificateRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *utils.Logger) CertificateRepo {
	return &certificateRepo{db: db, log: baseLog.With("repo", "CertificateRepo")}
}

func (r *certificateRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, cert *models.Certificate) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(cert)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Debug("certificate insert skipped on conflict",
			"user_id", cert.UserID, "course_id", cert.CourseID, "certificate_number", cert.CertificateNumber)
		return false, nil
	}
	return true, nil
}

func (r *certificateRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Certificate, error) {
	return first[models.Certificate](conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID))
}

func (r *certificateRepo) GetByNumber(ctx context.Context, tx *gorm.DB, number string) (*models.Certificate, error) {
	return first[models.Certificate](conn(r.db, tx).WithContext(ctx).
		Where("certificate_number = ?", number))
}

func (r *certificateRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Certificate, error) {
	var results []*models.Certificate
	if err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_at DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
