package repository

import (
	"context"

	"coursetrack/backend/models"
	"coursetrack/backend/utils"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *utils.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	return first[models.User](conn(r.db, tx).WithContext(ctx).Where("id = ?", id))
}

func (r *userRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	var results []*models.User
	if err := conn(r.db, tx).WithContext(ctx).Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Course, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *utils.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return conn(r.db, tx).WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	return first[models.Course](conn(r.db, tx).WithContext(ctx).Where("id = ?", id))
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Course, error) {
	var results []*models.Course
	if len(ids) == 0 {
		return results, nil
	}
	if err := conn(r.db, tx).WithContext(ctx).
		Where("id IN ?", ids).
		Order("sequence_order ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Lesson, error)
	SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error
	CountPublishedByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uint) (map[uint]int, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *utils.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	return conn(r.db, tx).WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) {
	return first[models.Lesson](conn(r.db, tx).WithContext(ctx).Where("id = ?", id))
}

func (r *lessonRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Lesson, error) {
	var results []*models.Lesson
	if err := conn(r.db, tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("sequence_order ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error {
	res := conn(r.db, tx).WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ?", id).
		Update("published", published)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountPublishedByCourseIDs returns the published lesson count per course.
// Courses without published lessons are absent from the map.
func (r *lessonRepo) CountPublishedByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CourseID uint
		Total    int
	}
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Lesson{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ? AND published = ?", courseIDs, true).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	return counts, nil
}
