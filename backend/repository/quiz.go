package repository

import (
	"context"

	"coursetrack/backend/models"
	"coursetrack/backend/utils"

	"gorm.io/gorm"
)

type QuizRepo interface {
	// CreateWithQuestions inserts the quiz and its questions together.
	CreateWithQuestions(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Quiz, error)
	GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uint) ([]*models.Quiz, error)
	// GetQuestions returns the quiz questions in grading order.
	GetQuestions(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.QuizQuestion, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *utils.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) CreateWithQuestions(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	if tx != nil {
		return tx.WithContext(ctx).Create(quiz).Error
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(quiz).Error
	})
}

func (r *quizRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	return first[models.Quiz](conn(r.db, tx).WithContext(ctx).Where("id = ?", id))
}

func (r *quizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Quiz, error) {
	var results []*models.Quiz
	if len(ids) == 0 {
		return results, nil
	}
	if err := conn(r.db, tx).WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizRepo) GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uint) ([]*models.Quiz, error) {
	var results []*models.Quiz
	if err := conn(r.db, tx).WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizRepo) GetQuestions(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.QuizQuestion, error) {
	var results []*models.QuizQuestion
	if err := conn(r.db, tx).WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("sequence_order ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type QuizAttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error
	CountByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) (int, error)
	GetByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) ([]*models.QuizAttempt, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) ([]*models.QuizAttempt, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.QuizAttempt, error)
	// GetBest is the highest-scoring attempt, earliest first on ties.
	GetBest(ctx context.Context, tx *gorm.DB, userID, quizID uint) (*models.QuizAttempt, error)
	// GetLast is the most recent attempt; on equal timestamps the first stored wins.
	GetLast(ctx context.Context, tx *gorm.DB, userID, quizID uint) (*models.QuizAttempt, error)
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *utils.Logger) QuizAttemptRepo {
	return &quizAttemptRepo{db: db, log: baseLog.With("repo", "QuizAttemptRepo")}
}

func (r *quizAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	return conn(r.db, tx).WithContext(ctx).Create(attempt).Error
}

func (r *quizAttemptRepo) CountByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) (int, error) {
	var n int64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *quizAttemptRepo) GetByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) ([]*models.QuizAttempt, error) {
	return r.list(conn(r.db, tx).WithContext(ctx).Where("user_id = ? AND quiz_id = ?", userID, quizID))
}

func (r *quizAttemptRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) ([]*models.QuizAttempt, error) {
	return r.list(conn(r.db, tx).WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID))
}

func (r *quizAttemptRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.QuizAttempt, error) {
	return r.list(conn(r.db, tx).WithContext(ctx).Where("user_id = ?", userID))
}

func (r *quizAttemptRepo) list(q *gorm.DB) ([]*models.QuizAttempt, error) {
	var results []*models.QuizAttempt
	if err := q.Order("attempted_at DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAttemptRepo) GetBest(ctx context.Context, tx *gorm.DB, userID, quizID uint) (*models.QuizAttempt, error) {
	return first[models.QuizAttempt](conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("score DESC, id ASC"))
}

func (r *quizAttemptRepo) GetLast(ctx context.Context, tx *gorm.DB, userID, quizID uint) (*models.QuizAttempt, error) {
	return first[models.QuizAttempt](conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempted_at DESC, id ASC"))
}
