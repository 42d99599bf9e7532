// Package repository is the GORM data access layer. Every method takes an
// optional transaction; nil means the repo's own handle.
package repository

import (
	"errors"

	"coursetrack/backend/utils"

	"gorm.io/gorm"
)

// Repos bundles every repository over one database handle.
type Repos struct {
	Users        UserRepo
	Courses      CourseRepo
	Lessons      LessonRepo
	Enrollments  EnrollmentRepo
	Progress     ProgressRepo
	Quizzes      QuizRepo
	Attempts     QuizAttemptRepo
	Certificates CertificateRepo
}

func New(db *gorm.DB, baseLog *utils.Logger) *Repos {
	return &Repos{
		Users:        NewUserRepo(db, baseLog),
		Courses:      NewCourseRepo(db, baseLog),
		Lessons:      NewLessonRepo(db, baseLog),
		Enrollments:  NewEnrollmentRepo(db, baseLog),
		Progress:     NewProgressRepo(db, baseLog),
		Quizzes:      NewQuizRepo(db, baseLog),
		Attempts:     NewQuizAttemptRepo(db, baseLog),
		Certificates: NewCertificateRepo(db, baseLog),
	}
}

func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// first runs a single-row query and maps "no rows" to (nil, nil).
func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
