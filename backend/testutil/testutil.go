// Package testutil opens throwaway databases and seeds fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"coursetrack/backend/models"
	"coursetrack/backend/utils"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a private in-memory SQLite database with the full schema. It is
// closed when the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	// One connection keeps the shared-cache database free of table locks.
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *utils.Logger {
	tb.Helper()
	return utils.NewNopLogger()
}

func SeedUser(tb testing.TB, ctx context.Context, db *gorm.DB, name, email string) *models.User {
	tb.Helper()
	u := &models.User{Name: name, Email: email, Role: "student"}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedCourse creates a published course with the given number of published
// and draft lessons.
func SeedCourse(tb testing.TB, ctx context.Context, db *gorm.DB, title string, published, drafts int) (*models.Course, []*models.Lesson) {
	tb.Helper()
	c := &models.Course{Title: title, Published: true}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}

	lessons := make([]*models.Lesson, 0, published+drafts)
	for i := 0; i < published+drafts; i++ {
		l := &models.Lesson{
			CourseID:      c.ID,
			Title:         fmt.Sprintf("%s lesson %d", title, i+1),
			SequenceOrder: i,
			Published:     i < published,
		}
		if err := db.WithContext(ctx).Create(l).Error; err != nil {
			tb.Fatalf("seed lesson: %v", err)
		}
		lessons = append(lessons, l)
	}
	return c, lessons
}

// QuestionSpec describes one seeded question.
type QuestionSpec struct {
	Order        int
	CorrectIndex int
}

func SeedQuiz(tb testing.TB, ctx context.Context, db *gorm.DB, lesson *models.Lesson, passingScore int, questions ...QuestionSpec) *models.Quiz {
	tb.Helper()
	q := &models.Quiz{
		LessonID:     lesson.ID,
		CourseID:     lesson.CourseID,
		Title:        "quiz",
		PassingScore: passingScore,
	}
	for i, spec := range questions {
		q.Questions = append(q.Questions, models.QuizQuestion{
			Question:      fmt.Sprintf("question %d", i+1),
			Options:       []string{"a", "b", "c", "d"},
			CorrectIndex:  spec.CorrectIndex,
			SequenceOrder: spec.Order,
		})
	}
	if err := db.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}
