package models

import (
	"time"

	"gorm.io/gorm"
)

// ProgressRecord is the watch/completion state of one user in one lesson.
// There is at most one row per (UserID, LessonID).
type ProgressRecord struct {
	gorm.Model
	UserID          uint `gorm:"not null;uniqueIndex:idx_progress_user_lesson;index:idx_progress_user_course"`
	LessonID        uint `gorm:"not null;uniqueIndex:idx_progress_user_lesson"`
	CourseID        uint `gorm:"not null;index:idx_progress_user_course"`
	ProgressPercent float64
	Completed       bool `gorm:"not null;default:false"`
	LastWatchedAt   time.Time
	CompletedAt     *time.Time
}
