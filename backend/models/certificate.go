package models

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is immutable once created. The (UserID, CourseID) unique index is
// what keeps concurrent issuance from producing a second row.
type Certificate struct {
	gorm.Model
	UserID            uint   `gorm:"not null;uniqueIndex:idx_certificate_user_course;index"`
	CourseID          uint   `gorm:"not null;uniqueIndex:idx_certificate_user_course"`
	UserName          string `gorm:"not null"`
	CourseName        string `gorm:"not null"`
	CompletionPercent int
	IssuedAt          time.Time
	CertificateNumber string `gorm:"not null;uniqueIndex"`
}

// All lists every model owned or read by the engine, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Lesson{},
		&Enrollment{},
		&ProgressRecord{},
		&Quiz{},
		&QuizQuestion{},
		&QuizAttempt{},
		&Certificate{},
	}
}
