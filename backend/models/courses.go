package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Title         string `gorm:"not null"`
	Description   string
	ImageURL      string
	Published     bool `gorm:"index;default:false"`
	SequenceOrder int
	Lessons       []Lesson
}

// Lesson counts toward course completion only while Published is true.
type Lesson struct {
	gorm.Model
	CourseID      uint `gorm:"index;not null"`
	Title         string
	Content       string
	VideoURL      string
	Duration      int // seconds
	SequenceOrder int
	Published     bool `gorm:"default:false"`
}

type Enrollment struct {
	gorm.Model
	UserID     uint `gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID   uint `gorm:"not null;uniqueIndex:idx_enrollment_user_course;index"`
	EnrolledAt time.Time
}
