package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	LessonID     uint `gorm:"index;not null"`
	CourseID     uint `gorm:"index;not null"`
	Title        string
	PassingScore int `gorm:"check:passing_score>=0 AND passing_score<=100"`
	Questions    []QuizQuestion
}

// QuizQuestion is graded in SequenceOrder; answers[i] is matched against the
// i-th question of that order.
type QuizQuestion struct {
	gorm.Model
	QuizID        uint `gorm:"index;not null"`
	Question      string
	Options       datatypes.JSONSlice[string]
	CorrectIndex  int
	Explanation   string
	SequenceOrder int
}

// QuizAttempt rows are append-only.
type QuizAttempt struct {
	gorm.Model
	UserID           uint `gorm:"not null;index:idx_attempt_user_quiz;index:idx_attempt_user_course"`
	QuizID           uint `gorm:"not null;index:idx_attempt_user_quiz"`
	LessonID         uint
	CourseID         uint `gorm:"index:idx_attempt_user_course"`
	Answers          datatypes.JSONSlice[int]
	Score            int
	Passed           bool
	TimeTakenSeconds int
	AttemptedAt      time.Time `gorm:"index"`
}
