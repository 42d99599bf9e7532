package gamification

import "math"

// XP awarded per activity.
const (
	XPPerCompletedLesson = 10
	XPPerQuizAttempt     = 5
	XPPerPassedQuiz      = 15
	XPPerPerfectScore    = 25
	XPPerCertificate     = 50
	XPPerActiveDay       = 3

	xpLevelBase = 25
)

// ActivityStats are the counters XP is derived from. XP is never stored.
type ActivityStats struct {
	CompletedLessons int
	QuizAttempts     int
	PassedAttempts   int
	PerfectAttempts  int
	Certificates     int
	ActiveDays       int
}

func CalculateXP(s ActivityStats) int {
	return s.CompletedLessons*XPPerCompletedLesson +
		s.QuizAttempts*XPPerQuizAttempt +
		s.PassedAttempts*XPPerPassedQuiz +
		s.PerfectAttempts*XPPerPerfectScore +
		s.Certificates*XPPerCertificate +
		s.ActiveDays*XPPerActiveDay
}

type LevelInfo struct {
	TotalXP              int `json:"total_xp"`
	Level                int `json:"level"`
	XPInCurrentLevel     int `json:"xp_in_current_level"`
	XPNeededForNextLevel int `json:"xp_needed_for_next_level"`
	ProgressPercent      int `json:"progress_percent"`
}

// XPForLevel is the XP at which level L starts: (L-1)^2 * 25.
func XPForLevel(level int) int {
	return (level - 1) * (level - 1) * xpLevelBase
}

// ComputeLevel maps total XP onto the square-root level curve.
func ComputeLevel(totalXP int) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}
	level := int(math.Floor(math.Sqrt(float64(totalXP)/xpLevelBase))) + 1
	inLevel := totalXP - XPForLevel(level)
	needed := XPForLevel(level+1) - XPForLevel(level)

	progress := 100
	if needed > 0 {
		progress = int(math.Round(100 * float64(inLevel) / float64(needed)))
	}

	return LevelInfo{
		TotalXP:              totalXP,
		Level:                level,
		XPInCurrentLevel:     inLevel,
		XPNeededForNextLevel: needed,
		ProgressPercent:      progress,
	}
}
