package gamification

type BadgeCategory string

const (
	CategoryEnrollment  BadgeCategory = "enrollment"
	CategoryLessons     BadgeCategory = "lessons"
	CategoryQuiz        BadgeCategory = "quiz"
	CategoryCertificate BadgeCategory = "certificate"
	CategoryStreak      BadgeCategory = "streak"
)

type BadgeDefinition struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Category    BadgeCategory `json:"category"`
	Threshold   int           `json:"threshold"`
}

var BadgeDefinitions = []BadgeDefinition{
	{"first_step", "First Step", "Enrolled in your first course", "rocket", CategoryEnrollment, 1},
	{"eager_learner", "Eager Learner", "Completed 5 lessons", "book", CategoryLessons, 5},
	{"lesson_master", "Lesson Master", "Completed 15 lessons", "bookOpen", CategoryLessons, 15},
	{"perfect_score", "Top Marks", "Scored 100 on a quiz", "star", CategoryQuiz, 100},
	{"quiz_warrior", "Quiz Warrior", "Answered 5 quizzes", "sword", CategoryQuiz, 5},
	{"graduate", "Graduate", "Earned your first certificate", "trophy", CategoryCertificate, 1},
	{"scholar", "Scholar", "Earned 3 certificates", "medal", CategoryCertificate, 3},
	{"streak_3", "Persistent", "Studied 3 days in a row", "fire", CategoryStreak, 3},
	{"streak_7", "Week of Learning", "Studied 7 days in a row", "flame", CategoryStreak, 7},
	{"streak_30", "Dedicated", "Studied 30 days in a row", "crown", CategoryStreak, 30},
	{"explorer", "Explorer", "Enrolled in 3 courses", "compass", CategoryEnrollment, 3},
	{"quiz_ace", "Quiz Ace", "Passed 5 quizzes", "shield", CategoryQuiz, 5},
}

type BadgeStats struct {
	Enrollments      int
	CompletedLessons int
	QuizAttempts     int
	PassedAttempts   int
	BestScore        int
	Certificates     int
	LongestStreak    int
}

type Badge struct {
	BadgeDefinition
	Earned bool `json:"earned"`
}

type BadgeReport struct {
	Badges            []Badge `json:"badges"`
	EarnedCount       int     `json:"earned_count"`
	TotalCount        int     `json:"total_count"`
	CompletionPercent int     `json:"completion_percent"`
}

func (s BadgeStats) valueFor(d BadgeDefinition) int {
	switch d.ID {
	case "first_step", "explorer":
		return s.Enrollments
	case "eager_learner", "lesson_master":
		return s.CompletedLessons
	case "perfect_score":
		return s.BestScore
	case "quiz_warrior":
		return s.QuizAttempts
	case "quiz_ace":
		return s.PassedAttempts
	case "graduate", "scholar":
		return s.Certificates
	case "streak_3", "streak_7", "streak_30":
		return s.LongestStreak
	}
	return 0
}

// EvaluateBadges marks each definition earned once its counter reaches the threshold.
func EvaluateBadges(stats BadgeStats) BadgeReport {
	report := BadgeReport{
		Badges:     make([]Badge, 0, len(BadgeDefinitions)),
		TotalCount: len(BadgeDefinitions),
	}
	for _, def := range BadgeDefinitions {
		earned := stats.valueFor(def) >= def.Threshold
		if earned {
			report.EarnedCount++
		}
		report.Badges = append(report.Badges, Badge{BadgeDefinition: def, Earned: earned})
	}
	report.CompletionPercent = CompletionPercent(report.EarnedCount, report.TotalCount)
	return report
}
