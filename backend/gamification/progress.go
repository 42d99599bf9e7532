// Package gamification holds the pure calculations behind the learner
// dashboard. Nothing here touches the store; callers pass in aggregates.
package gamification

import (
	"math"
	"sort"
	"time"
)

// SectionProgress is the per-enrolled-course aggregate the dashboard is built from.
type SectionProgress struct {
	CourseID          uint      `json:"course_id"`
	CourseTitle       string    `json:"course_title"`
	CompletedLessons  int       `json:"completed_lessons"`
	TotalLessons      int       `json:"total_lessons"`
	CompletionPercent int       `json:"completion_percent"`
	HasCertificate    bool      `json:"has_certificate"`
	CertificateNumber string    `json:"certificate_number,omitempty"`
	EnrolledAt        time.Time `json:"enrolled_at"`
}

// CompletionPercent is round(100 * completed / total), 0 when total is 0.
// Both the course completion read and certificate issuance go through it.
func CompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(100*completed) / float64(total)))
}

// CalcOverallPercent is the completion across all sections combined.
func CalcOverallPercent(sections []SectionProgress) int {
	completed, total := 0, 0
	for _, s := range sections {
		completed += s.CompletedLessons
		total += s.TotalLessons
	}
	return CompletionPercent(completed, total)
}

func CountCertificates(sections []SectionProgress) int {
	n := 0
	for _, s := range sections {
		if s.HasCertificate {
			n++
		}
	}
	return n
}

// PickContinueCourse prefers the first in-progress section (some lessons done,
// under 100%) and falls back to the first not-started one. In-progress always
// wins regardless of position.
func PickContinueCourse(sections []SectionProgress) *SectionProgress {
	for i := range sections {
		if sections[i].CompletedLessons > 0 && sections[i].CompletionPercent < 100 {
			s := sections[i]
			return &s
		}
	}
	for i := range sections {
		if sections[i].CompletedLessons == 0 {
			s := sections[i]
			return &s
		}
	}
	return nil
}

func ClampPercent(value float64) float64 {
	return math.Min(100, math.Max(0, value))
}

// SortByCompletion returns a copy ordered by CompletionPercent ascending.
func SortByCompletion(sections []SectionProgress) []SectionProgress {
	out := make([]SectionProgress, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletionPercent < out[j].CompletionPercent
	})
	return out
}

func TotalCompletedLessons(sections []SectionProgress) int {
	total := 0
	for _, s := range sections {
		total += s.CompletedLessons
	}
	return total
}

// AverageScore is the rounded mean, 0 for no scores.
func AverageScore(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}
