package services

import (
	"context"
	"fmt"
	"time"

	"coursetrack/backend/apperr"
	"coursetrack/backend/gamification"
	"coursetrack/backend/models"
	"coursetrack/backend/repository"
	"coursetrack/backend/utils"

	"golang.org/x/sync/errgroup"
)

// Dashboard is the learner overview.
type Dashboard struct {
	Sections              []gamification.SectionProgress `json:"sections"`
	OverallPercent        int                            `json:"overall_percent"`
	CertificateCount      int                            `json:"certificate_count"`
	TotalCompletedLessons int                            `json:"total_completed_lessons"`
	ContinueCourse        *gamification.SectionProgress  `json:"continue_course,omitempty"`
	XP                    int                            `json:"xp"`
	Level                 gamification.LevelInfo         `json:"level"`
	Streak                gamification.StreakInfo        `json:"streak"`
	StreakMessage         string                         `json:"streak_message"`
	Badges                gamification.BadgeReport       `json:"badges"`
	Quiz                  QuizSummary                    `json:"quiz"`
}

// Profile is the public card of a learner: identity plus level and the
// courses still in progress.
type Profile struct {
	ID            uint                           `json:"id"`
	DisplayName   string                         `json:"display_name"`
	Email         string                         `json:"email"`
	Role          string                         `json:"role"`
	ImageURL      string                         `json:"image_url,omitempty"`
	CreatedAt     time.Time                      `json:"created_at"`
	Level         gamification.LevelInfo         `json:"level"`
	CurrentStreak int                            `json:"current_streak"`
	EarnedBadges  int                            `json:"earned_badges"`
	ActiveCourses []gamification.SectionProgress `json:"active_courses"`
}

const (
	// activeCoursesLimit caps Profile.ActiveCourses.
	activeCoursesLimit = 3
	leaderboardWorkers = 4
)

type ProfileService interface {
	GetDashboard(ctx context.Context, userID uint) (*Dashboard, error)
	GetProfile(ctx context.Context, userID uint) (*Profile, error)
	GetLeaderboard(ctx context.Context) ([]gamification.LeaderboardEntry, error)
}

type profileService struct {
	log   *utils.Logger
	repos *repository.Repos
	opts  options
}

func NewProfileService(log *utils.Logger, repos *repository.Repos, opts ...Option) ProfileService {
	return &profileService{
		log:   log.With("service", "ProfileService"),
		repos: repos,
		opts:  buildOptions(opts),
	}
}

// activity is everything one learner has recorded.
type activity struct {
	enrollments  []*models.Enrollment
	progress     []*models.ProgressRecord
	attempts     []*models.QuizAttempt
	certificates []*models.Certificate
}

// activityScore holds the figures derived from an activity.
type activityScore struct {
	completedLessons int
	xp               int
	streak           gamification.StreakInfo
	badges           gamification.BadgeReport
	quiz             QuizSummary
}

func (s *profileService) loadActivity(ctx context.Context, userID uint) (*activity, error) {
	var a activity

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a.enrollments, err = s.repos.Enrollments.GetByUserID(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		a.progress, err = s.repos.Progress.GetByUserID(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		a.attempts, err = s.repos.Attempts.GetByUserID(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		a.certificates, err = s.repos.Certificates.GetByUserID(gctx, nil, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &a, nil
}

// score derives XP, streak and badges. Active days come from watch and quiz
// attempt timestamps only.
func (s *profileService) score(a *activity) activityScore {
	var days []time.Time
	completedLessons := 0
	for _, p := range a.progress {
		days = append(days, p.LastWatchedAt)
		if p.Completed {
			completedLessons++
		}
	}
	passed, perfect := 0, 0
	for _, at := range a.attempts {
		days = append(days, at.AttemptedAt)
		if at.Passed {
			passed++
		}
		if at.Score == 100 {
			perfect++
		}
	}

	streak := gamification.ComputeStreak(days, s.opts.now())
	quiz := summarize(a.attempts)

	return activityScore{
		completedLessons: completedLessons,
		xp: gamification.CalculateXP(gamification.ActivityStats{
			CompletedLessons: completedLessons,
			QuizAttempts:     len(a.attempts),
			PassedAttempts:   passed,
			PerfectAttempts:  perfect,
			Certificates:     len(a.certificates),
			ActiveDays:       streak.TotalActiveDays,
		}),
		streak: streak,
		badges: gamification.EvaluateBadges(gamification.BadgeStats{
			Enrollments:      len(a.enrollments),
			CompletedLessons: completedLessons,
			QuizAttempts:     len(a.attempts),
			PassedAttempts:   passed,
			BestScore:        quiz.BestScore,
			Certificates:     len(a.certificates),
			LongestStreak:    streak.LongestStreak,
		}),
		quiz: quiz,
	}
}

func (s *profileService) GetDashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	a, err := s.loadActivity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	courseIDs := make([]uint, 0, len(a.enrollments))
	for _, e := range a.enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}
	courses, err := s.repos.Courses.GetByIDs(ctx, nil, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load dashboard courses: %w", err)
	}
	lessonCounts, err := s.repos.Lessons.CountPublishedByCourseIDs(ctx, nil, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load dashboard lessons: %w", err)
	}

	sections := buildSections(a.enrollments, courses, lessonCounts, a.progress, a.certificates)
	sc := s.score(a)

	return &Dashboard{
		Sections:              sections,
		OverallPercent:        gamification.CalcOverallPercent(sections),
		CertificateCount:      gamification.CountCertificates(sections),
		TotalCompletedLessons: gamification.TotalCompletedLessons(sections),
		ContinueCourse:        gamification.PickContinueCourse(sections),
		XP:                    sc.xp,
		Level:                 gamification.ComputeLevel(sc.xp),
		Streak:                sc.streak,
		StreakMessage:         gamification.StreakMessage(sc.streak.CurrentStreak),
		Badges:                sc.badges,
		Quiz:                  sc.quiz,
	}, nil
}

// GetLeaderboard scores every learner and returns the ranked top of the list.
func (s *profileService) GetLeaderboard(ctx context.Context) ([]gamification.LeaderboardEntry, error) {
	users, err := s.repos.Users.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	entries := make([]gamification.LeaderboardEntry, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(leaderboardWorkers)
	for i, u := range users {
		i, u := i, u
		g.Go(func() error {
			a, err := s.loadActivity(gctx, u.ID)
			if err != nil {
				return fmt.Errorf("load activity for user %d: %w", u.ID, err)
			}
			sc := s.score(a)
			entries[i] = gamification.LeaderboardEntry{
				UserID:             u.ID,
				Name:               u.DisplayName(),
				ImageURL:           u.ImageURL,
				TotalXP:            sc.xp,
				Level:              gamification.ComputeLevel(sc.xp).Level,
				CompletedLessons:   sc.completedLessons,
				CertificatesEarned: len(a.certificates),
				BadgesEarned:       sc.badges.EarnedCount,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build leaderboard: %w", err)
	}

	return gamification.RankLeaderboard(entries), nil
}

func (s *profileService) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.repos.Users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apperr.ErrUserNotFound
	}

	dashboard, err := s.GetDashboard(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Most advanced unfinished courses first.
	sorted := gamification.SortByCompletion(dashboard.Sections)
	active := make([]gamification.SectionProgress, 0, activeCoursesLimit)
	for i := len(sorted) - 1; i >= 0 && len(active) < activeCoursesLimit; i-- {
		if sorted[i].CompletionPercent < 100 {
			active = append(active, sorted[i])
		}
	}

	return &Profile{
		ID:            user.ID,
		DisplayName:   user.DisplayName(),
		Email:         user.Email,
		Role:          user.Role,
		ImageURL:      user.ImageURL,
		CreatedAt:     user.CreatedAt,
		Level:         dashboard.Level,
		CurrentStreak: dashboard.Streak.CurrentStreak,
		EarnedBadges:  dashboard.Badges.EarnedCount,
		ActiveCourses: active,
	}, nil
}

// buildSections produces one entry per enrolled course, in enrollment order.
func buildSections(
	enrollments []*models.Enrollment,
	courses []*models.Course,
	lessonCounts map[uint]int,
	progress []*models.ProgressRecord,
	certificates []*models.Certificate,
) []gamification.SectionProgress {
	titles := make(map[uint]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}
	completed := make(map[uint]int)
	for _, p := range progress {
		if p.Completed {
			completed[p.CourseID]++
		}
	}
	certs := make(map[uint]string, len(certificates))
	for _, c := range certificates {
		certs[c.CourseID] = c.CertificateNumber
	}

	sections := make([]gamification.SectionProgress, 0, len(enrollments))
	for _, e := range enrollments {
		title, ok := titles[e.CourseID]
		if !ok {
			continue
		}
		number, hasCert := certs[e.CourseID]
		sections = append(sections, gamification.SectionProgress{
			CourseID:          e.CourseID,
			CourseTitle:       title,
			CompletedLessons:  completed[e.CourseID],
			TotalLessons:      lessonCounts[e.CourseID],
			CompletionPercent: gamification.CompletionPercent(completed[e.CourseID], lessonCounts[e.CourseID]),
			HasCertificate:    hasCert,
			CertificateNumber: number,
			EnrolledAt:        e.EnrolledAt,
		})
	}
	return sections
}
