// Package services implements the learning progress engine: lesson progress,
// course completion, quiz grading, certificate issuance, enrollment and the
// learner dashboard.
package services

import (
	"time"

	"coursetrack/backend/cache"
	"coursetrack/backend/repository"
	"coursetrack/backend/utils"

	"gorm.io/gorm"
)

// Option tunes a service at construction time.
type Option func(*options)

type options struct {
	now    func() time.Time
	suffix func(n int) (string, error)
}

func defaultOptions() options {
	return options{
		now:    func() time.Time { return time.Now().UTC() },
		suffix: randomBase36,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces time.Now for timestamps written by the service.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSuffixSource replaces the random source of certificate number suffixes.
func WithSuffixSource(fn func(n int) (string, error)) Option {
	return func(o *options) { o.suffix = fn }
}

// Services is the wired set used by the HTTP layer.
type Services struct {
	Progress     ProgressService
	Completion   CompletionService
	Quizzes      QuizService
	Certificates CertificateService
	Enrollments  EnrollmentService
	Courses      CourseService
	Profile      ProfileService
}

type Deps struct {
	DB                *gorm.DB
	Log               *utils.Logger
	Repos             *repository.Repos
	CertificateCache  cache.CertificateCache
	CertificatePrefix string
}

func New(deps Deps, opts ...Option) *Services {
	completion := NewCompletionService(deps.Log, deps.Repos.Lessons, deps.Repos.Progress)
	return &Services{
		Progress:   NewProgressService(deps.Log, deps.Repos.Progress, opts...),
		Completion: completion,
		Quizzes:    NewQuizService(deps.DB, deps.Log, deps.Repos.Quizzes, deps.Repos.Attempts, deps.Repos.Lessons,
			deps.Repos.Courses, opts...),
		Certificates: NewCertificateService(deps.Log, deps.Repos.Certificates, deps.Repos.Users,
			deps.Repos.Courses, completion, deps.CertificateCache, deps.CertificatePrefix, opts...),
		Enrollments: NewEnrollmentService(deps.Log, deps.Repos.Enrollments, deps.Repos.Courses, opts...),
		Courses:     NewCourseService(deps.Log, deps.Repos.Courses, deps.Repos.Lessons),
		Profile:     NewProfileService(deps.Log, deps.Repos, opts...),
	}
}
