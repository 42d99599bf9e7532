package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coursetrack/backend/apperr"
	"coursetrack/backend/models"
	"coursetrack/backend/repository"
	"coursetrack/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	ctx   context.Context
	db    *gorm.DB
	repos *repository.Repos
	svc   *Services
	clock *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingCache struct {
	mu    sync.Mutex
	items map[string]*models.Certificate
	gets  int
	sets  int
}

func (c *countingCache) Get(_ context.Context, number string) (*models.Certificate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.items[number], nil
}

func (c *countingCache) Set(_ context.Context, cert *models.Certificate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.items[cert.CertificateNumber] = cert
	return nil
}

func (c *countingCache) Close() error { return nil }

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	clock := &fakeClock{now: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)}
	repos := repository.New(db, log)

	all := append([]Option{WithClock(clock.Now)}, opts...)
	svc := New(Deps{
		DB:                db,
		Log:               log,
		Repos:             repos,
		CertificateCache:  &countingCache{items: map[string]*models.Certificate{}},
		CertificatePrefix: "HD",
	}, all...)

	return &env{ctx: context.Background(), db: db, repos: repos, svc: svc, clock: clock}
}

func TestUpdateProgressMergesMonotonically(t *testing.T) {
	e := newEnv(t)
	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)
	lesson := lessons[0]

	rec, err := e.svc.Progress.UpdateProgress(e.ctx, 1, lesson.ID, course.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rec.ProgressPercent)
	assert.False(t, rec.Completed)
	assert.Nil(t, rec.CompletedAt)

	e.clock.Advance(time.Minute)
	rec, err = e.svc.Progress.UpdateProgress(e.ctx, 1, lesson.ID, course.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rec.ProgressPercent, "percent never decreases")
	assert.True(t, rec.LastWatchedAt.Equal(e.clock.Now()))
}

func TestUpdateProgressCompletesOnce(t *testing.T) {
	e := newEnv(t)
	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)
	lesson := lessons[0]

	completedAt := e.clock.Now()
	rec, err := e.svc.Progress.UpdateProgress(e.ctx, 1, lesson.ID, course.ID, 90)
	require.NoError(t, err)
	assert.True(t, rec.Completed)
	require.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.CompletedAt.Equal(completedAt))

	e.clock.Advance(time.Hour)
	rec, err = e.svc.Progress.UpdateProgress(e.ctx, 1, lesson.ID, course.ID, 10)
	require.NoError(t, err)
	assert.True(t, rec.Completed, "completed is sticky")
	assert.Equal(t, 90.0, rec.ProgressPercent)
	assert.True(t, rec.CompletedAt.Equal(completedAt), "completedAt is written once")

	e.clock.Advance(time.Hour)
	rec, err = e.svc.Progress.MarkComplete(e.ctx, 1, lesson.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rec.ProgressPercent)
	assert.True(t, rec.CompletedAt.Equal(completedAt))
}

func TestMarkCompleteCreatesRecord(t *testing.T) {
	e := newEnv(t)
	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)

	rec, err := e.svc.Progress.MarkComplete(e.ctx, 1, lessons[0].ID, course.ID)
	require.NoError(t, err)
	assert.True(t, rec.Completed)
	assert.Equal(t, 100.0, rec.ProgressPercent)
	require.NotNil(t, rec.CompletedAt)

	got, err := e.svc.Progress.GetForLesson(e.ctx, 1, lessons[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)

	missing, err := e.svc.Progress.GetForLesson(e.ctx, 2, lessons[0].ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateProgressRejectsMissingKeys(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Progress.UpdateProgress(e.ctx, 0, 1, 1, 10)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestCourseCompletion(t *testing.T) {
	e := newEnv(t)

	empty, _ := testutil.SeedCourse(t, e.ctx, e.db, "empty", 0, 2)
	pct, err := e.svc.Completion.GetCourseCompletion(e.ctx, 1, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pct)

	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 3, 1)
	for _, l := range lessons[:2] {
		_, err := e.svc.Progress.MarkComplete(e.ctx, 1, l.ID, course.ID)
		require.NoError(t, err)
	}
	_, err = e.svc.Progress.UpdateProgress(e.ctx, 1, lessons[2].ID, course.ID, 40)
	require.NoError(t, err)

	pct, err = e.svc.Completion.GetCourseCompletion(e.ctx, 1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, pct)
}

func TestGradeOrdersBySequence(t *testing.T) {
	questions := []*models.QuizQuestion{
		{SequenceOrder: 2, CorrectIndex: 3, Options: []string{"a", "b", "c", "d"}},
		{SequenceOrder: 0, CorrectIndex: 1, Options: []string{"a", "b", "c", "d"}},
		{SequenceOrder: 1, CorrectIndex: 2, Options: []string{"a", "b", "c", "d"}},
	}
	assert.Equal(t, 3, grade(questions, []int{1, 2, 3}))
	assert.Equal(t, 0, grade(questions, []int{3, 1, 2}))
	assert.Equal(t, 1, grade(questions, []int{1}))
	assert.Equal(t, 0, grade(questions, []int{-1, 9, 99}))
}

func TestSubmitAttemptScoring(t *testing.T) {
	e := newEnv(t)
	_, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)
	quiz := testutil.SeedQuiz(t, e.ctx, e.db, lessons[0], 70,
		testutil.QuestionSpec{Order: 0, CorrectIndex: 0},
		testutil.QuestionSpec{Order: 1, CorrectIndex: 1},
		testutil.QuestionSpec{Order: 2, CorrectIndex: 2},
	)

	tests := []struct {
		name    string
		answers []int
		score   int
		passed  bool
	}{
		{"all correct", []int{0, 1, 2}, 100, true},
		{"all wrong", []int{3, 3, 3}, 0, false},
		{"two of three", []int{0, 1, 0}, 67, false},
		{"missing answers", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.svc.Quizzes.SubmitAttempt(e.ctx, SubmitAttemptInput{
				UserID:  1,
				QuizID:  quiz.ID,
				Answers: tt.answers,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.passed, res.Passed)
			assert.Equal(t, 3, res.TotalQuestions)
			assert.Zero(t, res.AttemptNumber)
		})
	}

	attempts, err := e.svc.Quizzes.GetAttemptsByUserAndQuiz(e.ctx, 1, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, len(tests))
	assert.Equal(t, lessons[0].ID, attempts[0].LessonID)
	assert.Equal(t, lessons[0].CourseID, attempts[0].CourseID)
}

func TestSubmitEnhancedAttemptNumbers(t *testing.T) {
	e := newEnv(t)
	_, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)
	quiz := testutil.SeedQuiz(t, e.ctx, e.db, lessons[0], 50, testutil.QuestionSpec{CorrectIndex: 1})

	for want := 1; want <= 3; want++ {
		res, err := e.svc.Quizzes.SubmitEnhancedAttempt(e.ctx, SubmitAttemptInput{
			UserID: 7, QuizID: quiz.ID, Answers: []int{1}, TimeTakenSeconds: 42,
		})
		require.NoError(t, err)
		assert.Equal(t, want, res.AttemptNumber)
		assert.Equal(t, 42, res.TimeTakenSeconds)
	}

	other, err := e.svc.Quizzes.SubmitEnhancedAttempt(e.ctx, SubmitAttemptInput{UserID: 8, QuizID: quiz.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, other.AttemptNumber)
}

func TestSubmitAttemptFailures(t *testing.T) {
	e := newEnv(t)
	_, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)
	empty := testutil.SeedQuiz(t, e.ctx, e.db, lessons[0], 50)

	_, err := e.svc.Quizzes.SubmitAttempt(e.ctx, SubmitAttemptInput{UserID: 1, QuizID: 999})
	assert.True(t, errors.Is(err, apperr.ErrQuizNotFound))

	_, err = e.svc.Quizzes.SubmitAttempt(e.ctx, SubmitAttemptInput{UserID: 1, QuizID: empty.ID, Answers: []int{0}})
	assert.True(t, errors.Is(err, apperr.ErrNoQuestions))

	var n int64
	require.NoError(t, e.db.Model(&models.QuizAttempt{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestBestLastAndSummary(t *testing.T) {
	e := newEnv(t)
	_, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 2, 0)
	q1 := testutil.SeedQuiz(t, e.ctx, e.db, lessons[0], 50,
		testutil.QuestionSpec{Order: 0, CorrectIndex: 0},
		testutil.QuestionSpec{Order: 1, CorrectIndex: 0},
		testutil.QuestionSpec{Order: 2, CorrectIndex: 0},
		testutil.QuestionSpec{Order: 3, CorrectIndex: 0},
		testutil.QuestionSpec{Order: 4, CorrectIndex: 0},
	)
	q2 := testutil.SeedQuiz(t, e.ctx, e.db, lessons[1], 50, testutil.QuestionSpec{CorrectIndex: 0})

	none, err := e.svc.Quizzes.GetBestScore(e.ctx, 1, q1.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
	summary, err := e.svc.Quizzes.GetUserQuizSummary(e.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, QuizSummary{}, summary)

	// Seed attempts directly so the scores are exact.
	for i, score := range []int{60, 85, 40} {
		require.NoError(t, e.repos.Attempts.Create(e.ctx, nil, &models.QuizAttempt{
			UserID: 1, QuizID: q1.ID, Score: score, Passed: score >= 50,
			AttemptedAt: e.clock.Now().Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, e.repos.Attempts.Create(e.ctx, nil, &models.QuizAttempt{
		UserID: 1, QuizID: q2.ID, Score: 100, Passed: true, AttemptedAt: e.clock.Now(),
	}))

	best, err := e.svc.Quizzes.GetBestScore(e.ctx, 1, q1.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, best.Score)

	last, err := e.svc.Quizzes.GetLastAttempt(e.ctx, 1, q1.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, last.Score)

	summary, err = e.svc.Quizzes.GetUserQuizSummary(e.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, QuizSummary{
		TotalAttempts:      4,
		TotalPassed:        3,
		AverageScore:       71,
		BestScore:          100,
		UniqueQuizzesTaken: 2,
	}, summary)
}

func TestCreateQuiz(t *testing.T) {
	e := newEnv(t)
	_, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)

	_, err := e.svc.Quizzes.Create(e.ctx, CreateQuizInput{
		LessonID: lessons[0].ID, Title: "q", PassingScore: 120,
		Questions: []QuestionInput{{Question: "x", Options: []string{"a", "b"}}},
	})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	_, err = e.svc.Quizzes.Create(e.ctx, CreateQuizInput{
		LessonID: lessons[0].ID, Title: "q", PassingScore: 60,
		Questions: []QuestionInput{{Question: "x", Options: []string{"a", "b"}, CorrectIndex: 2}},
	})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	_, err = e.svc.Quizzes.Create(e.ctx, CreateQuizInput{
		LessonID: 999, Title: "q", PassingScore: 60,
		Questions: []QuestionInput{{Question: "x", Options: []string{"a", "b"}}},
	})
	assert.True(t, errors.Is(err, apperr.ErrLessonNotFound))

	quiz, err := e.svc.Quizzes.Create(e.ctx, CreateQuizInput{
		LessonID: lessons[0].ID, Title: "q", PassingScore: 60,
		Questions: []QuestionInput{
			{Question: "first", Options: []string{"a", "b"}, CorrectIndex: 1},
			{Question: "second", Options: []string{"a", "b", "c"}, CorrectIndex: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, lessons[0].CourseID, quiz.CourseID)

	questions, err := e.svc.Quizzes.GetQuestions(e.ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "first", questions[0].Question)
	assert.Equal(t, []string{"a", "b", "c"}, []string(questions[1].Options))

	res, err := e.svc.Quizzes.SubmitAttempt(e.ctx, SubmitAttemptInput{UserID: 1, QuizID: quiz.ID, Answers: []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
}

func TestIssueCertificateEndToEnd(t *testing.T) {
	e := newEnv(t)
	user := testutil.SeedUser(t, e.ctx, e.db, "", "ada@example.com")
	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "Go Basics", 5, 0)

	for _, l := range lessons[:3] {
		_, err := e.svc.Progress.MarkComplete(e.ctx, user.ID, l.ID, course.ID)
		require.NoError(t, err)
	}

	_, err := e.svc.Certificates.Issue(e.ctx, user.ID, course.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientCompletion))
	assert.Contains(t, err.Error(), "60%")

	_, err = e.svc.Progress.UpdateProgress(e.ctx, user.ID, lessons[3].ID, course.ID, 95)
	require.NoError(t, err)

	cert, err := e.svc.Certificates.Issue(e.ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, cert.CompletionPercent)
	assert.Equal(t, "ada@example.com", cert.UserName)
	assert.Equal(t, "Go Basics", cert.CourseName)
	assert.Regexp(t, `^HD-[0-9A-Z]+-[0-9A-Z]{4}$`, cert.CertificateNumber)

	// Completing the last lesson does not change the stored snapshot.
	_, err = e.svc.Progress.MarkComplete(e.ctx, user.ID, lessons[4].ID, course.ID)
	require.NoError(t, err)
	again, err := e.svc.Certificates.Issue(e.ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, again.ID)
	assert.Equal(t, cert.CertificateNumber, again.CertificateNumber)
	assert.Equal(t, 80, again.CompletionPercent)

	var n int64
	require.NoError(t, e.db.Model(&models.Certificate{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestIssueCertificateFailures(t *testing.T) {
	e := newEnv(t)
	user := testutil.SeedUser(t, e.ctx, e.db, "Ada", "ada@example.com")

	empty, _ := testutil.SeedCourse(t, e.ctx, e.db, "drafts only", 0, 3)
	_, err := e.svc.Certificates.Issue(e.ctx, user.ID, empty.ID)
	assert.True(t, errors.Is(err, apperr.ErrCourseNotReady))

	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)
	_, err = e.svc.Progress.MarkComplete(e.ctx, 404, lessons[0].ID, course.ID)
	require.NoError(t, err)
	_, err = e.svc.Certificates.Issue(e.ctx, 404, course.ID)
	assert.True(t, errors.Is(err, apperr.ErrUserNotFound))
}

func TestIssueCertificateRetriesNumberCollision(t *testing.T) {
	suffixes := []string{"AAAA", "AAAA", "BBBB"}
	var mu sync.Mutex
	next := func(int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		s := suffixes[0]
		suffixes = suffixes[1:]
		return s, nil
	}
	e := newEnv(t, WithSuffixSource(next))

	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)
	ada := testutil.SeedUser(t, e.ctx, e.db, "Ada", "ada@example.com")
	bob := testutil.SeedUser(t, e.ctx, e.db, "Bob", "bob@example.com")
	for _, u := range []*models.User{ada, bob} {
		_, err := e.svc.Progress.MarkComplete(e.ctx, u.ID, lessons[0].ID, course.ID)
		require.NoError(t, err)
	}

	first, err := e.svc.Certificates.Issue(e.ctx, ada.ID, course.ID)
	require.NoError(t, err)
	second, err := e.svc.Certificates.Issue(e.ctx, bob.ID, course.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first.CertificateNumber, second.CertificateNumber)
	assert.Regexp(t, `-BBBB$`, second.CertificateNumber)
	assert.Equal(t, "Bob", second.UserName)
}

// racingCertificates stores a competing certificate for the same pair right
// before the service's own insert.
type racingCertificates struct {
	repository.CertificateRepo
	rival *models.Certificate
	once  sync.Once
}

func (r *racingCertificates) CreateIfAbsent(ctx context.Context, tx *gorm.DB, cert *models.Certificate) (bool, error) {
	var err error
	r.once.Do(func() {
		_, err = r.CertificateRepo.CreateIfAbsent(ctx, tx, r.rival)
	})
	if err != nil {
		return false, err
	}
	return r.CertificateRepo.CreateIfAbsent(ctx, tx, cert)
}

func TestIssueCertificateReturnsConcurrentWinner(t *testing.T) {
	e := newEnv(t)
	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)
	ada := testutil.SeedUser(t, e.ctx, e.db, "Ada", "ada@example.com")
	_, err := e.svc.Progress.MarkComplete(e.ctx, ada.ID, lessons[0].ID, course.ID)
	require.NoError(t, err)

	racing := &racingCertificates{
		CertificateRepo: e.repos.Certificates,
		rival: &models.Certificate{
			UserID:            ada.ID,
			CourseID:          course.ID,
			UserName:          "Ada",
			CourseName:        "go",
			CompletionPercent: 100,
			IssuedAt:          e.clock.Now(),
			CertificateNumber: "HD-WINNER-0000",
		},
	}
	svc := NewCertificateService(testutil.Logger(t), racing, e.repos.Users, e.repos.Courses,
		e.svc.Completion, nil, "HD", WithClock(e.clock.Now))

	cert, err := svc.Issue(e.ctx, ada.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "HD-WINNER-0000", cert.CertificateNumber)

	var rows int64
	require.NoError(t, e.db.Model(&models.Certificate{}).
		Where("user_id = ? AND course_id = ?", ada.ID, course.ID).
		Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestVerifyCertificateUsesCache(t *testing.T) {
	e := newEnv(t)
	user := testutil.SeedUser(t, e.ctx, e.db, "Ada", "ada@example.com")
	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)
	_, err := e.svc.Progress.MarkComplete(e.ctx, user.ID, lessons[0].ID, course.ID)
	require.NoError(t, err)
	cert, err := e.svc.Certificates.Issue(e.ctx, user.ID, course.ID)
	require.NoError(t, err)

	missing, err := e.svc.Certificates.VerifyByCertificateNumber(e.ctx, "HD-NOPE-0000")
	require.NoError(t, err)
	assert.Nil(t, missing)

	got, err := e.svc.Certificates.VerifyByCertificateNumber(e.ctx, cert.CertificateNumber)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cert.ID, got.ID)

	view, err := e.svc.Certificates.GetForSharing(e.ctx, cert.CertificateNumber)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "Ada", view.UserName)
	assert.Equal(t, 100, view.CompletionPercent)

	c := e.svc.Certificates.(*certificateService).cache.(*countingCache)
	assert.Equal(t, 1, c.sets, "second lookup is served from the cache")

	list, err := e.svc.Certificates.ListByUser(e.ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEnrollment(t *testing.T) {
	e := newEnv(t)
	course, _ := testutil.SeedCourse(t, e.ctx, e.db, "go", 1, 0)
	draft := &models.Course{Title: "draft"}
	require.NoError(t, e.db.Create(draft).Error)

	_, err := e.svc.Enrollments.Enroll(e.ctx, 1, 999)
	assert.True(t, errors.Is(err, apperr.ErrCourseNotFound))
	_, err = e.svc.Enrollments.Enroll(e.ctx, 1, draft.ID)
	assert.True(t, errors.Is(err, apperr.ErrCourseNotPublished))

	first, err := e.svc.Enrollments.Enroll(e.ctx, 1, course.ID)
	require.NoError(t, err)
	e.clock.Advance(time.Hour)
	second, err := e.svc.Enrollments.Enroll(e.ctx, 1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.EnrolledAt.Equal(first.EnrolledAt))

	ok, err := e.svc.Enrollments.IsEnrolled(e.ctx, 1, course.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := e.svc.Enrollments.ListByUser(e.ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "go", list[0].Course.Title)
}

func TestCourseAdministration(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Courses.CreateCourse(e.ctx, CreateCourseInput{})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	course, err := e.svc.Courses.CreateCourse(e.ctx, CreateCourseInput{Title: "Go", Published: true})
	require.NoError(t, err)

	_, err = e.svc.Courses.AddLesson(e.ctx, 999, CreateLessonInput{Title: "l"})
	assert.True(t, errors.Is(err, apperr.ErrCourseNotFound))

	lesson, err := e.svc.Courses.AddLesson(e.ctx, course.ID, CreateLessonInput{Title: "intro"})
	require.NoError(t, err)
	assert.False(t, lesson.Published)

	pct, err := e.svc.Completion.GetCourseCompletion(e.ctx, 1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pct)

	require.NoError(t, e.svc.Courses.SetLessonPublished(e.ctx, lesson.ID, true))
	_, err = e.svc.Progress.MarkComplete(e.ctx, 1, lesson.ID, course.ID)
	require.NoError(t, err)
	pct, err = e.svc.Completion.GetCourseCompletion(e.ctx, 1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)

	err = e.svc.Courses.SetLessonPublished(e.ctx, 999, true)
	assert.True(t, errors.Is(err, apperr.ErrLessonNotFound))
}

func TestDashboard(t *testing.T) {
	e := newEnv(t)
	user := testutil.SeedUser(t, e.ctx, e.db, "Ada", "ada@example.com")
	goCourse, goLessons := testutil.SeedCourse(t, e.ctx, e.db, "Go", 2, 0)
	sqlCourse, _ := testutil.SeedCourse(t, e.ctx, e.db, "SQL", 3, 0)

	_, err := e.svc.Enrollments.Enroll(e.ctx, user.ID, sqlCourse.ID)
	require.NoError(t, err)
	_, err = e.svc.Enrollments.Enroll(e.ctx, user.ID, goCourse.ID)
	require.NoError(t, err)

	_, err = e.svc.Progress.MarkComplete(e.ctx, user.ID, goLessons[0].ID, goCourse.ID)
	require.NoError(t, err)
	quiz := testutil.SeedQuiz(t, e.ctx, e.db, goLessons[0], 50, testutil.QuestionSpec{CorrectIndex: 0})
	_, err = e.svc.Quizzes.SubmitAttempt(e.ctx, SubmitAttemptInput{UserID: user.ID, QuizID: quiz.ID, Answers: []int{0}})
	require.NoError(t, err)

	d, err := e.svc.Profile.GetDashboard(e.ctx, user.ID)
	require.NoError(t, err)

	require.Len(t, d.Sections, 2)
	assert.Equal(t, "SQL", d.Sections[0].CourseTitle)
	assert.Equal(t, 50, d.Sections[1].CompletionPercent)
	assert.Equal(t, 20, d.OverallPercent)
	assert.Equal(t, 1, d.TotalCompletedLessons)
	require.NotNil(t, d.ContinueCourse)
	assert.Equal(t, goCourse.ID, d.ContinueCourse.CourseID)

	// lesson 10 + attempt 5 + passed 15 + perfect 25 + one active day 3
	assert.Equal(t, 58, d.XP)
	assert.Equal(t, 2, d.Level.Level)
	assert.Equal(t, 1, d.Streak.CurrentStreak)
	assert.True(t, d.Streak.IsActiveToday)
	assert.Equal(t, 1, d.Quiz.TotalAttempts)
	assert.Equal(t, 100, d.Quiz.BestScore)
	assert.Positive(t, d.Badges.EarnedCount)
}

func TestProfile(t *testing.T) {
	e := newEnv(t)
	user := testutil.SeedUser(t, e.ctx, e.db, "", "grace@example.com")
	goCourse, goLessons := testutil.SeedCourse(t, e.ctx, e.db, "Go", 2, 0)
	sqlCourse, _ := testutil.SeedCourse(t, e.ctx, e.db, "SQL", 3, 0)
	done, doneLessons := testutil.SeedCourse(t, e.ctx, e.db, "Done", 1, 0)

	for _, id := range []uint{sqlCourse.ID, goCourse.ID, done.ID} {
		_, err := e.svc.Enrollments.Enroll(e.ctx, user.ID, id)
		require.NoError(t, err)
	}
	_, err := e.svc.Progress.MarkComplete(e.ctx, user.ID, goLessons[0].ID, goCourse.ID)
	require.NoError(t, err)
	_, err = e.svc.Progress.MarkComplete(e.ctx, user.ID, doneLessons[0].ID, done.ID)
	require.NoError(t, err)

	p, err := e.svc.Profile.GetProfile(e.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", p.DisplayName)
	assert.Equal(t, "student", p.Role)
	assert.Equal(t, 1, p.CurrentStreak)
	require.Len(t, p.ActiveCourses, 2)
	assert.Equal(t, "Go", p.ActiveCourses[0].CourseTitle)
	assert.Equal(t, "SQL", p.ActiveCourses[1].CourseTitle)

	_, err = e.svc.Profile.GetProfile(e.ctx, 9999)
	assert.True(t, errors.Is(err, apperr.ErrUserNotFound))
}

func TestDashboardActiveDaysIgnoreCompletionTime(t *testing.T) {
	e := newEnv(t)
	user := testutil.SeedUser(t, e.ctx, e.db, "Ada", "ada@example.com")
	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "Go", 1, 0)
	_, err := e.svc.Enrollments.Enroll(e.ctx, user.ID, course.ID)
	require.NoError(t, err)

	_, err = e.svc.Progress.UpdateProgress(e.ctx, user.ID, lessons[0].ID, course.ID, 95)
	require.NoError(t, err)
	e.clock.Advance(4 * 24 * time.Hour)
	_, err = e.svc.Progress.UpdateProgress(e.ctx, user.ID, lessons[0].ID, course.ID, 10)
	require.NoError(t, err)

	d, err := e.svc.Profile.GetDashboard(e.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Streak.TotalActiveDays)
	// lesson 10 + one active day 3
	assert.Equal(t, 13, d.XP)
}

func TestLeaderboard(t *testing.T) {
	e := newEnv(t)
	ada := testutil.SeedUser(t, e.ctx, e.db, "Ada", "ada@example.com")
	bob := testutil.SeedUser(t, e.ctx, e.db, "", "bob@example.com")
	testutil.SeedUser(t, e.ctx, e.db, "Idle", "idle@example.com")
	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "Go", 2, 0)

	_, err := e.svc.Progress.MarkComplete(e.ctx, ada.ID, lessons[0].ID, course.ID)
	require.NoError(t, err)
	quiz := testutil.SeedQuiz(t, e.ctx, e.db, lessons[1], 50, testutil.QuestionSpec{CorrectIndex: 0})
	_, err = e.svc.Quizzes.SubmitAttempt(e.ctx, SubmitAttemptInput{UserID: bob.ID, QuizID: quiz.ID, Answers: []int{0}})
	require.NoError(t, err)

	board, err := e.svc.Profile.GetLeaderboard(e.ctx)
	require.NoError(t, err)
	require.Len(t, board, 2, "learners without XP are left out")

	// attempt 5 + passed 15 + perfect 25 + one active day 3
	assert.Equal(t, bob.ID, board[0].UserID)
	assert.Equal(t, "bob@example.com", board[0].Name)
	assert.Equal(t, 48, board[0].TotalXP)
	assert.Equal(t, 1, board[0].Rank)
	assert.Positive(t, board[0].BadgesEarned)

	// lesson 10 + one active day 3
	assert.Equal(t, ada.ID, board[1].UserID)
	assert.Equal(t, 13, board[1].TotalXP)
	assert.Equal(t, 1, board[1].CompletedLessons)
	assert.Equal(t, 2, board[1].Rank)
}

func TestScoreHistory(t *testing.T) {
	e := newEnv(t)
	course, lessons := testutil.SeedCourse(t, e.ctx, e.db, "Go", 1, 0)
	quiz := testutil.SeedQuiz(t, e.ctx, e.db, lessons[0], 50, testutil.QuestionSpec{CorrectIndex: 0})

	_, err := e.svc.Quizzes.SubmitAttempt(e.ctx, SubmitAttemptInput{UserID: 1, QuizID: quiz.ID, Answers: []int{1}})
	require.NoError(t, err)
	e.clock.Advance(time.Hour)
	_, err = e.svc.Quizzes.SubmitAttempt(e.ctx, SubmitAttemptInput{UserID: 1, QuizID: quiz.ID, Answers: []int{0}})
	require.NoError(t, err)
	require.NoError(t, e.repos.Attempts.Create(e.ctx, nil, &models.QuizAttempt{
		UserID: 1, QuizID: 999, CourseID: 998, Score: 70, Passed: true,
		AttemptedAt: e.clock.Now().Add(-2 * time.Hour),
	}))

	history, err := e.svc.Quizzes.GetScoreHistory(e.ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, 100, history[0].Score)
	assert.Equal(t, "quiz", history[0].QuizTitle)
	assert.Equal(t, "Go", history[0].CourseTitle)
	assert.Equal(t, course.ID, history[0].CourseID)
	assert.Equal(t, 0, history[1].Score)
	assert.Equal(t, unknownQuizTitle, history[2].QuizTitle)
	assert.Equal(t, unknownCourseTitle, history[2].CourseTitle)

	empty, err := e.svc.Quizzes.GetScoreHistory(e.ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
