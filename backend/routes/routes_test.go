package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"coursetrack/backend/cache"
	"coursetrack/backend/config"
	"coursetrack/backend/middleware"
	"coursetrack/backend/models"
	"coursetrack/backend/repository"
	"coursetrack/backend/routes"
	"coursetrack/backend/services"
	"coursetrack/backend/testutil"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

type testApp struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.DB(t)
	logger := testutil.Logger(t)
	cfg := &config.Config{JWTSecret: "test-secret", CertificatePrefix: "CERT"}

	repos := repository.New(db, logger)
	svc := services.New(services.Deps{
		DB:                db,
		Log:               logger,
		Repos:             repos,
		CertificateCache:  cache.NewNopCertificateCache(),
		CertificatePrefix: cfg.CertificatePrefix,
	})

	app := fiber.New()
	app.Use(middleware.LoggingMiddleware(logger))
	routes.SetupRoutes(app, cfg, repos, svc)

	return &testApp{app: app, db: db, cfg: cfg}
}

func (ta *testApp) token(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := utils.GenerateJWTToken(userID, ta.cfg)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (ta *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (ta *testApp) seedAdmin(t *testing.T) *models.User {
	t.Helper()
	admin := &models.User{Name: "Admin", Email: "admin@example.com", Role: "admin"}
	require.NoError(t, ta.db.Create(admin).Error)
	return admin
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ta := newTestApp(t)

	status, env := ta.do(t, "GET", "/api/progress/overview", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = ta.do(t, "GET", "/api/courses", "Bearer not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAdminRoutesRejectStudents(t *testing.T) {
	ta := newTestApp(t)
	student := testutil.SeedUser(t, context.Background(), ta.db, "Student", "student@example.com")

	status, env := ta.do(t, "POST", "/api/admin/courses", ta.token(t, student.ID), map[string]interface{}{
		"title": "Go",
	})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.False(t, env.Success)
}

func TestRequestIDHeader(t *testing.T) {
	ta := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/certificates/verify/NOPE", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get(middleware.RequestIDHeader))

	req = httptest.NewRequest("GET", "/api/certificates/verify/NOPE", nil)
	resp, err = ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestCertificateFlow(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.seedAdmin(t)
	student := testutil.SeedUser(t, context.Background(), ta.db, "Ada Lovelace", "ada@example.com")
	adminToken := ta.token(t, admin.ID)
	studentToken := ta.token(t, student.ID)

	status, env := ta.do(t, "POST", "/api/admin/courses", adminToken, map[string]interface{}{
		"title":     "Distributed Systems",
		"published": true,
	})
	require.Equal(t, fiber.StatusCreated, status)
	var course models.Course
	require.NoError(t, json.Unmarshal(env.Data, &course))
	require.NotZero(t, course.ID)

	lessonIDs := make([]uint, 0, 5)
	for i := 0; i < 5; i++ {
		status, env = ta.do(t, "POST", fmt.Sprintf("/api/admin/courses/%d/lessons", course.ID), adminToken, map[string]interface{}{
			"title":          fmt.Sprintf("Lesson %d", i+1),
			"sequence_order": i,
			"published":      true,
		})
		require.Equal(t, fiber.StatusCreated, status)
		var lesson models.Lesson
		require.NoError(t, json.Unmarshal(env.Data, &lesson))
		lessonIDs = append(lessonIDs, lesson.ID)
	}

	status, _ = ta.do(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", course.ID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	for _, id := range lessonIDs[:3] {
		status, _ = ta.do(t, "POST", fmt.Sprintf("/api/progress/lessons/%d/complete", id), studentToken, map[string]interface{}{
			"course_id": course.ID,
		})
		require.Equal(t, fiber.StatusOK, status)
	}

	certPath := fmt.Sprintf("/api/courses/%d/certificate", course.ID)
	status, env = ta.do(t, "POST", certPath, studentToken, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "insufficient_completion", env.Code)
	assert.EqualValues(t, 60, env.Details["current"])
	assert.EqualValues(t, 80, env.Details["required"])

	status, _ = ta.do(t, "GET", certPath, studentToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	// 90% watched counts as completed.
	status, _ = ta.do(t, "POST", fmt.Sprintf("/api/progress/lessons/%d", lessonIDs[3]), studentToken, map[string]interface{}{
		"course_id":        course.ID,
		"progress_percent": 92,
	})
	require.Equal(t, fiber.StatusOK, status)

	status, env = ta.do(t, "GET", fmt.Sprintf("/api/progress/courses/%d/completion", course.ID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var completion services.CourseCompletion
	require.NoError(t, json.Unmarshal(env.Data, &completion))
	assert.Equal(t, 80, completion.Percent)

	status, env = ta.do(t, "POST", certPath, studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var cert models.Certificate
	require.NoError(t, json.Unmarshal(env.Data, &cert))
	assert.Regexp(t, `^CERT-[0-9A-Z]+-[0-9A-Z]{4}$`, cert.CertificateNumber)
	assert.Equal(t, "Ada Lovelace", cert.UserName)
	assert.Equal(t, "Distributed Systems", cert.CourseName)
	assert.Equal(t, 80, cert.CompletionPercent)

	status, env = ta.do(t, "POST", certPath, studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var again models.Certificate
	require.NoError(t, json.Unmarshal(env.Data, &again))
	assert.Equal(t, cert.CertificateNumber, again.CertificateNumber)

	status, env = ta.do(t, "GET", "/api/certificates/verify/"+cert.CertificateNumber, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var view services.ShareView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "Ada Lovelace", view.UserName)
	assert.Equal(t, cert.CertificateNumber, view.CertificateNumber)

	status, _ = ta.do(t, "GET", "/api/certificates/verify/CERT-UNKNOWN-0000", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = ta.do(t, "GET", "/api/certificates", studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var certs []models.Certificate
	require.NoError(t, json.Unmarshal(env.Data, &certs))
	assert.Len(t, certs, 1)
}

func TestEnrollUnpublishedCourse(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.seedAdmin(t)
	student := testutil.SeedUser(t, context.Background(), ta.db, "Student", "student@example.com")

	status, env := ta.do(t, "POST", "/api/admin/courses", ta.token(t, admin.ID), map[string]interface{}{
		"title": "Draft",
	})
	require.Equal(t, fiber.StatusCreated, status)
	var course models.Course
	require.NoError(t, json.Unmarshal(env.Data, &course))

	status, _ = ta.do(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", course.ID), ta.token(t, student.ID), nil)
	assert.NotEqual(t, fiber.StatusOK, status)

	status, _ = ta.do(t, "POST", "/api/courses/9999/enroll", ta.token(t, student.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestQuizFlow(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	admin := ta.seedAdmin(t)
	student := testutil.SeedUser(t, ctx, ta.db, "Student", "student@example.com")
	_, lessons := testutil.SeedCourse(t, ctx, ta.db, "Algorithms", 1, 0)
	studentToken := ta.token(t, student.ID)

	status, env := ta.do(t, "POST", "/api/admin/quizzes", ta.token(t, admin.ID), map[string]interface{}{
		"lesson_id":     lessons[0].ID,
		"title":         "Sorting",
		"passing_score": 50,
		"questions": []map[string]interface{}{
			{"question": "Stable?", "options": []string{"merge", "heap"}, "correct_index": 0},
			{"question": "In place?", "options": []string{"merge", "heap"}, "correct_index": 1},
		},
	})
	require.Equal(t, fiber.StatusCreated, status)
	var quiz models.Quiz
	require.NoError(t, json.Unmarshal(env.Data, &quiz))
	require.NotZero(t, quiz.ID)

	status, env = ta.do(t, "GET", fmt.Sprintf("/api/quizzes/%d/questions", quiz.ID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var questions []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &questions))
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.NotContains(t, q, "correct_index")
		assert.NotContains(t, q, "CorrectIndex")
	}

	attemptsPath := fmt.Sprintf("/api/quizzes/%d/attempts", quiz.ID)
	status, env = ta.do(t, "POST", attemptsPath, studentToken, map[string]interface{}{
		"answers":            []int{0, 0},
		"time_taken_seconds": 30,
	})
	require.Equal(t, fiber.StatusCreated, status)
	var first services.AttemptResult
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.Equal(t, 50, first.Score)
	assert.True(t, first.Passed)
	assert.Equal(t, 1, first.AttemptNumber)

	status, env = ta.do(t, "POST", attemptsPath, studentToken, map[string]interface{}{
		"answers": []int{0, 1},
	})
	require.Equal(t, fiber.StatusCreated, status)
	var second services.AttemptResult
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, 100, second.Score)
	assert.Equal(t, 2, second.AttemptNumber)

	status, env = ta.do(t, "GET", "/api/quizzes/summary", studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var summary services.QuizSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, services.QuizSummary{
		TotalAttempts:      2,
		TotalPassed:        2,
		AverageScore:       75,
		BestScore:          100,
		UniqueQuizzesTaken: 1,
	}, summary)

	status, _ = ta.do(t, "POST", "/api/quizzes/9999/attempts", studentToken, map[string]interface{}{
		"answers": []int{0},
	})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestProgressOverview(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	student := testutil.SeedUser(t, ctx, ta.db, "Student", "student@example.com")

	status, env := ta.do(t, "GET", "/api/progress/overview", ta.token(t, student.ID), nil)
	require.Equal(t, fiber.StatusOK, status)
	var dashboard map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	assert.NotEmpty(t, dashboard)
}

func TestUserProfile(t *testing.T) {
	ta := newTestApp(t)
	student := testutil.SeedUser(t, context.Background(), ta.db, "Linus", "linus@example.com")

	status, env := ta.do(t, "GET", "/api/users/profile", ta.token(t, student.ID), nil)
	require.Equal(t, fiber.StatusOK, status)
	var profile services.Profile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "Linus", profile.DisplayName)
	assert.Equal(t, 1, profile.Level.Level)
	assert.Empty(t, profile.ActiveCourses)

	status, env = ta.do(t, "GET", "/api/users/profile", ta.token(t, 4242), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "user_not_found", env.Code)
}

func TestLeaderboardAndHistory(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	student := testutil.SeedUser(t, ctx, ta.db, "Grace", "grace@example.com")
	testutil.SeedUser(t, ctx, ta.db, "Idle", "idle@example.com")
	_, lessons := testutil.SeedCourse(t, ctx, ta.db, "Compilers", 1, 0)
	quiz := testutil.SeedQuiz(t, ctx, ta.db, lessons[0], 50, testutil.QuestionSpec{CorrectIndex: 2})
	token := ta.token(t, student.ID)

	status, _ := ta.do(t, "GET", "/api/leaderboard", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = ta.do(t, "POST", fmt.Sprintf("/api/quizzes/%d/attempts", quiz.ID), token, map[string]interface{}{
		"answers": []int{2},
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, env := ta.do(t, "GET", "/api/leaderboard", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var board []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &board))
	require.Len(t, board, 1)
	assert.Equal(t, "Grace", board[0]["name"])
	assert.EqualValues(t, 1, board[0]["rank"])

	status, env = ta.do(t, "GET", "/api/quizzes/history", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var history []services.ScoreHistoryEntry
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "Compilers", history[0].CourseTitle)
	assert.Equal(t, 100, history[0].Score)
}
