package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"coursetrack/backend/apperr"
	"coursetrack/backend/gamification"
	"coursetrack/backend/models"
	"coursetrack/backend/repository"
	"coursetrack/backend/utils"

	"gorm.io/gorm"
)

type SubmitAttemptInput struct {
	UserID           uint  `json:"-" validate:"required"`
	QuizID           uint  `json:"quiz_id" validate:"required"`
	LessonID         uint  `json:"lesson_id"`
	CourseID         uint  `json:"course_id"`
	Answers          []int `json:"answers"`
	TimeTakenSeconds int   `json:"time_taken_seconds" validate:"gte=0"`
}

type AttemptResult struct {
	AttemptID        uint `json:"attempt_id"`
	Score            int  `json:"score"`
	Passed           bool `json:"passed"`
	CorrectCount     int  `json:"correct_count"`
	TotalQuestions   int  `json:"total_questions"`
	AttemptNumber    int  `json:"attempt_number,omitempty"`
	TimeTakenSeconds int  `json:"time_taken_seconds,omitempty"`
}

type QuizSummary struct {
	TotalAttempts      int `json:"total_attempts"`
	TotalPassed        int `json:"total_passed"`
	AverageScore       int `json:"average_score"`
	BestScore          int `json:"best_score"`
	UniqueQuizzesTaken int `json:"unique_quizzes_taken"`
}

// ScoreHistoryEntry is one attempt labelled with its quiz and course titles.
type ScoreHistoryEntry struct {
	AttemptID   uint      `json:"attempt_id"`
	QuizID      uint      `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	CourseID    uint      `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	AttemptedAt time.Time `json:"attempted_at"`
}

const (
	unknownQuizTitle   = "Unknown quiz"
	unknownCourseTitle = "Unknown course"
)

type QuestionInput struct {
	Question     string   `json:"question" validate:"required"`
	Options      []string `json:"options" validate:"min=2,dive,required"`
	CorrectIndex int      `json:"correct_index" validate:"gte=0"`
	Explanation  string   `json:"explanation"`
}

type CreateQuizInput struct {
	LessonID     uint            `json:"lesson_id" validate:"required"`
	Title        string          `json:"title" validate:"required"`
	PassingScore int             `json:"passing_score" validate:"gte=0,lte=100"`
	Questions    []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

type QuizService interface {
	SubmitAttempt(ctx context.Context, in SubmitAttemptInput) (*AttemptResult, error)
	SubmitEnhancedAttempt(ctx context.Context, in SubmitAttemptInput) (*AttemptResult, error)
	GetBestScore(ctx context.Context, userID, quizID uint) (*models.QuizAttempt, error)
	GetLastAttempt(ctx context.Context, userID, quizID uint) (*models.QuizAttempt, error)
	GetUserQuizSummary(ctx context.Context, userID uint) (QuizSummary, error)
	GetQuestions(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error)
	GetByLesson(ctx context.Context, lessonID uint) ([]*models.Quiz, error)
	GetAttemptsByUserAndQuiz(ctx context.Context, userID, quizID uint) ([]*models.QuizAttempt, error)
	GetAttemptsByUserAndCourse(ctx context.Context, userID, courseID uint) ([]*models.QuizAttempt, error)
	GetAllAttemptsByUser(ctx context.Context, userID uint) ([]*models.QuizAttempt, error)
	GetScoreHistory(ctx context.Context, userID uint) ([]ScoreHistoryEntry, error)
	Create(ctx context.Context, in CreateQuizInput) (*models.Quiz, error)
}

type quizService struct {
	db       *gorm.DB
	log      *utils.Logger
	quizzes  repository.QuizRepo
	attempts repository.QuizAttemptRepo
	lessons  repository.LessonRepo
	courses  repository.CourseRepo
	opts     options
}

func NewQuizService(
	db *gorm.DB,
	log *utils.Logger,
	quizzes repository.QuizRepo,
	attempts repository.QuizAttemptRepo,
	lessons repository.LessonRepo,
	courses repository.CourseRepo,
	opts ...Option,
) QuizService {
	return &quizService{
		db:       db,
		log:      log.With("service", "QuizService"),
		quizzes:  quizzes,
		attempts: attempts,
		lessons:  lessons,
		courses:  courses,
		opts:     buildOptions(opts),
	}
}

// grade compares answers[i] with the i-th question in SequenceOrder. Missing
// or out-of-range answers are wrong.
func grade(questions []*models.QuizQuestion, answers []int) int {
	ordered := make([]*models.QuizQuestion, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SequenceOrder < ordered[j].SequenceOrder
	})

	correct := 0
	for i, q := range ordered {
		if i >= len(answers) {
			break
		}
		a := answers[i]
		if a < 0 || a >= len(q.Options) {
			continue
		}
		if a == q.CorrectIndex {
			correct++
		}
	}
	return correct
}

func scoreOf(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(100*correct) / float64(total)))
}

func (s *quizService) SubmitAttempt(ctx context.Context, in SubmitAttemptInput) (*AttemptResult, error) {
	res, err := s.submit(ctx, in, false)
	if err != nil {
		return nil, err
	}
	res.AttemptNumber = 0
	res.TimeTakenSeconds = 0
	return res, nil
}

func (s *quizService) SubmitEnhancedAttempt(ctx context.Context, in SubmitAttemptInput) (*AttemptResult, error) {
	return s.submit(ctx, in, true)
}

func (s *quizService) submit(ctx context.Context, in SubmitAttemptInput, numbered bool) (*AttemptResult, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	var result *AttemptResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quiz, err := s.quizzes.GetByID(ctx, tx, in.QuizID)
		if err != nil {
			return fmt.Errorf("load quiz: %w", err)
		}
		if quiz == nil {
			return apperr.ErrQuizNotFound
		}

		questions, err := s.quizzes.GetQuestions(ctx, tx, in.QuizID)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		if len(questions) == 0 {
			return apperr.ErrNoQuestions
		}

		correct := grade(questions, in.Answers)
		score := scoreOf(correct, len(questions))

		attempt := &models.QuizAttempt{
			UserID:           in.UserID,
			QuizID:           quiz.ID,
			LessonID:         in.LessonID,
			CourseID:         in.CourseID,
			Answers:          append([]int(nil), in.Answers...),
			Score:            score,
			Passed:           score >= quiz.PassingScore,
			TimeTakenSeconds: in.TimeTakenSeconds,
			AttemptedAt:      s.opts.now(),
		}
		if attempt.LessonID == 0 {
			attempt.LessonID = quiz.LessonID
		}
		if attempt.CourseID == 0 {
			attempt.CourseID = quiz.CourseID
		}
		if err := s.attempts.Create(ctx, tx, attempt); err != nil {
			return fmt.Errorf("save attempt: %w", err)
		}

		result = &AttemptResult{
			AttemptID:        attempt.ID,
			Score:            score,
			Passed:           attempt.Passed,
			CorrectCount:     correct,
			TotalQuestions:   len(questions),
			TimeTakenSeconds: in.TimeTakenSeconds,
		}
		if numbered {
			n, err := s.attempts.CountByUserAndQuiz(ctx, tx, in.UserID, quiz.ID)
			if err != nil {
				return fmt.Errorf("count attempts: %w", err)
			}
			result.AttemptNumber = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("quiz attempt graded",
		"user_id", in.UserID, "quiz_id", in.QuizID, "score", result.Score, "passed", result.Passed)
	return result, nil
}

func (s *quizService) GetBestScore(ctx context.Context, userID, quizID uint) (*models.QuizAttempt, error) {
	a, err := s.attempts.GetBest(ctx, nil, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("best attempt: %w", err)
	}
	return a, nil
}

func (s *quizService) GetLastAttempt(ctx context.Context, userID, quizID uint) (*models.QuizAttempt, error) {
	a, err := s.attempts.GetLast(ctx, nil, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("last attempt: %w", err)
	}
	return a, nil
}

func (s *quizService) GetUserQuizSummary(ctx context.Context, userID uint) (QuizSummary, error) {
	attempts, err := s.attempts.GetByUserID(ctx, nil, userID)
	if err != nil {
		return QuizSummary{}, fmt.Errorf("quiz summary: %w", err)
	}
	return summarize(attempts), nil
}

func summarize(attempts []*models.QuizAttempt) QuizSummary {
	var sum QuizSummary
	if len(attempts) == 0 {
		return sum
	}

	scores := make([]int, 0, len(attempts))
	quizzes := make(map[uint]struct{})
	for _, a := range attempts {
		scores = append(scores, a.Score)
		quizzes[a.QuizID] = struct{}{}
		if a.Passed {
			sum.TotalPassed++
		}
		if a.Score > sum.BestScore {
			sum.BestScore = a.Score
		}
	}
	sum.TotalAttempts = len(attempts)
	sum.AverageScore = gamification.AverageScore(scores)
	sum.UniqueQuizzesTaken = len(quizzes)
	return sum
}

func (s *quizService) GetQuestions(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error) {
	quiz, err := s.quizzes.GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if quiz == nil {
		return nil, apperr.ErrQuizNotFound
	}
	return s.quizzes.GetQuestions(ctx, nil, quizID)
}

func (s *quizService) GetByLesson(ctx context.Context, lessonID uint) ([]*models.Quiz, error) {
	return s.quizzes.GetByLessonID(ctx, nil, lessonID)
}

func (s *quizService) GetAttemptsByUserAndQuiz(ctx context.Context, userID, quizID uint) ([]*models.QuizAttempt, error) {
	return s.attempts.GetByUserAndQuiz(ctx, nil, userID, quizID)
}

func (s *quizService) GetAttemptsByUserAndCourse(ctx context.Context, userID, courseID uint) ([]*models.QuizAttempt, error) {
	return s.attempts.GetByUserAndCourse(ctx, nil, userID, courseID)
}

func (s *quizService) GetAllAttemptsByUser(ctx context.Context, userID uint) ([]*models.QuizAttempt, error) {
	return s.attempts.GetByUserID(ctx, nil, userID)
}

// GetScoreHistory lists the learner's attempts newest first. Titles of deleted
// quizzes or courses fall back to placeholders.
func (s *quizService) GetScoreHistory(ctx context.Context, userID uint) ([]ScoreHistoryEntry, error) {
	attempts, err := s.attempts.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}

	quizIDs := make([]uint, 0, len(attempts))
	courseIDs := make([]uint, 0, len(attempts))
	seenQuiz := make(map[uint]bool)
	seenCourse := make(map[uint]bool)
	for _, a := range attempts {
		if !seenQuiz[a.QuizID] {
			seenQuiz[a.QuizID] = true
			quizIDs = append(quizIDs, a.QuizID)
		}
		if !seenCourse[a.CourseID] {
			seenCourse[a.CourseID] = true
			courseIDs = append(courseIDs, a.CourseID)
		}
	}

	quizzes, err := s.quizzes.GetByIDs(ctx, nil, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	courses, err := s.courses.GetByIDs(ctx, nil, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	quizTitles := make(map[uint]string, len(quizzes))
	for _, q := range quizzes {
		quizTitles[q.ID] = q.Title
	}
	courseTitles := make(map[uint]string, len(courses))
	for _, c := range courses {
		courseTitles[c.ID] = c.Title
	}

	history := make([]ScoreHistoryEntry, 0, len(attempts))
	for _, a := range attempts {
		quizTitle, ok := quizTitles[a.QuizID]
		if !ok {
			quizTitle = unknownQuizTitle
		}
		courseTitle, ok := courseTitles[a.CourseID]
		if !ok {
			courseTitle = unknownCourseTitle
		}
		history = append(history, ScoreHistoryEntry{
			AttemptID:   a.ID,
			QuizID:      a.QuizID,
			QuizTitle:   quizTitle,
			CourseID:    a.CourseID,
			CourseTitle: courseTitle,
			Score:       a.Score,
			Passed:      a.Passed,
			AttemptedAt: a.AttemptedAt,
		})
	}
	return history, nil
}

func (s *quizService) Create(ctx context.Context, in CreateQuizInput) (*models.Quiz, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	for i, q := range in.Questions {
		if q.CorrectIndex >= len(q.Options) {
			return nil, apperr.InvalidInput(map[string]string{
				fmt.Sprintf("questions[%d].correct_index", i): "must point at an option",
			})
		}
	}

	lesson, err := s.lessons.GetByID(ctx, nil, in.LessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	if lesson == nil {
		return nil, apperr.ErrLessonNotFound
	}

	quiz := &models.Quiz{
		LessonID:     lesson.ID,
		CourseID:     lesson.CourseID,
		Title:        in.Title,
		PassingScore: in.PassingScore,
	}
	for i, q := range in.Questions {
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{
			Question:      q.Question,
			Options:       append([]string(nil), q.Options...),
			CorrectIndex:  q.CorrectIndex,
			Explanation:   q.Explanation,
			SequenceOrder: i,
		})
	}
	if err := s.quizzes.CreateWithQuestions(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}
