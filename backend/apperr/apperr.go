// Package apperr is the error taxonomy shared by the engine's services and the
// HTTP layer. Services return *Error values; handlers render them verbatim.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Code    string
	Err     error
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("app error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so that errors carrying measured details still compare
// equal to the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var (
	ErrQuizNotFound   = New(http.StatusNotFound, "quiz_not_found", errors.New("quiz not found"))
	ErrCourseNotFound = New(http.StatusNotFound, "course_not_found", errors.New("course not found"))
	ErrLessonNotFound = New(http.StatusNotFound, "lesson_not_found", errors.New("lesson not found"))
	ErrUserNotFound   = New(http.StatusNotFound, "user_not_found", errors.New("user not found"))

	ErrNoQuestions            = New(http.StatusUnprocessableEntity, "no_questions", errors.New("quiz has no questions"))
	ErrCourseNotReady         = New(http.StatusUnprocessableEntity, "course_not_ready", errors.New("course has no lessons"))
	ErrCourseNotPublished     = New(http.StatusUnprocessableEntity, "course_not_published", errors.New("course is not published"))
	ErrInsufficientCompletion = New(http.StatusUnprocessableEntity, "insufficient_completion", errors.New("course not sufficiently completed"))
	ErrInvalidInput           = New(http.StatusBadRequest, "invalid_input", errors.New("invalid input"))
)

// InsufficientCompletion carries the measured and required percentages.
func InsufficientCompletion(current, required int) *Error {
	return &Error{
		Status: http.StatusUnprocessableEntity,
		Code:   ErrInsufficientCompletion.Code,
		Err: fmt.Errorf("course not sufficiently completed. Current: %d%%, Required: %d%%",
			current, required),
		Details: map[string]interface{}{
			"current":  current,
			"required": required,
		},
	}
}

// InvalidInput reports boundary validation failures keyed by field.
func InvalidInput(fields map[string]string) *Error {
	details := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    ErrInvalidInput.Code,
		Err:     ErrInvalidInput.Err,
		Details: details,
	}
}

// IsNotFound reports whether err is any of the not-found kinds.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

// StatusOf maps err to an HTTP status, 500 for anything outside the taxonomy.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}
