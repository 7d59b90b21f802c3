package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSurveyNotFound    = errors.New("survey not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrOutcomeNotFound   = errors.New("outcome not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrForbidden         = errors.New("forbidden")
	ErrSurveyInactive    = errors.New("survey is not published")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimited       = errors.New("too many submissions, try again later")
)

// IncompleteAnswersError lists the questions that still need an answer
type IncompleteAnswersError struct {
	QuestionIDs []string
}

func (e *IncompleteAnswersError) Error() string {
	return fmt.Sprintf("please answer every question before submitting (missing: %s)", strings.Join(e.QuestionIDs, ", "))
}

// RateLimitError reports a rejected submission and when the client may retry. It matches ErrRateLimited.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return ErrRateLimited.Error()
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// invalidf wraps ErrInvalidInput with a message safe to show to the caller
func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
