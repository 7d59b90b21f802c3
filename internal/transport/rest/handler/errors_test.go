package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"createform/internal/service"
)

func TestWriteServiceErrorRetryAfter(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"whole window", &service.RateLimitError{RetryAfter: 90 * time.Second}, "90"},
		{"rounds up", &service.RateLimitError{RetryAfter: 1500 * time.Millisecond}, "2"},
		{"never zero", &service.RateLimitError{}, "1"},
		{"wrapped", fmt.Errorf("submit: %w", &service.RateLimitError{RetryAfter: 5 * time.Minute}), "300"},
		{"bare sentinel", service.ErrRateLimited, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Retry-After"))
		})
	}
}

func TestWriteServiceErrorStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrSurveyNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrSurveyInactive, http.StatusConflict},
		{fmt.Errorf("%w: bad", service.ErrInvalidInput), http.StatusBadRequest},
		{&service.IncompleteAnswersError{QuestionIDs: []string{"q1"}}, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeServiceError(rec, tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
	}
}
