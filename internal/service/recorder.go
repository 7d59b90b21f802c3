package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"createform/internal/model"
	"createform/internal/repository"
)

const tracerName = "createform/internal/service"

// RecordRequest is everything needed to persist one completed submission
type RecordRequest struct {
	SurveyID        string
	TotalScore      int
	Outcome         *model.Outcome // nil when no outcome applies
	Answers         []model.AnswerDetail
	RespondentID    string
	RespondentName  string
	RespondentEmail string
	Lead            []model.LeadValue
}

// Recorder persists scored submissions. A submission is written exactly once.
type Recorder struct {
	submissionRepo repository.SubmissionRepo
	tracer         trace.Tracer
}

// NewRecorder creates a new submission recorder
func NewRecorder(submissionRepo repository.SubmissionRepo) *Recorder {
	return &Recorder{
		submissionRepo: submissionRepo,
		tracer:         otel.Tracer(tracerName),
	}
}

// Record builds the submission and stores it. The outcome title is copied onto the
// submission so later outcome edits do not change what was recorded.
func (r *Recorder) Record(ctx context.Context, req RecordRequest) (*model.Submission, error) {
	ctx, span := r.tracer.Start(ctx, "submission.record", trace.WithAttributes(
		attribute.String("survey.id", req.SurveyID),
		attribute.Int("submission.total_score", req.TotalScore),
	))
	defer span.End()

	submission := &model.Submission{
		SurveyID:        req.SurveyID,
		TotalScore:      req.TotalScore,
		OutcomeTitle:    model.NoOutcomeTitle,
		AnswersContent:  req.Answers,
		RespondentID:    req.RespondentID,
		RespondentName:  req.RespondentName,
		RespondentEmail: req.RespondentEmail,
		LeadCaptureData: req.Lead,
	}
	if req.Outcome != nil {
		submission.OutcomeTitle = req.Outcome.Title
		submission.OutcomeID = req.Outcome.ID
	}
	if submission.AnswersContent == nil {
		submission.AnswersContent = []model.AnswerDetail{}
	}
	span.SetAttributes(attribute.String("submission.outcome_title", submission.OutcomeTitle))

	if err := r.submissionRepo.Create(ctx, submission); err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	span.SetAttributes(attribute.String("submission.id", submission.ID))
	return submission, nil
}
