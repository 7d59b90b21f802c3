package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"createform/internal/model"
)

const (
	ownerA = "owner_a"
	ownerB = "owner_b"
)

type fixture struct {
	surveys     *memSurveys
	questions   *memQuestions
	outcomes    *memOutcomes
	submissions *memSubmissions
	workspaces  *memWorkspaces
	forms       *memFormCache
	analytics   *memAnalyticsCache
	broadcaster *recordingBroadcaster

	workspaceSvc  *WorkspaceService
	surveySvc     *SurveyService
	submissionSvc *SubmissionService
	analyticsSvc  *AnalyticsService
	exportSvc     *ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	f := &fixture{
		surveys:     newMemSurveys(),
		questions:   newMemQuestions(),
		outcomes:    newMemOutcomes(),
		submissions: newMemSubmissions(),
		workspaces:  newMemWorkspaces(),
		forms:       newMemFormCache(),
		analytics:   newMemAnalyticsCache(),
		broadcaster: &recordingBroadcaster{},
	}

	f.workspaceSvc = NewWorkspaceService(f.workspaces, f.surveys, log)
	f.surveySvc = NewSurveyService(f.surveys, f.questions, f.outcomes, f.workspaceSvc, f.forms, f.analytics, log)
	f.surveySvc.SetBroadcaster(f.broadcaster)
	f.submissionSvc = NewSubmissionService(f.surveys, f.questions, f.outcomes, f.submissions,
		NewRecorder(f.submissions), nil, f.analytics, log)
	f.submissionSvc.SetBroadcaster(f.broadcaster)
	f.analyticsSvc = NewAnalyticsService(f.surveys, f.questions, f.submissions, f.analytics, log)
	f.exportSvc = NewExportService(f.surveys, f.questions, f.submissions)
	return f
}

func intPtr(v int) *int { return &v }

// publishedSurvey creates an active survey owned by ownerA
func (f *fixture) publishedSurvey(t *testing.T, policy model.OutcomePolicy) *model.Survey {
	t.Helper()
	ctx := context.Background()
	survey, err := f.surveySvc.Create(ctx, ownerA, model.SurveyRequest{Title: "Quiz", OutcomePolicy: policy})
	require.NoError(t, err)
	survey, err = f.surveySvc.SetActive(ctx, ownerA, survey.ID, true)
	require.NoError(t, err)
	return survey
}

func (f *fixture) question(t *testing.T, surveyID string, qt model.QuestionType, scores ...int) *model.Question {
	t.Helper()
	req := model.QuestionRequest{Type: qt, Text: "Question " + string(qt)}
	for _, s := range scores {
		req.Options = append(req.Options, model.OptionRequest{Text: "option", Score: s})
	}
	q, err := f.surveySvc.AddQuestion(context.Background(), ownerA, surveyID, req)
	require.NoError(t, err)
	return q
}

func (f *fixture) outcome(t *testing.T, surveyID string, min, max *int, title string) *model.Outcome {
	t.Helper()
	o, err := f.surveySvc.AddOutcome(context.Background(), ownerA, surveyID, model.OutcomeRequest{
		MinScore: min,
		MaxScore: max,
		Title:    title,
	})
	require.NoError(t, err)
	return o
}

// pick answers q with the options at the given indexes
func pick(q *model.Question, idx ...int) model.AnswerInput {
	a := model.AnswerInput{QuestionID: q.ID}
	for _, i := range idx {
		a.OptionIDs = append(a.OptionIDs, q.Options[i].ID)
	}
	return a
}
