package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"createform/internal/cache"
	"createform/internal/metrics"
	"createform/internal/model"
	"createform/internal/repository"
	"createform/internal/scoring"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Respondent identifies who is submitting a public form
type Respondent struct {
	ID        string // owner id when the request carried a valid token, generated otherwise
	ClientKey string // rate limit key, usually the client IP
}

// SubmissionService scores public submissions and serves them back to survey owners
type SubmissionService struct {
	surveyRepo     repository.SurveyRepo
	questionRepo   repository.QuestionRepo
	outcomeRepo    repository.OutcomeRepo
	submissionRepo repository.SubmissionRepo
	recorder       *Recorder
	limiter        cache.RateLimiter
	analyticsCache cache.AnalyticsCache
	metrics        *metrics.Recorder
	broadcaster    Broadcaster
	log            *zap.Logger

	feedInterval  time.Duration
	snapshotLimit int64
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	surveyRepo repository.SurveyRepo,
	questionRepo repository.QuestionRepo,
	outcomeRepo repository.OutcomeRepo,
	submissionRepo repository.SubmissionRepo,
	recorder *Recorder,
	limiter cache.RateLimiter,
	analyticsCache cache.AnalyticsCache,
	log *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		surveyRepo:     surveyRepo,
		questionRepo:   questionRepo,
		outcomeRepo:    outcomeRepo,
		submissionRepo: submissionRepo,
		recorder:       recorder,
		limiter:        limiter,
		analyticsCache: analyticsCache,
		log:            log,
		feedInterval:   3 * time.Second,
		snapshotLimit:  50,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SubmissionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetMetrics sets the Prometheus recorder
func (s *SubmissionService) SetMetrics(m *metrics.Recorder) {
	s.metrics = m
}

// SetFeedOptions configures live submission subscriptions
func (s *SubmissionService) SetFeedOptions(interval time.Duration, snapshotLimit int64) {
	if interval > 0 {
		s.feedInterval = interval
	}
	if snapshotLimit > 0 {
		s.snapshotLimit = snapshotLimit
	}
}

// Submit scores a respondent's answers, resolves the outcome and records the submission
func (s *SubmissionService) Submit(ctx context.Context, surveyID string, req model.SubmitRequest, respondent Respondent) (*model.SubmitResponse, error) {
	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		s.metrics.SubmissionRejected("not_found")
		return nil, ErrSurveyNotFound
	}
	if !survey.Active {
		s.metrics.SubmissionRejected("inactive")
		return nil, ErrSurveyInactive
	}

	if err := s.checkRate(ctx, surveyID, respondent.ClientKey); err != nil {
		s.metrics.SubmissionRejected("rate_limited")
		return nil, err
	}

	if err := validateStruct(req); err != nil {
		s.metrics.SubmissionRejected("invalid")
		return nil, err
	}

	questions, outcomes, err := loadSurveyContent(ctx, s.questionRepo, s.outcomeRepo, surveyID)
	if err != nil {
		return nil, err
	}

	if err := checkComplete(questions, req.Answers); err != nil {
		s.metrics.SubmissionRejected("incomplete")
		return nil, err
	}

	lead, err := collectLead(survey.LeadCapture, req.Lead)
	if err != nil {
		s.metrics.SubmissionRejected("invalid_lead")
		return nil, err
	}

	total := scoring.Aggregate(scoring.SelectionsFromAnswers(questions, req.Answers))
	outcome, match := scoring.Resolve(total, outcomes, survey.Policy())

	respondentID := respondent.ID
	if respondentID == "" {
		respondentID = "anon_" + uuid.NewString()
	}

	submission, err := s.recorder.Record(ctx, RecordRequest{
		SurveyID:        surveyID,
		TotalScore:      total,
		Outcome:         outcome,
		Answers:         answerDetails(questions, req.Answers),
		RespondentID:    respondentID,
		RespondentName:  lead.name,
		RespondentEmail: lead.email,
		Lead:            lead.values,
	})
	if err != nil {
		s.metrics.SubmissionRejected("store")
		return nil, err
	}

	if err := s.analyticsCache.Invalidate(ctx, surveyID); err != nil {
		s.log.Warn("analytics cache invalidation failed", zap.String("survey_id", surveyID), zap.Error(err))
	}
	s.metrics.SubmissionRecorded(string(match), total)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSurvey(surveyID, "submission_recorded", submission)
	}

	s.log.Info("submission recorded",
		zap.String("survey_id", surveyID),
		zap.String("submission_id", submission.ID),
		zap.Int("total_score", total),
		zap.String("outcome", submission.OutcomeTitle),
		zap.String("match", string(match)),
	)

	return &model.SubmitResponse{
		SubmissionID: submission.ID,
		TotalScore:   total,
		OutcomeTitle: submission.OutcomeTitle,
		Outcome:      outcome.Result(),
	}, nil
}

// Preview scores answers against the current questions and outcomes without recording anything.
// Drafts can be previewed and answers may be partial.
func (s *SubmissionService) Preview(ctx context.Context, ownerID, surveyID string, req model.PreviewRequest) (*model.PreviewResponse, error) {
	survey, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	questions, outcomes, err := loadSurveyContent(ctx, s.questionRepo, s.outcomeRepo, surveyID)
	if err != nil {
		return nil, err
	}

	total := scoring.Aggregate(scoring.SelectionsFromAnswers(questions, req.Answers))
	outcome, match := scoring.Resolve(total, outcomes, survey.Policy())

	title := model.NoOutcomeTitle
	if outcome != nil {
		title = outcome.Title
	}
	return &model.PreviewResponse{
		TotalScore:   total,
		OutcomeTitle: title,
		Outcome:      outcome.Result(),
		MatchKind:    string(match),
	}, nil
}

// List returns the survey's submissions, newest first
func (s *SubmissionService) List(ctx context.Context, ownerID string, filter model.SubmissionFilter) ([]*model.Submission, error) {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, filter.SurveyID); err != nil {
		return nil, err
	}
	if filter.MinScore != nil && filter.MaxScore != nil && *filter.MinScore > *filter.MaxScore {
		return nil, invalidf("minScore is greater than maxScore")
	}

	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}

	submissions, err := s.submissionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// Subscribe opens a live feed of the survey's latest submissions. The caller must Close it.
func (s *SubmissionService) Subscribe(ctx context.Context, ownerID, surveyID string) (*repository.Subscription, error) {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID); err != nil {
		return nil, err
	}

	filter := model.SubmissionFilter{SurveyID: surveyID, Limit: s.snapshotLimit}
	return s.submissionRepo.Subscribe(ctx, filter, s.feedInterval), nil
}

// checkRate applies the per-client submission limit. Limiter failures let the submission through.
func (s *SubmissionService) checkRate(ctx context.Context, surveyID, clientKey string) error {
	if s.limiter == nil || clientKey == "" {
		return nil
	}

	allowed, retryAfter, err := s.limiter.Allow(ctx, "submit:"+surveyID+":"+clientKey)
	if err != nil {
		s.log.Warn("rate limiter unavailable", zap.String("survey_id", surveyID), zap.Error(err))
		return nil
	}
	if !allowed {
		return &RateLimitError{RetryAfter: retryAfter}
	}
	return nil
}

// checkComplete requires a valid selection for every scored question.
// Single-select questions must carry exactly one distinct valid option.
func checkComplete(questions []*model.Question, answers []model.AnswerInput) error {
	byQuestion := make(map[string]model.AnswerInput, len(answers))
	for _, a := range answers {
		if _, ok := byQuestion[a.QuestionID]; !ok {
			byQuestion[a.QuestionID] = a
		}
	}

	var missing []string
	for _, q := range questions {
		if !q.Type.Scored() {
			continue
		}
		picked := validOptions(q, byQuestion[q.ID].OptionIDs)
		if len(picked) == 0 {
			missing = append(missing, q.ID)
			continue
		}
		if !q.Type.MultiSelect() && len(picked) > 1 {
			return invalidf("question %s accepts a single option", q.ID)
		}
	}

	if len(missing) > 0 {
		return &IncompleteAnswersError{QuestionIDs: missing}
	}
	return nil
}

// validOptions returns the distinct known options picked for q, in submission order
func validOptions(q *model.Question, optionIDs []string) []*model.Option {
	var picked []*model.Option
	seen := make(map[string]bool, len(optionIDs))
	for _, id := range optionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if opt := q.Option(id); opt != nil {
			picked = append(picked, opt)
		}
	}
	return picked
}

// answerDetails denormalizes answers in question order so the record stays readable
// after questions are edited or deleted
func answerDetails(questions []*model.Question, answers []model.AnswerInput) []model.AnswerDetail {
	byQuestion := make(map[string]model.AnswerInput, len(answers))
	for _, a := range answers {
		if _, ok := byQuestion[a.QuestionID]; !ok {
			byQuestion[a.QuestionID] = a
		}
	}

	details := make([]model.AnswerDetail, 0, len(questions))
	for _, q := range questions {
		a, ok := byQuestion[q.ID]
		if !ok {
			continue
		}

		detail := model.AnswerDetail{QuestionID: q.ID, QuestionText: q.Text}
		if !q.Type.Scored() {
			detail.Text = strings.TrimSpace(a.Text)
			if detail.Text == "" {
				continue
			}
			details = append(details, detail)
			continue
		}

		picked := validOptions(q, a.OptionIDs)
		if !q.Type.MultiSelect() && len(picked) > 1 {
			picked = picked[:1]
		}
		for _, opt := range picked {
			detail.OptionIDs = append(detail.OptionIDs, opt.ID)
			detail.OptionTexts = append(detail.OptionTexts, opt.Text)
			detail.Score += opt.Score
		}
		details = append(details, detail)
	}
	return details
}

type leadData struct {
	name   string
	email  string
	values []model.LeadValue
}

// collectLead validates the lead gate. Lead input is ignored when the survey does not capture leads.
func collectLead(lc model.LeadCapture, in *model.LeadInput) (leadData, error) {
	var lead leadData
	if !lc.Enabled {
		return lead, nil
	}
	if in == nil {
		in = &model.LeadInput{}
	}

	if lc.CollectName {
		lead.name = strings.TrimSpace(in.Name)
	}
	if lc.CollectEmail || lc.RequireEmail {
		lead.email = strings.TrimSpace(in.Email)
		if lead.email == "" && lc.RequireEmail {
			return lead, invalidf("email is required")
		}
		if lead.email != "" && validate.Var(lead.email, "email") != nil {
			return lead, invalidf("email %q is not valid", lead.email)
		}
	}

	for _, field := range lc.Fields {
		value := strings.TrimSpace(in.Fields[field.Label])
		if value == "" {
			if field.Required {
				return lead, invalidf("%s is required", field.Label)
			}
			continue
		}
		if err := checkLeadValue(field, value); err != nil {
			return lead, err
		}
		fieldType := field.Type
		if fieldType == "" {
			fieldType = model.LeadFieldText
		}
		lead.values = append(lead.values, model.LeadValue{
			Label: field.Label,
			Value: value,
			Type:  fieldType,
		})
	}
	return lead, nil
}

func checkLeadValue(field model.LeadField, value string) error {
	switch field.Type {
	case model.LeadFieldEmail:
		if validate.Var(value, "email") != nil {
			return invalidf("%s must be an email address", field.Label)
		}
	case model.LeadFieldNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return invalidf("%s must be a number", field.Label)
		}
	case model.LeadFieldPhone:
		digits := 0
		for _, r := range value {
			switch {
			case r >= '0' && r <= '9':
				digits++
			case strings.ContainsRune("+-() .", r):
			default:
				return invalidf("%s must be a phone number", field.Label)
			}
		}
		if digits < 6 {
			return invalidf("%s must be a phone number", field.Label)
		}
	}
	if len(value) > 500 {
		return invalidf("%s is too long", field.Label)
	}
	return nil
}
