package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"createform/internal/cache"
	"createform/internal/model"
	"createform/internal/repository"
)

// SurveyService handles survey, question and outcome authoring
type SurveyService struct {
	surveyRepo     repository.SurveyRepo
	questionRepo   repository.QuestionRepo
	outcomeRepo    repository.OutcomeRepo
	workspaceSvc   *WorkspaceService
	formCache      cache.FormCache
	analyticsCache cache.AnalyticsCache
	broadcaster    Broadcaster
	log            *zap.Logger
}

// NewSurveyService creates a new survey service
func NewSurveyService(
	surveyRepo repository.SurveyRepo,
	questionRepo repository.QuestionRepo,
	outcomeRepo repository.OutcomeRepo,
	workspaceSvc *WorkspaceService,
	formCache cache.FormCache,
	analyticsCache cache.AnalyticsCache,
	log *zap.Logger,
) *SurveyService {
	return &SurveyService{
		surveyRepo:     surveyRepo,
		questionRepo:   questionRepo,
		outcomeRepo:    outcomeRepo,
		workspaceSvc:   workspaceSvc,
		formCache:      formCache,
		analyticsCache: analyticsCache,
		log:            log,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SurveyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create creates a draft survey
func (s *SurveyService) Create(ctx context.Context, ownerID string, req model.SurveyRequest) (*model.Survey, error) {
	if err := s.checkSurveyRequest(ctx, ownerID, req); err != nil {
		return nil, err
	}

	survey := &model.Survey{OwnerID: ownerID}
	applySurveyRequest(survey, req)
	if _, err := s.surveyRepo.Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}

	s.log.Info("survey created", zap.String("survey_id", survey.ID), zap.String("owner_id", ownerID))
	return survey, nil
}

// List returns the owner's surveys, optionally restricted to one workspace
func (s *SurveyService) List(ctx context.Context, ownerID, workspaceID string) ([]*model.Survey, error) {
	surveys, err := s.surveyRepo.List(ctx, ownerID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	return surveys, nil
}

// Get returns the survey with its questions and outcomes
func (s *SurveyService) Get(ctx context.Context, ownerID, surveyID string) (*model.SurveyDetail, error) {
	survey, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID)
	if err != nil {
		return nil, err
	}

	questions, outcomes, err := loadSurveyContent(ctx, s.questionRepo, s.outcomeRepo, surveyID)
	if err != nil {
		return nil, err
	}

	return &model.SurveyDetail{
		Survey:    *survey,
		Questions: questions,
		Outcomes:  outcomes,
	}, nil
}

// Update replaces the editable survey fields
func (s *SurveyService) Update(ctx context.Context, ownerID, surveyID string, req model.SurveyRequest) (*model.Survey, error) {
	survey, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSurveyRequest(ctx, ownerID, req); err != nil {
		return nil, err
	}

	applySurveyRequest(survey, req)
	if err := s.surveyRepo.Update(ctx, survey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}

	s.invalidate(ctx, surveyID)
	return survey, nil
}

// Delete removes the survey with its questions and outcomes. Submissions are kept.
func (s *SurveyService) Delete(ctx context.Context, ownerID, surveyID string) error {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID); err != nil {
		return err
	}

	if err := s.questionRepo.DeleteBySurvey(ctx, surveyID); err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	if err := s.outcomeRepo.DeleteBySurvey(ctx, surveyID); err != nil {
		return fmt.Errorf("failed to delete outcomes: %w", err)
	}
	if err := s.surveyRepo.Delete(ctx, surveyID); err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	s.invalidate(ctx, surveyID)
	if s.broadcaster != nil {
		s.broadcaster.DisconnectSurvey(surveyID)
	}

	s.log.Info("survey deleted", zap.String("survey_id", surveyID), zap.String("owner_id", ownerID))
	return nil
}

// SetActive publishes or unpublishes the survey
func (s *SurveyService) SetActive(ctx context.Context, ownerID, surveyID string, active bool) (*model.Survey, error) {
	survey, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID)
	if err != nil {
		return nil, err
	}

	if err := s.surveyRepo.SetActive(ctx, surveyID, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to update survey status: %w", err)
	}
	survey.Active = active

	s.invalidate(ctx, surveyID)
	s.log.Info("survey status changed", zap.String("survey_id", surveyID), zap.Bool("active", active))
	return survey, nil
}

// AddQuestion appends a question to the survey
func (s *SurveyService) AddQuestion(ctx context.Context, ownerID, surveyID string, req model.QuestionRequest) (*model.Question, error) {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID); err != nil {
		return nil, err
	}
	if err := checkQuestionRequest(req); err != nil {
		return nil, err
	}

	question := &model.Question{SurveyID: surveyID}
	applyQuestionRequest(question, req)
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.invalidate(ctx, surveyID)
	return question, nil
}

// UpdateQuestion replaces a question. Options sent with their id keep it.
func (s *SurveyService) UpdateQuestion(ctx context.Context, ownerID, surveyID, questionID string, req model.QuestionRequest) (*model.Question, error) {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID); err != nil {
		return nil, err
	}
	question, err := s.surveyQuestion(ctx, surveyID, questionID)
	if err != nil {
		return nil, err
	}
	if err := checkQuestionRequest(req); err != nil {
		return nil, err
	}

	applyQuestionRequest(question, req)
	if err := s.questionRepo.Update(ctx, question); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.invalidate(ctx, surveyID)
	return question, nil
}

// DeleteQuestion removes a question from the survey
func (s *SurveyService) DeleteQuestion(ctx context.Context, ownerID, surveyID, questionID string) error {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID); err != nil {
		return err
	}
	if _, err := s.surveyQuestion(ctx, surveyID, questionID); err != nil {
		return err
	}

	if err := s.questionRepo.Delete(ctx, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.invalidate(ctx, surveyID)
	return nil
}

// AddOutcome adds an outcome range to the survey
func (s *SurveyService) AddOutcome(ctx context.Context, ownerID, surveyID string, req model.OutcomeRequest) (*model.Outcome, error) {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID); err != nil {
		return nil, err
	}
	if err := checkOutcomeRequest(req); err != nil {
		return nil, err
	}

	outcome := &model.Outcome{SurveyID: surveyID}
	applyOutcomeRequest(outcome, req)
	if err := s.outcomeRepo.Create(ctx, outcome); err != nil {
		return nil, fmt.Errorf("failed to create outcome: %w", err)
	}

	s.invalidate(ctx, surveyID)
	return outcome, nil
}

// UpdateOutcome replaces an outcome. Recorded submissions keep the title they were stored with.
func (s *SurveyService) UpdateOutcome(ctx context.Context, ownerID, surveyID, outcomeID string, req model.OutcomeRequest) (*model.Outcome, error) {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID); err != nil {
		return nil, err
	}
	outcome, err := s.surveyOutcome(ctx, surveyID, outcomeID)
	if err != nil {
		return nil, err
	}
	if err := checkOutcomeRequest(req); err != nil {
		return nil, err
	}

	applyOutcomeRequest(outcome, req)
	if err := s.outcomeRepo.Update(ctx, outcome); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOutcomeNotFound
		}
		return nil, fmt.Errorf("failed to update outcome: %w", err)
	}

	s.invalidate(ctx, surveyID)
	return outcome, nil
}

// DeleteOutcome removes an outcome from the survey
func (s *SurveyService) DeleteOutcome(ctx context.Context, ownerID, surveyID, outcomeID string) error {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID); err != nil {
		return err
	}
	if _, err := s.surveyOutcome(ctx, surveyID, outcomeID); err != nil {
		return err
	}

	if err := s.outcomeRepo.Delete(ctx, outcomeID); err != nil {
		return fmt.Errorf("failed to delete outcome: %w", err)
	}

	s.invalidate(ctx, surveyID)
	return nil
}

// PublicForm returns the respondent view of a published survey
func (s *SurveyService) PublicForm(ctx context.Context, surveyID string) (*model.PublicForm, error) {
	if form, err := s.formCache.Get(ctx, surveyID); err != nil {
		s.log.Warn("form cache read failed", zap.String("survey_id", surveyID), zap.Error(err))
	} else if form != nil {
		return form, nil
	}

	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	if !survey.Active {
		return nil, ErrSurveyInactive
	}

	questions, err := s.questionRepo.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	form := buildPublicForm(survey, questions)
	if err := s.formCache.Set(ctx, form); err != nil {
		s.log.Warn("form cache write failed", zap.String("survey_id", surveyID), zap.Error(err))
	}
	return form, nil
}

func (s *SurveyService) surveyQuestion(ctx context.Context, surveyID, questionID string) (*model.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil || question.SurveyID != surveyID {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

func (s *SurveyService) surveyOutcome(ctx context.Context, surveyID, outcomeID string) (*model.Outcome, error) {
	outcome, err := s.outcomeRepo.GetByID(ctx, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}
	if outcome == nil || outcome.SurveyID != surveyID {
		return nil, ErrOutcomeNotFound
	}
	return outcome, nil
}

func (s *SurveyService) checkSurveyRequest(ctx context.Context, ownerID string, req model.SurveyRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if req.WorkspaceID != "" {
		if err := s.workspaceSvc.Check(ctx, ownerID, req.WorkspaceID); err != nil {
			return err
		}
	}
	return nil
}

// invalidate drops cached views of the survey. Cache errors are logged, not returned.
func (s *SurveyService) invalidate(ctx context.Context, surveyID string) {
	if err := s.formCache.Invalidate(ctx, surveyID); err != nil {
		s.log.Warn("form cache invalidation failed", zap.String("survey_id", surveyID), zap.Error(err))
	}
	if err := s.analyticsCache.Invalidate(ctx, surveyID); err != nil {
		s.log.Warn("analytics cache invalidation failed", zap.String("survey_id", surveyID), zap.Error(err))
	}
}

// ownedSurvey loads a survey and checks it belongs to ownerID
func ownedSurvey(ctx context.Context, repo repository.SurveyRepo, ownerID, surveyID string) (*model.Survey, error) {
	survey, err := repo.GetByID(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	if survey.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return survey, nil
}

// loadSurveyContent fetches questions and outcomes concurrently
func loadSurveyContent(ctx context.Context, questionRepo repository.QuestionRepo, outcomeRepo repository.OutcomeRepo, surveyID string) ([]*model.Question, []*model.Outcome, error) {
	var (
		questions []*model.Question
		outcomes  []*model.Outcome
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if questions, err = questionRepo.ListBySurvey(gctx, surveyID); err != nil {
			return fmt.Errorf("failed to get questions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if outcomes, err = outcomeRepo.ListBySurvey(gctx, surveyID); err != nil {
			return fmt.Errorf("failed to get outcomes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return questions, outcomes, nil
}

func applySurveyRequest(survey *model.Survey, req model.SurveyRequest) {
	survey.Title = req.Title
	survey.Description = req.Description
	survey.WorkspaceID = req.WorkspaceID
	survey.OutcomePolicy = req.OutcomePolicy
	survey.LeadCapture = req.LeadCapture
	for i := range survey.LeadCapture.Fields {
		if survey.LeadCapture.Fields[i].Type == "" {
			survey.LeadCapture.Fields[i].Type = model.LeadFieldText
		}
	}
}

func checkQuestionRequest(req model.QuestionRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if req.Type == model.QuestionTypeText {
		if len(req.Options) > 0 {
			return invalidf("text questions take no options")
		}
		return nil
	}
	if len(req.Options) == 0 {
		return invalidf("%s questions need at least one option", req.Type)
	}

	seen := make(map[string]bool, len(req.Options))
	for _, opt := range req.Options {
		if opt.ID == "" {
			continue
		}
		if seen[opt.ID] {
			return invalidf("duplicate option id %s", opt.ID)
		}
		seen[opt.ID] = true
	}
	return nil
}

func applyQuestionRequest(question *model.Question, req model.QuestionRequest) {
	question.Order = req.Order
	question.Type = req.Type
	question.Text = req.Text
	question.Options = make([]model.Option, 0, len(req.Options))
	for _, opt := range req.Options {
		question.Options = append(question.Options, model.Option{
			ID:    opt.ID,
			Text:  opt.Text,
			Score: opt.Score,
		})
	}
}

func checkOutcomeRequest(req model.OutcomeRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if req.MinScore != nil && req.MaxScore != nil && *req.MinScore > *req.MaxScore {
		return invalidf("minScore %d is greater than maxScore %d", *req.MinScore, *req.MaxScore)
	}
	return nil
}

func applyOutcomeRequest(outcome *model.Outcome, req model.OutcomeRequest) {
	outcome.Order = req.Order
	outcome.MinScore = req.MinScore
	outcome.MaxScore = req.MaxScore
	outcome.Title = req.Title
	outcome.Description = req.Description
	outcome.RedirectURL = req.RedirectURL
}

// buildPublicForm strips scores from the survey's questions
func buildPublicForm(survey *model.Survey, questions []*model.Question) *model.PublicForm {
	form := &model.PublicForm{
		ID:          survey.ID,
		Title:       survey.Title,
		Description: survey.Description,
		LeadCapture: survey.LeadCapture,
		Questions:   make([]model.PublicQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		pq := model.PublicQuestion{
			ID:    q.ID,
			Order: q.Order,
			Type:  q.Type,
			Text:  q.Text,
		}
		for _, opt := range q.Options {
			pq.Options = append(pq.Options, model.PublicOption{ID: opt.ID, Text: opt.Text})
		}
		form.Questions = append(form.Questions, pq)
	}
	return form
}
