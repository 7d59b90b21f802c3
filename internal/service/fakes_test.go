package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"createform/internal/model"
	"createform/internal/repository"
)

// In-memory stand-ins for the MongoDB repositories and Redis caches

type memSurveys struct {
	mu   sync.Mutex
	seq  int
	data map[string]*model.Survey
}

func newMemSurveys() *memSurveys { return &memSurveys{data: map[string]*model.Survey{}} }

func (m *memSurveys) Create(_ context.Context, s *model.Survey) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if s.ID == "" {
		s.ID = fmt.Sprintf("survey-%d", m.seq)
	}
	s.CreatedAt = time.Now().UTC().Add(time.Duration(m.seq) * time.Millisecond)
	cp := *s
	m.data[s.ID] = &cp
	return s.ID, nil
}

func (m *memSurveys) GetByID(_ context.Context, id string) (*model.Survey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSurveys) List(_ context.Context, ownerID, workspaceID string) ([]*model.Survey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Survey{}
	for _, s := range m.data {
		if s.OwnerID == ownerID && (workspaceID == "" || s.WorkspaceID == workspaceID) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memSurveys) Update(_ context.Context, s *model.Survey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[s.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *s
	m.data[s.ID] = &cp
	return nil
}

func (m *memSurveys) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Active = active
	return nil
}

func (m *memSurveys) DetachWorkspace(_ context.Context, workspaceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.data {
		if s.WorkspaceID == workspaceID {
			s.WorkspaceID = ""
		}
	}
	return nil
}

func (m *memSurveys) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type memQuestions struct {
	mu   sync.Mutex
	seq  int
	data map[string]*model.Question
}

func newMemQuestions() *memQuestions { return &memQuestions{data: map[string]*model.Question{}} }

func (m *memQuestions) assign(q *model.Question) {
	for i := range q.Options {
		if q.Options[i].ID == "" {
			m.seq++
			q.Options[i].ID = fmt.Sprintf("opt-%d", m.seq)
		}
	}
}

func (m *memQuestions) Create(_ context.Context, q *model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if q.ID == "" {
		q.ID = fmt.Sprintf("q-%d", m.seq)
	}
	m.assign(q)
	q.CreatedAt = time.Now().UTC().Add(time.Duration(m.seq) * time.Millisecond)
	cp := *q
	cp.Options = append([]model.Option(nil), q.Options...)
	m.data[q.ID] = &cp
	return nil
}

func (m *memQuestions) GetByID(_ context.Context, id string) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	cp.Options = append([]model.Option(nil), q.Options...)
	return &cp, nil
}

func (m *memQuestions) ListBySurvey(_ context.Context, surveyID string) ([]*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Question{}
	for _, q := range m.data {
		if q.SurveyID == surveyID {
			cp := *q
			cp.Options = append([]model.Option(nil), q.Options...)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memQuestions) Update(_ context.Context, q *model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[q.ID]; !ok {
		return repository.ErrNotFound
	}
	m.assign(q)
	cp := *q
	cp.Options = append([]model.Option(nil), q.Options...)
	m.data[q.ID] = &cp
	return nil
}

func (m *memQuestions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memQuestions) DeleteBySurvey(_ context.Context, surveyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, q := range m.data {
		if q.SurveyID == surveyID {
			delete(m.data, id)
		}
	}
	return nil
}

type memOutcomes struct {
	mu   sync.Mutex
	seq  int
	data map[string]*model.Outcome
}

func newMemOutcomes() *memOutcomes { return &memOutcomes{data: map[string]*model.Outcome{}} }

func (m *memOutcomes) Create(_ context.Context, o *model.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if o.ID == "" {
		o.ID = fmt.Sprintf("outcome-%d", m.seq)
	}
	cp := *o
	m.data[o.ID] = &cp
	return nil
}

func (m *memOutcomes) GetByID(_ context.Context, id string) (*model.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *memOutcomes) ListBySurvey(_ context.Context, surveyID string) ([]*model.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Outcome{}
	for _, o := range m.data {
		if o.SurveyID == surveyID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memOutcomes) Update(_ context.Context, o *model.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[o.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *o
	m.data[o.ID] = &cp
	return nil
}

func (m *memOutcomes) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memOutcomes) DeleteBySurvey(_ context.Context, surveyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, o := range m.data {
		if o.SurveyID == surveyID {
			delete(m.data, id)
		}
	}
	return nil
}

type memSubmissions struct {
	mu        sync.Mutex
	seq       int
	data      []*model.Submission
	createErr error
}

func newMemSubmissions() *memSubmissions { return &memSubmissions{} }

func (m *memSubmissions) Create(_ context.Context, s *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	s.ID = fmt.Sprintf("sub-%d", m.seq)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	cp := *s
	m.data = append(m.data, &cp)
	return nil
}

func (m *memSubmissions) GetByID(_ context.Context, id string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.data {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memSubmissions) matching(f model.SubmissionFilter) []*model.Submission {
	out := []*model.Submission{}
	for i := len(m.data) - 1; i >= 0; i-- {
		s := m.data[i]
		if f.SurveyID != "" && s.SurveyID != f.SurveyID {
			continue
		}
		if f.OutcomeTitle != "" && s.OutcomeTitle != f.OutcomeTitle {
			continue
		}
		if f.MinScore != nil && s.TotalScore < *f.MinScore {
			continue
		}
		if f.MaxScore != nil && s.TotalScore > *f.MaxScore {
			continue
		}
		if f.HasLead != nil && s.HasLead() != *f.HasLead {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out
}

func (m *memSubmissions) List(_ context.Context, f model.SubmissionFilter) ([]*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.matching(f)
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memSubmissions) Count(_ context.Context, f model.SubmissionFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(f))), nil
}

func (m *memSubmissions) Subscribe(ctx context.Context, f model.SubmissionFilter, interval time.Duration) *repository.Subscription {
	return repository.NewSubscription(ctx, interval, func(ctx context.Context) (*model.SubmissionSnapshot, error) {
		n, err := m.Count(ctx, f)
		if err != nil {
			return nil, err
		}
		return &model.SubmissionSnapshot{SurveyID: f.SurveyID, Count: int(n)}, nil
	}, func(ctx context.Context, snap *model.SubmissionSnapshot) error {
		subs, err := m.List(ctx, f)
		snap.Submissions = subs
		return err
	})
}

type memWorkspaces struct {
	mu   sync.Mutex
	seq  int
	data map[string]*model.Workspace
}

func newMemWorkspaces() *memWorkspaces { return &memWorkspaces{data: map[string]*model.Workspace{}} }

func (m *memWorkspaces) Create(_ context.Context, ws *model.Workspace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	ws.ID = fmt.Sprintf("ws-%d", m.seq)
	cp := *ws
	m.data[ws.ID] = &cp
	return nil
}

func (m *memWorkspaces) GetByID(_ context.Context, id string) (*model.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	cp := *ws
	return &cp, nil
}

func (m *memWorkspaces) ListByOwner(_ context.Context, ownerID string) ([]*model.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Workspace{}
	for _, ws := range m.data {
		if ws.OwnerID == ownerID {
			cp := *ws
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memWorkspaces) Update(_ context.Context, ws *model.Workspace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[ws.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *ws
	m.data[ws.ID] = &cp
	return nil
}

func (m *memWorkspaces) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type memFormCache struct {
	mu          sync.Mutex
	forms       map[string]*model.PublicForm
	invalidated []string
}

func newMemFormCache() *memFormCache { return &memFormCache{forms: map[string]*model.PublicForm{}} }

func (c *memFormCache) Get(_ context.Context, id string) (*model.PublicForm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forms[id], nil
}

func (c *memFormCache) Set(_ context.Context, f *model.PublicForm) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forms[f.ID] = f
	return nil
}

func (c *memFormCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.forms, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type memAnalyticsCache struct {
	mu          sync.Mutex
	summaries   map[string]*model.AnalyticsSummary
	invalidated int
}

func newMemAnalyticsCache() *memAnalyticsCache {
	return &memAnalyticsCache{summaries: map[string]*model.AnalyticsSummary{}}
}

func (c *memAnalyticsCache) GetSummary(_ context.Context, id string) (*model.AnalyticsSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaries[id], nil
}

func (c *memAnalyticsCache) SetSummary(_ context.Context, s *model.AnalyticsSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries[s.SurveyID] = s
	return nil
}

func (c *memAnalyticsCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.summaries, id)
	c.invalidated++
	return nil
}

type countingLimiter struct {
	limit  int
	window time.Duration
	seen   map[string]int
	err    error
}

func (l *countingLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	if l.err != nil {
		return false, 0, l.err
	}
	if l.seen == nil {
		l.seen = map[string]int{}
	}
	l.seen[key]++
	if l.seen[key] <= l.limit {
		return true, 0, nil
	}
	return false, l.window, nil
}

type broadcast struct {
	surveyID string
	msgType  string
	payload  interface{}
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	events       []broadcast
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToSurvey(surveyID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcast{surveyID, msgType, payload})
}

func (b *recordingBroadcaster) DisconnectSurvey(surveyID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, surveyID)
}

var errStore = errors.New("write concern timeout")
