package rest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"createform/internal/model"
	"createform/internal/repository"
)

// store is an in-memory stand-in for every MongoDB repository the router needs
type store struct {
	mu          sync.Mutex
	seq         int
	surveys     map[string]*model.Survey
	questions   map[string]*model.Question
	outcomes    map[string]*model.Outcome
	workspaces  map[string]*model.Workspace
	submissions []*model.Submission
}

func newStore() *store {
	return &store{
		surveys:    map[string]*model.Survey{},
		questions:  map[string]*model.Question{},
		outcomes:   map[string]*model.Outcome{},
		workspaces: map[string]*model.Workspace{},
	}
}

func (s *store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type surveyStore struct{ *store }
type questionStore struct{ *store }
type outcomeStore struct{ *store }
type workspaceStore struct{ *store }
type submissionStore struct{ *store }

func (s surveyStore) Create(_ context.Context, v *model.Survey) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.nextID("survey")
	v.CreatedAt = time.Now().UTC()
	cp := *v
	s.surveys[v.ID] = &cp
	return v.ID, nil
}

func (s surveyStore) GetByID(_ context.Context, id string) (*model.Survey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.surveys[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (s surveyStore) List(_ context.Context, ownerID, workspaceID string) ([]*model.Survey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Survey{}
	for _, v := range s.surveys {
		if v.OwnerID == ownerID && (workspaceID == "" || v.WorkspaceID == workspaceID) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s surveyStore) Update(_ context.Context, v *model.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[v.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *v
	s.surveys[v.ID] = &cp
	return nil
}

func (s surveyStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.surveys[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Active = active
	return nil
}

func (s surveyStore) DetachWorkspace(_ context.Context, workspaceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.surveys {
		if v.WorkspaceID == workspaceID {
			v.WorkspaceID = ""
		}
	}
	return nil
}

func (s surveyStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.surveys, id)
	return nil
}

func copyQuestion(q *model.Question) *model.Question {
	cp := *q
	cp.Options = append([]model.Option(nil), q.Options...)
	return &cp
}

func (s questionStore) assign(q *model.Question) {
	for i := range q.Options {
		if q.Options[i].ID == "" {
			q.Options[i].ID = s.nextID("opt")
		}
	}
}

func (s questionStore) Create(_ context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.nextID("q")
	s.assign(q)
	s.questions[q.ID] = copyQuestion(q)
	return nil
}

func (s questionStore) GetByID(_ context.Context, id string) (*model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, nil
	}
	return copyQuestion(q), nil
}

func (s questionStore) ListBySurvey(_ context.Context, surveyID string) ([]*model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Question{}
	for _, q := range s.questions {
		if q.SurveyID == surveyID {
			out = append(out, copyQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s questionStore) Update(_ context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return repository.ErrNotFound
	}
	s.assign(q)
	s.questions[q.ID] = copyQuestion(q)
	return nil
}

func (s questionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.questions, id)
	return nil
}

func (s questionStore) DeleteBySurvey(_ context.Context, surveyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, q := range s.questions {
		if q.SurveyID == surveyID {
			delete(s.questions, id)
		}
	}
	return nil
}

func (s outcomeStore) Create(_ context.Context, o *model.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.nextID("outcome")
	cp := *o
	s.outcomes[o.ID] = &cp
	return nil
}

func (s outcomeStore) GetByID(_ context.Context, id string) (*model.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.outcomes[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (s outcomeStore) ListBySurvey(_ context.Context, surveyID string) ([]*model.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Outcome{}
	for _, o := range s.outcomes {
		if o.SurveyID == surveyID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s outcomeStore) Update(_ context.Context, o *model.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outcomes[o.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *o
	s.outcomes[o.ID] = &cp
	return nil
}

func (s outcomeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.outcomes, id)
	return nil
}

func (s outcomeStore) DeleteBySurvey(_ context.Context, surveyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.outcomes {
		if o.SurveyID == surveyID {
			delete(s.outcomes, id)
		}
	}
	return nil
}

func (s workspaceStore) Create(_ context.Context, w *model.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = s.nextID("ws")
	cp := *w
	s.workspaces[w.ID] = &cp
	return nil
}

func (s workspaceStore) GetByID(_ context.Context, id string) (*model.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (s workspaceStore) ListByOwner(_ context.Context, ownerID string) ([]*model.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Workspace{}
	for _, w := range s.workspaces {
		if w.OwnerID == ownerID {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s workspaceStore) Update(_ context.Context, w *model.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[w.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *w
	s.workspaces[w.ID] = &cp
	return nil
}

func (s workspaceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workspaces, id)
	return nil
}

func (s submissionStore) Create(_ context.Context, v *model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.nextID("sub")
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	cp := *v
	s.submissions = append(s.submissions, &cp)
	return nil
}

func (s submissionStore) GetByID(_ context.Context, id string) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.submissions {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (s submissionStore) matching(f model.SubmissionFilter) []*model.Submission {
	out := []*model.Submission{}
	for i := len(s.submissions) - 1; i >= 0; i-- {
		v := s.submissions[i]
		if v.SurveyID != f.SurveyID {
			continue
		}
		if f.OutcomeTitle != "" && v.OutcomeTitle != f.OutcomeTitle {
			continue
		}
		if f.MinScore != nil && v.TotalScore < *f.MinScore {
			continue
		}
		if f.MaxScore != nil && v.TotalScore > *f.MaxScore {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	return out
}

func (s submissionStore) List(_ context.Context, f model.SubmissionFilter) ([]*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.matching(f)
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s submissionStore) Count(_ context.Context, f model.SubmissionFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.matching(f))), nil
}

func (s submissionStore) Subscribe(ctx context.Context, f model.SubmissionFilter, interval time.Duration) *repository.Subscription {
	return repository.NewSubscription(ctx, interval, func(ctx context.Context) (*model.SubmissionSnapshot, error) {
		n, err := s.Count(ctx, f)
		if err != nil {
			return nil, err
		}
		return &model.SubmissionSnapshot{SurveyID: f.SurveyID, Count: int(n)}, nil
	}, func(ctx context.Context, snap *model.SubmissionSnapshot) error {
		subs, err := s.List(ctx, f)
		snap.Submissions = subs
		return err
	})
}
