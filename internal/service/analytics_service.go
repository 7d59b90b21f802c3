package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"createform/internal/cache"
	"createform/internal/model"
	"createform/internal/repository"
)

// AnalyticsService aggregates submissions into survey summaries at read time
type AnalyticsService struct {
	surveyRepo     repository.SurveyRepo
	questionRepo   repository.QuestionRepo
	submissionRepo repository.SubmissionRepo
	analyticsCache cache.AnalyticsCache
	log            *zap.Logger
	now            func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	surveyRepo repository.SurveyRepo,
	questionRepo repository.QuestionRepo,
	submissionRepo repository.SubmissionRepo,
	analyticsCache cache.AnalyticsCache,
	log *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		surveyRepo:     surveyRepo,
		questionRepo:   questionRepo,
		submissionRepo: submissionRepo,
		analyticsCache: analyticsCache,
		log:            log,
		now:            time.Now,
	}
}

// Summary returns the survey's analytics, served from cache when fresh
func (s *AnalyticsService) Summary(ctx context.Context, ownerID, surveyID string) (*model.AnalyticsSummary, error) {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, surveyID); err != nil {
		return nil, err
	}

	if summary, err := s.analyticsCache.GetSummary(ctx, surveyID); err != nil {
		s.log.Warn("analytics cache read failed", zap.String("survey_id", surveyID), zap.Error(err))
	} else if summary != nil {
		return summary, nil
	}

	var (
		questions   []*model.Question
		submissions []*model.Submission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if questions, err = s.questionRepo.ListBySurvey(gctx, surveyID); err != nil {
			return fmt.Errorf("failed to get questions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if submissions, err = s.submissionRepo.List(gctx, model.SubmissionFilter{SurveyID: surveyID}); err != nil {
			return fmt.Errorf("failed to get submissions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := summarize(surveyID, questions, submissions, s.now().UTC())
	if err := s.analyticsCache.SetSummary(ctx, summary); err != nil {
		s.log.Warn("analytics cache write failed", zap.String("survey_id", surveyID), zap.Error(err))
	}
	return summary, nil
}

// summarize computes the summary of a full submission set
func summarize(surveyID string, questions []*model.Question, submissions []*model.Submission, now time.Time) *model.AnalyticsSummary {
	summary := &model.AnalyticsSummary{
		SurveyID:         surveyID,
		TotalSubmissions: len(submissions),
		Outcomes:         []model.OutcomeCount{},
		Questions:        make([]model.QuestionStats, 0, len(questions)),
		Timeseries:       []model.TimeseriesPoint{},
		GeneratedAt:      now,
	}

	stats := make(map[string]*questionTally, len(questions))
	for _, q := range questions {
		stats[q.ID] = newQuestionTally(q)
	}

	outcomeCounts := make(map[string]int)
	dayCounts := make(map[string]int)
	scoreSum := 0
	for i, sub := range submissions {
		scoreSum += sub.TotalScore
		if i == 0 || sub.TotalScore < summary.MinScore {
			summary.MinScore = sub.TotalScore
		}
		if i == 0 || sub.TotalScore > summary.MaxScore {
			summary.MaxScore = sub.TotalScore
		}
		if sub.HasLead() {
			summary.LeadCount++
		}
		outcomeCounts[sub.OutcomeTitle]++
		dayCounts[sub.CreatedAt.UTC().Format("2006-01-02")]++

		if summary.LastSubmissionAt == nil || sub.CreatedAt.After(*summary.LastSubmissionAt) {
			at := sub.CreatedAt
			summary.LastSubmissionAt = &at
		}

		for _, answer := range sub.AnswersContent {
			if tally, ok := stats[answer.QuestionID]; ok {
				tally.add(answer)
			}
		}
	}

	if n := len(submissions); n > 0 {
		summary.AverageScore = round2(float64(scoreSum) / float64(n))
		summary.LeadRate = round2(float64(summary.LeadCount) / float64(n) * 100)
	}

	for title, count := range outcomeCounts {
		summary.Outcomes = append(summary.Outcomes, model.OutcomeCount{
			Title:      title,
			Count:      count,
			Percentage: round2(float64(count) / float64(len(submissions)) * 100),
		})
	}
	sort.Slice(summary.Outcomes, func(i, j int) bool {
		if summary.Outcomes[i].Count != summary.Outcomes[j].Count {
			return summary.Outcomes[i].Count > summary.Outcomes[j].Count
		}
		return summary.Outcomes[i].Title < summary.Outcomes[j].Title
	})

	for day, count := range dayCounts {
		summary.Timeseries = append(summary.Timeseries, model.TimeseriesPoint{Date: day, Count: count})
	}
	sort.Slice(summary.Timeseries, func(i, j int) bool {
		return summary.Timeseries[i].Date < summary.Timeseries[j].Date
	})

	for _, q := range questions {
		summary.Questions = append(summary.Questions, stats[q.ID].result())
	}
	return summary
}

type questionTally struct {
	stats    model.QuestionStats
	scoreSum int
	counts   map[string]int
	extra    []model.OptionCount // options no longer on the question
}

func newQuestionTally(q *model.Question) *questionTally {
	t := &questionTally{
		stats: model.QuestionStats{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Options:      make([]model.OptionCount, 0, len(q.Options)),
		},
		counts: make(map[string]int, len(q.Options)),
	}
	for _, opt := range q.Options {
		t.stats.Options = append(t.stats.Options, model.OptionCount{OptionID: opt.ID, Text: opt.Text})
		t.counts[opt.ID] = 0
	}
	return t
}

func (t *questionTally) add(answer model.AnswerDetail) {
	t.stats.Answered++
	t.scoreSum += answer.Score
	for i, optID := range answer.OptionIDs {
		if _, ok := t.counts[optID]; ok {
			t.counts[optID]++
			continue
		}
		t.addExtra(optID, optionText(answer, i))
	}
}

func (t *questionTally) addExtra(optID, text string) {
	for i := range t.extra {
		if t.extra[i].OptionID == optID {
			t.extra[i].Count++
			return
		}
	}
	t.extra = append(t.extra, model.OptionCount{OptionID: optID, Text: text, Count: 1})
}

func (t *questionTally) result() model.QuestionStats {
	out := t.stats
	out.Options = make([]model.OptionCount, 0, len(t.stats.Options)+len(t.extra))
	for _, opt := range t.stats.Options {
		opt.Count = t.counts[opt.OptionID]
		out.Options = append(out.Options, opt)
	}
	out.Options = append(out.Options, t.extra...)
	if out.Answered > 0 {
		out.AverageScore = round2(float64(t.scoreSum) / float64(out.Answered))
	}
	return out
}

func optionText(answer model.AnswerDetail, i int) string {
	if i < len(answer.OptionTexts) {
		return answer.OptionTexts[i]
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
