package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"createform/internal/model"
	"createform/internal/repository"
)

// ExportService renders submissions as CSV
type ExportService struct {
	surveyRepo     repository.SurveyRepo
	questionRepo   repository.QuestionRepo
	submissionRepo repository.SubmissionRepo
}

// NewExportService creates a new export service
func NewExportService(surveyRepo repository.SurveyRepo, questionRepo repository.QuestionRepo, submissionRepo repository.SubmissionRepo) *ExportService {
	return &ExportService{
		surveyRepo:     surveyRepo,
		questionRepo:   questionRepo,
		submissionRepo: submissionRepo,
	}
}

// ExportCSV returns the filtered submissions, one row each, with a column per question and lead field
func (s *ExportService) ExportCSV(ctx context.Context, ownerID string, filter model.SubmissionFilter) ([]byte, error) {
	if _, err := ownedSurvey(ctx, s.surveyRepo, ownerID, filter.SurveyID); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.ListBySurvey(ctx, filter.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	submissions, err := s.submissionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}

	return ExportSubmissionsCSV(questions, submissions)
}

type exportColumn struct {
	id     string
	header string
}

// ExportSubmissionsCSV renders submissions in wide format. Questions that were deleted after
// being answered get trailing columns named after the recorded question text.
func ExportSubmissionsCSV(questions []*model.Question, submissions []*model.Submission) ([]byte, error) {
	var questionCols []exportColumn
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		questionCols = append(questionCols, exportColumn{id: q.ID, header: q.Text})
		known[q.ID] = true
	}

	var leadCols []string
	knownLead := make(map[string]bool)
	for _, sub := range submissions {
		for _, a := range sub.AnswersContent {
			if !known[a.QuestionID] {
				questionCols = append(questionCols, exportColumn{id: a.QuestionID, header: a.QuestionText})
				known[a.QuestionID] = true
			}
		}
		for _, lv := range sub.LeadCaptureData {
			if !knownLead[lv.Label] {
				leadCols = append(leadCols, lv.Label)
				knownLead[lv.Label] = true
			}
		}
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"submission_id", "submitted_at", "total_score", "outcome", "respondent_id", "respondent_name", "respondent_email"}
	for _, label := range leadCols {
		header = append(header, csvCell(label))
	}
	for _, col := range questionCols {
		header = append(header, csvCell(col.header))
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, sub := range submissions {
		row := make([]string, 0, len(header))
		row = append(row,
			sub.ID,
			sub.CreatedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(sub.TotalScore),
			csvCell(sub.OutcomeTitle),
			csvCell(sub.RespondentID),
			csvCell(sub.RespondentName),
			csvCell(sub.RespondentEmail),
		)

		leads := make(map[string]string, len(sub.LeadCaptureData))
		for _, lv := range sub.LeadCaptureData {
			leads[lv.Label] = lv.Value
		}
		for _, label := range leadCols {
			row = append(row, csvCell(leads[label]))
		}

		answers := make(map[string]model.AnswerDetail, len(sub.AnswersContent))
		for _, a := range sub.AnswersContent {
			answers[a.QuestionID] = a
		}
		for _, col := range questionCols {
			row = append(row, csvCell(answerCell(answers[col.id])))
		}

		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func answerCell(a model.AnswerDetail) string {
	if a.Text != "" {
		return a.Text
	}
	return strings.Join(a.OptionTexts, "; ")
}

// csvCell quotes values that spreadsheet applications would evaluate as formulas
func csvCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}
