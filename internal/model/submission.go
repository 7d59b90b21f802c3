package model

import "time"

// AnswerDetail is the denormalized record of one answered question
type AnswerDetail struct {
	QuestionID   string   `json:"questionId" bson:"questionId"`
	QuestionText string   `json:"questionText" bson:"questionText"`
	OptionIDs    []string `json:"optionIds,omitempty" bson:"optionIds,omitempty"`
	OptionTexts  []string `json:"optionTexts,omitempty" bson:"optionTexts,omitempty"`
	Text         string   `json:"text,omitempty" bson:"text,omitempty"` // text questions only
	Score        int      `json:"score" bson:"score"`
}

// LeadValue is one captured lead field
type LeadValue struct {
	Label string        `json:"label" bson:"label"`
	Value string        `json:"value" bson:"value"`
	Type  LeadFieldType `json:"type" bson:"type"`
}

// Submission is one respondent's completed, scored answer set. It is written once and never updated.
type Submission struct {
	ID              string         `json:"id" bson:"_id,omitempty"`
	SurveyID        string         `json:"surveyId" bson:"surveyId"`
	TotalScore      int            `json:"totalScore" bson:"totalScore"`
	OutcomeTitle    string         `json:"outcomeTitle" bson:"outcomeTitle"`
	OutcomeID       string         `json:"outcomeId,omitempty" bson:"outcomeId,omitempty"`
	AnswersContent  []AnswerDetail `json:"answersContent" bson:"answersContent"`
	RespondentID    string         `json:"respondentId,omitempty" bson:"respondentId,omitempty"`
	RespondentName  string         `json:"respondentName,omitempty" bson:"respondentName,omitempty"`
	RespondentEmail string         `json:"respondentEmail,omitempty" bson:"respondentEmail,omitempty"`
	LeadCaptureData []LeadValue    `json:"leadCaptureData,omitempty" bson:"leadCaptureData,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
}

// HasLead reports whether any contact data was captured
func (s *Submission) HasLead() bool {
	return s.RespondentName != "" || s.RespondentEmail != "" || len(s.LeadCaptureData) > 0
}

// SubmissionFilter narrows a submission listing. Zero values do not filter.
type SubmissionFilter struct {
	SurveyID     string
	OutcomeTitle string
	MinScore     *int
	MaxScore     *int
	Since        time.Time
	Until        time.Time
	HasLead      *bool
	Limit        int64
}

// AnswerInput is one answered question as submitted by a respondent
type AnswerInput struct {
	QuestionID string   `json:"questionId" validate:"required"`
	OptionIDs  []string `json:"optionIds"`
	Text       string   `json:"text,omitempty" validate:"max=4000"`
}

// LeadInput carries the contact data entered at the lead gate
type LeadInput struct {
	Name   string            `json:"name,omitempty" validate:"max=200"`
	Email  string            `json:"email,omitempty" validate:"omitempty,email"`
	Fields map[string]string `json:"fields,omitempty"` // label -> value
}

// SubmitRequest is the request body for a public form submission
type SubmitRequest struct {
	Answers []AnswerInput `json:"answers" validate:"dive"`
	Lead    *LeadInput    `json:"lead,omitempty"`
}

// SubmitResponse is returned after a submission is recorded
type SubmitResponse struct {
	SubmissionID string         `json:"submissionId"`
	TotalScore   int            `json:"totalScore"`
	OutcomeTitle string         `json:"outcomeTitle"`
	Outcome      *OutcomeResult `json:"outcome"` // nil when no outcome is defined for the score
}

// PreviewResponse is the scored result of an answer set that was not recorded
type PreviewResponse struct {
	TotalScore   int            `json:"totalScore"`
	OutcomeTitle string         `json:"outcomeTitle"`
	Outcome      *OutcomeResult `json:"outcome"`
	MatchKind    string         `json:"matchKind"`
}
