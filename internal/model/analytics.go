package model

import "time"

// AnalyticsSummary is the read-time aggregate over every submission of a survey
type AnalyticsSummary struct {
	SurveyID         string            `json:"surveyId"`
	TotalSubmissions int               `json:"totalSubmissions"`
	AverageScore     float64           `json:"averageScore"`
	MinScore         int               `json:"minScore"`
	MaxScore         int               `json:"maxScore"`
	LeadCount        int               `json:"leadCount"`
	LeadRate         float64           `json:"leadRate"`
	Outcomes         []OutcomeCount    `json:"outcomes"`
	Questions        []QuestionStats   `json:"questions"`
	Timeseries       []TimeseriesPoint `json:"timeseries"`
	LastSubmissionAt *time.Time        `json:"lastSubmissionAt,omitempty"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}

// OutcomeCount is how many submissions resolved to an outcome title
type OutcomeCount struct {
	Title      string  `json:"title"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// QuestionStats counts option picks for one question
type QuestionStats struct {
	QuestionID   string        `json:"questionId"`
	QuestionText string        `json:"questionText"`
	Answered     int           `json:"answered"`
	AverageScore float64       `json:"averageScore"`
	Options      []OptionCount `json:"options"`
}

// OptionCount is how often an option was picked
type OptionCount struct {
	OptionID string `json:"optionId"`
	Text     string `json:"text"`
	Count    int    `json:"count"`
}

// TimeseriesPoint is the number of submissions on a day (UTC, YYYY-MM-DD)
type TimeseriesPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SubmissionSnapshot is one emission of a live submission subscription
type SubmissionSnapshot struct {
	SurveyID    string        `json:"surveyId"`
	Count       int           `json:"count"`
	Submissions []*Submission `json:"submissions"`
	TakenAt     time.Time     `json:"takenAt"`
}
