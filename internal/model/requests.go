package model

// WorkspaceRequest is the request body for creating or renaming a workspace
type WorkspaceRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// SurveyRequest is the request body for creating or updating a survey
type SurveyRequest struct {
	Title         string        `json:"title" validate:"required,max=200"`
	Description   string        `json:"description,omitempty" validate:"max=2000"`
	WorkspaceID   string        `json:"workspaceId,omitempty"`
	OutcomePolicy OutcomePolicy `json:"outcomePolicy,omitempty" validate:"omitempty,oneof=closest_below strict"`
	LeadCapture   LeadCapture   `json:"leadCapture"`
}

// OptionRequest is one option of a question request. An empty ID creates a new option.
type OptionRequest struct {
	ID    string `json:"id,omitempty"`
	Text  string `json:"text" validate:"required,max=500"`
	Score int    `json:"score"`
}

// QuestionRequest is the request body for adding or editing a question
type QuestionRequest struct {
	Order   int             `json:"order" validate:"gte=0"`
	Type    QuestionType    `json:"type" validate:"required,oneof=single_choice checkboxes scale dropdown text"`
	Text    string          `json:"text" validate:"required,max=1000"`
	Options []OptionRequest `json:"options,omitempty" validate:"dive"`
}

// OutcomeRequest is the request body for adding or editing an outcome
type OutcomeRequest struct {
	Order       int    `json:"order" validate:"gte=0"`
	MinScore    *int   `json:"minScore"`
	MaxScore    *int   `json:"maxScore"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=4000"`
	RedirectURL string `json:"redirectUrl,omitempty" validate:"omitempty,url"`
}

// PreviewRequest scores an answer set without recording it
type PreviewRequest struct {
	Answers []AnswerInput `json:"answers" validate:"dive"`
}
