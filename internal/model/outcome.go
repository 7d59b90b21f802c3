package model

import "time"

// NoOutcomeTitle is stored on submissions that resolved to no outcome
const NoOutcomeTitle = "Resultado No Definido"

// Outcome is a named result tied to a closed score range. A nil bound is unbounded on that side.
type Outcome struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	SurveyID    string    `json:"surveyId" bson:"surveyId"`
	Order       int       `json:"order" bson:"order"`
	MinScore    *int      `json:"minScore" bson:"minScore"`
	MaxScore    *int      `json:"maxScore" bson:"maxScore"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	RedirectURL string    `json:"redirectUrl,omitempty" bson:"redirectUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Contains reports whether total lies within [MinScore, MaxScore]
func (o *Outcome) Contains(total int) bool {
	if o.MinScore != nil && total < *o.MinScore {
		return false
	}
	if o.MaxScore != nil && total > *o.MaxScore {
		return false
	}
	return true
}

// OutcomeResult is what a respondent sees after submitting
type OutcomeResult struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Result converts the outcome into its respondent-facing shape
func (o *Outcome) Result() *OutcomeResult {
	if o == nil {
		return nil
	}
	return &OutcomeResult{
		Title:       o.Title,
		Description: o.Description,
		RedirectURL: o.RedirectURL,
	}
}
