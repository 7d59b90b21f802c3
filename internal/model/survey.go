package model

import "time"

// OutcomePolicy selects how a total that falls outside every outcome range is resolved
type OutcomePolicy string

const (
	OutcomePolicyClosestBelow OutcomePolicy = "closest_below" // Nearest range starting below the total
	OutcomePolicyStrict       OutcomePolicy = "strict"        // Range match only
)

// Valid reports whether p is a known policy. The empty policy is valid and means closest_below.
func (p OutcomePolicy) Valid() bool {
	switch p {
	case "", OutcomePolicyClosestBelow, OutcomePolicyStrict:
		return true
	}
	return false
}

// LeadFieldType is the input type of a dynamic lead capture field
type LeadFieldType string

const (
	LeadFieldText   LeadFieldType = "text"
	LeadFieldEmail  LeadFieldType = "email"
	LeadFieldPhone  LeadFieldType = "phone"
	LeadFieldNumber LeadFieldType = "number"
)

// LeadField is an author-defined contact field shown before the result
type LeadField struct {
	Label    string        `json:"label" bson:"label" validate:"required,max=120"`
	Type     LeadFieldType `json:"type" bson:"type" validate:"omitempty,oneof=text email phone number"`
	Required bool          `json:"required" bson:"required"`
}

// LeadCapture configures the contact gate of a survey
type LeadCapture struct {
	Enabled      bool        `json:"enabled" bson:"enabled"`
	CollectName  bool        `json:"collectName" bson:"collectName"`
	CollectEmail bool        `json:"collectEmail" bson:"collectEmail"`
	RequireEmail bool        `json:"requireEmail" bson:"requireEmail"`
	Fields       []LeadField `json:"fields,omitempty" bson:"fields,omitempty" validate:"dive"`
}

// Survey is a form owned by a single user
type Survey struct {
	ID            string        `json:"id" bson:"_id,omitempty"`
	OwnerID       string        `json:"ownerId" bson:"ownerId"`
	WorkspaceID   string        `json:"workspaceId,omitempty" bson:"workspaceId,omitempty"`
	Title         string        `json:"title" bson:"title"`
	Description   string        `json:"description,omitempty" bson:"description,omitempty"`
	Active        bool          `json:"active" bson:"active"` // false = draft
	OutcomePolicy OutcomePolicy `json:"outcomePolicy" bson:"outcomePolicy"`
	LeadCapture   LeadCapture   `json:"leadCapture" bson:"leadCapture"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Policy returns the effective outcome policy
func (s *Survey) Policy() OutcomePolicy {
	if s.OutcomePolicy == "" {
		return OutcomePolicyClosestBelow
	}
	return s.OutcomePolicy
}

// SurveyDetail is a survey with its questions and outcomes, as seen by the owner
type SurveyDetail struct {
	Survey
	Questions []*Question `json:"questions"`
	Outcomes  []*Outcome  `json:"outcomes"`
}

// PublicForm is the respondent view of a published survey. Scores and outcomes are never exposed.
type PublicForm struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	LeadCapture LeadCapture      `json:"leadCapture"`
	Questions   []PublicQuestion `json:"questions"`
}

// PublicQuestion is a question stripped of option scores
type PublicQuestion struct {
	ID      string         `json:"id"`
	Order   int            `json:"order"`
	Type    QuestionType   `json:"type"`
	Text    string         `json:"text"`
	Options []PublicOption `json:"options,omitempty"`
}

// PublicOption is an option without its score
type PublicOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
