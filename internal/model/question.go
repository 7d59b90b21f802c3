package model

import "time"

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeSingleChoice QuestionType = "single_choice" // Exactly one option
	QuestionTypeCheckboxes   QuestionType = "checkboxes"    // Any number of options, scores summed
	QuestionTypeScale        QuestionType = "scale"         // Numbered options, exactly one
	QuestionTypeDropdown     QuestionType = "dropdown"      // Exactly one option
	QuestionTypeText         QuestionType = "text"          // Free text, never scored
)

// Valid reports whether t is a known question type
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeSingleChoice, QuestionTypeCheckboxes, QuestionTypeScale, QuestionTypeDropdown, QuestionTypeText:
		return true
	}
	return false
}

// MultiSelect reports whether more than one option may be selected
func (t QuestionType) MultiSelect() bool {
	return t == QuestionTypeCheckboxes
}

// Scored reports whether answers to this type contribute to the total
func (t QuestionType) Scored() bool {
	return t != QuestionTypeText
}

// Option is a selectable answer carrying a score contribution
type Option struct {
	ID    string `json:"id" bson:"id"`
	Text  string `json:"text" bson:"text"`
	Score int    `json:"score" bson:"score"`
}

// Question belongs to a survey and owns its options
type Question struct {
	ID        string       `json:"id" bson:"_id,omitempty"`
	SurveyID  string       `json:"surveyId" bson:"surveyId"`
	Order     int          `json:"order" bson:"order"`
	Type      QuestionType `json:"type" bson:"type"`
	Text      string       `json:"text" bson:"text"`
	Options   []Option     `json:"options,omitempty" bson:"options,omitempty"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// Option returns the option with the given id, or nil
func (q *Question) Option(id string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}
