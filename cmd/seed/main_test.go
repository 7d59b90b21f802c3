package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"createform/internal/model"
)

func TestDemoSurveyParses(t *testing.T) {
	var def surveyFile
	require.NoError(t, yaml.Unmarshal(demoSurvey, &def))

	assert.Equal(t, "Team Health Check", def.Title)
	assert.True(t, model.OutcomePolicy(def.OutcomePolicy).Valid())
	require.Len(t, def.Questions, 4)
	for _, q := range def.Questions {
		assert.True(t, model.QuestionType(q.Type).Valid(), q.Type)
	}
	assert.Empty(t, def.Questions[3].Options)

	require.Len(t, def.Outcomes, 3)
	assert.Nil(t, def.Outcomes[0].MinScore)
	require.NotNil(t, def.Outcomes[0].MaxScore)
	assert.Equal(t, 12, *def.Outcomes[0].MaxScore)
	assert.Nil(t, def.Outcomes[2].MaxScore)
}
