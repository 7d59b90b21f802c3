// Package scoring computes submission totals and maps them to survey outcomes.
package scoring

import "createform/internal/model"

// Selection is the set of option scores picked for one question
type Selection struct {
	QuestionID   string
	OptionScores []int
}

// Aggregate sums every selected option score. Questions without selections contribute zero.
func Aggregate(selections []Selection) int {
	total := 0
	for _, s := range selections {
		for _, score := range s.OptionScores {
			total += score
		}
	}
	return total
}

// SelectionsFromAnswers looks up the stored score of each selected option.
// Answers to unknown questions, unknown option ids and text questions contribute nothing.
// A single-select question only counts its first known option.
func SelectionsFromAnswers(questions []*model.Question, answers []model.AnswerInput) []Selection {
	byID := make(map[string]*model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	selections := make([]Selection, 0, len(answers))
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok || !q.Type.Scored() || seen[q.ID] {
			continue
		}
		seen[q.ID] = true

		sel := Selection{QuestionID: q.ID}
		for _, optID := range dedupe(a.OptionIDs) {
			opt := q.Option(optID)
			if opt == nil {
				continue
			}
			sel.OptionScores = append(sel.OptionScores, opt.Score)
			if !q.Type.MultiSelect() {
				break
			}
		}
		selections = append(selections, sel)
	}
	return selections
}

func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
