package scoring

import (
	"math"
	"sort"

	"createform/internal/model"
)

// MatchKind describes how an outcome was selected
type MatchKind string

const (
	MatchNone         MatchKind = "none"          // No outcome applies
	MatchRange        MatchKind = "range"         // Total lies within the outcome range
	MatchClosestBelow MatchKind = "closest_below" // Greatest minScore not above the total
	MatchLowest       MatchKind = "lowest"        // Every range starts above the total
)

// Resolve returns the outcome for total, or nil with MatchNone.
//
// Outcomes are scanned by ascending minScore (a nil minScore sorts first), then author order, then id,
// so overlapping ranges always resolve to the lowest minScore. Under the strict policy a total outside
// every range has no outcome; under closest_below it falls back to the outcome with the greatest
// minScore not above the total, and failing that to the outcome with the smallest minScore.
func Resolve(total int, outcomes []*model.Outcome, policy model.OutcomePolicy) (*model.Outcome, MatchKind) {
	ordered := sortedOutcomes(outcomes)
	if len(ordered) == 0 {
		return nil, MatchNone
	}

	for _, o := range ordered {
		if o.Contains(total) {
			return o, MatchRange
		}
	}

	if policy == model.OutcomePolicyStrict {
		return nil, MatchNone
	}

	// ties on minScore keep scan order
	var below *model.Outcome
	for _, o := range ordered {
		if lower(o) <= int64(total) {
			if below == nil || lower(o) > lower(below) {
				below = o
			}
		}
	}
	if below != nil {
		return below, MatchClosestBelow
	}
	return ordered[0], MatchLowest
}

func sortedOutcomes(outcomes []*model.Outcome) []*model.Outcome {
	ordered := make([]*model.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o != nil {
			ordered = append(ordered, o)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if lower(a) != lower(b) {
			return lower(a) < lower(b)
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
	return ordered
}

func lower(o *model.Outcome) int64 {
	if o.MinScore == nil {
		return math.MinInt64
	}
	return int64(*o.MinScore)
}
