// Package stats computes adherence statistics over a session's meals.
package stats

import "github.com/sakif/daily-diet/internal/model"

// Summary holds the adherence statistics for one session.
type Summary struct {
	Total        int `json:"total"`
	TotalInDiet  int `json:"totalInDiet"`
	TotalOutDiet int `json:"totalOutDiet"`
	BestSequence int `json:"bestSequence"`
}

// Summarize scans the meals once, in the order given, and returns the
// counts plus the longest run of consecutive in-diet meals.
//
// The input must be in creation order (as MealRepository.ListMeals
// returns it); BestSequence is defined over that ordering.
//
// The scan keeps a current run counter, folds it into the best at every
// out-of-diet meal, and once more at the end: a streak that runs through
// the final meal has no out-of-diet boundary to close it, but must still
// be eligible to win.
func Summarize(meals []model.Meal) Summary {
	var s Summary
	s.Total = len(meals)

	current := 0
	best := 0

	for _, meal := range meals {
		if meal.InDiet {
			s.TotalInDiet++
			current++
			continue
		}

		s.TotalOutDiet++
		if current > best {
			best = current
		}
		current = 0
	}

	if current > best {
		best = current
	}
	s.BestSequence = best

	return s
}
