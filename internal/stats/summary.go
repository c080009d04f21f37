package stats

import (
	"sort"

	"calorie-tracker/internal/models"
)

// Totals holds summed nutrient values.
type Totals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Fat      int `json:"fat"`
	Carbs    int `json:"carbs"`
}

// MacroShares is the share of each macronutrient in the total grams eaten.
type MacroShares struct {
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
	Carbs   float64 `json:"carbs"`
}

// CalorieProgress splits the calorie limit into consumed and remaining.
type CalorieProgress struct {
	Consumed  int `json:"consumed"`
	Remaining int `json:"remaining"`
}

// MacroGoal compares one macronutrient against its target.
type MacroGoal struct {
	Name     string  `json:"name"`
	Consumed int     `json:"consumed"`
	Goal     int     `json:"goal"`
	Percent  float64 `json:"percent"`
}

// CumulativePoint is one step of the running calorie total.
type CumulativePoint struct {
	Date     string `json:"date"`
	Calories int    `json:"calories"`
	Limit    int    `json:"limit"`
}

// Summary is the aggregate of a selected set of daily logs.
//
// MacroShares, CalorieProgress and Cumulative are nil when there is no data
// to show for them.
type Summary struct {
	Days              int               `json:"days"`
	Entries           int               `json:"entries"`
	Totals            Totals            `json:"totals"`
	Goals             models.Goals      `json:"goals"`
	RemainingCalories int               `json:"remaining_calories"`
	MacroShares       *MacroShares      `json:"macro_shares,omitempty"`
	CalorieProgress   *CalorieProgress  `json:"calorie_progress,omitempty"`
	MacroProgress     []MacroGoal       `json:"macro_progress"`
	Cumulative        []CumulativePoint `json:"cumulative,omitempty"`
}

// HasData reports whether at least one record contributed to the summary.
func (s Summary) HasData() bool {
	return s.Entries > 0
}

// Summarize sums every record in logs and derives the goal progress values.
// It never fails; empty input yields zero totals and nil chart data.
func Summarize(logs map[string]models.DailyLog, goals models.Goals) Summary {
	s := Summary{Days: len(logs), Goals: goals}

	dates := make([]string, 0, len(logs))
	for date, log := range logs {
		dates = append(dates, date)
		for _, r := range log {
			s.Totals.Calories += r.Calories
			s.Totals.Protein += r.Protein
			s.Totals.Fat += r.Fat
			s.Totals.Carbs += r.Carbs
			s.Entries++
		}
	}

	s.RemainingCalories = max(0, goals.Calories-s.Totals.Calories)

	grams := s.Totals.Protein + s.Totals.Fat + s.Totals.Carbs
	if grams > 0 {
		s.MacroShares = &MacroShares{
			Protein: float64(s.Totals.Protein) / float64(grams),
			Fat:     float64(s.Totals.Fat) / float64(grams),
			Carbs:   float64(s.Totals.Carbs) / float64(grams),
		}
	}

	if s.Totals.Calories > 0 {
		s.CalorieProgress = &CalorieProgress{
			Consumed:  s.Totals.Calories,
			Remaining: s.RemainingCalories,
		}
	}

	s.MacroProgress = []MacroGoal{
		macroGoal("Protein", s.Totals.Protein, goals.Protein),
		macroGoal("Fat", s.Totals.Fat, goals.Fat),
		macroGoal("Carbs", s.Totals.Carbs, goals.Carbs),
	}

	if s.Entries > 0 {
		// ISO keys sort chronologically.
		sort.Strings(dates)
		running := 0
		s.Cumulative = make([]CumulativePoint, 0, len(dates))
		for _, date := range dates {
			for _, r := range logs[date] {
				running += r.Calories
			}
			s.Cumulative = append(s.Cumulative, CumulativePoint{
				Date:     date,
				Calories: running,
				Limit:    goals.Calories,
			})
		}
	}

	return s
}

func macroGoal(name string, consumed, goal int) MacroGoal {
	percent := 0.0
	if goal > 0 {
		percent = float64(consumed) / float64(goal) * 100
	}
	return MacroGoal{Name: name, Consumed: consumed, Goal: goal, Percent: percent}
}
