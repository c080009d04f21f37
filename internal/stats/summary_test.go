package stats

import (
	"testing"

	"calorie-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmpty(t *testing.T) {
	inputs := map[string]map[string]models.DailyLog{
		"nil":        nil,
		"no dates":   {},
		"empty days": {"2024-06-09": {}, "2024-06-10": nil},
	}

	for name, logs := range inputs {
		t.Run(name, func(t *testing.T) {
			s := Summarize(logs, models.DefaultGoals())

			assert.Equal(t, Totals{}, s.Totals)
			assert.Equal(t, 3000, s.RemainingCalories)
			assert.Nil(t, s.MacroShares)
			assert.Nil(t, s.CalorieProgress)
			assert.Nil(t, s.Cumulative)
			assert.False(t, s.HasData())
			require.Len(t, s.MacroProgress, 3)
			for _, m := range s.MacroProgress {
				assert.Zero(t, m.Consumed)
				assert.Zero(t, m.Percent)
			}
		})
	}
}

func TestSummarizeTodayScenario(t *testing.T) {
	logs := map[string]models.DailyLog{
		"2024-06-10": {
			{Name: "a", Calories: 100, Protein: 10, Fat: 5, Carbs: 15},
			{Name: "b", Calories: 200, Protein: 20, Fat: 0, Carbs: 30},
		},
	}

	s := Summarize(logs, models.DefaultGoals())

	assert.Equal(t, Totals{Calories: 300, Protein: 30, Fat: 5, Carbs: 45}, s.Totals)
	assert.Equal(t, 2700, s.RemainingCalories)
	assert.Equal(t, 2, s.Entries)
	assert.Equal(t, 1, s.Days)

	require.NotNil(t, s.MacroShares)
	assert.InDelta(t, 30.0/80.0, s.MacroShares.Protein, 1e-9)
	assert.InDelta(t, 5.0/80.0, s.MacroShares.Fat, 1e-9)
	assert.InDelta(t, 45.0/80.0, s.MacroShares.Carbs, 1e-9)

	require.NotNil(t, s.CalorieProgress)
	assert.Equal(t, CalorieProgress{Consumed: 300, Remaining: 2700}, *s.CalorieProgress)

	assert.Equal(t, []CumulativePoint{{Date: "2024-06-10", Calories: 300, Limit: 3000}}, s.Cumulative)
}

func TestSummarizeRemainingNeverNegative(t *testing.T) {
	logs := map[string]models.DailyLog{
		"2024-06-10": {{Calories: 3500}},
	}

	s := Summarize(logs, models.Goals{Calories: 3000})

	assert.Equal(t, 0, s.RemainingCalories)
	require.NotNil(t, s.CalorieProgress)
	assert.Equal(t, 0, s.CalorieProgress.Remaining)
}

func TestSummarizeCommutative(t *testing.T) {
	records := []models.NutrientRecord{
		{Calories: 130, Protein: 2, Fat: 0, Carbs: 28},
		{Calories: 165, Protein: 31, Fat: 3, Carbs: 0},
		{Calories: 95, Protein: 0, Fat: 0, Carbs: 25},
		{Calories: 70, Protein: 6, Fat: 5, Carbs: 1},
	}
	reversed := make(models.DailyLog, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		reversed = append(reversed, records[i])
	}

	forward := Summarize(map[string]models.DailyLog{"2024-06-10": records}, models.DefaultGoals())
	backward := Summarize(map[string]models.DailyLog{"2024-06-10": reversed}, models.DefaultGoals())
	split := Summarize(map[string]models.DailyLog{
		"2024-06-09": {records[2], records[0]},
		"2024-06-10": {records[3], records[1]},
	}, models.DefaultGoals())

	assert.Equal(t, forward.Totals, backward.Totals)
	assert.Equal(t, forward.Totals, split.Totals)
	assert.Equal(t, Totals{Calories: 460, Protein: 39, Fat: 8, Carbs: 54}, forward.Totals)
}

func TestSummarizeCumulativeIsChronological(t *testing.T) {
	logs := map[string]models.DailyLog{
		"2024-06-10": {{Calories: 300}},
		"2024-06-04": {{Calories: 100}, {Calories: 50}},
		"2024-06-07": {},
	}

	s := Summarize(logs, models.Goals{Calories: 2000})

	assert.Equal(t, []CumulativePoint{
		{Date: "2024-06-04", Calories: 150, Limit: 2000},
		{Date: "2024-06-07", Calories: 150, Limit: 2000},
		{Date: "2024-06-10", Calories: 450, Limit: 2000},
	}, s.Cumulative)
	assert.Equal(t, 3, s.Days)
}

func TestSummarizeMacroProgress(t *testing.T) {
	logs := map[string]models.DailyLog{
		"2024-06-10": {{Protein: 90, Fat: 80, Carbs: 0}},
	}

	s := Summarize(logs, models.Goals{Protein: 180, Fat: 80, Carbs: 0})

	assert.Equal(t, []MacroGoal{
		{Name: "Protein", Consumed: 90, Goal: 180, Percent: 50},
		{Name: "Fat", Consumed: 80, Goal: 80, Percent: 100},
		{Name: "Carbs", Consumed: 0, Goal: 0, Percent: 0},
	}, s.MacroProgress)
	assert.Nil(t, s.CalorieProgress, "no calories logged")
	assert.NotNil(t, s.MacroShares)
}
