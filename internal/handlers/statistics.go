package handlers

import (
	"encoding/json"
	"net/http"

	"calorie-tracker/internal/stats"
)

// ShareItem is one slice of the macronutrient pie.
type ShareItem struct {
	Name       string
	Grams      int
	Percentage float64
	Class      string
}

// ProgressBar is a goal bar capped at full width.
type ProgressBar struct {
	Name     string
	Consumed int
	Goal     int
	Percent  float64
	Width    float64
	Over     bool
}

// SeriesPoint is one row of the cumulative calorie chart.
type SeriesPoint struct {
	Date     string
	Calories int
	Width    float64
	Over     bool
}

// StatsViewModel is the data passed to the statistics view template.
type StatsViewModel struct {
	Period   stats.Period
	Label    string
	Periods  []PeriodOption
	Summary  stats.Summary
	HasData  bool
	Shares   []ShareItem
	Calories *ProgressBar
	Macros   []ProgressBar
	Series   []SeriesPoint
}

// Statistics renders the statistics page for the period in the query string.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	period, ok := h.periodParam(w, r)
	if !ok {
		return
	}
	id, _ := GetIdentityFromContext(r)

	summary, err := h.tracker.Summary(id, period)
	if err != nil {
		h.logger.Error("Summary error", "user", id.Username, "period", period, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "stats.html", newStatsViewModel(period, summary))
}

// SummaryJSON serves the same aggregation as the statistics page as JSON.
func (h *Handlers) SummaryJSON(w http.ResponseWriter, r *http.Request) {
	period, ok := h.periodParam(w, r)
	if !ok {
		return
	}
	id, _ := GetIdentityFromContext(r)

	summary, err := h.tracker.Summary(id, period)
	if err != nil {
		h.logger.Error("Summary error", "user", id.Username, "period", period, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(struct {
		Period string `json:"period"`
		stats.Summary
	}{string(period), summary}); err != nil {
		h.logger.Error("Encode summary", "error", err)
	}
}

// periodParam reads ?period=, defaulting to today. It writes a 400 and
// returns false on an unknown value.
func (h *Handlers) periodParam(w http.ResponseWriter, r *http.Request) (stats.Period, bool) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return stats.Today, true
	}
	p, err := stats.ParsePeriod(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return p, true
}

func newStatsViewModel(period stats.Period, s stats.Summary) StatsViewModel {
	vm := StatsViewModel{
		Period:  period,
		Label:   period.Label(),
		Periods: periodOptions(period),
		Summary: s,
		HasData: s.HasData(),
	}

	if s.MacroShares != nil {
		vm.Shares = []ShareItem{
			{Name: "Protein", Grams: s.Totals.Protein, Percentage: s.MacroShares.Protein * 100, Class: "protein"},
			{Name: "Fat", Grams: s.Totals.Fat, Percentage: s.MacroShares.Fat * 100, Class: "fat"},
			{Name: "Carbs", Grams: s.Totals.Carbs, Percentage: s.MacroShares.Carbs * 100, Class: "carbs"},
		}
	}

	if s.CalorieProgress != nil {
		bar := progressBar("Calories", s.CalorieProgress.Consumed, s.Goals.Calories)
		vm.Calories = &bar
	}

	for _, m := range s.MacroProgress {
		vm.Macros = append(vm.Macros, progressBar(m.Name, m.Consumed, m.Goal))
	}

	// Scale the series to the larger of the final total and the limit.
	scale := s.Goals.Calories
	if n := len(s.Cumulative); n > 0 && s.Cumulative[n-1].Calories > scale {
		scale = s.Cumulative[n-1].Calories
	}
	for _, p := range s.Cumulative {
		width := 0.0
		if scale > 0 {
			width = float64(p.Calories) / float64(scale) * 100
		}
		vm.Series = append(vm.Series, SeriesPoint{
			Date:     p.Date,
			Calories: p.Calories,
			Width:    width,
			Over:     p.Calories > p.Limit,
		})
	}

	return vm
}

func progressBar(name string, consumed, goal int) ProgressBar {
	b := ProgressBar{Name: name, Consumed: consumed, Goal: goal}
	if goal > 0 {
		b.Percent = float64(consumed) / float64(goal) * 100
	}
	b.Width = min(b.Percent, 100)
	b.Over = consumed > goal
	return b
}
