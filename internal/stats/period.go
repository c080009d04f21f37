// Package stats selects date ranges from a user's food history and
// summarizes them against the configured goals.
package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"calorie-tracker/internal/models"
)

// ErrUnknownPeriod is returned by ParsePeriod for unrecognized input.
var ErrUnknownPeriod = errors.New("unknown period")

// Period names a date range relative to today.
type Period string

const (
	Today  Period = "today"
	Last7  Period = "last7"
	Last30 Period = "last30"
	Yearly Period = "yearly"
)

// Periods lists the selectable periods in display order.
var Periods = []Period{Today, Last7, Last30, Yearly}

// Label returns the display name of the period.
func (p Period) Label() string {
	switch p {
	case Today:
		return "Today"
	case Last7:
		return "Last 7 Days"
	case Last30:
		return "Last 30 Days"
	case Yearly:
		return "Yearly"
	}
	return string(p)
}

// ParsePeriod accepts either a period tag ("last7") or its display name
// ("Last 7 Days"), case-insensitively.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	for _, p := range Periods {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, p.Label()) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// days returns the size of a rolling window, or 0 for non-window periods.
func (p Period) days() int {
	switch p {
	case Today:
		return 1
	case Last7:
		return 7
	case Last30:
		return 30
	}
	return 0
}

// Window returns the candidate date keys of a rolling period, newest first.
// Yearly is not a rolling window and yields nil.
func Window(today time.Time, p Period) []string {
	n := p.days()
	if n == 0 {
		return nil
	}
	keys := make([]string, 0, n)
	for i := range n {
		keys = append(keys, models.DayKey(today.AddDate(0, 0, -i)))
	}
	return keys
}

// Select restricts logs to the dates covered by p.
//
// Today always yields today's entry, empty when nothing was logged. The
// rolling windows only keep dates present in logs. Yearly keeps every date
// whose calendar year matches today's; keys that are not dates are skipped.
func Select(today time.Time, p Period, logs map[string]models.DailyLog) map[string]models.DailyLog {
	selected := make(map[string]models.DailyLog)

	switch p {
	case Today:
		key := models.DayKey(today)
		selected[key] = logs[key]
	case Last7, Last30:
		for _, key := range Window(today, p) {
			if log, ok := logs[key]; ok {
				selected[key] = log
			}
		}
	case Yearly:
		for key, log := range logs {
			day, err := models.ParseDay(key)
			if err != nil {
				continue
			}
			if day.Year() == today.Year() {
				selected[key] = log
			}
		}
	}

	return selected
}
