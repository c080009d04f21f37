// Package tracker implements the food log operations on behalf of a
// logged-in identity.
package tracker

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"calorie-tracker/internal/auth"
	"calorie-tracker/internal/catalog"
	"calorie-tracker/internal/metrics"
	"calorie-tracker/internal/models"
	"calorie-tracker/internal/stats"
	"calorie-tracker/internal/storage"
)

// DefaultFoodName is used for entries logged without a name.
const DefaultFoodName = "Food"

// Tracker ties the store, the catalog and the goals together.
type Tracker struct {
	store   storage.Store
	catalog *catalog.Catalog
	goals   models.Goals
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithMetrics records activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// New returns a Tracker.
func New(store storage.Store, cat *catalog.Catalog, goals models.Goals, opts ...Option) *Tracker {
	t := &Tracker{
		store:   store,
		catalog: cat,
		goals:   goals,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Today returns the current date key.
func (t *Tracker) Today() string {
	return models.DayKey(t.now())
}

// Goals returns the configured goals.
func (t *Tracker) Goals() models.Goals {
	return t.goals
}

// Catalog returns the predefined food catalog.
func (t *Tracker) Catalog() *catalog.Catalog {
	return t.catalog
}

// AddFood validates record and appends it to today's log.
func (t *Tracker) AddFood(id auth.Identity, record models.NutrientRecord) (models.NutrientRecord, error) {
	record.Name = strings.TrimSpace(record.Name)
	if record.Name == "" {
		record.Name = DefaultFoodName
	}
	if err := record.Validate(); err != nil {
		return models.NutrientRecord{}, err
	}
	if err := t.append(id, record); err != nil {
		return models.NutrientRecord{}, err
	}
	t.metrics.FoodLogged("custom")
	return record, nil
}

// AddCatalogFood appends the catalog entry name to today's log.
func (t *Tracker) AddCatalogFood(id auth.Identity, name string) (models.NutrientRecord, error) {
	entry, err := t.catalog.Lookup(name)
	if err != nil {
		return models.NutrientRecord{}, err
	}
	record := entry.Record()
	if err := t.append(id, record); err != nil {
		return models.NutrientRecord{}, err
	}
	t.metrics.FoodLogged("catalog")
	return record, nil
}

func (t *Tracker) append(id auth.Identity, record models.NutrientRecord) error {
	day := t.Today()
	if err := t.store.Append(id.Username, day, record); err != nil {
		return fmt.Errorf("failed to append food: %w", err)
	}
	t.logger.Info("Food logged", "user", id.Username, "day", day, "food", record.Name, "calories", record.Calories)
	return nil
}

// TodayLog returns today's entries.
func (t *Tracker) TodayLog(id auth.Identity) (models.DailyLog, error) {
	log, err := t.store.Get(id.Username, t.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to load today's log: %w", err)
	}
	return log, nil
}

// ResetToday empties today's log. Other dates are untouched.
func (t *Tracker) ResetToday(id auth.Identity) error {
	day := t.Today()
	if err := t.store.Reset(id.Username, day); err != nil {
		return fmt.Errorf("failed to reset log: %w", err)
	}
	t.metrics.LogReset()
	t.logger.Info("Daily log reset", "user", id.Username, "day", day)
	return nil
}

// Summary aggregates the user's history over period.
func (t *Tracker) Summary(id auth.Identity, period stats.Period) (stats.Summary, error) {
	logs, err := t.store.GetAll(id.Username)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("failed to load history: %w", err)
	}
	selected := stats.Select(t.now(), period, logs)
	t.metrics.SummaryComputed(string(period))
	return stats.Summarize(selected, t.goals), nil
}
