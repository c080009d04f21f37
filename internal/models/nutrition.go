package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 layout used for daily log keys.
const DateLayout = "2006-01-02"

// ErrInvalidRecord is returned when a nutrient record carries negative values.
var ErrInvalidRecord = errors.New("invalid nutrient record")

// NutrientRecord represents a single logged food entry.
//
// The protein field is serialized as "protien" so that existing account
// documents keep loading.
type NutrientRecord struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protien"`
	Fat      int    `json:"fat"`
	Carbs    int    `json:"carbs"`
}

// Validate checks that all nutrient values are non-negative.
func (r NutrientRecord) Validate() error {
	switch {
	case r.Calories < 0:
		return fmt.Errorf("%w: calories must be non-negative", ErrInvalidRecord)
	case r.Protein < 0:
		return fmt.Errorf("%w: protein must be non-negative", ErrInvalidRecord)
	case r.Fat < 0:
		return fmt.Errorf("%w: fat must be non-negative", ErrInvalidRecord)
	case r.Carbs < 0:
		return fmt.Errorf("%w: carbs must be non-negative", ErrInvalidRecord)
	}
	return nil
}

// String formats the record the way the daily log displays it.
func (r NutrientRecord) String() string {
	return fmt.Sprintf("%s - Calories: %d, Protein: %dg, Fat: %dg, Carbs: %dg",
		r.Name, r.Calories, r.Protein, r.Fat, r.Carbs)
}

// DailyLog is the ordered list of records for one user on one date.
type DailyLog []NutrientRecord

// User represents a user account and its food history keyed by date.
type User struct {
	Username  string              `json:"-"`
	Password  string              `json:"password"`
	DailyLogs map[string]DailyLog `json:"daily_logs"`
}

// Goals holds the calorie limit and macronutrient targets.
type Goals struct {
	Calories int `json:"calories" yaml:"calories"`
	Protein  int `json:"protein" yaml:"protein"`
	Fat      int `json:"fat" yaml:"fat"`
	Carbs    int `json:"carbs" yaml:"carbs"`
}

// DefaultGoals returns the stock daily targets.
func DefaultGoals() Goals {
	return Goals{Calories: 3000, Protein: 180, Fat: 80, Carbs: 300}
}

// CatalogEntry is a predefined food with fixed nutrient values.
type CatalogEntry struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Fat      int    `json:"fat"`
	Carbs    int    `json:"carbs"`
}

// Record converts the catalog entry into a loggable record.
func (e CatalogEntry) Record() NutrientRecord {
	return NutrientRecord{
		Name:     e.Name,
		Calories: e.Calories,
		Protein:  e.Protein,
		Fat:      e.Fat,
		Carbs:    e.Carbs,
	}
}

// DayKey formats t as a daily log key.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDay parses a daily log key.
func ParseDay(key string) (time.Time, error) {
	return time.Parse(DateLayout, key)
}
