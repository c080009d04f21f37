// Package catalog loads the predefined food list from a JSON document of
// the form {"Rice (100g)": [130, 2, 0, 28]} where the values are calories,
// protein, fat and carbs.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"calorie-tracker/internal/models"
)

var (
	// ErrUnknownFood is returned when a name is not in the catalog.
	ErrUnknownFood = errors.New("unknown food")
	// ErrCorruptCatalog marks a catalog document that cannot be parsed.
	ErrCorruptCatalog = errors.New("corrupt catalog")
)

// Defaults is the catalog written when no usable document exists.
var Defaults = map[string][4]int{
	"Rice (100g)":             {130, 2, 0, 28},
	"Chicken Breast (100g)":   {165, 31, 3, 0},
	"Apple (1 medium)":        {95, 0, 0, 25},
	"Milk (1 cup)":            {150, 8, 8, 12},
	"Egg (1)":                 {70, 6, 5, 1},
	"Banana (1 medium)":       {105, 1, 0, 27},
	"Broccoli (100g)":         {55, 4, 0, 11},
	"Salmon (100g)":           {208, 20, 13, 0},
	"Potato (1 medium, 150g)": {110, 3, 0, 26},
	"Almonds (30g, ~23 nuts)": {160, 6, 14, 6},
	"Cheese (1 slice, 28g)":   {113, 7, 9, 1},
	"Peanut Butter (2 tbsp)":  {190, 8, 16, 6},
	"Oatmeal (1 cup, cooked)": {150, 6, 3, 27},
	"Avocado (1 medium)":      {240, 3, 22, 12},
	"Greek Yogurt (1 cup)":    {100, 10, 0, 6},
	"Dark Chocolate (28g)":    {170, 2, 12, 14},
	"Tofu (100g)":             {76, 8, 4, 2},
}

// Catalog is a name to nutrient values lookup table. It is safe for
// concurrent use; Reload swaps the contents atomically.
type Catalog struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	items map[string][4]int
}

// Load reads the catalog at path. When the document is missing or corrupt
// the defaults are used and written back to path.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{path: path, logger: logger}

	items, err := readItems(path)
	if err == nil {
		c.items = items
		return c, nil
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("Catalog not found, writing defaults", "path", path)
	case errors.Is(err, ErrCorruptCatalog):
		logger.Warn("Catalog is corrupt, resetting to defaults", "path", path, "error", err)
	default:
		return nil, err
	}

	c.items = copyItems(Defaults)
	if err := writeItems(path, c.items); err != nil {
		return nil, fmt.Errorf("failed to write default catalog: %w", err)
	}
	return c, nil
}

// New builds an in-memory catalog that is not backed by a file.
func New(items map[string][4]int) *Catalog {
	return &Catalog{logger: slog.Default(), items: copyItems(items)}
}

func readItems(path string) (map[string][4]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCatalog, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrCorruptCatalog)
	}

	items := make(map[string][4]int, len(raw))
	for name, values := range raw {
		if len(values) != 4 {
			return nil, fmt.Errorf("%w: %q has %d values, want 4", ErrCorruptCatalog, name, len(values))
		}
		var v [4]int
		copy(v[:], values)
		for _, n := range v {
			if n < 0 {
				return nil, fmt.Errorf("%w: %q has negative values", ErrCorruptCatalog, name)
			}
		}
		items[name] = v
	}
	return items, nil
}

func writeItems(path string, items map[string][4]int) error {
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Reload re-reads the backing document. A corrupt document leaves the
// current contents in place.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return nil
	}
	items, err := readItems(c.path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// Names returns the food names in alphabetical order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.items))
	for name := range c.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns every catalog entry in alphabetical order.
func (c *Catalog) Entries() []models.CatalogEntry {
	names := c.Names()
	entries := make([]models.CatalogEntry, 0, len(names))
	for _, name := range names {
		if e, err := c.Lookup(name); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

// Lookup returns the entry for name.
func (c *Catalog) Lookup(name string) (models.CatalogEntry, error) {
	c.mu.RLock()
	v, ok := c.items[name]
	c.mu.RUnlock()

	if !ok {
		return models.CatalogEntry{}, fmt.Errorf("%w: %q", ErrUnknownFood, name)
	}
	return models.CatalogEntry{
		Name:     name,
		Calories: v[0],
		Protein:  v[1],
		Fat:      v[2],
		Carbs:    v[3],
	}, nil
}

// Len returns the number of foods.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func copyItems(items map[string][4]int) map[string][4]int {
	out := make(map[string][4]int, len(items))
	for k, v := range items {
		out[k] = v
	}
	return out
}
