package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"calorie-tracker/internal/models"
)

var (
	// ErrUserExists is returned when creating a user whose name is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrCorruptStore marks a document that exists but cannot be parsed.
	ErrCorruptStore = errors.New("corrupt store")
)

// Backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Store keeps user accounts and their daily food logs. Every mutation is
// persisted before the call returns.
type Store interface {
	CreateUser(username, password string) error
	GetUser(username string) (*models.User, error)
	Append(username, day string, record models.NutrientRecord) error
	Reset(username, day string) error
	Get(username, day string) (models.DailyLog, error)
	GetAll(username string) (map[string]models.DailyLog, error)
	UserCount() (int, error)
	Close() error
}

// Open opens the store for the given backend.
func Open(backend, path string, logger *slog.Logger) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return OpenJSONStore(path, logger)
	case BackendSQLite:
		return NewDB(path)
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
