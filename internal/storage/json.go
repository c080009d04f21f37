package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"calorie-tracker/internal/models"
)

// JSONStore keeps every account in a single JSON document:
//
//	{"alice": {"password": "...", "daily_logs": {"2024-06-10": [{...}]}}}
//
// The whole document is rewritten on each mutation.
type JSONStore struct {
	path     string
	logger   *slog.Logger
	mu       sync.Mutex
	accounts map[string]*models.User
}

// OpenJSONStore loads the accounts document at path. A missing document is
// created empty; a corrupt one is logged, reset to empty and rewritten.
func OpenJSONStore(path string, logger *slog.Logger) (*JSONStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &JSONStore{path: path, logger: logger}

	accounts, err := readAccounts(path)
	if err == nil {
		s.accounts = accounts
		return s, nil
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
	case errors.Is(err, ErrCorruptStore):
		logger.Warn("Accounts document is corrupt, resetting it", "path", path, "error", err)
	default:
		return nil, err
	}

	s.accounts = make(map[string]*models.User)
	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

func readAccounts(path string) (map[string]*models.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var accounts map[string]*models.User
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if accounts == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrCorruptStore)
	}

	for name, u := range accounts {
		if u == nil {
			return nil, fmt.Errorf("%w: account %q is null", ErrCorruptStore, name)
		}
		u.Username = name
		if u.DailyLogs == nil {
			u.DailyLogs = make(map[string]models.DailyLog)
		}
	}
	return accounts, nil
}

// save writes the document to a temp file and renames it over the original.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.accounts, "", "    ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// CreateUser adds a new account with an empty history.
func (s *JSONStore) CreateUser(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[username]; ok {
		return ErrUserExists
	}
	s.accounts[username] = &models.User{
		Username:  username,
		Password:  password,
		DailyLogs: make(map[string]models.DailyLog),
	}
	if err := s.save(); err != nil {
		delete(s.accounts, username)
		return err
	}
	return nil
}

// GetUser returns a copy of the account.
func (s *JSONStore) GetUser(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.accounts[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &models.User{
		Username:  u.Username,
		Password:  u.Password,
		DailyLogs: copyLogs(u.DailyLogs),
	}, nil
}

// Append adds a record to the user's log for day.
func (s *JSONStore) Append(username, day string, record models.NutrientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.accounts[username]
	if !ok {
		return ErrUserNotFound
	}
	prev, existed := u.DailyLogs[day]
	u.DailyLogs[day] = append(prev[:len(prev):len(prev)], record)
	if err := s.save(); err != nil {
		if existed {
			u.DailyLogs[day] = prev
		} else {
			delete(u.DailyLogs, day)
		}
		return err
	}
	return nil
}

// Reset empties the user's log for day, keeping the date entry.
func (s *JSONStore) Reset(username, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.accounts[username]
	if !ok {
		return ErrUserNotFound
	}
	prev, existed := u.DailyLogs[day]
	u.DailyLogs[day] = models.DailyLog{}
	if err := s.save(); err != nil {
		if existed {
			u.DailyLogs[day] = prev
		} else {
			delete(u.DailyLogs, day)
		}
		return err
	}
	return nil
}

// Get returns the user's log for day; absent days are empty.
func (s *JSONStore) Get(username, day string) (models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.accounts[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return append(models.DailyLog{}, u.DailyLogs[day]...), nil
}

// GetAll returns the user's full history.
func (s *JSONStore) GetAll(username string) (map[string]models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.accounts[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyLogs(u.DailyLogs), nil
}

// UserCount returns the number of accounts.
func (s *JSONStore) UserCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts), nil
}

// Close is a no-op; every mutation is already on disk.
func (s *JSONStore) Close() error {
	return nil
}

func copyLogs(logs map[string]models.DailyLog) map[string]models.DailyLog {
	out := make(map[string]models.DailyLog, len(logs))
	for day, log := range logs {
		out[day] = append(models.DailyLog{}, log...)
	}
	return out
}
