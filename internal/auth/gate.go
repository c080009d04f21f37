package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"calorie-tracker/internal/models"
	"calorie-tracker/internal/storage"
)

var (
	// ErrDuplicateUser is returned by Signup when the username is taken.
	ErrDuplicateUser = errors.New("username already exists")
	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMissingCredentials is returned when username or password is blank.
	ErrMissingCredentials = errors.New("username and password are required")
)

// Identity is a logged-in user.
type Identity struct {
	Username string
}

// Accounts is the part of the store the gate needs.
type Accounts interface {
	CreateUser(username, password string) error
	GetUser(username string) (*models.User, error)
	Get(username, day string) (models.DailyLog, error)
}

// Gate creates accounts and checks credentials.
type Gate struct {
	accounts  Accounts
	passwords PasswordPolicy
}

// NewGate returns a gate over accounts. A nil policy stores plain passwords.
func NewGate(accounts Accounts, passwords PasswordPolicy) *Gate {
	if passwords == nil {
		passwords = PlainPasswords{}
	}
	return &Gate{accounts: accounts, passwords: passwords}
}

// Signup creates an account with an empty history.
func (g *Gate) Signup(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrMissingCredentials
	}

	stored, err := g.passwords.Seal(password)
	if err != nil {
		return fmt.Errorf("failed to seal password: %w", err)
	}

	if err := g.accounts.CreateUser(username, stored); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Login checks the credentials and returns the identity together with the
// user's log for today.
func (g *Gate) Login(username, password string, today time.Time) (Identity, models.DailyLog, error) {
	u, err := g.accounts.GetUser(username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return Identity{}, nil, ErrInvalidCredentials
		}
		return Identity{}, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !g.passwords.Match(password, u.Password) {
		return Identity{}, nil, ErrInvalidCredentials
	}

	id := Identity{Username: u.Username}
	log, err := g.accounts.Get(u.Username, models.DayKey(today))
	if err != nil {
		return Identity{}, nil, fmt.Errorf("failed to load daily log: %w", err)
	}
	return id, log, nil
}

// Sessions maps session tokens to identities. Sessions do not expire; they
// end on logout or process restart.
type Sessions struct {
	mu     sync.RWMutex
	tokens map[string]Identity
}

// NewSessions returns an empty session table.
func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]Identity)}
}

// Create starts a session for id and returns its token.
func (s *Sessions) Create(id Identity) (string, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tokens[token] = id
	s.mu.Unlock()
	return token, nil
}

// Lookup returns the identity of token.
func (s *Sessions) Lookup(token string) (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[token]
	return id, ok
}

// Delete ends the session.
func (s *Sessions) Delete(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}
