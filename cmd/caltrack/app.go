package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"calorie-tracker/internal/auth"
	"calorie-tracker/internal/catalog"
	"calorie-tracker/internal/config"
	"calorie-tracker/internal/logging"
	"calorie-tracker/internal/models"
	"calorie-tracker/internal/storage"
	"calorie-tracker/internal/tracker"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type app struct {
	getenv     func(string) string
	configPath string
	username   string
	password   string
	date       string
}

// session is an opened store plus the services built on it.
type session struct {
	store   storage.Store
	gate    *auth.Gate
	tracker *tracker.Tracker
}

func (s *session) Close() error {
	return s.store.Close()
}

// open loads the config and wires the store, catalog, gate and tracker.
func (a *app) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(a.configPath, a.getenv)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, cmd.ErrOrStderr())

	clock := time.Now
	if a.date != "" {
		day, err := models.ParseDay(a.date)
		if err != nil {
			return nil, fmt.Errorf("invalid --date %q: %w", a.date, err)
		}
		clock = func() time.Time { return day }
	}

	policy, err := auth.NewPasswordPolicy(cfg.PasswordMode)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	cat, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	trk := tracker.New(store, cat, cfg.Goals, tracker.WithClock(clock), tracker.WithLogger(logger))
	return &session{
		store:   store,
		gate:    auth.NewGate(store, policy),
		tracker: trk,
	}, nil
}

// credentials returns the username and password, prompting for the
// password when it was not given as a flag.
func (a *app) credentials(cmd *cobra.Command) (string, string, error) {
	if a.username == "" {
		return "", "", errors.New("--user is required")
	}
	if a.password != "" {
		return a.username, a.password, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return a.username, password, nil
}

// login opens a session and authenticates the configured user.
func (a *app) login(cmd *cobra.Command) (*session, auth.Identity, error) {
	username, password, err := a.credentials(cmd)
	if err != nil {
		return nil, auth.Identity{}, err
	}
	s, err := a.open(cmd)
	if err != nil {
		return nil, auth.Identity{}, err
	}
	id, _, err := s.gate.Login(username, password, s.tracker.Now())
	if err != nil {
		s.Close()
		return nil, auth.Identity{}, err
	}
	return s, id, nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
