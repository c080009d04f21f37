package main

import (
	"bufio"
	"cmp"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"calorie-tracker/internal/auth"
	"calorie-tracker/internal/storage"

	"golang.org/x/term"
)

const defaultStorePath = "users.json"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	storePath := fs.String("store", defaultStorePath, "Path to the accounts file or database")
	backend := fs.String("backend", "", "Storage backend: json or sqlite (default from env or json)")
	mode := fs.String("password-mode", auth.ModePlain, "Password storage: plain or bcrypt")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> [-password <password>] [-store <path>] [-backend json|sqlite]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	// Env vars apply only when the flags were left at their defaults
	envBackend := os.Getenv("STORAGE_BACKEND")
	if *storePath == defaultStorePath {
		if path := os.Getenv("DB_PATH"); path != "" {
			*storePath = path
			envBackend = cmp.Or(os.Getenv("STORAGE_BACKEND"), storage.BackendSQLite)
		}
		if path := os.Getenv("ACCOUNTS_PATH"); path != "" {
			*storePath = path
			envBackend = cmp.Or(os.Getenv("STORAGE_BACKEND"), storage.BackendJSON)
		}
	}
	*backend = cmp.Or(*backend, envBackend, storage.BackendJSON)

	policy, err := auth.NewPasswordPolicy(*mode)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store, err := storage.Open(*backend, *storePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if err := auth.NewGate(store, policy).Signup(*username, password); err != nil {
		if errors.Is(err, auth.ErrDuplicateUser) {
			return fmt.Errorf("user %s already exists", *username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully in %s\n", *username, *storePath)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
