package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"calorie-tracker/internal/auth"
	"calorie-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearStoreEnv keeps the developer's environment out of the tests.
func clearStoreEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DB_PATH", "ACCOUNTS_PATH", "STORAGE_BACKEND"} {
		t.Setenv(k, "")
	}
}

func TestRun_Success(t *testing.T) {
	clearStoreEnv(t)
	storePath := filepath.Join(t.TempDir(), "users.json")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-user", "testuser", "-password", "secret", "-store", storePath}
	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err)

	output := stdout.String()
	assert.Contains(t, output, "User testuser created successfully")

	// Accounts document holds the plain password and an empty history
	data, err := os.ReadFile(storePath)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, doc, "testuser")
	assert.Equal(t, "secret", doc["testuser"]["password"])
	assert.Empty(t, doc["testuser"]["daily_logs"])
}

func TestRun_SQLiteBackend(t *testing.T) {
	clearStoreEnv(t)
	dbPath := filepath.Join(t.TempDir(), "calories.db")

	args := []string{"-user", "dbuser", "-password", "secret", "-store", dbPath, "-backend", "sqlite"}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.NoError(t, err)

	db, err := storage.NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()
	user, err := db.GetUser("dbuser")
	require.NoError(t, err)
	assert.Equal(t, "secret", user.Password)
}

func TestRun_BcryptMode(t *testing.T) {
	clearStoreEnv(t)
	storePath := filepath.Join(t.TempDir(), "users.json")

	args := []string{"-user", "hashed", "-password", "secret", "-store", storePath, "-password-mode", "bcrypt"}
	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))

	store, err := storage.OpenJSONStore(storePath, nil)
	require.NoError(t, err)
	user, err := store.GetUser("hashed")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", user.Password)
	assert.True(t, auth.CheckPassword("secret", user.Password))
}

func TestRun_DuplicateUser(t *testing.T) {
	clearStoreEnv(t)
	storePath := filepath.Join(t.TempDir(), "users.json")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-user", "testuser", "-password", "secret", "-store", storePath}

	// First run
	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err, "first run should succeed")

	// Second run
	stdout.Reset()
	stderr.Reset()
	err = run(args, stdin, stdout, stderr)
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingUserFlag(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	// Missing user
	args := []string{"-password", "secret"}
	err := run(args, stdin, stdout, stderr)
	require.Error(t, err, "expected error for missing user flag")
	assert.Contains(t, err.Error(), "missing required flags: user")

	// Usage should be printed
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InteractivePassword(t *testing.T) {
	clearStoreEnv(t)
	storePath := filepath.Join(t.TempDir(), "users.json")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	// Simulate user typing "interactive_secret" followed by newline
	stdin := bytes.NewBufferString("interactive_secret\n")

	// Omit -password flag
	args := []string{"-user", "interactive_user", "-store", storePath}
	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err)

	output := stdout.String()
	assert.Contains(t, output, "Password: ")
	assert.Contains(t, output, "User interactive_user created successfully")
}

func TestRun_InteractivePassword_Empty(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	// Simulate user typing newline (empty password)
	stdin := bytes.NewBufferString("\n")

	// Omit -password flag
	args := []string{"-user", "empty_pass_user"}
	err := run(args, stdin, stdout, stderr)
	require.Error(t, err, "expected error for empty password")
	assert.Contains(t, err.Error(), "password cannot be empty")
}

func TestRun_EnvVarOverride(t *testing.T) {
	clearStoreEnv(t)
	dbPath := filepath.Join(t.TempDir(), "test_env.db")

	t.Setenv("DB_PATH", dbPath)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	// Do not pass -store flag, let it use env var
	args := []string{"-user", "envuser", "-password", "secret"}
	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err)

	// DB_PATH selects the SQLite backend
	assert.FileExists(t, dbPath)
	db, err := storage.NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.GetUser("envuser")
	assert.NoError(t, err)
}

func TestRun_InvalidStorePath(t *testing.T) {
	clearStoreEnv(t)
	// Use a directory path as the accounts file, which should fail
	tmpDir := t.TempDir()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-user", "failuser", "-password", "secret", "-store", tmpDir}
	err := run(args, stdin, stdout, stderr)
	require.Error(t, err, "expected error for invalid store path")
	assert.Contains(t, err.Error(), "failed to open store")
}

func TestRun_InvalidFlag(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-invalid"}
	err := run(args, stdin, stdout, stderr)
	require.Error(t, err, "expected error for invalid flag")
	assert.Contains(t, err.Error(), "flag provided but not defined")
}

func TestRun_UnknownPasswordMode(t *testing.T) {
	clearStoreEnv(t)
	args := []string{"-user", "x", "-password", "y", "-store", filepath.Join(t.TempDir(), "u.json"), "-password-mode", "rot13"}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown password mode")
}
