package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	env map[string]string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	return &cli{env: map[string]string{
		"ACCOUNTS_PATH": filepath.Join(dir, "users.json"),
		"CATALOG_PATH":  filepath.Join(dir, "predefined_foods.json"),
		"LOG_LEVEL":     "error",
	}}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	root := newRootCmd(func(k string) string { return c.env[k] })
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := c.run("", args...)
	require.NoError(t, err, "caltrack %v", args)
	return out
}

var alice = []string{"--user", "alice", "--password", "pw", "--date", "2024-06-10"}

func withAlice(args ...string) []string {
	return append(append([]string{}, args...), alice...)
}

func TestSignupAndLog(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, withAlice("signup")...)
	assert.Contains(t, out, "Signup successful!")

	out = c.mustRun(t, withAlice("log")...)
	assert.Contains(t, out, "Food log for 2024-06-10")
	assert.Contains(t, out, "No food added yet!")

	out = c.mustRun(t, withAlice("add", "--name", "Toast", "--calories", "120", "--protein", "4", "--fat", "2", "--carbs", "22")...)
	assert.Contains(t, out, "Added Toast - Calories: 120, Protein: 4g, Fat: 2g, Carbs: 22g")

	out = c.mustRun(t, withAlice("add-food", "Rice", "(100g)")...)
	assert.Contains(t, out, "Added Rice (100g) - Calories: 130")

	out = c.mustRun(t, withAlice("log")...)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "Toast - "))
	assert.True(t, strings.HasPrefix(lines[2], "Rice (100g) - "))
}

func TestSignupDuplicate(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, withAlice("signup")...)

	_, err := c.run("", withAlice("signup")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already exists")
}

func TestLoginFailure(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, withAlice("signup")...)

	_, err := c.run("", "log", "--user", "alice", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid username or password")

	_, err = c.run("", "log", "--password", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user is required")
}

func TestPasswordPrompt(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, withAlice("signup")...)

	out, err := c.run("pw\n", "log", "--user", "alice", "--date", "2024-06-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "No food added yet!")
}

func TestAddRejectsNegative(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, withAlice("signup")...)

	_, err := c.run("", withAlice("add", "--calories", "-5")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calories")

	_, err = c.run("", withAlice("add-food", "Pizza")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown food")
}

func TestReset(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, withAlice("signup")...)
	c.mustRun(t, withAlice("add", "--calories", "100")...)

	out := c.mustRun(t, withAlice("reset")...)
	assert.Contains(t, out, "Log for 2024-06-10 has been reset.")

	out = c.mustRun(t, withAlice("log")...)
	assert.Contains(t, out, "No food added yet!")
}

func TestFoods(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun(t, "foods")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 17)
	assert.Contains(t, out, "Rice (100g) - Calories: 130, Protein: 2g, Fat: 0g, Carbs: 28g")
}

func TestReport(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, withAlice("signup")...)

	add := func(date, calories string) {
		c.mustRun(t, "add", "--calories", calories, "--user", "alice", "--password", "pw", "--date", date)
	}
	add("2024-06-10", "100")
	add("2024-06-04", "200")
	add("2024-06-03", "1200")
	add("2024-01-01", "1600")

	out := c.mustRun(t, withAlice("report", "--period", "last7", "--cumulative")...)
	assert.Contains(t, out, "Last 7 Days")
	assert.Contains(t, out, "Calories: 300\n")
	assert.Contains(t, out, "Remaining Calories: 2700")
	assert.Contains(t, out, "2024-06-04 200/3000")
	assert.Contains(t, out, "2024-06-10 300/3000")

	out = c.mustRun(t, withAlice("report", "--period", "Yearly", "--json")...)
	var summary struct {
		Days   int `json:"days"`
		Totals struct {
			Calories int `json:"calories"`
		} `json:"totals"`
		RemainingCalories int `json:"remaining_calories"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 4, summary.Days)
	assert.Equal(t, 3100, summary.Totals.Calories)
	assert.Equal(t, 0, summary.RemainingCalories)
}

func TestReportEmptyAndUnknownPeriod(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, withAlice("signup")...)

	out := c.mustRun(t, withAlice("report")...)
	assert.Contains(t, out, "Today")
	assert.Contains(t, out, "Remaining Calories: 3000")
	assert.Contains(t, out, "No data for this period.")

	_, err := c.run("", withAlice("report", "--period", "decade")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown period")
}

func TestInvalidDate(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "foods", "--date", "10/06/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --date")
}
