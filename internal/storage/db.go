package storage

import (
	"database/sql"
	"errors"
	"strings"

	"calorie-tracker/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS daily_logs (
			user_id INTEGER NOT NULL,
			day TEXT NOT NULL,
			PRIMARY KEY (user_id, day),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS food_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			day TEXT NOT NULL,
			name TEXT NOT NULL,
			calories INTEGER NOT NULL CHECK (calories >= 0),
			protein INTEGER NOT NULL CHECK (protein >= 0),
			fat INTEGER NOT NULL CHECK (fat >= 0),
			carbs INTEGER NOT NULL CHECK (carbs >= 0),
			FOREIGN KEY (user_id, day) REFERENCES daily_logs(user_id, day) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_food_entries_user_day ON food_entries(user_id, day)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateUser creates a new user with the given username and password.
func (db *DB) CreateUser(username, password string) error {
	_, err := db.conn.Exec(
		"INSERT INTO users (username, password) VALUES (?, ?)",
		username, password,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrUserExists
	}
	return err
}

// GetUser retrieves a user and their full history by username.
func (db *DB) GetUser(username string) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT username, password FROM users WHERE username = ?",
		username,
	)

	var u models.User
	if err := row.Scan(&u.Username, &u.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logs, err := db.GetAll(username)
	if err != nil {
		return nil, err
	}
	u.DailyLogs = logs
	return &u, nil
}

func (db *DB) userID(username string) (int64, error) {
	var id int64
	err := db.conn.QueryRow("SELECT id FROM users WHERE username = ?", username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return id, err
}

// Append inserts a food entry into the user's log for day.
func (db *DB) Append(username, day string, record models.NutrientRecord) error {
	id, err := db.userID(username)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT OR IGNORE INTO daily_logs (user_id, day) VALUES (?, ?)",
		id, day,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO food_entries (user_id, day, name, calories, protein, fat, carbs) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, day, record.Name, record.Calories, record.Protein, record.Fat, record.Carbs,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Reset removes every food entry of the user's log for day. The day itself
// stays recorded as an empty log.
func (db *DB) Reset(username, day string) error {
	id, err := db.userID(username)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT OR IGNORE INTO daily_logs (user_id, day) VALUES (?, ?)",
		id, day,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"DELETE FROM food_entries WHERE user_id = ? AND day = ?",
		id, day,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Get retrieves the user's log for day in insertion order.
func (db *DB) Get(username, day string) (models.DailyLog, error) {
	id, err := db.userID(username)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(
		"SELECT name, calories, protein, fat, carbs FROM food_entries WHERE user_id = ? AND day = ? ORDER BY id",
		id, day,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	log := models.DailyLog{}
	for rows.Next() {
		var r models.NutrientRecord
		if err := rows.Scan(&r.Name, &r.Calories, &r.Protein, &r.Fat, &r.Carbs); err != nil {
			return nil, err
		}
		log = append(log, r)
	}

	return log, rows.Err()
}

// GetAll retrieves every daily log of the user, including emptied days.
func (db *DB) GetAll(username string) (map[string]models.DailyLog, error) {
	id, err := db.userID(username)
	if err != nil {
		return nil, err
	}

	logs := make(map[string]models.DailyLog)

	days, err := db.conn.Query("SELECT day FROM daily_logs WHERE user_id = ?", id)
	if err != nil {
		return nil, err
	}
	for days.Next() {
		var day string
		if err := days.Scan(&day); err != nil {
			days.Close()
			return nil, err
		}
		logs[day] = models.DailyLog{}
	}
	if err := days.Close(); err != nil {
		return nil, err
	}
	if err := days.Err(); err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(
		"SELECT day, name, calories, protein, fat, carbs FROM food_entries WHERE user_id = ? ORDER BY id",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		var r models.NutrientRecord
		if err := rows.Scan(&day, &r.Name, &r.Calories, &r.Protein, &r.Fat, &r.Carbs); err != nil {
			return nil, err
		}
		logs[day] = append(logs[day], r)
	}

	return logs, rows.Err()
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
