// Package store provides persistence backends for Venille.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/venille-ai/venille/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetUser(jid string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT jid, name, language, first_seen, last_seen, last_period, next_period, wants_reminder FROM users WHERE jid = ?`, jid)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetUser not found", "jid", jid)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetUser failed", "error", err, "jid", jid)
		return nil, fmt.Errorf("failed to query user %s: %w", jid, err)
	}
	return u, nil
}

func (s *SQLiteStore) UpsertUser(jid, name string) error {
	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO users (jid, name, first_seen, last_seen) VALUES (?, ?, ?, ?)
		ON CONFLICT(jid) DO UPDATE SET name = excluded.name, last_seen = excluded.last_seen`,
		jid, name, now, now)
	if err != nil {
		slog.Error("SQLiteStore UpsertUser failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to upsert user %s: %w", jid, err)
	}
	slog.Debug("SQLiteStore UpsertUser succeeded", "jid", jid)
	return nil
}

func (s *SQLiteStore) UpdateLanguage(jid, language string) error {
	_, err := s.db.Exec(`UPDATE users SET language = ? WHERE jid = ?`, language, jid)
	if err != nil {
		slog.Error("SQLiteStore UpdateLanguage failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to update language for %s: %w", jid, err)
	}
	return nil
}

func (s *SQLiteStore) UpdatePeriod(jid string, last, next time.Time) error {
	_, err := s.db.Exec(`UPDATE users SET last_period = ?, next_period = ? WHERE jid = ?`, last, next, jid)
	if err != nil {
		slog.Error("SQLiteStore UpdatePeriod failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to update period for %s: %w", jid, err)
	}
	return nil
}

func (s *SQLiteStore) UpdateReminder(jid string, wants bool) error {
	_, err := s.db.Exec(`UPDATE users SET wants_reminder = ? WHERE jid = ?`, wants, jid)
	if err != nil {
		slog.Error("SQLiteStore UpdateReminder failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to update reminder flag for %s: %w", jid, err)
	}
	return nil
}

func (s *SQLiteStore) AddSymptom(jid, symptom string) error {
	_, err := s.db.Exec(`INSERT INTO symptoms (jid, symptom, logged_at) VALUES (?, ?, ?)`, jid, symptom, time.Now())
	if err != nil {
		slog.Error("SQLiteStore AddSymptom failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to insert symptom for %s: %w", jid, err)
	}
	slog.Debug("SQLiteStore AddSymptom succeeded", "jid", jid)
	return nil
}

func (s *SQLiteStore) ListSymptoms(jid string) ([]models.SymptomEntry, error) {
	rows, err := s.db.Query(`SELECT jid, symptom, logged_at FROM symptoms WHERE jid = ? ORDER BY logged_at DESC, id DESC`, jid)
	if err != nil {
		slog.Error("SQLiteStore ListSymptoms query failed", "error", err, "jid", jid)
		return nil, fmt.Errorf("failed to query symptoms for %s: %w", jid, err)
	}
	defer rows.Close()
	return collectSymptoms(rows)
}

func (s *SQLiteStore) AddFeedback(jid, response1, response2 string) error {
	_, err := s.db.Exec(`INSERT INTO feedback (jid, response1, response2, created_at) VALUES (?, ?, ?, ?)`,
		jid, response1, response2, time.Now())
	if err != nil {
		slog.Error("SQLiteStore AddFeedback failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to insert feedback for %s: %w", jid, err)
	}
	slog.Debug("SQLiteStore AddFeedback succeeded", "jid", jid)
	return nil
}

func (s *SQLiteStore) ListReminderCandidates() ([]models.ReminderCandidate, error) {
	rows, err := s.db.Query(`SELECT jid, next_period, language FROM users WHERE wants_reminder = 1 AND next_period IS NOT NULL`)
	if err != nil {
		slog.Error("SQLiteStore ListReminderCandidates query failed", "error", err)
		return nil, fmt.Errorf("failed to query reminder candidates: %w", err)
	}
	defer rows.Close()
	return collectReminderCandidates(rows)
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
