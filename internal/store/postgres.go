// Package store provides persistence backends for Venille.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/venille-ai/venille/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) GetUser(jid string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT jid, name, language, first_seen, last_seen, last_period, next_period, wants_reminder FROM users WHERE jid = $1`, jid)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetUser not found", "jid", jid)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetUser failed", "error", err, "jid", jid)
		return nil, fmt.Errorf("failed to query user %s: %w", jid, err)
	}
	return u, nil
}

func (s *PostgresStore) UpsertUser(jid, name string) error {
	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO users (jid, name, first_seen, last_seen) VALUES ($1, $2, $3, $4)
		ON CONFLICT (jid) DO UPDATE SET name = EXCLUDED.name, last_seen = EXCLUDED.last_seen`,
		jid, name, now, now)
	if err != nil {
		slog.Error("PostgresStore UpsertUser failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to upsert user %s: %w", jid, err)
	}
	slog.Debug("PostgresStore UpsertUser succeeded", "jid", jid)
	return nil
}

func (s *PostgresStore) UpdateLanguage(jid, language string) error {
	_, err := s.db.Exec(`UPDATE users SET language = $1 WHERE jid = $2`, language, jid)
	if err != nil {
		slog.Error("PostgresStore UpdateLanguage failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to update language for %s: %w", jid, err)
	}
	return nil
}

func (s *PostgresStore) UpdatePeriod(jid string, last, next time.Time) error {
	_, err := s.db.Exec(`UPDATE users SET last_period = $1, next_period = $2 WHERE jid = $3`, last, next, jid)
	if err != nil {
		slog.Error("PostgresStore UpdatePeriod failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to update period for %s: %w", jid, err)
	}
	return nil
}

func (s *PostgresStore) UpdateReminder(jid string, wants bool) error {
	_, err := s.db.Exec(`UPDATE users SET wants_reminder = $1 WHERE jid = $2`, wants, jid)
	if err != nil {
		slog.Error("PostgresStore UpdateReminder failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to update reminder flag for %s: %w", jid, err)
	}
	return nil
}

func (s *PostgresStore) AddSymptom(jid, symptom string) error {
	_, err := s.db.Exec(`INSERT INTO symptoms (jid, symptom, logged_at) VALUES ($1, $2, $3)`, jid, symptom, time.Now())
	if err != nil {
		slog.Error("PostgresStore AddSymptom failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to insert symptom for %s: %w", jid, err)
	}
	return nil
}

func (s *PostgresStore) ListSymptoms(jid string) ([]models.SymptomEntry, error) {
	rows, err := s.db.Query(`SELECT jid, symptom, logged_at FROM symptoms WHERE jid = $1 ORDER BY logged_at DESC, id DESC`, jid)
	if err != nil {
		slog.Error("PostgresStore ListSymptoms query failed", "error", err, "jid", jid)
		return nil, fmt.Errorf("failed to query symptoms for %s: %w", jid, err)
	}
	defer rows.Close()
	return collectSymptoms(rows)
}

func (s *PostgresStore) AddFeedback(jid, response1, response2 string) error {
	_, err := s.db.Exec(`INSERT INTO feedback (jid, response1, response2, created_at) VALUES ($1, $2, $3, $4)`,
		jid, response1, response2, time.Now())
	if err != nil {
		slog.Error("PostgresStore AddFeedback failed", "error", err, "jid", jid)
		return fmt.Errorf("failed to insert feedback for %s: %w", jid, err)
	}
	return nil
}

func (s *PostgresStore) ListReminderCandidates() ([]models.ReminderCandidate, error) {
	rows, err := s.db.Query(`SELECT jid, next_period, language FROM users WHERE wants_reminder = TRUE AND next_period IS NOT NULL`)
	if err != nil {
		slog.Error("PostgresStore ListReminderCandidates query failed", "error", err)
		return nil, fmt.Errorf("failed to query reminder candidates: %w", err)
	}
	defer rows.Close()
	return collectReminderCandidates(rows)
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
