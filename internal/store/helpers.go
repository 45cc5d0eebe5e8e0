package store

import (
	"database/sql"
	"fmt"

	"github.com/venille-ai/venille/internal/models"
)

// scanUser scans a User from a single sql.Row, mapping nullable columns.
func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var lastPeriod, nextPeriod sql.NullTime
	err := row.Scan(&u.JID, &u.Name, &u.Language, &u.FirstSeen, &u.LastSeen, &lastPeriod, &nextPeriod, &u.WantsReminder)
	if err != nil {
		return nil, err
	}
	if lastPeriod.Valid {
		u.LastPeriod = &lastPeriod.Time
	}
	if nextPeriod.Valid {
		u.NextPeriod = &nextPeriod.Time
	}
	return &u, nil
}

// collectSymptoms drains a symptom query result set.
func collectSymptoms(rows *sql.Rows) ([]models.SymptomEntry, error) {
	var entries []models.SymptomEntry
	for rows.Next() {
		var e models.SymptomEntry
		if err := rows.Scan(&e.JID, &e.Symptom, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan symptom row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate symptom rows: %w", err)
	}
	return entries, nil
}

// collectReminderCandidates drains a reminder candidate query result set.
func collectReminderCandidates(rows *sql.Rows) ([]models.ReminderCandidate, error) {
	var out []models.ReminderCandidate
	for rows.Next() {
		var c models.ReminderCandidate
		if err := rows.Scan(&c.JID, &c.NextPeriod, &c.Language); err != nil {
			return nil, fmt.Errorf("failed to scan reminder candidate row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminder candidate rows: %w", err)
	}
	return out, nil
}
