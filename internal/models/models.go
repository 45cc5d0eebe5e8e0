// Package models defines the core data structures for Venille.
//
// It includes the persisted user profile, symptom and feedback entries, and the
// inbound message event shared across modules.
package models

import (
	"errors"
	"time"
)

// Error variables for better error handling and testability
var (
	ErrEmptyRecipient = errors.New("recipient cannot be empty")
	ErrEmptyBody      = errors.New("message body cannot be empty")
	ErrServiceStopped = errors.New("messaging service is stopped")
)

// User represents a persisted user profile, keyed by the WhatsApp JID.
type User struct {
	JID           string     `json:"jid"`
	Name          string     `json:"name,omitempty"`
	Language      string     `json:"language,omitempty"`
	FirstSeen     time.Time  `json:"first_seen"`
	LastSeen      time.Time  `json:"last_seen"`
	LastPeriod    *time.Time `json:"last_period,omitempty"`
	NextPeriod    *time.Time `json:"next_period,omitempty"`
	WantsReminder bool       `json:"wants_reminder"`
}

// SymptomEntry is one logged symptom. Entries are append-only.
type SymptomEntry struct {
	JID      string    `json:"jid"`
	Symptom  string    `json:"symptom"`
	LoggedAt time.Time `json:"logged_at"`
}

// FeedbackEntry records one completed feedback flow.
type FeedbackEntry struct {
	JID       string    `json:"jid"`
	Response1 string    `json:"response1"`
	Response2 string    `json:"response2"`
	CreatedAt time.Time `json:"created_at"`
}

// ReminderCandidate is the projection used by the daily reminder scan.
type ReminderCandidate struct {
	JID        string    `json:"jid"`
	NextPeriod time.Time `json:"next_period"`
	Language   string    `json:"language,omitempty"`
}

// Response represents an incoming message from a user.
type Response struct {
	From string `json:"from"`           // sender JID (canonicalized)
	Name string `json:"name,omitempty"` // sender display name as pushed by the transport
	Body string `json:"body"`
	Time int64  `json:"time"`
}
