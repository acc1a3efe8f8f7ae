package model

import "time"

// EventKind selects the wording used when an event's reminders are rendered.
// Scheduling behavior is identical for all kinds.
type EventKind string

const (
	KindAnniversary EventKind = "anniversary"
	KindBirthday    EventKind = "birthday"
	KindGeneric     EventKind = "generic"
)

// Event is a recurring calendar date tracked for a chat.
type Event struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Name      string    `json:"name"`
	Month     int       `json:"month"`
	Day       int       `json:"day"`
	// OriginYear is the year the event first occurred. Required for the
	// elapsed-time ("Our Journey") calculation; nil for simple reminders.
	OriginYear *int      `json:"origin_year"`
	Kind       EventKind `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeliveryRecord marks a reminder as sent. The composite key
// (event_id, tier, year) is the sole source of truth for "already notified";
// year is the calendar year of the occurrence being alerted for, not the
// year the alert was sent.
type DeliveryRecord struct {
	EventID int64     `json:"event_id"`
	Tier    string    `json:"tier"`
	Year    int       `json:"year"`
	SentAt  time.Time `json:"sent_at"`
}
