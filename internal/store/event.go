package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/keepsake/internal/model"
	"github.com/dukerupert/keepsake/internal/occurrence"
)

// EventStore persists recurring events. It does no caching; the scheduler
// re-reads the full list each tick, which is fine at the expected scale of a
// handful of chats with tens of events.
type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// Create validates the recurring date and inserts the event. Returns
// occurrence.ErrInvalidDate for an impossible (month, day) so bad dates
// never reach the scheduler.
func (s *EventStore) Create(chatID int64, name string, month, day int, originYear *int, kind model.EventKind) (*model.Event, error) {
	if err := occurrence.ValidateMonthDay(month, day); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = model.KindGeneric
	}

	var origin sql.NullInt64
	if originYear != nil {
		origin = sql.NullInt64{Int64: int64(*originYear), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO events (chat_id, name, month, day, origin_year, kind)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		chatID, name, month, day, origin, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

// GetByID returns the event, or (nil, nil) when it does not exist.
func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(
		`SELECT id, chat_id, name, month, day, origin_year, kind, created_at
		 FROM events WHERE id = ?`,
		id,
	)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return e, nil
}

// ListAll returns every tracked event across all chats, in creation order.
func (s *EventStore) ListAll() ([]model.Event, error) {
	return s.list(`SELECT id, chat_id, name, month, day, origin_year, kind, created_at
		 FROM events ORDER BY id`)
}

// ListByChat returns the events belonging to one chat, in creation order.
func (s *EventStore) ListByChat(chatID int64) ([]model.Event, error) {
	return s.list(`SELECT id, chat_id, name, month, day, origin_year, kind, created_at
		 FROM events WHERE chat_id = ? ORDER BY id`, chatID)
}

func (s *EventStore) list(query string, args ...any) ([]model.Event, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Delete removes the event. Its delivery ledger rows go with it via the
// foreign-key cascade, so a later event with a reused name starts clean.
func (s *EventStore) Delete(id int64) error {
	if _, err := s.db.Exec("DELETE FROM events WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// DeleteInChat removes an event only if it belongs to the chat. Reports
// whether a row was deleted; used by the command layer so one chat cannot
// delete another chat's dates.
func (s *EventStore) DeleteInChat(id, chatID int64) (bool, error) {
	result, err := s.db.Exec("DELETE FROM events WHERE id = ? AND chat_id = ?", id, chatID)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	var origin sql.NullInt64
	var kind string

	err := row.Scan(&e.ID, &e.ChatID, &e.Name, &e.Month, &e.Day, &origin, &kind, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	if origin.Valid {
		year := int(origin.Int64)
		e.OriginYear = &year
	}
	e.Kind = model.EventKind(kind)
	return &e, nil
}
