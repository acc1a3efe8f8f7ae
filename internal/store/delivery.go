package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/keepsake/internal/model"
)

// ErrConflict signals that a delivery record for the composite key already
// exists. Callers treat it as a benign "already sent", not a failure.
var ErrConflict = errors.New("delivery record already exists")

// DeliveryStore is the delivery ledger: one row per (event, tier,
// occurrence-year) alert ever sent. Rows are written once at successful
// dispatch, never updated, and removed only by the event cascade.
type DeliveryStore struct {
	db *sql.DB
}

func NewDeliveryStore(db *sql.DB) *DeliveryStore {
	return &DeliveryStore{db: db}
}

// HasSent reports whether the alert for (eventID, tier, year) was already
// delivered.
func (s *DeliveryStore) HasSent(eventID int64, tier string, year int) (bool, error) {
	var exists int
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM deliveries WHERE event_id = ? AND tier = ? AND year = ?)`,
		eventID, tier, year,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query delivery: %w", err)
	}
	return exists != 0, nil
}

// MarkSent records the delivery. The insert is atomic against the composite
// primary key, so concurrent evaluations of the same event cannot both
// claim the send: the loser gets ErrConflict.
func (s *DeliveryStore) MarkSent(eventID int64, tier string, year int) error {
	result, err := s.db.Exec(
		`INSERT INTO deliveries (event_id, tier, year, sent_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (event_id, tier, year) DO NOTHING`,
		eventID, tier, year, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByEvent returns the delivery records for one event, for audit and
// debugging.
func (s *DeliveryStore) ListByEvent(eventID int64) ([]model.DeliveryRecord, error) {
	rows, err := s.db.Query(
		`SELECT event_id, tier, year, sent_at FROM deliveries
		 WHERE event_id = ? ORDER BY year, tier`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var records []model.DeliveryRecord
	for rows.Next() {
		var r model.DeliveryRecord
		if err := rows.Scan(&r.EventID, &r.Tier, &r.Year, &r.SentAt); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
