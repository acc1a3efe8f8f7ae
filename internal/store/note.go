package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/keepsake/internal/model"
)

// NoteStore persists shared text/photo memories. The scheduler never reads
// notes; they only flow through the chat command layer.
type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

const noteCols = `id, chat_id, title, content, photo_id, created_at`

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	var photoID sql.NullString

	if err := scanner.Scan(&n.ID, &n.ChatID, &n.Title, &n.Content, &photoID, &n.CreatedAt); err != nil {
		return nil, err
	}
	if photoID.Valid {
		n.PhotoID = &photoID.String
	}
	return &n, nil
}

// Create stores a note. photoID is the chat platform's file identifier for
// an attached photo, or nil for a plain text note.
func (s *NoteStore) Create(chatID int64, title, content string, photoID *string) (*model.Note, error) {
	var photo sql.NullString
	if photoID != nil {
		photo = sql.NullString{String: *photoID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO notes (chat_id, title, content, photo_id) VALUES (?, ?, ?, ?)`,
		chatID, title, content, photo,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) GetByID(id int64) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// ListByChat returns a chat's notes, oldest first.
func (s *NoteStore) ListByChat(chatID int64) ([]model.Note, error) {
	rows, err := s.db.Query(`SELECT `+noteCols+` FROM notes WHERE chat_id = ? ORDER BY id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// DeleteInChat removes a note only if it belongs to the chat. Reports
// whether a row was deleted.
func (s *NoteStore) DeleteInChat(id, chatID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM notes WHERE id = ? AND chat_id = ?`, id, chatID)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
