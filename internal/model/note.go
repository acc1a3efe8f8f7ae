package model

import "time"

// Note is a shared text or photo memory attached to a chat. PhotoID, when
// set, is the chat platform's file identifier for the attached photo.
type Note struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	PhotoID   *string   `json:"photo_id"`
	CreatedAt time.Time `json:"created_at"`
}
