package models

import "time"

// Note is a free-text note, either attached to a patient or kept in the
// clinician's personal scratch list.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
