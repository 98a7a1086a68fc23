package models

import (
	"time"

	"github.com/google/uuid"
)

// Scan is one recorded resolution of a link. Rows are append-only and never
// updated. IPHash is a truncated one-way hash of the client address; the raw
// IP is never persisted.
type Scan struct {
	ID        uuid.UUID `json:"id"`
	LinkID    uuid.UUID `json:"link_id"`
	Timestamp time.Time `json:"ts"`
	UserAgent string    `json:"ua"`
	Referer   string    `json:"ref"`
	IPHash    string    `json:"-"`
}
