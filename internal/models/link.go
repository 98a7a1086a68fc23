package models

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the persisted category of a link's destination content.
// "whatsapp" is a creation-time alias only and never appears here; the
// validation layer rewrites it to KindURL before storage.
type Kind string

const (
	KindURL   Kind = "url"
	KindWifi  Kind = "wifi"
	KindText  Kind = "text"
	KindVCard Kind = "vcard"
)

// IsViewer reports whether links of this kind are rendered by the payload
// viewer instead of redirected to directly.
func (k Kind) IsViewer() bool {
	switch k {
	case KindWifi, KindText, KindVCard:
		return true
	}
	return false
}

// Valid reports whether k is a storable kind.
func (k Kind) Valid() bool {
	switch k {
	case KindURL, KindWifi, KindText, KindVCard:
		return true
	}
	return false
}

// Link represents a short code and the destination it resolves to.
// Exactly one of TargetURL and Payload is populated, consistent with Kind:
// url links carry a target, viewer kinds carry a serialized payload.
// UserID is nil for guest-created links.
type Link struct {
	ID            uuid.UUID  `json:"id"`
	UserID        *uuid.UUID `json:"user_id"`
	Code          string     `json:"code"`
	Kind          Kind       `json:"kind"`
	Title         *string    `json:"title"`
	TargetURL     *string    `json:"target_url"`
	Payload       *string    `json:"payload"`
	ViewerEnabled bool       `json:"viewer_enabled"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ExpiresAt     *int64     `json:"expires_at"` // epoch seconds
	MaxScans      *int64     `json:"max_scans"`
}

// OwnedBy reports whether the link belongs to the given user.
func (l *Link) OwnedBy(userID uuid.UUID) bool {
	return l.UserID != nil && *l.UserID == userID
}
