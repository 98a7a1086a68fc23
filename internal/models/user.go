package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Guests have no User at all; guest-created
// links simply carry a nil owner.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
