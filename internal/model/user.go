package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account able to authenticate against the API.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InitMeta initializes the user metadata including ID and timestamps.
func (u *User) InitMeta() {
	u.ID = uuid.New()
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
}
