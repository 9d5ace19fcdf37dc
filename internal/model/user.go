package model

import "time"

// User is the resolved identity behind an API key. Identity issuance and
// authentication live outside this service; the workflow engine only ever
// sees the resolved (id, is_staff) pair.
type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	IsStaff   bool      `json:"is_staff" db:"is_staff"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
