package domain

import "time"

// User is a player account. Balance accumulates the prizes of finished games.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Balance      int64     `json:"balance"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FlashKind is the severity of a transient notice.
type FlashKind string

const (
	FlashNotice  FlashKind = "notice"
	FlashAlert   FlashKind = "alert"
	FlashWarning FlashKind = "warning"
	FlashInfo    FlashKind = "info"
)

// Flash is a transient notice shown once on the next rendered page.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Profile bundles a user with their game history, newest first.
type Profile struct {
	User  User
	Games []Game
}
