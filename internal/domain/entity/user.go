// Package entity contains the core business objects of fintracker.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Categories, transactions and sessions hang off it.
type User struct {
	ID           uuid.UUID
	Email        string // unique, compared exactly as stored
	PasswordHash string // "base64(salt).base64(key)" from the password hasher
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
