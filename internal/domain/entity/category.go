package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryNames are seeded for every user at registration.
var DefaultCategoryNames = []string{"Food", "Transport", "Entertainment", "Salary", "Other"}

// Category groups transactions of one user. Names are unique per user,
// ignoring case.
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
