package model

import (
	"time"

	"github.com/google/uuid"
)

// CategoryModel mirrors the 'categories' table. Case-insensitive name
// uniqueness per user comes from the idx_categories_user_lower_name
// expression index created in Migrate.
type CategoryModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Transactions []TransactionModel `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

func (CategoryModel) TableName() string {
	return "categories"
}
