package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroceryItem is one row on a user's grocery list. Rows are plain inserts,
// duplicates are allowed.
type GroceryItem struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Qty       float64   `gorm:"not null;default:1" json:"qty"`
	Unit      string    `gorm:"size:50;not null;default:'count'" json:"unit"`
	Category  string    `gorm:"size:50;not null;default:'other'" json:"category"`
	Checked   bool      `gorm:"not null;default:false" json:"checked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (GroceryItem) TableName() string {
	return "grocery_list_items"
}

func (g *GroceryItem) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
