package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventory locations recognized by the pantry extractor.
const (
	LocationFridge  = "fridge"
	LocationFreezer = "freezer"
	LocationPantry  = "pantry"
)

// InventoryItem is the canonical pantry/inventory row. Category and
// ExpiryDate were carried over from the retired inventory_master shape and
// are optional.
type InventoryItem struct {
	ID         uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	Qty        float64    `gorm:"not null;default:1" json:"qty"`
	Unit       string     `gorm:"size:50;not null;default:'count'" json:"unit"`
	Location   string     `gorm:"size:20" json:"location"`
	Category   string     `gorm:"size:50" json:"category,omitempty"`
	ExpiryDate *time.Time `gorm:"type:date" json:"expiry_date,omitempty"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
