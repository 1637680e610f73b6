package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal slots allowed on a plan day.
const (
	MealSlotBreakfast = "breakfast"
	MealSlotLunch     = "lunch"
	MealSlotDinner    = "dinner"
)

// MealPlanDay holds at most one recipe per (user, day, slot). Writes go
// through an upsert on that composite key.
type MealPlanDay struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_plan_user_day_slot" json:"user_id"`
	Day        string    `gorm:"size:10;not null;uniqueIndex:idx_plan_user_day_slot" json:"day"`
	MealSlot   string    `gorm:"size:20;not null;uniqueIndex:idx_plan_user_day_slot" json:"meal_slot"`
	RecipeName string    `gorm:"size:255;not null" json:"recipe_name"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (MealPlanDay) TableName() string {
	return "meal_plan_days"
}

func (m *MealPlanDay) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
