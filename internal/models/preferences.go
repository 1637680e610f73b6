package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONStringArray is a custom type for handling string arrays in JSONB
type JSONStringArray []string

// Value implements the driver.Valuer interface
func (a JSONStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// UserPreferences is the single per-user preference row, upserted on user_id.
type UserPreferences struct {
	ID                  uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID              uuid.UUID       `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	DislikedIngredients JSONStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"disliked_ingredients"`
	AvoidNuts           JSONStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"avoid_nuts"`
	PreferredProteins   JSONStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"preferred_proteins"`
	Notes               string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}

func (p *UserPreferences) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
