package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingest lifecycle: created "new" on upload, then exactly one transition to
// "parsed" or "error". Rows are never deleted.
const (
	IngestStatusNew    = "new"
	IngestStatusParsed = "parsed"
	IngestStatusError  = "error"
)

// ImageIngest stores a raw uploaded image awaiting or having undergone AI
// extraction. The raw bytes are persisted before any model call.
type ImageIngest struct {
	ID            uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID        uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Kind          string    `gorm:"size:20;not null" json:"kind"`
	MimeType      string    `gorm:"size:100;not null" json:"mime_type"`
	ImageBase64   string    `gorm:"type:text;not null" json:"-"`
	Status        string    `gorm:"size:10;not null;default:'new'" json:"status"`
	ExtractedJSON string    `gorm:"type:text" json:"extracted_json,omitempty"`
	ArchiveKey    string    `gorm:"size:255" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (ImageIngest) TableName() string {
	return "image_ingests"
}

func (i *ImageIngest) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
