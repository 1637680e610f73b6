package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AgentRunStatusOK    = "ok"
	AgentRunStatusError = "error"
)

// AgentRun is the append-only audit log of AI dispatches. Exactly one row is
// written per invocation after the model call, whatever the outcome.
type AgentRun struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID       uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Route        string    `gorm:"size:50;not null" json:"route"`
	Prompt       string    `gorm:"type:text;not null" json:"prompt"`
	Status       string    `gorm:"size:10;not null" json:"status"`
	ResponseJSON string    `gorm:"type:text" json:"response_json,omitempty"`
	ErrorText    string    `gorm:"type:text" json:"error_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AgentRun) TableName() string {
	return "agent_runs"
}

func (r *AgentRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
