package model

import (
	"time"

	"github.com/google/uuid"
)

// Note is the single freeform text blob per user, upserted as one row.
type Note struct {
	Owner     uuid.UUID `gorm:"type:uuid;primaryKey;column:owner" json:"owner"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
