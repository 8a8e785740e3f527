package model

import (
	"time"

	"github.com/google/uuid"
)

// Card is a work item on the board. Within a column, positions are
// always the contiguous sequence 0..n-1.
type Card struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Owner       uuid.UUID `gorm:"type:uuid;not null;index;column:owner" json:"owner"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	ColumnID    ColumnID  `gorm:"type:text;not null;index" json:"column_id"`
	Position    int       `gorm:"not null" json:"position"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
