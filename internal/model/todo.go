package model

import (
	"time"

	"github.com/google/uuid"
)

// Todo is an unordered checklist entry. It shares the card persistence
// pattern but carries no position invariant.
type Todo struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Owner     uuid.UUID `gorm:"type:uuid;not null;index;column:owner" json:"owner"`
	Text      string    `gorm:"not null" json:"text"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
