package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// GetByOwner retrieves the owner's single note row. A missing row is
// not an error; the note simply starts empty.
func (r *NoteRepository) GetByOwner(ctx context.Context, owner uuid.UUID) (*model.Note, error) {
	var note model.Note
	err := r.db.WithContext(ctx).First(&note, "owner = ?", owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Upsert writes the owner's note, inserting the row on first save.
func (r *NoteRepository) Upsert(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
		}).
		Create(note).Error
}
