package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type CardRepository struct {
	db *gorm.DB
}

type CardRepositoryInterface interface {
	Create(ctx context.Context, card *model.Card) error
	GetByID(ctx context.Context, owner, id uuid.UUID) (*model.Card, error)
	GetByOwner(ctx context.Context, owner uuid.UUID) ([]model.Card, error)
	GetByColumn(ctx context.Context, owner uuid.UUID, column model.ColumnID) ([]model.Card, error)
	Update(ctx context.Context, card *model.Card) error
	DeleteRow(ctx context.Context, owner, id uuid.UUID) error
	Delete(ctx context.Context, owner, id uuid.UUID) (*model.Card, []model.Card, error)
	Move(ctx context.Context, owner, id uuid.UUID, to model.ColumnID, index int) ([]model.Card, error)
	Reorder(ctx context.Context, owner uuid.UUID, column model.ColumnID, ids []uuid.UUID) ([]model.Card, error)
}

var _ CardRepositoryInterface = (*CardRepository)(nil)

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// Create adds a new card
func (r *CardRepository) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// GetByID retrieves an owner's card by its ID
func (r *CardRepository) GetByID(ctx context.Context, owner, id uuid.UUID) (*model.Card, error) {
	var card model.Card
	result := r.db.WithContext(ctx).First(&card, "id = ? AND owner = ?", id, owner)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, result.Error
	}
	return &card, nil
}

// GetByOwner retrieves all of an owner's cards ordered by column and position
func (r *CardRepository) GetByOwner(ctx context.Context, owner uuid.UUID) ([]model.Card, error) {
	var cards []model.Card
	result := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("column_id").Order("position").
		Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

// GetByColumn retrieves one column's cards ordered by position
func (r *CardRepository) GetByColumn(ctx context.Context, owner uuid.UUID, column model.ColumnID) ([]model.Card, error) {
	var cards []model.Card
	result := r.db.WithContext(ctx).
		Where("owner = ? AND column_id = ?", owner, column).
		Order("position").
		Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

// Update overwrites an existing card's row
func (r *CardRepository) Update(ctx context.Context, card *model.Card) error {
	result := r.db.WithContext(ctx).
		Model(&model.Card{}).
		Where("id = ? AND owner = ?", card.ID, card.Owner).
		Updates(map[string]any{
			"title":       card.Title,
			"description": card.Description,
			"column_id":   card.ColumnID,
			"position":    card.Position,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

// DeleteRow removes just the card's row. Used by sessions that already
// re-densified locally and persist the displaced siblings themselves.
func (r *CardRepository) DeleteRow(ctx context.Context, owner, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Card{}, "id = ? AND owner = ?", id, owner)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

// Delete removes a card and re-densifies the remaining positions of its
// column. The displaced siblings are returned with their new positions.
func (r *CardRepository) Delete(ctx context.Context, owner, id uuid.UUID) (*model.Card, []model.Card, error) {
	var removed model.Card
	var displaced []model.Card
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&removed, "id = ? AND owner = ?", id, owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCardNotFound
			}
			return err
		}
		if err := tx.Delete(&model.Card{}, "id = ?", id).Error; err != nil {
			return err
		}

		var rest []model.Card
		if err := tx.Where("owner = ? AND column_id = ?", owner, removed.ColumnID).
			Order("position").Find(&rest).Error; err != nil {
			return err
		}
		var err error
		displaced, err = reposition(tx, rest, asPrior(rest))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &removed, displaced, nil
}

// Move splices the card into the target column at the given index and
// re-densifies every touched column. All rows whose position or column
// changed are returned, the moved card first.
func (r *CardRepository) Move(ctx context.Context, owner, id uuid.UUID, to model.ColumnID, index int) ([]model.Card, error) {
	var changed []model.Card
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card model.Card
		if err := tx.First(&card, "id = ? AND owner = ?", id, owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCardNotFound
			}
			return err
		}
		source := card.ColumnID

		var target []model.Card
		if err := tx.Where("owner = ? AND column_id = ? AND id <> ?", owner, to, id).
			Order("position").Find(&target).Error; err != nil {
			return err
		}
		prior := asPrior(target, []model.Card{card})
		if index < 0 {
			index = 0
		}
		if index > len(target) {
			index = len(target)
		}
		card.ColumnID = to
		target = append(target[:index:index], append([]model.Card{card}, target[index:]...)...)

		moved, err := reposition(tx, target, prior)
		if err != nil {
			return err
		}
		for i, c := range moved {
			if c.ID == id && i > 0 {
				moved[0], moved[i] = moved[i], moved[0]
			}
		}
		changed = append(changed, moved...)

		if source != to {
			var rest []model.Card
			if err := tx.Where("owner = ? AND column_id = ? AND id <> ?", owner, source, id).
				Order("position").Find(&rest).Error; err != nil {
				return err
			}
			displaced, err := reposition(tx, rest, asPrior(rest))
			if err != nil {
				return err
			}
			changed = append(changed, displaced...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// Reorder replaces one column's ordering with the explicit id sequence,
// rejecting it with ErrStaleOrder when ids is not a permutation of the
// column's current membership.
func (r *CardRepository) Reorder(ctx context.Context, owner uuid.UUID, column model.ColumnID, ids []uuid.UUID) ([]model.Card, error) {
	var changed []model.Card
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []model.Card
		if err := tx.Where("owner = ? AND column_id = ?", owner, column).
			Order("position").Find(&current).Error; err != nil {
			return err
		}
		if len(current) != len(ids) {
			return ErrStaleOrder
		}
		byID := make(map[uuid.UUID]model.Card, len(current))
		for _, c := range current {
			byID[c.ID] = c
		}
		seq := make([]model.Card, 0, len(ids))
		for _, cid := range ids {
			c, ok := byID[cid]
			if !ok {
				return ErrStaleOrder
			}
			delete(byID, cid)
			seq = append(seq, c)
		}

		var err error
		changed, err = reposition(tx, seq, asPrior(current))
		return err
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// reposition writes positions 0..n-1 over seq in order, updating only
// rows whose stored column or position (per prior) differs.
func reposition(tx *gorm.DB, seq []model.Card, prior map[uuid.UUID]model.Card) ([]model.Card, error) {
	var changed []model.Card
	for i := range seq {
		seq[i].Position = i
		if p, ok := prior[seq[i].ID]; ok && p.Position == i && p.ColumnID == seq[i].ColumnID {
			continue
		}
		if err := tx.Model(&model.Card{}).Where("id = ?", seq[i].ID).
			Updates(map[string]any{"column_id": seq[i].ColumnID, "position": i}).Error; err != nil {
			return nil, err
		}
		changed = append(changed, seq[i])
	}
	return changed, nil
}

func asPrior(cards ...[]model.Card) map[uuid.UUID]model.Card {
	prior := make(map[uuid.UUID]model.Card)
	for _, batch := range cards {
		for _, c := range batch {
			prior[c.ID] = c
		}
	}
	return prior
}
