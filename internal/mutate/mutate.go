package mutate

import (
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

// MoveIntent asks for a card to be inserted at TargetIndex of column To,
// leaving column From. From and To may be equal.
type MoveIntent struct {
	CardID      uuid.UUID
	From        model.ColumnID
	To          model.ColumnID
	TargetIndex int
}

// ReorderIntent replaces one column's ordering with an explicit id
// sequence. It is only valid when IDOrder is a permutation of the
// column's current membership.
type ReorderIntent struct {
	Column  model.ColumnID
	IDOrder []uuid.UUID
}

// Mutator applies intents to the session store synchronously, before
// any remote write is confirmed. Every operation leaves each touched
// column densely positioned 0..n-1.
//
// Each method returns the rows whose persisted fields changed, so the
// persistence client can mirror the new local state with a minimal set
// of independent writes.
type Mutator struct {
	st *store.Store
}

func New(st *store.Store) *Mutator {
	return &Mutator{st: st}
}

// Move takes the card out of its current column and splices it into
// in.To at in.TargetIndex (clamped to [0, len]), then re-densifies every
// touched column. Unknown card ids are ignored. The moved card is first
// in the returned slice. Applying the same intent twice is a no-op the
// second time.
func (m *Mutator) Move(in MoveIntent) []model.Card {
	var changed []model.Card
	m.st.Update(func(tx *store.Txn) {
		card, ok := tx.Get(in.CardID)
		if !ok {
			return
		}

		// The card's actual column wins over in.From when a remote move
		// landed while the intent was in flight; last write wins.
		source := card.ColumnID

		target := without(tx.CardsIn(in.To), card.ID)
		idx := in.TargetIndex
		if idx < 0 {
			idx = 0
		}
		if idx > len(target) {
			idx = len(target)
		}
		card.ColumnID = in.To
		target = append(target[:idx:idx], append([]model.Card{card}, target[idx:]...)...)

		changed = append(changed, pullFront(densify(tx, target), card.ID)...)
		if source != in.To {
			changed = append(changed, densify(tx, tx.CardsIn(source))...)
		}
	})
	return changed
}

// Reorder replaces the column's sequence with in.IDOrder verbatim and
// re-densifies. A stale intent whose id set is not a permutation of the
// column's current membership is rejected as a no-op; that is the
// normal signature of an intent racing a concurrent remote change.
func (m *Mutator) Reorder(in ReorderIntent) ([]model.Card, bool) {
	var changed []model.Card
	applied := false
	m.st.Update(func(tx *store.Txn) {
		current := tx.CardsIn(in.Column)
		if len(current) != len(in.IDOrder) {
			return
		}
		byID := make(map[uuid.UUID]model.Card, len(current))
		for _, c := range current {
			byID[c.ID] = c
		}
		seq := make([]model.Card, 0, len(in.IDOrder))
		for _, id := range in.IDOrder {
			c, ok := byID[id]
			if !ok {
				return
			}
			delete(byID, id)
			seq = append(seq, c)
		}

		changed = densify(tx, seq)
		applied = true
	})
	return changed, applied
}

// AddCard appends a new card at the end of the column and returns it.
func (m *Mutator) AddCard(column model.ColumnID, title string) (model.Card, bool) {
	if !column.Valid() {
		return model.Card{}, false
	}
	var card model.Card
	m.st.Update(func(tx *store.Txn) {
		card = model.Card{
			ID:        uuid.New(),
			Owner:     m.st.Owner(),
			Title:     title,
			ColumnID:  column,
			Position:  len(tx.CardsIn(column)),
			CreatedAt: time.Now().UTC(),
		}
		tx.Upsert(card)
	})
	return card, true
}

// UpdateCard edits title and description in place. Position and column
// are untouched.
func (m *Mutator) UpdateCard(id uuid.UUID, title, description string) (model.Card, bool) {
	var card model.Card
	ok := false
	m.st.Update(func(tx *store.Txn) {
		c, found := tx.Get(id)
		if !found {
			return
		}
		c.Title = title
		c.Description = description
		tx.Upsert(c)
		card, ok = c, true
	})
	return card, ok
}

// DeleteCard removes the card and re-densifies the remainder of its
// column. It returns the removed card and the displaced siblings.
func (m *Mutator) DeleteCard(id uuid.UUID) (model.Card, []model.Card, bool) {
	var removed model.Card
	var displaced []model.Card
	ok := false
	m.st.Update(func(tx *store.Txn) {
		c, found := tx.Get(id)
		if !found {
			return
		}
		tx.Remove(id)
		displaced = densify(tx, tx.CardsIn(c.ColumnID))
		removed, ok = c, true
	})
	return removed, displaced, ok
}

// densify rewrites seq's positions as 0..n-1 in order and upserts every
// row whose stored fields differ, returning those rows.
func densify(tx *store.Txn, seq []model.Card) []model.Card {
	var changed []model.Card
	for i := range seq {
		prev, existed := tx.Get(seq[i].ID)
		seq[i].Position = i
		if !existed || prev != seq[i] {
			tx.Upsert(seq[i])
			changed = append(changed, seq[i])
		}
	}
	return changed
}

func without(cards []model.Card, id uuid.UUID) []model.Card {
	out := cards[:0]
	for _, c := range cards {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// pullFront moves the row with the given id to the head of the slice.
func pullFront(cards []model.Card, id uuid.UUID) []model.Card {
	for i, c := range cards {
		if c.ID == id && i > 0 {
			out := append([]model.Card{c}, cards[:i]...)
			return append(out, cards[i+1:]...)
		}
	}
	return cards
}
