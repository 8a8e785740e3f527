package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/model"
)

// Store holds one session's board state: cards keyed by id plus the
// session's todos and note. It is the single shared resource between
// the optimistic mutator and the change-feed reconciler; a mutex keeps
// each entry point to one call frame at a time since feed events arrive
// on the subscriber goroutine.
//
// The Store performs no invariant repair of its own. Re-densifying
// positions after a membership or order change is the caller's job,
// because the correct repair differs by operation.
type Store struct {
	mu    sync.RWMutex
	owner uuid.UUID
	cards map[uuid.UUID]model.Card
	todos map[uuid.UUID]model.Todo
	note  model.Note
}

func New(owner uuid.UUID) *Store {
	return &Store{
		owner: owner,
		cards: make(map[uuid.UUID]model.Card),
		todos: make(map[uuid.UUID]model.Todo),
		note:  model.Note{Owner: owner},
	}
}

// Owner is the authenticated user this store is partitioned to.
func (s *Store) Owner() uuid.UUID { return s.owner }

// Get returns the card with the given id, if present.
func (s *Store) Get(id uuid.UUID) (model.Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCard(id)
}

// Upsert inserts the card or overwrites every field of an existing
// entry with the same id.
func (s *Store) Upsert(card model.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCard(card)
}

// Remove deletes the card by id. Removing an absent id is a no-op.
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCard(id)
}

// CardsIn returns the cards of one column sorted by position ascending.
func (s *Store) CardsIn(column model.ColumnID) []model.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cardsIn(column)
}

// CardCount is the total number of cards across all columns.
func (s *Store) CardCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

// Todos returns the todo list sorted by creation time ascending.
func (s *Store) Todos() []model.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.todoList()
}

func (s *Store) GetTodo(id uuid.UUID) (model.Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	return t, ok
}

func (s *Store) UpsertTodo(todo model.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos[todo.ID] = todo
}

func (s *Store) RemoveTodo(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.todos, id)
}

// Note returns the session's freeform note.
func (s *Store) Note() model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.note
}

func (s *Store) SetNote(note model.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note = note
}

// Update runs fn under the write lock so a multi-step read-modify-write
// (density re-indexing, permutation checks) cannot interleave with the
// other writer.
func (s *Store) Update(fn func(tx *Txn)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&Txn{s: s})
}

// Txn gives lock-free access to the store state inside Update.
type Txn struct {
	s *Store
}

func (t *Txn) Get(id uuid.UUID) (model.Card, bool) { return t.s.getCard(id) }
func (t *Txn) Upsert(card model.Card)              { t.s.upsertCard(card) }
func (t *Txn) Remove(id uuid.UUID)                 { t.s.removeCard(id) }
func (t *Txn) CardsIn(column model.ColumnID) []model.Card {
	return t.s.cardsIn(column)
}

func (s *Store) getCard(id uuid.UUID) (model.Card, bool) {
	c, ok := s.cards[id]
	return c, ok
}

func (s *Store) upsertCard(card model.Card) {
	s.cards[card.ID] = card
}

func (s *Store) removeCard(id uuid.UUID) {
	delete(s.cards, id)
}

func (s *Store) cardsIn(column model.ColumnID) []model.Card {
	var out []model.Card
	for _, c := range s.cards {
		if c.ColumnID == column {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) todoList() []model.Todo {
	out := make([]model.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
