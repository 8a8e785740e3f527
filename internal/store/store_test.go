package store_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

func card(owner uuid.UUID, title string, column model.ColumnID, position int) model.Card {
	return model.Card{
		ID:        uuid.New(),
		Owner:     owner,
		Title:     title,
		ColumnID:  column,
		Position:  position,
		CreatedAt: time.Now().UTC(),
	}
}

func TestStore_UpsertAndGet(t *testing.T) {
	owner := uuid.New()
	st := store.New(owner)

	c := card(owner, "first", model.ColumnTodo, 0)
	st.Upsert(c)

	got, ok := st.Get(c.ID)
	assert.True(t, ok)
	assert.Equal(t, c, got)
	assert.Equal(t, 1, st.CardCount())
}

func TestStore_UpsertReplacesAllFields(t *testing.T) {
	owner := uuid.New()
	st := store.New(owner)

	c := card(owner, "draft", model.ColumnTodo, 2)
	st.Upsert(c)

	c.Title = "final"
	c.Description = "done"
	st.Upsert(c)

	got, _ := st.Get(c.ID)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, "done", got.Description)
	assert.Equal(t, 1, st.CardCount(), "replace-by-id must not duplicate")
}

func TestStore_CardsInSortedByPosition(t *testing.T) {
	owner := uuid.New()
	st := store.New(owner)

	a := card(owner, "a", model.ColumnTodo, 2)
	b := card(owner, "b", model.ColumnTodo, 0)
	c := card(owner, "c", model.ColumnTodo, 1)
	d := card(owner, "d", model.ColumnProgress, 0)
	for _, cc := range []model.Card{a, b, c, d} {
		st.Upsert(cc)
	}

	got := st.CardsIn(model.ColumnTodo)
	assert.Equal(t, []string{"b", "c", "a"}, titles(got))
	assert.Equal(t, []string{"d"}, titles(st.CardsIn(model.ColumnProgress)))
	assert.Empty(t, st.CardsIn(model.ColumnComplete))
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	st := store.New(uuid.New())
	st.Remove(uuid.New())
	assert.Equal(t, 0, st.CardCount())
}

func TestStore_TodosSortedByCreation(t *testing.T) {
	owner := uuid.New()
	st := store.New(owner)

	base := time.Now().UTC()
	newer := model.Todo{ID: uuid.New(), Owner: owner, Text: "newer", CreatedAt: base.Add(time.Minute)}
	older := model.Todo{ID: uuid.New(), Owner: owner, Text: "older", CreatedAt: base}
	st.UpsertTodo(newer)
	st.UpsertTodo(older)

	todos := st.Todos()
	assert.Equal(t, "older", todos[0].Text)
	assert.Equal(t, "newer", todos[1].Text)

	st.RemoveTodo(older.ID)
	assert.Len(t, st.Todos(), 1)
}

func TestStore_Note(t *testing.T) {
	owner := uuid.New()
	st := store.New(owner)
	assert.Equal(t, owner, st.Note().Owner)
	assert.Empty(t, st.Note().Content)

	st.SetNote(model.Note{Owner: owner, Content: "remember"})
	assert.Equal(t, "remember", st.Note().Content)
}

func titles(cards []model.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Title
	}
	return out
}
