package drag_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"taskboard/internal/drag"
	"taskboard/internal/model"
	"taskboard/internal/mutate"
	"taskboard/internal/store"
)

// applySink applies intents to a real mutator and records what the
// controller emitted.
type applySink struct {
	m        *mutate.Mutator
	moves    []mutate.MoveIntent
	reorders []mutate.ReorderIntent
}

func (s *applySink) ApplyMove(in mutate.MoveIntent) {
	s.moves = append(s.moves, in)
	s.m.Move(in)
}

func (s *applySink) ApplyReorder(in mutate.ReorderIntent) {
	s.reorders = append(s.reorders, in)
	s.m.Reorder(in)
}

func seed(t *testing.T, st *store.Store, column model.ColumnID, titles ...string) []model.Card {
	t.Helper()
	base := time.Now().UTC()
	cards := make([]model.Card, len(titles))
	for i, title := range titles {
		cards[i] = model.Card{
			ID:        uuid.New(),
			Owner:     st.Owner(),
			Title:     title,
			ColumnID:  column,
			Position:  i,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		st.Upsert(cards[i])
	}
	return cards
}

func newFixture(t *testing.T) (*store.Store, *applySink, *drag.Controller) {
	st := store.New(uuid.New())
	sink := &applySink{m: mutate.New(st)}
	return st, sink, drag.NewController(st, sink)
}

func TestController_ActivationThreshold(t *testing.T) {
	st, sink, c := newFixture(t)
	cards := seed(t, st, model.ColumnTodo, "A", "B")

	c.Press(cards[0].ID, drag.Point{X: 10, Y: 10})
	assert.Equal(t, drag.Pressed, c.Phase())

	// below the threshold nothing activates
	c.PointerMove(drag.Point{X: 12, Y: 10})
	assert.Equal(t, drag.Pressed, c.Phase())

	c.PointerMove(drag.Point{X: 16, Y: 10})
	assert.Equal(t, drag.Dragging, c.Phase())
	assert.Empty(t, sink.moves, "activation alone emits nothing")
}

func TestController_PressOverUnknownCardStaysIdle(t *testing.T) {
	_, _, c := newFixture(t)
	c.Press(uuid.New(), drag.Point{})
	assert.Equal(t, drag.Idle, c.Phase())
}

func TestController_HoverColumnAppendsAtEnd(t *testing.T) {
	st, sink, c := newFixture(t)
	todo := seed(t, st, model.ColumnTodo, "A", "B")
	seed(t, st, model.ColumnProgress, "X")

	c.Grab(todo[0].ID)
	c.HoverColumn(model.ColumnProgress)

	assert.Len(t, sink.moves, 1)
	assert.Equal(t, mutate.MoveIntent{
		CardID: todo[0].ID, From: model.ColumnTodo, To: model.ColumnProgress, TargetIndex: 1,
	}, sink.moves[0])
	// the provisional move is applied immediately for live feedback
	assert.Len(t, st.CardsIn(model.ColumnProgress), 2)
}

func TestController_HoverCardInsertsBefore(t *testing.T) {
	st, sink, c := newFixture(t)
	todo := seed(t, st, model.ColumnTodo, "A")
	prog := seed(t, st, model.ColumnProgress, "X", "Y")

	c.Grab(todo[0].ID)
	c.HoverCard(prog[1].ID)

	assert.Len(t, sink.moves, 1)
	assert.Equal(t, 1, sink.moves[0].TargetIndex, "insert before the hovered card")
	got := st.CardsIn(model.ColumnProgress)
	assert.Equal(t, "A", got[1].Title)
}

func TestController_HoverOwnCardIgnored(t *testing.T) {
	st, sink, c := newFixture(t)
	todo := seed(t, st, model.ColumnTodo, "A", "B")

	c.Grab(todo[0].ID)
	c.HoverCard(todo[0].ID)
	assert.Empty(t, sink.moves)
	assert.Equal(t, []string{"A", "B"}, titles(st.CardsIn(model.ColumnTodo)))
}

func TestController_DropWithinOriginEmitsReorder(t *testing.T) {
	st, sink, c := newFixture(t)
	todo := seed(t, st, model.ColumnTodo, "A", "B", "C")

	c.Grab(todo[2].ID)
	c.HoverCard(todo[0].ID) // C in front of A
	c.Drop()

	assert.Len(t, sink.reorders, 1)
	assert.Equal(t, model.ColumnTodo, sink.reorders[0].Column)
	assert.Equal(t, []uuid.UUID{todo[2].ID, todo[0].ID, todo[1].ID}, sink.reorders[0].IDOrder)
	assert.Equal(t, drag.Idle, c.Phase())
	assert.Equal(t, []string{"C", "A", "B"}, titles(st.CardsIn(model.ColumnTodo)))
}

func TestController_CrossColumnDropEmitsNoReorder(t *testing.T) {
	st, sink, c := newFixture(t)
	todo := seed(t, st, model.ColumnTodo, "A", "B")

	c.Grab(todo[0].ID)
	c.HoverColumn(model.ColumnComplete)
	c.Drop()

	assert.Empty(t, sink.reorders, "the last move intent already reflects the drop")
	assert.Equal(t, drag.Idle, c.Phase())
	assert.Len(t, st.CardsIn(model.ColumnComplete), 1)
}

func TestController_CancelKeepsProvisionalState(t *testing.T) {
	st, sink, c := newFixture(t)
	todo := seed(t, st, model.ColumnTodo, "A", "B")

	c.Grab(todo[0].ID)
	c.HoverColumn(model.ColumnProgress)
	c.Cancel()

	// no rollback: the provisional move stands until a remote event or
	// reload says otherwise
	assert.Len(t, st.CardsIn(model.ColumnProgress), 1)
	assert.Equal(t, drag.Idle, c.Phase())
	assert.Empty(t, sink.reorders)
}

func TestController_KeyboardSteps(t *testing.T) {
	st, sink, c := newFixture(t)
	todo := seed(t, st, model.ColumnTodo, "A", "B", "C")

	c.Grab(todo[2].ID)
	assert.Equal(t, drag.Dragging, c.Phase())

	c.StepVertical(-1) // C above B
	assert.Equal(t, []string{"A", "C", "B"}, titles(st.CardsIn(model.ColumnTodo)))

	c.StepHorizontal(1) // into progress
	assert.Equal(t, []string{"C"}, titles(st.CardsIn(model.ColumnProgress)))

	c.StepHorizontal(-1) // back, appended at end
	assert.Equal(t, []string{"A", "B", "C"}, titles(st.CardsIn(model.ColumnTodo)))

	// stepping past the edge goes nowhere
	before := len(sink.moves)
	c.StepHorizontal(-1)
	assert.Equal(t, before, len(sink.moves))
	assert.Equal(t, []string{"A", "B", "C"}, titles(st.CardsIn(model.ColumnTodo)))
}

func TestController_EventsOutsideDraggingIgnored(t *testing.T) {
	st, sink, c := newFixture(t)
	seed(t, st, model.ColumnTodo, "A")

	c.HoverColumn(model.ColumnProgress)
	c.StepVertical(1)
	c.Drop()
	assert.Empty(t, sink.moves)
	assert.Empty(t, sink.reorders)
	assert.Equal(t, drag.Idle, c.Phase())
}

func titles(cards []model.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Title
	}
	return out
}
