package drag

import (
	"math"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/mutate"
	"taskboard/internal/store"
)

// Phase is the drag session state: Idle -> Pressed -> Dragging ->
// (drop or cancel) -> Idle. Pressed covers the window between pointer
// down and crossing the activation threshold.
type Phase int

const (
	Idle Phase = iota
	Pressed
	Dragging
)

// ActivationDistance is the minimum pointer travel before a press
// becomes a drag.
const ActivationDistance = 5.0

// Point is a gesture coordinate in whatever space the caller uses;
// only distances matter here.
type Point struct {
	X, Y float64
}

func (p Point) distanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Sink receives the controller's intents. Moves fire on every hover
// change for live feedback, not just on drop; reorders fire on a drop
// within the origin column to capture the final sequence explicitly.
type Sink interface {
	ApplyMove(mutate.MoveIntent)
	ApplyReorder(mutate.ReorderIntent)
}

// Controller turns gesture events into ordering intents. It is
// gesture-agnostic: pointer hover and discrete keyboard steps funnel
// into the same two intent kinds.
type Controller struct {
	st   *store.Store
	sink Sink

	phase   Phase
	cardID  uuid.UUID
	origin  model.ColumnID
	current model.ColumnID
	pressAt Point
}

func NewController(st *store.Store, sink Sink) *Controller {
	return &Controller{st: st, sink: sink}
}

func (c *Controller) Phase() Phase { return c.phase }

// Press records a pointer-down over a card. The session does not
// activate until the pointer travels ActivationDistance.
func (c *Controller) Press(cardID uuid.UUID, at Point) {
	if c.phase != Idle {
		return
	}
	card, ok := c.st.Get(cardID)
	if !ok {
		return
	}
	c.phase = Pressed
	c.cardID = cardID
	c.origin = card.ColumnID
	c.current = card.ColumnID
	c.pressAt = at
}

// PointerMove activates the drag once the threshold is exceeded.
func (c *Controller) PointerMove(at Point) {
	if c.phase == Pressed && c.pressAt.distanceTo(at) >= ActivationDistance {
		c.phase = Dragging
	}
}

// Grab starts a keyboard-driven session immediately; discrete gestures
// have no travel distance to measure.
func (c *Controller) Grab(cardID uuid.UUID) {
	c.Press(cardID, Point{})
	if c.phase == Pressed {
		c.phase = Dragging
	}
}

// HoverColumn handles the pointer entering a column's background: the
// card goes to the end of that column's current sequence.
func (c *Controller) HoverColumn(column model.ColumnID) {
	if c.phase != Dragging || !column.Valid() {
		return
	}
	// Append at end; the mutator clamps after taking the dragged card
	// out of the sequence.
	c.emitMove(column, len(c.st.CardsIn(column)))
}

// HoverCard handles the pointer entering another card: the dragged card
// is inserted before it, at that card's current index.
func (c *Controller) HoverCard(overID uuid.UUID) {
	if c.phase != Dragging || overID == c.cardID {
		return
	}
	over, ok := c.st.Get(overID)
	if !ok {
		return
	}
	// Insert-before: the target index is the hovered card's current
	// index within its column.
	idx := indexOf(c.st.CardsIn(over.ColumnID), overID)
	if idx < 0 {
		return
	}
	c.emitMove(over.ColumnID, idx)
}

// StepVertical is the keyboard "move one step up/down" gesture.
func (c *Controller) StepVertical(delta int) {
	if c.phase != Dragging {
		return
	}
	seq := c.st.CardsIn(c.current)
	idx := indexOf(seq, c.cardID)
	if idx < 0 {
		return
	}
	c.emitMove(c.current, idx+delta)
}

// StepHorizontal is the keyboard "move one column left/right" gesture;
// the card lands at the end of the neighbouring column.
func (c *Controller) StepHorizontal(delta int) {
	if c.phase != Dragging {
		return
	}
	cur := -1
	for i, col := range model.ColumnIDs {
		if col == c.current {
			cur = i
			break
		}
	}
	next := cur + delta
	if cur < 0 || next < 0 || next >= len(model.ColumnIDs) {
		return
	}
	target := model.ColumnIDs[next]
	c.emitMove(target, len(c.st.CardsIn(target)))
}

// Drop ends the session over a valid target. When the card never left
// its origin column the final ordering is captured as an explicit
// reorder so positions persist as one batch instead of being re-derived
// from hover moves.
func (c *Controller) Drop() {
	if c.phase != Dragging {
		c.reset()
		return
	}
	if c.current == c.origin {
		seq := c.st.CardsIn(c.origin)
		ids := make([]uuid.UUID, len(seq))
		for i, card := range seq {
			ids[i] = card.ID
		}
		c.sink.ApplyReorder(mutate.ReorderIntent{Column: c.origin, IDOrder: ids})
	}
	// Cross-column drops need nothing further: the last hover move
	// already reflects the drop.
	c.reset()
}

// Cancel discards the session. The store keeps whatever provisional
// state the last move intent produced; there is no rollback.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) emitMove(to model.ColumnID, idx int) {
	c.sink.ApplyMove(mutate.MoveIntent{
		CardID:      c.cardID,
		From:        c.current,
		To:          to,
		TargetIndex: idx,
	})
	c.current = to
}

func (c *Controller) reset() {
	c.phase = Idle
	c.cardID = uuid.Nil
	c.origin = ""
	c.current = ""
}

func indexOf(cards []model.Card, id uuid.UUID) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}
