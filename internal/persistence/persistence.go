package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/feed"
	"taskboard/internal/model"
)

// CardStore is the subset of the card repository the client writes to.
type CardStore interface {
	Create(ctx context.Context, card *model.Card) error
	Update(ctx context.Context, card *model.Card) error
	DeleteRow(ctx context.Context, owner, id uuid.UUID) error
}

type TodoStore interface {
	Create(ctx context.Context, todo *model.Todo) error
	Update(ctx context.Context, todo *model.Todo) error
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type NoteStore interface {
	Upsert(ctx context.Context, note *model.Note) error
}

// Events is satisfied by *feed.Publisher.
type Events interface {
	Publish(ctx context.Context, table string, owner uuid.UUID, kind feed.Kind, row any) error
	PublishDelete(ctx context.Context, table string, owner uuid.UUID, id string) error
}

// Client mirrors confirmed local intents into the shared store as a
// minimal set of independent row writes: one for the changed card plus
// one per displaced sibling. It never blocks the caller: the
// optimistic state is already authoritative, so writes run in the
// background and their only success effect is the published feed event.
// Failures are logged and not retried; local state is not rolled back,
// so local and remote can diverge until the next reconciliation or
// reload.
type Client struct {
	owner uuid.UUID
	cards CardStore
	todos TodoStore
	notes NoteStore
	pub   Events
	log   *log.Entry
	wg    sync.WaitGroup
}

func NewClient(owner uuid.UUID, cards CardStore, todos TodoStore, notes NoteStore, pub Events) *Client {
	return &Client{
		owner: owner,
		cards: cards,
		todos: todos,
		notes: notes,
		pub:   pub,
		log:   log.WithField("owner", owner),
	}
}

// CardCreated persists a freshly added card.
func (c *Client) CardCreated(card model.Card) {
	c.async(func(ctx context.Context) {
		if err := c.cards.Create(ctx, &card); err != nil {
			c.log.WithError(err).Error("persist card create")
			return
		}
		c.publish(ctx, feed.TableCards, feed.Created, card)
	})
}

// CardsChanged persists every row the mutator reported as changed by a
// move, reorder or edit. Writes are independent; a failed row is logged
// and the rest still go out.
func (c *Client) CardsChanged(cards []model.Card) {
	if len(cards) == 0 {
		return
	}
	c.async(func(ctx context.Context) {
		for i := range cards {
			card := cards[i]
			if err := c.cards.Update(ctx, &card); err != nil {
				c.log.WithError(err).WithField("card", card.ID).Error("persist card update")
				continue
			}
			c.publish(ctx, feed.TableCards, feed.Updated, card)
		}
	})
}

// CardDeleted persists a local delete together with the re-densified
// positions of the displaced siblings.
func (c *Client) CardDeleted(card model.Card, displaced []model.Card) {
	c.async(func(ctx context.Context) {
		if err := c.cards.DeleteRow(ctx, c.owner, card.ID); err != nil {
			// A move-write racing a delete can already have dropped the
			// row remotely; that is harmless.
			c.log.WithError(err).WithField("card", card.ID).Error("persist card delete")
		} else if err := c.pub.PublishDelete(ctx, feed.TableCards, c.owner, card.ID.String()); err != nil {
			c.log.WithError(err).Error("publish card delete")
		}
		for i := range displaced {
			sibling := displaced[i]
			if err := c.cards.Update(ctx, &sibling); err != nil {
				c.log.WithError(err).WithField("card", sibling.ID).Error("persist card update")
				continue
			}
			c.publish(ctx, feed.TableCards, feed.Updated, sibling)
		}
	})
}

func (c *Client) TodoCreated(todo model.Todo) {
	c.async(func(ctx context.Context) {
		if err := c.todos.Create(ctx, &todo); err != nil {
			c.log.WithError(err).Error("persist todo create")
			return
		}
		c.publish(ctx, feed.TableTodos, feed.Created, todo)
	})
}

func (c *Client) TodoChanged(todo model.Todo) {
	c.async(func(ctx context.Context) {
		if err := c.todos.Update(ctx, &todo); err != nil {
			c.log.WithError(err).WithField("todo", todo.ID).Error("persist todo update")
			return
		}
		c.publish(ctx, feed.TableTodos, feed.Updated, todo)
	})
}

func (c *Client) TodoDeleted(id uuid.UUID) {
	c.async(func(ctx context.Context) {
		if err := c.todos.Delete(ctx, c.owner, id); err != nil {
			c.log.WithError(err).WithField("todo", id).Error("persist todo delete")
			return
		}
		if err := c.pub.PublishDelete(ctx, feed.TableTodos, c.owner, id.String()); err != nil {
			c.log.WithError(err).Error("publish todo delete")
		}
	})
}

// NoteSaved upserts the note row; the debouncer has already coalesced
// the keystrokes.
func (c *Client) NoteSaved(note model.Note) {
	c.async(func(ctx context.Context) {
		if err := c.notes.Upsert(ctx, &note); err != nil {
			c.log.WithError(err).Error("persist note")
			return
		}
		c.publish(ctx, feed.TableNotes, feed.Updated, note)
	})
}

// Wait blocks until in-flight writes finish. Used on teardown and in
// tests; nothing in the UI path calls it.
func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) async(fn func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		// Persistence calls carry no timeout: a hung call never
		// resolves and its error path never fires.
		fn(context.Background())
	}()
}

func (c *Client) publish(ctx context.Context, table string, kind feed.Kind, row any) {
	if err := c.pub.Publish(ctx, table, c.owner, kind, row); err != nil {
		c.log.WithError(err).WithField("table", table).Error("publish feed event")
	}
}
