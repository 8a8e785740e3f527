package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskboard/internal/drag"
	"taskboard/internal/feed"
	"taskboard/internal/model"
	"taskboard/internal/mutate"
	"taskboard/internal/notes"
	"taskboard/internal/persistence"
	"taskboard/internal/reconcile"
	"taskboard/internal/repository"
	"taskboard/internal/store"
)

// Session owns one signed-in user's live board state: the store, the
// optimistic mutator, the persistence client, the note debouncer and
// the change-feed subscriptions. It is constructed on sign-in and torn
// down with Close on sign-out.
//
// Local edits land in the store synchronously and persist in the
// background; feed events from other sessions land through the
// reconciler. If the feed connection drops, events missed while
// resubscribing are not backfilled; call Refresh to recover.
type Session struct {
	owner   uuid.UUID
	store   *store.Store
	mutator *mutate.Mutator
	persist *persistence.Client
	rec     *reconcile.Reconciler
	noteBuf *notes.Debouncer

	cardRepo *repository.CardRepository
	todoRepo *repository.TodoRepository
	noteRepo *repository.NoteRepository

	cancel context.CancelFunc
	log    *log.Entry

	billingMu sync.RWMutex
	usage     model.Usage
	sub       *model.Subscription
}

// Open builds the session and starts its feed subscriptions. Initial
// load failures are logged and the session proceeds with whatever
// partial state arrived rather than blocking sign-in.
func Open(ctx context.Context, db *gorm.DB, rdb *redis.Client, owner uuid.UUID) *Session {
	st := store.New(owner)
	pub := feed.NewPublisher(rdb)
	cardRepo := repository.NewCardRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	persist := persistence.NewClient(owner, cardRepo, todoRepo, noteRepo, pub)

	s := &Session{
		owner:    owner,
		store:    st,
		mutator:  mutate.New(st),
		persist:  persist,
		rec:      reconcile.New(st),
		cardRepo: cardRepo,
		todoRepo: todoRepo,
		noteRepo: noteRepo,
		log:      log.WithField("owner", owner),
	}
	s.noteBuf = notes.NewDebouncer(notes.DefaultQuiet, func(content string) {
		persist.NoteSaved(model.Note{Owner: owner, Content: content, UpdatedAt: time.Now().UTC()})
	})

	s.Refresh(ctx)

	subCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go feed.Subscribe(subCtx, rdb, feed.TableCards, owner, s.rec.ApplyCard)
	go feed.Subscribe(subCtx, rdb, feed.TableTodos, owner, s.rec.ApplyTodo)
	go feed.Subscribe(subCtx, rdb, feed.TableNotes, owner, s.rec.ApplyNote)
	go feed.Subscribe(subCtx, rdb, feed.TableUsage, owner, s.applyUsage)
	go feed.Subscribe(subCtx, rdb, feed.TableSubscriptions, owner, s.applySubscription)

	return s
}

// Refresh refetches all rows from the shared store, replacing local
// state. This is the only recovery path after a feed gap; nothing
// triggers it automatically.
func (s *Session) Refresh(ctx context.Context) {
	if cards, err := s.cardRepo.GetByOwner(ctx, s.owner); err != nil {
		s.log.WithError(err).Error("load cards")
	} else {
		for _, c := range cards {
			s.store.Upsert(c)
		}
	}
	if todos, err := s.todoRepo.GetByOwner(ctx, s.owner); err != nil {
		s.log.WithError(err).Error("load todos")
	} else {
		for _, t := range todos {
			s.store.UpsertTodo(t)
		}
	}
	if note, err := s.noteRepo.GetByOwner(ctx, s.owner); err != nil {
		s.log.WithError(err).Error("load note")
	} else if note != nil {
		s.store.SetNote(*note)
	}
}

// Close releases the feed subscriptions, flushes a pending note write
// and waits for in-flight persistence.
func (s *Session) Close() {
	s.cancel()
	s.noteBuf.Flush()
	s.persist.Wait()
}

func (s *Session) Owner() uuid.UUID    { return s.owner }
func (s *Session) Store() *store.Store { return s.store }

// Cards returns one column's cards in position order.
func (s *Session) Cards(column model.ColumnID) []model.Card {
	return s.store.CardsIn(column)
}

func (s *Session) Todos() []model.Todo { return s.store.Todos() }
func (s *Session) Note() string        { return s.store.Note().Content }

// DragController returns a fresh controller whose intents flow through
// this session's mutator and persistence client.
func (s *Session) DragController() *drag.Controller {
	return drag.NewController(s.store, s)
}

// ApplyMove applies a move intent optimistically, then mirrors the
// changed rows remotely. Part of drag.Sink.
func (s *Session) ApplyMove(in mutate.MoveIntent) {
	s.persist.CardsChanged(s.mutator.Move(in))
}

// ApplyReorder applies a reorder intent; stale intents whose id set no
// longer matches the column are dropped silently. Part of drag.Sink.
func (s *Session) ApplyReorder(in mutate.ReorderIntent) {
	changed, ok := s.mutator.Reorder(in)
	if !ok {
		return
	}
	s.persist.CardsChanged(changed)
}

// AddCard appends a card to the column and persists it.
func (s *Session) AddCard(column model.ColumnID, title string) (model.Card, bool) {
	card, ok := s.mutator.AddCard(column, title)
	if !ok {
		return model.Card{}, false
	}
	s.persist.CardCreated(card)
	return card, true
}

// UpdateCard edits title and description.
func (s *Session) UpdateCard(id uuid.UUID, title, description string) bool {
	card, ok := s.mutator.UpdateCard(id, title, description)
	if !ok {
		return false
	}
	s.persist.CardsChanged([]model.Card{card})
	return true
}

// DeleteCard removes a card and persists the re-densified column.
func (s *Session) DeleteCard(id uuid.UUID) bool {
	removed, displaced, ok := s.mutator.DeleteCard(id)
	if !ok {
		return false
	}
	s.persist.CardDeleted(removed, displaced)
	return true
}

func (s *Session) AddTodo(text string) model.Todo {
	todo := model.Todo{
		ID:        uuid.New(),
		Owner:     s.owner,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	s.store.UpsertTodo(todo)
	s.persist.TodoCreated(todo)
	return todo
}

func (s *Session) ToggleTodo(id uuid.UUID) bool {
	todo, ok := s.store.GetTodo(id)
	if !ok {
		return false
	}
	todo.Completed = !todo.Completed
	s.store.UpsertTodo(todo)
	s.persist.TodoChanged(todo)
	return true
}

func (s *Session) DeleteTodo(id uuid.UUID) bool {
	if _, ok := s.store.GetTodo(id); !ok {
		return false
	}
	s.store.RemoveTodo(id)
	s.persist.TodoDeleted(id)
	return true
}

// EditNote applies the edit locally at once; the remote write goes out
// after the quiet period with the latest buffered content.
func (s *Session) EditNote(content string) {
	s.store.SetNote(model.Note{Owner: s.owner, Content: content, UpdatedAt: time.Now().UTC()})
	s.noteBuf.Edit(content)
}

// Usage reports the last billing usage row observed on the feed.
func (s *Session) Usage() model.Usage {
	s.billingMu.RLock()
	defer s.billingMu.RUnlock()
	return s.usage
}

// Subscription reports the last subscription row observed on the feed,
// nil when the user never subscribed.
func (s *Session) Subscription() *model.Subscription {
	s.billingMu.RLock()
	defer s.billingMu.RUnlock()
	return s.sub
}

func (s *Session) applyUsage(ev feed.Event) {
	if ev.Kind == feed.Deleted {
		return
	}
	var row model.Usage
	if err := ev.DecodeRow(&row); err != nil {
		s.log.WithError(err).Error("bad usage event")
		return
	}
	s.billingMu.Lock()
	s.usage = row
	s.billingMu.Unlock()
}

func (s *Session) applySubscription(ev feed.Event) {
	if ev.Kind == feed.Deleted {
		return
	}
	var row model.Subscription
	if err := ev.DecodeRow(&row); err != nil {
		s.log.WithError(err).Error("bad subscription event")
		return
	}
	s.billingMu.Lock()
	s.sub = &row
	s.billingMu.Unlock()
}
