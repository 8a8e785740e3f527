package reconcile

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/feed"
	"taskboard/internal/model"
	"taskboard/internal/store"
)

// Reconciler applies externally pushed row events to the session store.
// It is a pure per-row replace/insert/delete: created and updated
// events overwrite every field of the row by id (inserting when
// absent), deleted events remove by id and tolerate duplicate or
// out-of-order notifications. It never re-densifies other cards:
// every producer already emitted fully re-densified rows, so repairing
// here would only fight the feed.
//
// When a local optimistic mutation and an event touch the same card,
// whichever reaches the store last wins.
type Reconciler struct {
	st  *store.Store
	log *log.Entry
}

func New(st *store.Store) *Reconciler {
	return &Reconciler{
		st:  st,
		log: log.WithField("owner", st.Owner()),
	}
}

// ApplyCard handles one cards-table event.
func (r *Reconciler) ApplyCard(ev feed.Event) {
	switch ev.Kind {
	case feed.Created, feed.Updated:
		var row model.Card
		if err := ev.DecodeRow(&row); err != nil {
			r.log.WithError(err).Error("bad card event")
			return
		}
		if !r.owned(row.Owner) {
			return
		}
		r.st.Upsert(row)
	case feed.Deleted:
		if id, ok := r.rowID(ev); ok {
			r.st.Remove(id)
		}
	}
}

// ApplyTodo handles one todos-table event.
func (r *Reconciler) ApplyTodo(ev feed.Event) {
	switch ev.Kind {
	case feed.Created, feed.Updated:
		var row model.Todo
		if err := ev.DecodeRow(&row); err != nil {
			r.log.WithError(err).Error("bad todo event")
			return
		}
		if !r.owned(row.Owner) {
			return
		}
		r.st.UpsertTodo(row)
	case feed.Deleted:
		if id, ok := r.rowID(ev); ok {
			r.st.RemoveTodo(id)
		}
	}
}

// ApplyNote handles the single-row notes table; deletes never happen
// there, only upserts.
func (r *Reconciler) ApplyNote(ev feed.Event) {
	if ev.Kind != feed.Created && ev.Kind != feed.Updated {
		return
	}
	var row model.Note
	if err := ev.DecodeRow(&row); err != nil {
		r.log.WithError(err).Error("bad note event")
		return
	}
	if !r.owned(row.Owner) {
		return
	}
	r.st.SetNote(row)
}

// owned drops rows that belong to another user. Feed channels are
// already owner-scoped, so a mismatch means a misbehaving producer.
func (r *Reconciler) owned(owner uuid.UUID) bool {
	if owner != r.st.Owner() {
		r.log.WithField("row_owner", owner).Warn("dropping foreign-owner row")
		return false
	}
	return true
}

func (r *Reconciler) rowID(ev feed.Event) (uuid.UUID, bool) {
	id, err := uuid.Parse(ev.ID)
	if err != nil {
		r.log.WithError(err).Error("bad id on deleted event")
		return uuid.Nil, false
	}
	return id, true
}
