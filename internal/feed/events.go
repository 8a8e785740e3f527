package feed

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Table names carried on the feed. One logical subscription exists per
// table per session, scoped to the owner.
const (
	TableCards         = "cards"
	TableTodos         = "todos"
	TableNotes         = "notes"
	TableUsage         = "usage"
	TableSubscriptions = "subscriptions"
)

type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
	Deleted Kind = "deleted"
)

// Event is the wire envelope for one row-level change. Created and
// Updated events carry the full post-write row; Deleted events carry
// only the row id. Rows are decoded into their concrete types at the
// reconciler boundary.
type Event struct {
	Kind Kind            `json:"kind"`
	Row  json.RawMessage `json:"row,omitempty"`
	ID   string          `json:"id,omitempty"`
}

// DecodeRow maps the raw row into out, validating it is present.
func (e Event) DecodeRow(out any) error {
	if len(e.Row) == 0 {
		return fmt.Errorf("%s event carries no row", e.Kind)
	}
	return json.Unmarshal(e.Row, out)
}

// Channel is the pub/sub channel for one table and owner.
func Channel(table string, owner uuid.UUID) string {
	return fmt.Sprintf("feed:%s:%s", table, owner)
}
