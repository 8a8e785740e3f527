package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher pushes row events onto the per-table, per-owner channels.
// Every writer (HTTP handlers and session persistence clients) must
// publish the fully re-densified row it just committed; subscribers
// trust rows as-is and never repair positions themselves.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish emits a created/updated event carrying the full row snapshot.
func (p *Publisher) Publish(ctx context.Context, table string, owner uuid.UUID, kind Kind, row any) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal %s row: %w", table, err)
	}
	return p.send(ctx, table, owner, Event{Kind: kind, Row: raw})
}

// PublishDelete emits a deleted event carrying only the row id.
func (p *Publisher) PublishDelete(ctx context.Context, table string, owner uuid.UUID, id string) error {
	return p.send(ctx, table, owner, Event{Kind: Deleted, ID: id})
}

func (p *Publisher) send(ctx context.Context, table string, owner uuid.UUID, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", table, err)
	}
	return p.rdb.Publish(ctx, Channel(table, owner), payload).Err()
}
