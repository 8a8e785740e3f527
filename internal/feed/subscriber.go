package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Subscribe listens on one table's channel for the owner and hands each
// event to handle, in delivery order, one at a time. It blocks until
// ctx is cancelled; run it on its own goroutine. If the pub/sub
// connection drops it resubscribes after a second, but events missed in
// between are gone; the only recovery is a full refetch, which is left
// to the caller.
func Subscribe(ctx context.Context, rdb *redis.Client, table string, owner uuid.UUID, handle func(Event)) {
	channel := Channel(table, owner)
	for {
		sub := rdb.Subscribe(ctx, channel)
		ch := sub.Channel()
	recv:
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.WithError(err).WithField("table", table).Error("unable to parse feed event")
					continue
				}
				handle(ev)
			}
		}
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		log.WithField("table", table).Error("feed channel closed, resubscribing")
		time.Sleep(time.Second)
	}
}
