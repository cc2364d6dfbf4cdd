// internal/cache/bus.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultChannel is the pub/sub channel change notifications go over.
const DefaultChannel = "session_changes"

// ChangeEvent is the thin notification published after each commit. It
// deliberately carries no state payload: subscribers re-fetch the
// authoritative row keyed by Table/ID instead of trusting a diff.
type ChangeEvent struct {
	Table string    `json:"table"` // "lobbies" or "leaderboard"
	ID    uuid.UUID `json:"id,omitempty"`
}

// Bus is the Redis-backed change-notification fanout shared by all server
// instances. It is an explicitly owned service: created at startup, closed
// at shutdown, injected into whatever needs it.
type Bus struct {
	rdb     *redis.Client
	channel string
	log     *logrus.Logger
}

// NewBus connects to Redis and verifies the connection with a short ping.
func NewBus(addr string, db int, log *logrus.Logger) (*Bus, error) {
	if log == nil {
		log = logrus.New()
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &Bus{rdb: rdb, channel: DefaultChannel, log: log}, nil
}

// Close releases the underlying client.
func (b *Bus) Close() error { return b.rdb.Close() }

func (b *Bus) publish(ctx context.Context, ev ChangeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		b.log.WithError(err).Error("marshal change event")
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		// Notification loss is tolerable: subscribers also poll, and the
		// committed state is already durable.
		b.log.WithError(err).WithField("table", ev.Table).Warn("publish change event")
	}
}

// NotifyLobbyChanged implements store.ChangeNotifier.
func (b *Bus) NotifyLobbyChanged(ctx context.Context, id uuid.UUID) {
	b.publish(ctx, ChangeEvent{Table: "lobbies", ID: id})
}

// NotifyLeaderboardChanged signals a new finish record.
func (b *Bus) NotifyLeaderboardChanged(ctx context.Context) {
	b.publish(ctx, ChangeEvent{Table: "leaderboard"})
}

// Subscribe returns a channel of decoded change events. The channel closes
// when ctx is cancelled or the subscription drops.
func (b *Bus) Subscribe(ctx context.Context) <-chan ChangeEvent {
	sub := b.rdb.Subscribe(ctx, b.channel)
	out := make(chan ChangeEvent, 16)

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			msg, err := sub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					b.log.WithError(err).Warn("change subscription ended")
				}
				return
			}
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.WithError(err).Warn("bad change event payload")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
