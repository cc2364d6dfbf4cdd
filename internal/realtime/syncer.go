// internal/realtime/syncer.go
package realtime

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/cache"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// LobbyFetcher reads the authoritative lobby state. Satisfied by both
// repository implementations.
type LobbyFetcher interface {
	Get(ctx context.Context, id uuid.UUID) (models.Lobby, int64, error)
}

// Syncer turns change notifications into snapshot broadcasts. Notifications
// carry no payload, so the syncer re-fetches the authoritative state on each
// one before publishing. The fetch, not the notification, is the source of
// truth.
type Syncer struct {
	events <-chan cache.ChangeEvent
	repo   LobbyFetcher
	broker *Broker
	log    *logrus.Logger

	// OnChange, when set, observes every event after snapshot fanout. The
	// stats aggregator hangs its push-triggered refresh here so polling and
	// push share one refresh path.
	OnChange func(cache.ChangeEvent)
}

// NewSyncer wires a syncer over a subscribed event stream.
func NewSyncer(events <-chan cache.ChangeEvent, repo LobbyFetcher, broker *Broker, log *logrus.Logger) *Syncer {
	if log == nil {
		log = logrus.New()
	}
	return &Syncer{events: events, repo: repo, broker: broker, log: log}
}

// Run consumes events until the stream closes or ctx is cancelled. Call it
// in its own goroutine.
func (s *Syncer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			s.handle(ctx, ev)
		}
	}
}

func (s *Syncer) handle(ctx context.Context, ev cache.ChangeEvent) {
	if ev.Table == "lobbies" && ev.ID != uuid.Nil {
		lobby, version, err := s.repo.Get(ctx, ev.ID)
		if err != nil {
			s.log.WithError(err).WithField("lobby", ev.ID).Warn("re-fetch after change notification failed")
		} else {
			s.broker.Publish(ev.ID, Snapshot{Version: version, State: ClientState(lobby)})
		}
	}
	if s.OnChange != nil {
		s.OnChange(ev)
	}
}
