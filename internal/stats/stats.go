// internal/stats/stats.go
package stats

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// DefaultPollInterval is how often the aggregator refreshes without a push.
const DefaultPollInterval = 30 * time.Second

// Lister is the read-only repository surface the aggregator consumes. It
// performs no orchestration of its own.
type Lister interface {
	List(ctx context.Context) ([]models.Lobby, error)
}

// Snapshot is the aggregate the dashboard reads.
type Snapshot struct {
	WaitingLobbies   int       `json:"waiting_lobbies"`
	ActiveLobbies    int       `json:"active_lobbies"`
	CompletedLobbies int       `json:"completed_lobbies"`
	Players          int       `json:"players"`
	RefreshedAt      time.Time `json:"refreshed_at"`
}

// Aggregator rebuilds lobby/player counts on demand. The periodic poll and
// the push-triggered refresh both funnel through RefreshNow, so there is
// exactly one notion of "when did we last refresh" and concurrent triggers
// coalesce instead of fetching twice.
type Aggregator struct {
	repo     Lister
	clock    clockwork.Clock
	interval time.Duration
	log      *logrus.Logger

	refreshCh chan struct{}

	mu   chanMutex
	snap Snapshot
}

// chanMutex is a channel-based mutex so refresh deduplication and snapshot
// reads share one primitive.
type chanMutex chan struct{}

func (m chanMutex) lock()   { m <- struct{}{} }
func (m chanMutex) unlock() { <-m }

// NewAggregator builds an aggregator; pass a fake clock in tests.
func NewAggregator(repo Lister, clock clockwork.Clock, interval time.Duration, log *logrus.Logger) *Aggregator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = logrus.New()
	}
	return &Aggregator{
		repo:      repo,
		clock:     clock,
		interval:  interval,
		log:       log,
		refreshCh: make(chan struct{}, 1),
		mu:        make(chanMutex, 1),
	}
}

// Trigger requests a refresh. Multiple triggers while one is pending
// collapse into a single fetch.
func (a *Aggregator) Trigger() {
	select {
	case a.refreshCh <- struct{}{}:
	default:
	}
}

// RefreshNow fetches and rebuilds the snapshot immediately.
func (a *Aggregator) RefreshNow(ctx context.Context) error {
	lobbies, err := a.repo.List(ctx)
	if err != nil {
		return err
	}
	snap := Snapshot{RefreshedAt: a.clock.Now().UTC()}
	for _, l := range lobbies {
		switch l.Status {
		case models.StatusWaiting:
			snap.WaitingLobbies++
		case models.StatusPlaying:
			snap.ActiveLobbies++
		case models.StatusCompleted:
			snap.CompletedLobbies++
		}
		if l.Status != models.StatusCompleted {
			snap.Players += len(l.Players)
		}
	}
	a.mu.lock()
	a.snap = snap
	a.mu.unlock()
	return nil
}

// Snapshot returns the last built aggregate.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.lock()
	defer a.mu.unlock()
	return a.snap
}

// Run services the poll ticker and push triggers until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := a.clock.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			a.refresh(ctx)
		case <-a.refreshCh:
			a.refresh(ctx)
		}
	}
}

func (a *Aggregator) refresh(ctx context.Context) {
	if err := a.RefreshNow(ctx); err != nil {
		a.log.WithError(err).Warn("stats refresh failed")
	}
}
