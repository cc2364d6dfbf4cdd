// internal/session/hints.go
package session

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// DefaultHintInterval is the lobby-wide minimum gap between hints.
const DefaultHintInterval = 60 * time.Second

// HintThrottler rate-limits hint requests per lobby. The allowance is shared:
// one player's hint consumes the whole team's window. A request inside the
// window is a hard rejection carrying the remaining wait, never queued.
type HintThrottler struct {
	clock       clockwork.Clock
	minInterval time.Duration
}

// NewHintThrottler builds a throttler with the given minimum interval.
// Pass a fake clock in tests.
func NewHintThrottler(clock clockwork.Clock, minInterval time.Duration) *HintThrottler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if minInterval <= 0 {
		minInterval = DefaultHintInterval
	}
	return &HintThrottler{clock: clock, minInterval: minInterval}
}

// RequestHint checks and consumes the lobby's hint allowance. On success
// hints_used increments and last_hint_time moves forward; both only ever
// advance.
func (h *HintThrottler) RequestHint(l *models.Lobby) error {
	now := h.clock.Now()
	if !l.LastHintTime.IsZero() {
		elapsed := now.Sub(l.LastHintTime)
		if elapsed < h.minInterval {
			return &ThrottledError{RetryAfter: h.minInterval - elapsed}
		}
	}
	l.HintsUsed++
	l.LastHintTime = now
	return nil
}
