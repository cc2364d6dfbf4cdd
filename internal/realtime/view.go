// internal/realtime/view.go
package realtime

import "sync"

// LocalView models a client's two-phase lobby state: a committed snapshot
// (the last authoritative broadcast) plus at most one pending overlay (a
// mutation applied locally before the server confirmed it). Nothing pending
// is ever final: every reconcile discards the overlay, even when its content
// matches the committed state, so an optimistic update can never be counted
// twice.
type LocalView struct {
	mu        sync.Mutex
	committed Snapshot
	pending   *ClientLobbyState
	hasState  bool
}

// NewLocalView returns an empty view; Current is meaningless until the first
// Reconcile.
func NewLocalView() *LocalView {
	return &LocalView{}
}

// ApplyPending overlays an optimistic mutation on top of the current state.
// Only one overlay is kept; a second call mutates the existing overlay.
func (v *LocalView) ApplyPending(fn func(*ClientLobbyState)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending == nil {
		cp := v.committed.State.clone()
		v.pending = &cp
	}
	fn(v.pending)
}

// Reconcile replaces the committed state wholesale with an authoritative
// snapshot. Snapshots at or below the current version are ignored (a
// reordered broadcast must not roll the view back), but the pending overlay
// is discarded unconditionally.
func (v *LocalView) Reconcile(snap Snapshot) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = nil
	if v.hasState && snap.Version <= v.committed.Version {
		return false
	}
	v.committed = snap
	v.hasState = true
	return true
}

// Current returns the state the UI should render: the pending overlay when
// one exists, else the committed snapshot.
func (v *LocalView) Current() ClientLobbyState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending != nil {
		return *v.pending
	}
	return v.committed.State
}

// Version returns the committed version.
func (v *LocalView) Version() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.committed.Version
}

// HasPending reports whether an unconfirmed overlay is active.
func (v *LocalView) HasPending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending != nil
}
