// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

var (
	// ErrNotFound: no lobby with that ID or code.
	ErrNotFound = errors.New("lobby not found")

	// ErrVersionConflict: another writer committed between our read and our
	// compare-and-set. Repository-level; the session store retries on it.
	ErrVersionConflict = errors.New("lobby version conflict")

	// ErrConcurrentModification: the retry budget ran out under contention.
	// Transient; safe for the caller to retry from fresh state.
	ErrConcurrentModification = errors.New("too many concurrent modifications")
)

// DefaultMaxRetries bounds the compare-and-set retry loop so a hot lobby
// (say, every player finishing the last puzzle at once) cannot live-lock.
const DefaultMaxRetries = 5

// LobbyRepository is the persistence contract for lobby aggregates. Both the
// in-memory repository and the postgres repository implement it.
type LobbyRepository interface {
	Insert(ctx context.Context, l *models.Lobby) error

	// Get returns the lobby and the version observed at read time.
	Get(ctx context.Context, id uuid.UUID) (models.Lobby, int64, error)
	GetByCode(ctx context.Context, code string) (models.Lobby, int64, error)

	// CompareAndSwap commits the lobby only if the stored version still
	// equals expected, returning ErrVersionConflict otherwise.
	CompareAndSwap(ctx context.Context, l *models.Lobby, expected int64) error

	// List returns all lobbies; consumed by the stats aggregator.
	List(ctx context.Context) ([]models.Lobby, error)
}

// ChangeNotifier receives a post-commit signal for each mutation. The
// payload is intentionally just "something changed": subscribers re-fetch
// authoritative state rather than trusting a diff.
type ChangeNotifier interface {
	NotifyLobbyChanged(ctx context.Context, id uuid.UUID)
}

// SessionStore is the single point of truth reconciling concurrent mutation
// attempts against one lobby row. Every mutation re-reads current state,
// applies the callback, and commits via compare-and-set; losers retry against
// the freshly read state so no commit is silently lost.
type SessionStore struct {
	repo       LobbyRepository
	notifier   ChangeNotifier
	maxRetries int
	log        *logrus.Logger
}

// NewSessionStore wires a session store. notifier may be nil (tests).
func NewSessionStore(repo LobbyRepository, notifier ChangeNotifier, log *logrus.Logger) *SessionStore {
	if log == nil {
		log = logrus.New()
	}
	return &SessionStore{
		repo:       repo,
		notifier:   notifier,
		maxRetries: DefaultMaxRetries,
		log:        log,
	}
}

// Repo exposes the underlying repository for read-only consumers.
func (s *SessionStore) Repo() LobbyRepository { return s.repo }

// Create inserts a fresh lobby and notifies subscribers.
func (s *SessionStore) Create(ctx context.Context, l *models.Lobby) error {
	if err := s.repo.Insert(ctx, l); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyLobbyChanged(ctx, l.ID)
	}
	return nil
}

// Get reads the current lobby state.
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (models.Lobby, int64, error) {
	return s.repo.Get(ctx, id)
}

// GetByCode reads a lobby by its join code.
func (s *SessionStore) GetByCode(ctx context.Context, code string) (models.Lobby, int64, error) {
	return s.repo.GetByCode(ctx, code)
}

// Mutate applies fn inside a read/apply/compare-and-set loop. fn must be a
// pure function of the lobby it receives; it can run more than once. A
// domain error from fn aborts without retrying; version conflicts retry up
// to the bounded budget before surfacing ErrConcurrentModification.
func (s *SessionStore) Mutate(ctx context.Context, id uuid.UUID, fn func(*models.Lobby) error) (models.Lobby, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		lobby, version, err := s.repo.Get(ctx, id)
		if err != nil {
			return models.Lobby{}, err
		}

		if err := fn(&lobby); err != nil {
			return models.Lobby{}, err
		}

		err = s.repo.CompareAndSwap(ctx, &lobby, version)
		if errors.Is(err, ErrVersionConflict) {
			s.log.WithFields(logrus.Fields{
				"lobby":   id,
				"attempt": attempt + 1,
			}).Debug("version conflict, retrying mutation")
			continue
		}
		if err != nil {
			return models.Lobby{}, err
		}

		if s.notifier != nil {
			s.notifier.NotifyLobbyChanged(ctx, id)
		}
		return lobby, nil
	}
	return models.Lobby{}, ErrConcurrentModification
}
