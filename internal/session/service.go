// internal/session/service.go
package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/puzzles"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/store"
)

// DefaultMaxPlayers caps lobby occupancy unless configured otherwise.
const DefaultMaxPlayers = 8

// LeaderboardRecorder writes the immutable finish record when a lobby
// completes. Implementations must be idempotent per lobby: the completion
// condition can be observed by racing writers and only one row may exist.
type LeaderboardRecorder interface {
	RecordFinish(ctx context.Context, lobby models.Lobby, finishedAt time.Time) error
}

// Hint is the payload returned for a granted hint request.
type Hint struct {
	PuzzleID uuid.UUID `json:"puzzle_id"`
	Text     string    `json:"text"`
}

// Service exposes the lobby session operations. Each mutation runs through
// the session store's compare-and-set loop; post-commit side effects
// (leaderboard record) happen only after a successful commit.
type Service struct {
	store      *store.SessionStore
	engine     *Engine
	catalog    Catalog
	registry   *puzzles.Registry
	hints      *HintThrottler
	recorder   LeaderboardRecorder
	clock      clockwork.Clock
	log        *logrus.Logger
	maxPlayers int
}

// ServiceConfig carries the collaborators a Service needs.
type ServiceConfig struct {
	Store      *store.SessionStore
	Catalog    Catalog
	Registry   *puzzles.Registry
	Recorder   LeaderboardRecorder
	Clock      clockwork.Clock
	Logger     *logrus.Logger
	HintWindow time.Duration
	MaxPlayers int
}

// NewService wires a Service from its collaborators.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = DefaultMaxPlayers
	}
	return &Service{
		store:      cfg.Store,
		engine:     NewEngine(cfg.Catalog),
		catalog:    cfg.Catalog,
		registry:   cfg.Registry,
		hints:      NewHintThrottler(cfg.Clock, cfg.HintWindow),
		recorder:   cfg.Recorder,
		clock:      cfg.Clock,
		log:        cfg.Logger,
		maxPlayers: cfg.MaxPlayers,
	}
}

// Engine exposes the progression engine, mainly for snapshot builders.
func (s *Service) Engine() *Engine { return s.engine }

// Registry exposes the puzzle registry for client-facing puzzle fetches.
func (s *Service) Registry() *puzzles.Registry { return s.registry }

// CreateLobby creates a lobby in the waiting state with a fresh numeric join
// code unique among active lobbies.
func (s *Service) CreateLobby(ctx context.Context, name string, parallelMode bool, solution string) (models.Lobby, error) {
	code, err := s.freeJoinCode(ctx)
	if err != nil {
		return models.Lobby{}, err
	}
	l := models.Lobby{
		ID:               uuid.New(),
		Code:             code,
		Name:             name,
		Status:           models.StatusWaiting,
		Players:          []models.PlayerState{},
		CompletedPuzzles: make(map[int][]uuid.UUID),
		CollectedCodes:   []string{},
		ParallelMode:     parallelMode,
		Solution:         solution,
		CreatedAt:        s.clock.Now().UTC(),
	}
	if err := s.store.Create(ctx, &l); err != nil {
		return models.Lobby{}, fmt.Errorf("create lobby: %w", err)
	}
	s.log.WithFields(logrus.Fields{"lobby": l.ID, "code": l.Code}).Info("lobby created")
	return l, nil
}

func (s *Service) freeJoinCode(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		code := fmt.Sprintf("%06d", rand.Intn(1_000_000))
		if _, _, err := s.store.GetByCode(ctx, code); err == store.ErrNotFound {
			return code, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("could not allocate a free join code")
}

// JoinLobby adds a player to a waiting lobby identified by join code and
// returns the committed lobby plus the new player's session-stable ID.
func (s *Service) JoinLobby(ctx context.Context, code, playerName string) (models.Lobby, uuid.UUID, error) {
	l, _, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return models.Lobby{}, uuid.Nil, err
	}

	var playerID uuid.UUID
	committed, err := s.store.Mutate(ctx, l.ID, func(l *models.Lobby) error {
		id, err := Join(l, playerName, s.maxPlayers)
		if err != nil {
			return err
		}
		playerID = id
		return nil
	})
	if err != nil {
		return models.Lobby{}, uuid.Nil, err
	}
	return committed, playerID, nil
}

// StartLobby transitions waiting -> playing, computing the parallel
// assignment when the lobby was created in parallel mode.
func (s *Service) StartLobby(ctx context.Context, lobbyID uuid.UUID) (models.Lobby, error) {
	return s.store.Mutate(ctx, lobbyID, func(l *models.Lobby) error {
		return s.engine.Start(l, s.clock.Now())
	})
}

// CheckAnswer evaluates a submission against a puzzle without touching any
// lobby state. The answer itself never leaves the server.
func (s *Service) CheckAnswer(puzzleID uuid.UUID, submission string) (bool, error) {
	p, _, ok := s.catalog.Puzzle(puzzleID)
	if !ok {
		return false, ErrInvalidPuzzle
	}
	return s.registry.CheckAnswer(p, submission)
}

// SubmitPuzzleCompletion records a solved puzzle for the player. Duplicates
// are idempotent; puzzles outside the player's effective room are rejected.
func (s *Service) SubmitPuzzleCompletion(ctx context.Context, lobbyID, playerID, puzzleID uuid.UUID) (models.Lobby, error) {
	return s.store.Mutate(ctx, lobbyID, func(l *models.Lobby) error {
		return s.engine.SubmitPuzzleCompletion(l, playerID, puzzleID)
	})
}

// MarkReady records the player's consent to proceed and, if that consent
// opens the barrier for every scope, advances the room inside the same
// atomic mutation. Running the advance in the same commit means two clients
// observing "all ready" at once cannot both advance: the loser's
// compare-and-set fails and its retry sees the already-reset flags.
func (s *Service) MarkReady(ctx context.Context, lobbyID, playerID uuid.UUID) (models.Lobby, error) {
	committed, err := s.store.Mutate(ctx, lobbyID, func(l *models.Lobby) error {
		if err := MarkReady(l, playerID); err != nil {
			return err
		}
		if BarrierOpen(l, ScopeAll()) {
			return s.engine.AdvanceRoom(l)
		}
		return nil
	})
	if err != nil {
		return models.Lobby{}, err
	}
	s.recordFinishIfCompleted(ctx, committed)
	return committed, nil
}

// AdvanceRoom advances explicitly. It is a rejection (never a partial
// advance) while any player in any scope has not readied up.
func (s *Service) AdvanceRoom(ctx context.Context, lobbyID uuid.UUID) (models.Lobby, error) {
	committed, err := s.store.Mutate(ctx, lobbyID, func(l *models.Lobby) error {
		return s.engine.AdvanceRoom(l)
	})
	if err != nil {
		return models.Lobby{}, err
	}
	s.recordFinishIfCompleted(ctx, committed)
	return committed, nil
}

func (s *Service) recordFinishIfCompleted(ctx context.Context, l models.Lobby) {
	if l.Status != models.StatusCompleted || s.recorder == nil {
		return
	}
	if err := s.recorder.RecordFinish(ctx, l, s.clock.Now().UTC()); err != nil {
		// The lobby state is already committed; a failed record must not
		// unwind it. The recorder is idempotent, so a later attempt can fill
		// the gap.
		s.log.WithError(err).WithField("lobby", l.ID).Error("failed to record leaderboard finish")
	}
}

// RequestHint consumes the lobby's shared hint allowance and returns the
// hint for the first unsolved puzzle in the requesting player's effective
// room. Inside the throttle window the request fails with ThrottledError.
func (s *Service) RequestHint(ctx context.Context, lobbyID, playerID uuid.UUID) (models.Lobby, Hint, error) {
	var hint Hint
	committed, err := s.store.Mutate(ctx, lobbyID, func(l *models.Lobby) error {
		if l.Status != models.StatusPlaying {
			return ErrNotPlaying
		}
		p := l.Player(playerID)
		if p == nil {
			return ErrUnknownPlayer
		}
		if err := s.hints.RequestHint(l); err != nil {
			return err
		}
		hint = s.hintFor(l, p)
		return nil
	})
	if err != nil {
		return models.Lobby{}, Hint{}, err
	}
	return committed, hint, nil
}

// hintFor picks the first unsolved puzzle of the player's effective room.
func (s *Service) hintFor(l *models.Lobby, p *models.PlayerState) Hint {
	room := s.engine.EffectiveRoom(l, p)
	for _, puz := range s.catalog.PuzzlesForRoom(room) {
		if !l.HasCompleted(room, puz.ID) {
			return Hint{PuzzleID: puz.ID, Text: puz.Hint}
		}
	}
	return Hint{Text: "everything in this room is already solved"}
}
