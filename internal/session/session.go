// internal/session/session.go
//
// Client game state for one player.
// Responsibilities:
//   - Own the lifecycle (none → configured → ongoing → won/lost, plus loading on resume).
//   - Own the board and the game identity; nothing else mutates them.
//   - Feed observers (the rendering boundary) a fresh View after every change
//     and every timer tick.
//
// Locking:
//   - mu guards all game state. Network calls are made without it.
//   - notifyMu serializes deliveries so observers see views in order. It is always
//     taken before mu, never while holding it.
//   - Observers must not call back into methods that notify (Configure, Play,
//     ToggleFlag, Reset, Resume) from inside Notify.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MediaComem/minesweeper/internal/api"
	"github.com/MediaComem/minesweeper/internal/game"
	"github.com/MediaComem/minesweeper/internal/store"
	"github.com/MediaComem/minesweeper/internal/timer"
)

// GameAPI is the remote authority. *api.Client implements it.
type GameAPI interface {
	CreateGame(ctx context.Context, req api.CreateGameRequest) (*api.CreatedGame, error)
	SubmitMove(ctx context.Context, id string, pos game.Coord) (*api.MoveResult, error)
	FetchGame(ctx context.Context, id string) (*api.GameRecord, error)
}

// Observer receives a View after each change.
type Observer interface {
	Notify(View)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(View)

func (f ObserverFunc) Notify(v View) { f(v) }

// Options tune a Session. Zero values pick the defaults.
type Options struct {
	MoveTimeout time.Duration // bound on each game API call (default 10s)
	TickPeriod  time.Duration // elapsed-time refresh period (default 1s)
	Clock       timer.Clock   // source of "now" (default time.Now)
}

// Session is the single game-state object. Build it with New; it is safe for
// concurrent use.
type Session struct {
	api         GameAPI
	kv          store.KV
	clock       timer.Clock
	moveTimeout time.Duration
	timer       *timer.Timer

	notifyMu  sync.Mutex
	mu        sync.Mutex
	id        string
	state     game.State
	params    *game.Params
	board     *game.Board
	playing   bool
	gen       uint64 // bumped whenever the current game is abandoned
	observers map[int]Observer
	nextObs   int
}

// New builds a session in state "none". Call Resume to pick up a persisted game.
func New(gameAPI GameAPI, kv store.KV, opts Options) *Session {
	if opts.MoveTimeout <= 0 {
		opts.MoveTimeout = 10 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = timer.ClockFunc(time.Now)
	}
	s := &Session{
		api:         gameAPI,
		kv:          kv,
		clock:       opts.Clock,
		moveTimeout: opts.MoveTimeout,
		state:       game.StateNone,
		observers:   make(map[int]Observer),
	}
	s.timer = timer.New(opts.Clock, opts.TickPeriod, s.onTick)
	return s
}

// Configure allocates a fresh covered board for params and forgets any previous
// game. Abandoning an ongoing game also erases its resume record.
func (s *Session) Configure(ctx context.Context, params game.Params) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	switch {
	case s.state == game.StateLoading:
		s.mu.Unlock()
		return ErrInvalidState
	case s.playing:
		s.mu.Unlock()
		return ErrMoveInFlight
	}
	if s.state == game.StateOngoing {
		log.Info().Str("gameId", s.id).Msg("abandoning ongoing game")
		s.clearRecordLocked(ctx)
	}
	s.gen++
	s.id = ""
	s.params = &params
	s.board = game.NewBoard(params.Width, params.Height)
	s.state = game.StateConfigured
	s.timer.Clear()
	s.mu.Unlock()

	log.Debug().Int("width", params.Width).Int("height", params.Height).Int("bombs", params.NumberOfBombs).Msg("configured")
	s.notify()
	return nil
}

// ToggleFlag flips the local flag on a covered cell. Revealed cells are left
// alone. The resume record is rewritten once the game exists on the server.
func (s *Session) ToggleFlag(ctx context.Context, col, row int) error {
	pos := game.Coord{Col: col, Row: row}
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	if s.state != game.StateConfigured && s.state != game.StateOngoing {
		s.mu.Unlock()
		return ErrNotPlayable
	}
	if !s.board.Contains(pos) {
		s.mu.Unlock()
		return ErrOutOfBounds
	}
	toggled := s.board.ToggleFlag(pos)
	if toggled {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	if toggled {
		s.notify()
	}
	return nil
}

// Reset returns to "none" from any state and erases the resume record, including
// one kept after a failed resume. A move still in flight is orphaned: its result
// is discarded when it arrives.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	s.clearRecordLocked(context.WithoutCancel(ctx))
	s.gen++
	s.id = ""
	s.params = nil
	s.board = nil
	s.playing = false
	s.state = game.StateNone
	s.timer.Clear()
	s.mu.Unlock()

	log.Debug().Msg("reset")
	s.notify()
}

// Subscribe registers o and returns a function that unregisters it.
func (s *Session) Subscribe(o Observer) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// View returns a snapshot for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Close stops the timer.
func (s *Session) Close() {
	s.timer.Stop()
}

// notify delivers the current view to every observer.
func (s *Session) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	v, obs := s.viewLocked(), s.observerList()
	s.mu.Unlock()
	deliver(obs, v)
}

// onTick runs on the timer goroutine. Ticks that arrive after the game left
// "ongoing" are dropped under mu, so observers never see one after teardown.
func (s *Session) onTick(string) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.state != game.StateOngoing || !s.timer.Running() {
		s.mu.Unlock()
		return
	}
	v, obs := s.viewLocked(), s.observerList()
	s.mu.Unlock()
	deliver(obs, v)
}

func (s *Session) observerList() []Observer {
	out := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		out = append(out, o)
	}
	return out
}

func deliver(obs []Observer, v View) {
	for _, o := range obs {
		o.Notify(v)
	}
}
