// internal/session/play.go
//
// Move submission.
//   - Play is the only entry point; it dispatches to start (first move, creates
//     the game) or uncover (later moves).
//   - The move gate admits one outstanding move. A click while a move is pending
//     is dropped, never queued.
//   - The gate is released by a deferred call, so errors, timeouts and panics
//     all reopen it.
//   - A submitted move is bounded by the move timeout only. Cancelling the
//     caller's context does not abort it, since the server may already have
//     applied it.
package session

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/MediaComem/minesweeper/internal/api"
	"github.com/MediaComem/minesweeper/internal/game"
)

// Play uncovers (col,row). It returns ErrMoveInFlight without contacting the
// server when a move is already pending, ErrNotPlayable outside the configured
// and ongoing states, and *MoveFailedError when the server call fails.
func (s *Session) Play(ctx context.Context, col, row int) error {
	pos := game.Coord{Col: col, Row: row}

	s.mu.Lock()
	if s.playing {
		s.mu.Unlock()
		log.Debug().Int("col", col).Int("row", row).Msg("move dropped: another move in flight")
		return ErrMoveInFlight
	}
	if s.state != game.StateConfigured && s.state != game.StateOngoing {
		s.mu.Unlock()
		return ErrNotPlayable
	}
	cell, ok := s.board.Cell(pos)
	if !ok {
		s.mu.Unlock()
		return ErrOutOfBounds
	}
	if cell.Value != game.Unknown {
		s.mu.Unlock()
		return ErrAlreadyRevealed
	}
	s.playing = true
	gen, state, id, params := s.gen, s.state, s.id, *s.params
	s.mu.Unlock()

	s.notify()
	defer s.release(gen)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.moveTimeout)
	defer cancel()

	if state == game.StateConfigured {
		return s.start(ctx, gen, params, pos)
	}
	return s.uncover(ctx, gen, id, pos)
}

// release reopens the gate for gen. A reset in the meantime already reopened it
// for a newer game, which must not be touched.
func (s *Session) release(gen uint64) {
	s.mu.Lock()
	if s.gen == gen {
		s.playing = false
	}
	s.mu.Unlock()
	s.notify()
}

// start creates the game on the server with the first move.
func (s *Session) start(ctx context.Context, gen uint64, params game.Params, pos game.Coord) error {
	res, err := s.api.CreateGame(ctx, api.CreateGameRequest{Params: params, FirstMove: pos})
	if err != nil {
		log.Warn().Err(err).Stringer("pos", pos).Msg("create game failed")
		return &MoveFailedError{Op: "start", Pos: pos, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		log.Info().Str("gameId", res.ID).Msg("discarding created game: abandoned")
		return ErrAbandoned
	}

	s.id = res.ID
	s.state = game.StateOngoing
	if res.State != "" {
		s.state = res.State
	}
	for _, m := range res.Moves {
		s.merge(m.Uncovered)
	}
	s.timer.Start(s.clock.Now())
	log.Info().Str("gameId", s.id).Str("state", string(s.state)).Msg("game started")

	persistCtx := context.WithoutCancel(ctx)
	if s.state.Terminal() {
		s.finishLocked(persistCtx)
	} else {
		s.persistLocked(persistCtx)
	}
	return nil
}

// uncover submits a move against the current game.
func (s *Session) uncover(ctx context.Context, gen uint64, id string, pos game.Coord) error {
	res, err := s.api.SubmitMove(ctx, id, pos)
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Stringer("pos", pos).Msg("move failed")
		return &MoveFailedError{Op: "uncover", Pos: pos, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		log.Info().Str("gameId", id).Msg("discarding move result: abandoned")
		return ErrAbandoned
	}

	s.merge(res.Uncovered)
	if res.Game.Bombs != nil {
		s.board.RevealBombs(res.Game.Bombs)
	}
	s.state = res.Game.State
	if s.state.Terminal() {
		s.finishLocked(context.WithoutCancel(ctx))
	}
	return nil
}

func (s *Session) merge(uncovered []game.Reveal) {
	if skipped := s.board.Reveal(uncovered); skipped > 0 {
		log.Warn().Str("gameId", s.id).Int("skipped", skipped).Msg("reveals outside the board ignored")
	}
}

// finishLocked tears down a game that reached won or lost: the timer stops and
// there is nothing left to resume.
func (s *Session) finishLocked(ctx context.Context) {
	s.timer.Stop()
	s.clearRecordLocked(ctx)
	log.Info().Str("gameId", s.id).Str("state", string(s.state)).Str("elapsed", s.timer.Elapsed()).Msg("game over")
}
