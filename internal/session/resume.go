// internal/session/resume.go
//
// Persistence bridge.
// The resume record {gameId, flagged} is a hint, not a source of truth: board
// values are never stored. On resume the board is rebuilt from the server's
// move history and only the local-only flags come from the record.
//
// Dimensions always come from the server on resume, never from the record, so
// persisted flags are re-checked against the rebuilt board (flags on revealed or
// off-board cells are dropped).
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/MediaComem/minesweeper/internal/api"
	"github.com/MediaComem/minesweeper/internal/game"
	"github.com/MediaComem/minesweeper/internal/store"
)

// RecordKey is the store key of the resume record.
const RecordKey = "minesweeper"

// Record is the persisted resume hint.
type Record struct {
	GameID  string       `json:"gameId"`
	Flagged []game.Coord `json:"flagged"`
}

// Resume picks up the game named by the persisted record, if any.
// It must be called while the session is in "none" (normally right after New).
//
//   - no record:                         stays "none"
//   - fetch fails:                       back to "none", record kept for a later attempt
//   - game unknown or no longer ongoing: back to "none", record erased
//   - game ongoing:                      board rebuilt, flags restored, timer running
//     from the server's creation time
//
// Failures are logged; the returned error is only ErrInvalidState or ErrAbandoned.
func (s *Session) Resume(ctx context.Context) error {
	rec, loadErr := s.loadRecord(ctx)

	s.mu.Lock()
	if s.state != game.StateNone {
		s.mu.Unlock()
		return ErrInvalidState
	}
	if loadErr != nil {
		if !errors.Is(loadErr, store.ErrNotFound) {
			log.Warn().Err(loadErr).Msg("unreadable resume record, discarding")
			s.clearRecordLocked(context.WithoutCancel(ctx))
		}
		s.mu.Unlock()
		return nil
	}
	s.state = game.StateLoading
	s.id = rec.GameID
	gen := s.gen
	s.mu.Unlock()
	s.notify()

	log.Info().Str("gameId", rec.GameID).Int("flags", len(rec.Flagged)).Msg("resuming game")
	fetchCtx, cancel := context.WithTimeout(ctx, s.moveTimeout)
	g, err := s.api.FetchGame(fetchCtx, rec.GameID)
	cancel()

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return ErrAbandoned
	}
	s.restoreLocked(context.WithoutCancel(ctx), rec, g, err)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Session) restoreLocked(ctx context.Context, rec *Record, g *api.GameRecord, err error) {
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.NotFound() {
			log.Info().Str("gameId", rec.GameID).Msg("resumed game no longer exists")
			s.clearRecordLocked(ctx)
		} else {
			log.Warn().Err(err).Str("gameId", rec.GameID).Msg("resume failed")
		}
		s.id = ""
		s.state = game.StateNone
		return
	}
	if g.State != game.StateOngoing {
		log.Info().Str("gameId", rec.GameID).Str("state", string(g.State)).Msg("resumed game is over, discarding")
		s.clearRecordLocked(ctx)
		s.id = ""
		s.state = game.StateNone
		return
	}

	params := g.Params
	s.params = &params
	s.board = game.NewBoard(params.Width, params.Height)
	s.merge(g.Reveals())
	applied := s.board.ApplyFlags(rec.Flagged)
	s.state = game.StateOngoing
	s.timer.Start(g.CreatedAt)
	if applied != len(rec.Flagged) {
		s.persistLocked(ctx)
	}
	log.Info().
		Str("gameId", s.id).
		Int("revealed", s.board.Revealed()).
		Int("flags", applied).
		Str("elapsed", s.timer.Elapsed()).
		Msg("game resumed")
}

func (s *Session) loadRecord(ctx context.Context) (*Record, error) {
	raw, err := s.kv.Get(ctx, RecordKey)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode resume record: %w", err)
	}
	if rec.GameID == "" {
		return nil, fmt.Errorf("decode resume record: missing gameId")
	}
	return &rec, nil
}

// persistLocked overwrites the record with the current game id and flags.
// Write failures are logged; the record is only a resume hint.
func (s *Session) persistLocked(ctx context.Context) {
	if s.id == "" {
		return
	}
	raw, err := json.Marshal(Record{GameID: s.id, Flagged: s.board.Flagged()})
	if err != nil {
		log.Error().Err(err).Msg("encode resume record")
		return
	}
	if err := s.kv.Put(ctx, RecordKey, raw); err != nil {
		log.Warn().Err(err).Str("gameId", s.id).Msg("persist resume record")
	}
}

func (s *Session) clearRecordLocked(ctx context.Context) {
	if err := s.kv.Delete(ctx, RecordKey); err != nil {
		log.Warn().Err(err).Msg("erase resume record")
	}
}
