// internal/api/types.go
//
// Wire payloads for the game API, one type per endpoint, plus the checks
// applied to every response before it reaches the session.
//
//   POST /api/games             CreateGameRequest -> CreatedGame
//   POST /api/games/{id}/moves  moveRequest       -> MoveResult
//   GET  /api/games/{id}                          -> GameRecord

package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MediaComem/minesweeper/internal/game"
)

// CreateGameRequest is the body of POST /api/games.
type CreateGameRequest struct {
	game.Params
	FirstMove game.Coord `json:"first_move"`
}

// Move is one entry of a game's move history.
type Move struct {
	Uncovered []game.Reveal `json:"uncovered"`
}

// CreatedGame is the response of POST /api/games.
// State is not always sent by the server; it is empty when absent.
type CreatedGame struct {
	ID    string     `json:"id"`
	Moves []Move     `json:"moves"`
	State game.State `json:"state,omitempty"`
}

func (g *CreatedGame) validate() error {
	if g.ID == "" {
		return fmt.Errorf("missing id")
	}
	if len(g.Moves) == 0 {
		return fmt.Errorf("missing first move")
	}
	if g.State != "" {
		if _, err := game.ParseWireState(string(g.State)); err != nil {
			return err
		}
	}
	return nil
}

type moveRequest struct {
	Position game.Coord `json:"position"`
}

// MoveOutcome is the "game" object of a move result.
type MoveOutcome struct {
	Bombs []game.Coord `json:"bombs"`
	State game.State   `json:"state"`
}

// MoveResult is the response of POST /api/games/{id}/moves.
// Uncovered and Game.Bombs may be null.
type MoveResult struct {
	Uncovered []game.Reveal `json:"uncovered"`
	Game      *MoveOutcome  `json:"game"`
}

func (m *MoveResult) validate() error {
	if m.Game == nil {
		return fmt.Errorf("missing game")
	}
	if _, err := game.ParseWireState(string(m.Game.State)); err != nil {
		return err
	}
	return nil
}

// GameRecord is the response of GET /api/games/{id}.
type GameRecord struct {
	ID        string     `json:"id,omitempty"`
	State     game.State `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	Moves     []Move     `json:"moves"`
	game.Params
}

// naiveLayout is created_at without a zone offset, read as UTC.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// UnmarshalJSON accepts created_at in RFC 3339 or without an offset.
func (r *GameRecord) UnmarshalJSON(b []byte) error {
	type plain GameRecord
	aux := struct {
		*plain
		CreatedAt string `json:"created_at"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.CreatedAt = time.Time{}
	if aux.CreatedAt == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, aux.CreatedAt)
	if err != nil {
		if t, err = time.ParseInLocation(naiveLayout, aux.CreatedAt, time.UTC); err != nil {
			return fmt.Errorf("created_at %q: not a timestamp", aux.CreatedAt)
		}
	}
	r.CreatedAt = t
	return nil
}

func (r *GameRecord) validate() error {
	if _, err := game.ParseWireState(string(r.State)); err != nil {
		return err
	}
	if err := r.Params.Validate(); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("missing created_at")
	}
	return nil
}

// Reveals flattens the reveals of every move, in order.
func (r *GameRecord) Reveals() []game.Reveal {
	var out []game.Reveal
	for _, m := range r.Moves {
		out = append(out, m.Uncovered...)
	}
	return out
}

// decodeValid decodes body into v and runs v's checks.
func decodeValid(endpoint string, body []byte, v interface{ validate() error }) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Reason: err.Error()}
	}
	if err := v.validate(); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Reason: err.Error()}
	}
	return nil
}
