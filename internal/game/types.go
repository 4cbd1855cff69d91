// internal/game/types.go
//
// Core type definitions for the client-side minesweeper model.
// Defines:
//   - Params: board configuration sent when a game is created.
//   - State: lifecycle of a game as seen by the client.
//   - Value / Cell: the partial, revealed view of a single square.
//   - Coord / Reveal: 1-based wire coordinates and reveal payloads.

package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Params is the game configuration. It is fixed once a board is configured.
type Params struct {
	Width         int `json:"width"`
	Height        int `json:"height"`
	NumberOfBombs int `json:"number_of_bombs"`
}

// Validate checks that the dimensions describe a usable board.
func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", p.Width, p.Height)
	}
	if p.NumberOfBombs < 0 {
		return fmt.Errorf("invalid number of bombs %d", p.NumberOfBombs)
	}
	return nil
}

// State is the client lifecycle state of a game.
// Possible values:
//   - "none":       nothing configured yet.
//   - "loading":    a persisted game is being resumed.
//   - "configured": board allocated, waiting for the first move.
//   - "ongoing":    the server holds a live game.
//   - "won"/"lost": terminal outcomes reported by the server.
type State string

const (
	StateNone       State = "none"
	StateLoading    State = "loading"
	StateConfigured State = "configured"
	StateOngoing    State = "ongoing"
	StateWon        State = "won"
	StateLost       State = "lost"
)

// Terminal reports whether no further move can be made.
func (s State) Terminal() bool { return s == StateWon || s == StateLost }

// ParseWireState accepts the states the game API may report for a game.
func ParseWireState(s string) (State, error) {
	switch st := State(s); st {
	case StateOngoing, StateWon, StateLost:
		return st, nil
	}
	return "", fmt.Errorf("unknown game state %q", s)
}

// Value is what the client knows about a square.
// Unknown (-1) means covered; Bomb marks a revealed bomb; anything >= 0 is the
// number of adjacent bombs as reported by the server.
type Value int

const (
	Unknown Value = -1
	Bomb    Value = -2
)

// bombSymbol is the JSON form of Bomb.
const bombSymbol = "*"

// MarshalJSON encodes Bomb as "*" and every other value as a number.
func (v Value) MarshalJSON() ([]byte, error) {
	if v == Bomb {
		return []byte(`"` + bombSymbol + `"`), nil
	}
	return []byte(strconv.Itoa(int(v))), nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != bombSymbol {
			return fmt.Errorf("invalid cell value %q", s)
		}
		*v = Bomb
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid cell value %s", b)
	}
	if n < int(Unknown) {
		return fmt.Errorf("invalid cell value %d", n)
	}
	*v = Value(n)
	return nil
}

// Cell is one square of the client board.
// Flagged can only be true while Value is Unknown.
type Cell struct {
	Value   Value `json:"value"`
	Flagged bool  `json:"flagged"`
}

// Coord is a 1-based board position, encoded as [col,row] on the wire.
type Coord struct {
	Col int
	Row int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Col, c.Row) }

// MarshalJSON encodes the coordinate as a two-element array.
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Col, c.Row})
}

// UnmarshalJSON decodes [col,row] and rejects anything that is not a pair of
// positive integers.
func (c *Coord) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("invalid position %s: %w", b, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("invalid position %s: want [col,row]", b)
	}
	if pair[0] < 1 || pair[1] < 1 {
		return fmt.Errorf("invalid position %s: coordinates are 1-based", b)
	}
	c.Col, c.Row = pair[0], pair[1]
	return nil
}

// Reveal is one ([col,row], value) pair from a move result.
type Reveal struct {
	Pos   Coord
	Value Value
}

// MarshalJSON encodes the reveal as [[col,row], value].
func (r Reveal) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Pos, r.Value})
}

// UnmarshalJSON decodes [[col,row], value]. Revealed values are adjacency
// counts, so only non-negative numbers are accepted.
func (r *Reveal) UnmarshalJSON(b []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return fmt.Errorf("invalid reveal %s: %w", b, err)
	}
	if len(parts) != 2 {
		return fmt.Errorf("invalid reveal %s: want [[col,row], value]", b)
	}
	if err := json.Unmarshal(parts[0], &r.Pos); err != nil {
		return err
	}
	var n int
	if err := json.Unmarshal(parts[1], &n); err != nil {
		return fmt.Errorf("invalid reveal value %s", parts[1])
	}
	if n < 0 {
		return fmt.Errorf("invalid reveal value %d", n)
	}
	r.Value = Value(n)
	return nil
}

// ErrOutOfBounds is returned for coordinates outside the configured board.
var ErrOutOfBounds = errors.New("position out of bounds")
