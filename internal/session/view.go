package session

import (
	"github.com/MediaComem/minesweeper/internal/game"
	"github.com/MediaComem/minesweeper/internal/timer"
)

// View is what the rendering boundary draws: Height rows of Width cells, the
// remaining-bombs counter, the lifecycle state and the formatted elapsed time.
type View struct {
	ID             string        `json:"id,omitempty"`
	State          game.State    `json:"state"`
	Params         *game.Params  `json:"params,omitempty"`
	Board          [][]game.Cell `json:"board"`
	RemainingBombs int           `json:"remainingBombs"`
	ElapsedTime    string        `json:"elapsedTime"`
	Playing        bool          `json:"playing"`
}

// Cell returns the cell at the 1-based position, or false when off the board.
func (v View) Cell(col, row int) (game.Cell, bool) {
	if row < 1 || row > len(v.Board) || col < 1 || col > len(v.Board[row-1]) {
		return game.Cell{}, false
	}
	return v.Board[row-1][col-1], true
}

func (s *Session) viewLocked() View {
	v := View{
		ID:          s.id,
		State:       s.state,
		Board:       [][]game.Cell{},
		ElapsedTime: timer.Zero,
		Playing:     s.playing,
	}
	if s.params != nil {
		p := *s.params
		v.Params = &p
	}
	if s.board != nil {
		v.Board = s.board.Rows()
		if s.params != nil {
			v.RemainingBombs = s.board.RemainingBombs(s.params.NumberOfBombs)
		}
	}
	if s.state != game.StateConfigured {
		v.ElapsedTime = s.timer.Elapsed()
	}
	return v
}
