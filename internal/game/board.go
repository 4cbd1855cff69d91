// internal/game/board.go
//
// Board merge engine.
// Responsibilities:
//   - Allocate an all-unknown grid of the configured dimensions.
//   - Merge server-reported reveals and bomb locations onto the grid.
//   - Toggle local flags on covered squares only.
//   - Derive the flagged coordinate list and the remaining-bombs counter.
//
// Notes:
//   - Wire coordinates are 1-based [col,row]; Cells is 0-based [row][col].
//     at() is the only place the two are converted.
//   - Nothing here knows about the network or the timer.
package game

import (
	"strconv"
	"strings"
)

// Board is the client's partial view of the game grid.
type Board struct {
	Width  int
	Height int
	Cells  [][]Cell // Height rows of Width cells
}

// NewBoard returns a width x height board with every cell covered and unflagged.
func NewBoard(width, height int) *Board {
	cells := make([][]Cell, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]Cell, width)
		for x := range cells[y] {
			cells[y][x] = Cell{Value: Unknown}
		}
	}
	return &Board{Width: width, Height: height, Cells: cells}
}

// Contains reports whether the 1-based position lies on the board.
func (b *Board) Contains(p Coord) bool {
	return p.Col >= 1 && p.Col <= b.Width && p.Row >= 1 && p.Row <= b.Height
}

// at returns the cell for a 1-based position, or nil if it is off the board.
func (b *Board) at(p Coord) *Cell {
	if !b.Contains(p) {
		return nil
	}
	return &b.Cells[p.Row-1][p.Col-1]
}

// Cell returns a copy of the cell at p.
func (b *Board) Cell(p Coord) (Cell, bool) {
	c := b.at(p)
	if c == nil {
		return Cell{}, false
	}
	return *c, true
}

// Reveal overwrites every listed cell with its revealed value, clearing any flag.
// Applying the same list twice leaves the board unchanged.
// It returns how many entries were skipped because they fall off the board.
func (b *Board) Reveal(uncovered []Reveal) int {
	skipped := 0
	for _, r := range uncovered {
		c := b.at(r.Pos)
		if c == nil {
			skipped++
			continue
		}
		*c = Cell{Value: r.Value}
	}
	return skipped
}

// RevealBombs paints every listed position as a bomb regardless of its prior value.
func (b *Board) RevealBombs(bombs []Coord) int {
	skipped := 0
	for _, p := range bombs {
		c := b.at(p)
		if c == nil {
			skipped++
			continue
		}
		*c = Cell{Value: Bomb}
	}
	return skipped
}

// ToggleFlag flips the flag of a covered cell.
// Revealed cells are left untouched; the return value says whether anything changed.
func (b *Board) ToggleFlag(p Coord) bool {
	c := b.at(p)
	if c == nil || c.Value != Unknown {
		return false
	}
	c.Flagged = !c.Flagged
	return true
}

// ApplyFlags sets the flag on each listed cell that is still covered.
// Flags pointing at revealed or off-board cells are dropped.
func (b *Board) ApplyFlags(flags []Coord) (applied int) {
	for _, p := range flags {
		c := b.at(p)
		if c == nil || c.Value != Unknown {
			continue
		}
		c.Flagged = true
		applied++
	}
	return applied
}

// Flagged lists the flagged positions in row-major order.
func (b *Board) Flagged() []Coord {
	out := []Coord{}
	for y, row := range b.Cells {
		for x, c := range row {
			if c.Flagged {
				out = append(out, Coord{Col: x + 1, Row: y + 1})
			}
		}
	}
	return out
}

// FlagCount counts flagged cells.
func (b *Board) FlagCount() int {
	n := 0
	for _, row := range b.Cells {
		for _, c := range row {
			if c.Flagged {
				n++
			}
		}
	}
	return n
}

// RemainingBombs is total minus the current number of flags.
// Over-flagging makes it negative.
func (b *Board) RemainingBombs(total int) int {
	return total - b.FlagCount()
}

// Revealed counts cells whose value is known.
func (b *Board) Revealed() int {
	n := 0
	for _, row := range b.Cells {
		for _, c := range row {
			if c.Value != Unknown {
				n++
			}
		}
	}
	return n
}

// Rows returns a deep copy of the grid, suitable for handing to a renderer.
func (b *Board) Rows() [][]Cell {
	out := make([][]Cell, len(b.Cells))
	for y, row := range b.Cells {
		out[y] = append([]Cell(nil), row...)
	}
	return out
}

// String renders the board for logs and debugging:
// "-" covered, "F" flagged, "*" bomb, "." zero, digits otherwise.
func (b *Board) String() string {
	var sb strings.Builder
	for _, row := range b.Cells {
		for x, c := range row {
			if x > 0 {
				sb.WriteByte(' ')
			}
			switch {
			case c.Flagged:
				sb.WriteByte('F')
			case c.Value == Unknown:
				sb.WriteByte('-')
			case c.Value == Bomb:
				sb.WriteByte('*')
			case c.Value == 0:
				sb.WriteByte('.')
			default:
				sb.WriteString(strconv.Itoa(int(c.Value)))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
