// Package pattern implements boolean grids and exact 2D pattern matching.
//
// A Grid is a rectangular matrix of cells, true meaning filled. FindMatches
// scans every alignment of a pattern inside a search grid and reports the
// top-left corner of each exact match in row-major order.
package pattern

import (
	"errors"
	"strings"
)

var (
	// ErrJagged is returned when a grid's rows do not all have the same length.
	ErrJagged = errors.New("pattern: grid rows have different lengths")

	// ErrOutOfRange is returned when a cell coordinate lies outside the grid.
	ErrOutOfRange = errors.New("pattern: cell out of range")

	// ErrBadCell is returned by Parse for a rune that is not a known cell symbol.
	ErrBadCell = errors.New("pattern: unknown cell symbol")

	// ErrUnknownShape is returned by ParseShape for an unknown preset name.
	ErrUnknownShape = errors.New("pattern: unknown shape")
)

const (
	filledSymbol = "■"
	emptySymbol  = "□"
	emptyGrid    = "[Empty Grid]"
)

// Grid is a rectangular matrix of boolean cells indexed as g[row][col].
type Grid [][]bool

// Size is the dimensions of a grid.
type Size struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Position is the zero-based top-left anchor of a match.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NewGrid returns a rows x cols grid with every cell empty. Each row has its
// own backing array. Negative dimensions are treated as zero.
func NewGrid(rows, cols int) Grid {
	rows, cols = max(rows, 0), max(cols, 0)
	g := make(Grid, rows)
	for i := range g {
		g[i] = make([]bool, cols)
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Cols returns the length of the first row, or 0 for a grid without rows.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Size returns the grid dimensions.
func (g Grid) Size() Size { return Size{Rows: g.Rows(), Cols: g.Cols()} }

// Empty reports whether the grid has no cells at all.
func (g Grid) Empty() bool { return g.Rows() == 0 || g.Cols() == 0 }

// IsBlank reports whether no cell is filled. Empty grids are blank.
func (g Grid) IsBlank() bool {
	for _, row := range g {
		for _, cell := range row {
			if cell {
				return false
			}
		}
	}
	return true
}

// Filled counts the filled cells.
func (g Grid) Filled() int {
	n := 0
	for _, row := range g {
		for _, cell := range row {
			if cell {
				n++
			}
		}
	}
	return n
}

// Validate returns ErrJagged unless every row has the same length.
func (g Grid) Validate() error {
	cols := g.Cols()
	for _, row := range g {
		if len(row) != cols {
			return ErrJagged
		}
	}
	return nil
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	cp := make(Grid, len(g))
	for i, row := range g {
		cp[i] = make([]bool, len(row))
		copy(cp[i], row)
	}
	return cp
}

// InBounds reports whether (row, col) addresses a cell of g.
func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < len(g) && col >= 0 && col < len(g[row])
}

// Toggle flips a single cell.
func (g Grid) Toggle(row, col int) error {
	if !g.InBounds(row, col) {
		return ErrOutOfRange
	}
	g[row][col] = !g[row][col]
	return nil
}

// String renders one line per row, cells as ■ or □ separated by spaces.
func (g Grid) String() string {
	if g.Empty() {
		return emptyGrid
	}
	var b strings.Builder
	for i, row := range g {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			if cell {
				b.WriteString(filledSymbol)
			} else {
				b.WriteString(emptySymbol)
			}
		}
	}
	return b.String()
}

// Parse reads a grid from text, one row per non-blank line. Filled cells are
// written as '#', '1', 'X', 'x' or '■'; empty cells as '.', '0', '_' or '□'.
// Spaces and tabs are ignored, so the output of String parses back.
func Parse(text string) (Grid, error) {
	var g Grid
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		var row []bool
		for _, r := range line {
			switch r {
			case ' ', '\t':
			case '#', '1', 'X', 'x', '■':
				row = append(row, true)
			case '.', '0', '_', '□':
				row = append(row, false)
			default:
				return nil, ErrBadCell
			}
		}
		g = append(g, row)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
