package pattern

import "fmt"

// Shape names a preset cluster of cells stamped around a centre cell.
type Shape string

const (
	ShapeSquare    Shape = "square"    // 3x3 block
	ShapeRectangle Shape = "rectangle" // 2x3 block, centre on the bottom row
	ShapeLine      Shape = "line"      // horizontal run of 3
	ShapeCross     Shape = "cross"     // plus sign
)

type offset struct{ dRow, dCol int }

var shapeOffsets = map[Shape][]offset{
	ShapeSquare: {
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 0}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	},
	ShapeRectangle: {
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 0}, {0, 1},
	},
	ShapeLine: {
		{0, -1}, {0, 0}, {0, 1},
	},
	ShapeCross: {
		{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {0, 1},
	},
}

// Shapes lists the presets in display order.
func Shapes() []Shape {
	return []Shape{ShapeSquare, ShapeRectangle, ShapeLine, ShapeCross}
}

// ParseShape maps a preset name to its Shape.
func ParseShape(name string) (Shape, error) {
	s := Shape(name)
	if _, ok := shapeOffsets[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
	return s, nil
}

// Stamp fills the cells of shape centred on center. Offsets falling outside
// the grid are dropped. It returns the number of cells that lay in bounds.
func Stamp(g Grid, shape Shape, center Position) (int, error) {
	offsets, ok := shapeOffsets[shape]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}
	n := 0
	for _, o := range offsets {
		r, c := center.Row+o.dRow, center.Col+o.dCol
		if g.InBounds(r, c) {
			g[r][c] = true
			n++
		}
	}
	return n, nil
}
