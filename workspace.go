package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bodul/patternfind/pattern"
)

var (
	ErrUnknownGrid  = errors.New("unknown grid, expected pattern or search")
	ErrBadSize      = errors.New("grid size out of range")
	ErrSizeMismatch = errors.New("grid does not match workspace size")
	ErrBlankPattern = errors.New("pattern has no filled cell")
)

// GridKind selects one of the two grids of a workspace.
type GridKind string

const (
	PatternGrid GridKind = "pattern"
	SearchGrid  GridKind = "search"
)

// ParseGridKind validates a grid name taken from a URL.
func ParseGridKind(s string) (GridKind, error) {
	switch k := GridKind(s); k {
	case PatternGrid, SearchGrid:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGrid, s)
}

// SizeLimits bounds the side length of workspace grids.
type SizeLimits struct {
	Min, Max int
}

// Check returns ErrBadSize unless both dimensions are within the limits.
func (l SizeLimits) Check(s pattern.Size) error {
	if s.Rows < l.Min || s.Rows > l.Max || s.Cols < l.Min || s.Cols > l.Max {
		return fmt.Errorf("%w: %dx%d not in [%d, %d]", ErrBadSize, s.Rows, s.Cols, l.Min, l.Max)
	}
	return nil
}

// Workspace is a pattern grid and a search grid edited together, with the
// result of the last search. Its state is only readable through Snapshot.
type Workspace struct {
	id        string
	createdAt time.Time

	mu        sync.Mutex
	pattern   pattern.Grid
	search    pattern.Grid
	matches   []pattern.Position
	searched  bool
	updatedAt time.Time
}

// WorkspaceView is an immutable copy of a workspace.
type WorkspaceView struct {
	ID          string             `json:"id"`
	Pattern     pattern.Grid       `json:"pattern"`
	Search      pattern.Grid       `json:"search"`
	PatternSize pattern.Size       `json:"pattern_size"`
	SearchSize  pattern.Size       `json:"search_size"`
	Matches     []pattern.Position `json:"matches"`
	Searched    bool               `json:"searched"`
	CanSearch   bool               `json:"can_search"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func newWorkspace(id string, patternSize, searchSize pattern.Size) *Workspace {
	now := time.Now()
	return &Workspace{
		id:        id,
		createdAt: now,
		pattern:   pattern.NewGrid(patternSize.Rows, patternSize.Cols),
		search:    pattern.NewGrid(searchSize.Rows, searchSize.Cols),
		matches:   []pattern.Position{},
		updatedAt: now,
	}
}

// ID never changes after creation.
func (w *Workspace) ID() string { return w.id }

func (w *Workspace) grid(kind GridKind) *pattern.Grid {
	if kind == PatternGrid {
		return &w.pattern
	}
	return &w.search
}

// touch records an edit. Any edit invalidates the previous search.
func (w *Workspace) touch() {
	w.matches = []pattern.Position{}
	w.searched = false
	w.updatedAt = time.Now()
}

// Resize replaces a grid with an empty one of the new size.
func (w *Workspace) Resize(kind GridKind, size pattern.Size) {
	w.mu.Lock()
	defer w.mu.Unlock()

	*w.grid(kind) = pattern.NewGrid(size.Rows, size.Cols)
	w.touch()
}

// Toggle flips one cell of a grid.
func (w *Workspace) Toggle(kind GridKind, row, col int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.grid(kind).Toggle(row, col); err != nil {
		return err
	}
	w.touch()
	return nil
}

// Stamp clears a grid and draws a preset shape centred on (row, col).
func (w *Workspace) Stamp(kind GridKind, shape pattern.Shape, row, col int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	g := w.grid(kind)
	if !g.InBounds(row, col) {
		return pattern.ErrOutOfRange
	}
	fresh := pattern.NewGrid(g.Rows(), g.Cols())
	if _, err := pattern.Stamp(fresh, shape, pattern.Position{Row: row, Col: col}); err != nil {
		return err
	}
	*g = fresh
	w.touch()
	return nil
}

// SetGrid replaces the cells of a grid. The new grid must be rectangular and
// keep the current dimensions.
func (w *Workspace) SetGrid(kind GridKind, cells pattern.Grid) error {
	if err := cells.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	g := w.grid(kind)
	if cells.Size() != g.Size() {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrSizeMismatch,
			cells.Rows(), cells.Cols(), g.Rows(), g.Cols())
	}
	*g = cells.Clone()
	w.touch()
	return nil
}

// RunSearch runs the matcher on the current grids and stores the result.
func (w *Workspace) RunSearch() ([]pattern.Position, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pattern.IsBlank() {
		return nil, ErrBlankPattern
	}
	w.matches = pattern.FindMatches(w.pattern, w.search)
	w.searched = true
	w.updatedAt = time.Now()
	return append([]pattern.Position{}, w.matches...), nil
}

// Reset empties both grids and clears the last search.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pattern = pattern.NewGrid(w.pattern.Rows(), w.pattern.Cols())
	w.search = pattern.NewGrid(w.search.Rows(), w.search.Cols())
	w.touch()
}

// Snapshot returns a deep copy of the workspace.
func (w *Workspace) Snapshot() WorkspaceView {
	w.mu.Lock()
	defer w.mu.Unlock()

	return WorkspaceView{
		ID:          w.id,
		Pattern:     w.pattern.Clone(),
		Search:      w.search.Clone(),
		PatternSize: w.pattern.Size(),
		SearchSize:  w.search.Size(),
		Matches:     append([]pattern.Position{}, w.matches...),
		Searched:    w.searched,
		CanSearch:   !w.pattern.IsBlank(),
		CreatedAt:   w.createdAt,
		UpdatedAt:   w.updatedAt,
	}
}
