package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/bodul/patternfind/pattern"
)

func TestParseGridKind(t *testing.T) {
	for _, name := range []string{"pattern", "search"} {
		if _, err := ParseGridKind(name); err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
	}
	if _, err := ParseGridKind("target"); !errors.Is(err, ErrUnknownGrid) {
		t.Fatalf("expected ErrUnknownGrid, got %v", err)
	}
}

func TestSizeLimits(t *testing.T) {
	l := SizeLimits{Min: 2, Max: 12}
	if err := l.Check(pattern.Size{Rows: 2, Cols: 12}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range []pattern.Size{{Rows: 1, Cols: 5}, {Rows: 5, Cols: 13}, {Rows: -1, Cols: 3}} {
		if err := l.Check(s); !errors.Is(err, ErrBadSize) {
			t.Fatalf("%v: expected ErrBadSize, got %v", s, err)
		}
	}
}

func TestWorkspaceSearchFlow(t *testing.T) {
	ws := newWorkspace("w", pattern.Size{Rows: 1, Cols: 1}, pattern.Size{Rows: 2, Cols: 2})

	if _, err := ws.RunSearch(); !errors.Is(err, ErrBlankPattern) {
		t.Fatalf("expected ErrBlankPattern, got %v", err)
	}

	ws.Toggle(PatternGrid, 0, 0)
	ws.Toggle(SearchGrid, 0, 0)
	ws.Toggle(SearchGrid, 1, 1)

	matches, err := ws.RunSearch()
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []pattern.Position{{Row: 0, Col: 0}, {Row: 1, Col: 1}}
	if len(matches) != len(want) || matches[0] != want[0] || matches[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, matches)
	}

	view := ws.Snapshot()
	if !view.Searched || len(view.Matches) != 2 {
		t.Fatal("search result should be stored")
	}

	// Editing invalidates the result.
	ws.Toggle(SearchGrid, 0, 1)
	view = ws.Snapshot()
	if view.Searched || len(view.Matches) != 0 {
		t.Fatal("edit should clear the previous search")
	}
}

func TestWorkspaceToggleOutOfRange(t *testing.T) {
	ws := newWorkspace("w", size3, size8)
	if err := ws.Toggle(PatternGrid, 3, 0); !errors.Is(err, pattern.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestWorkspaceResizeReinitialises(t *testing.T) {
	ws := newWorkspace("w", size3, size8)
	ws.Toggle(SearchGrid, 2, 2)

	ws.Resize(SearchGrid, pattern.Size{Rows: 4, Cols: 6})
	view := ws.Snapshot()
	if view.SearchSize != (pattern.Size{Rows: 4, Cols: 6}) {
		t.Fatalf("unexpected size %v", view.SearchSize)
	}
	if !view.Search.IsBlank() {
		t.Fatal("resized grid should be empty")
	}

	// Same dimensions still reinitialise.
	ws.Toggle(PatternGrid, 0, 0)
	ws.Resize(PatternGrid, size3)
	if !ws.Snapshot().Pattern.IsBlank() {
		t.Fatal("resize to the same size should clear the grid")
	}
}

func TestWorkspaceStampReplacesGrid(t *testing.T) {
	ws := newWorkspace("w", size3, size8)
	ws.Toggle(PatternGrid, 0, 0)

	if err := ws.Stamp(PatternGrid, pattern.ShapeCross, 1, 1); err != nil {
		t.Fatalf("stamp: %v", err)
	}
	got := ws.Snapshot().Pattern
	want := pattern.Grid{
		{false, true, false},
		{true, true, true},
		{false, true, false},
	}
	if got.String() != want.String() {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}

	if err := ws.Stamp(PatternGrid, pattern.ShapeLine, 5, 5); !errors.Is(err, pattern.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestWorkspaceSetGrid(t *testing.T) {
	ws := newWorkspace("w", pattern.Size{Rows: 2, Cols: 2}, size3)

	cells := pattern.Grid{{true, false}, {false, true}}
	if err := ws.SetGrid(PatternGrid, cells); err != nil {
		t.Fatalf("set grid: %v", err)
	}
	cells[0][0] = false
	if !ws.Snapshot().Pattern[0][0] {
		t.Fatal("workspace should keep its own copy")
	}

	if err := ws.SetGrid(PatternGrid, pattern.NewGrid(3, 2)); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
	if err := ws.SetGrid(PatternGrid, pattern.Grid{{true, true}, {true}}); !errors.Is(err, pattern.ErrJagged) {
		t.Fatalf("expected ErrJagged, got %v", err)
	}
}

func TestWorkspaceReset(t *testing.T) {
	ws := newWorkspace("w", size3, size8)
	ws.Toggle(PatternGrid, 1, 1)
	ws.Toggle(SearchGrid, 1, 1)
	ws.RunSearch()

	ws.Reset()
	view := ws.Snapshot()
	if !view.Pattern.IsBlank() || !view.Search.IsBlank() || view.Searched {
		t.Fatal("reset should clear grids and results")
	}
	if view.PatternSize != size3 || view.SearchSize != size8 {
		t.Fatal("reset should keep sizes")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	ws := newWorkspace("w", size3, size8)
	view := ws.Snapshot()
	view.Pattern[0][0] = true
	if ws.Snapshot().Pattern[0][0] {
		t.Fatal("Snapshot should return a copy, not a reference")
	}
}

func TestWorkspaceStateOnlyThroughSnapshot(t *testing.T) {
	ws := newWorkspace("w", size3, size8)
	ws.Toggle(PatternGrid, 0, 0)

	// Encoding the workspace itself exposes nothing unguarded.
	raw, err := json.Marshal(ws)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "{}" {
		t.Fatalf("expected no exported state, got %s", raw)
	}

	view := ws.Snapshot()
	if view.ID != ws.ID() || !view.Pattern[0][0] || !view.CanSearch {
		t.Fatalf("unexpected snapshot %+v", view)
	}
}
