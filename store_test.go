package main

import (
	"sync"
	"testing"
	"time"

	"github.com/bodul/patternfind/pattern"
)

var (
	size3 = pattern.Size{Rows: 3, Cols: 3}
	size8 = pattern.Size{Rows: 8, Cols: 8}
)

func TestCreateAndGetWorkspace(t *testing.T) {
	s := NewStore()
	ws := s.Create(size3, size8)

	if ws.ID() == "" {
		t.Fatal("expected workspace to have an ID")
	}
	if got := s.Get(ws.ID()); got != ws {
		t.Fatal("expected to find created workspace")
	}
	if got := s.Get("nonexistent"); got != nil {
		t.Fatal("expected nil for unknown ID")
	}

	view := ws.Snapshot()
	if view.PatternSize != size3 || view.SearchSize != size8 {
		t.Fatalf("unexpected sizes %v / %v", view.PatternSize, view.SearchSize)
	}
	if !view.Pattern.IsBlank() || !view.Search.IsBlank() {
		t.Fatal("new grids should be empty")
	}
	if view.CanSearch {
		t.Fatal("blank pattern should not be searchable")
	}
}

func TestListWorkspaces(t *testing.T) {
	s := NewStore()
	first := s.Create(size3, size8)
	time.Sleep(time.Millisecond)
	second := s.Create(size3, size8)

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 workspaces, got %d", len(list))
	}
	// Most recent first.
	if list[0] != second || list[1] != first {
		t.Fatal("expected workspaces sorted by descending creation time")
	}
}

func TestDeleteWorkspace(t *testing.T) {
	s := NewStore()
	ws := s.Create(size3, size8)

	if !s.Delete(ws.ID()) {
		t.Fatal("expected delete to succeed")
	}
	if s.Get(ws.ID()) != nil {
		t.Fatal("workspace still present after delete")
	}
	if s.Delete(ws.ID()) {
		t.Fatal("second delete should report false")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	ws := s.Create(size3, size8)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ws.Toggle(SearchGrid, i%8, i%8)
			ws.Snapshot()
			ws.RunSearch()
			s.Create(size3, size3)
			s.List()
		}(i)
	}
	wg.Wait()

	if len(s.List()) != 101 {
		t.Fatalf("expected 101 workspaces, got %d", len(s.List()))
	}
}
