package main

import (
	"slices"
	"sync"

	"github.com/bodul/patternfind/pattern"
	"github.com/google/uuid"
)

// Store holds all workspaces in memory.
type Store struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		workspaces: make(map[string]*Workspace),
	}
}

// Create registers a new workspace with empty grids of the given sizes.
func (s *Store) Create(patternSize, searchSize pattern.Size) *Workspace {
	w := newWorkspace(uuid.NewString(), patternSize, searchSize)

	s.mu.Lock()
	s.workspaces[w.id] = w
	s.mu.Unlock()

	return w
}

// Get returns a workspace by ID, or nil if not found.
func (s *Store) Get(id string) *Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaces[id]
}

// Delete removes a workspace. It reports whether the workspace existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workspaces[id]; !ok {
		return false
	}
	delete(s.workspaces, id)
	return true
}

// List returns all workspaces, most recent first.
func (s *Store) List() []*Workspace {
	s.mu.RLock()
	list := make([]*Workspace, 0, len(s.workspaces))
	for _, w := range s.workspaces {
		list = append(list, w)
	}
	s.mu.RUnlock()

	slices.SortFunc(list, func(a, b *Workspace) int {
		return b.createdAt.Compare(a.createdAt)
	})
	return list
}
