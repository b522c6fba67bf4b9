package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/bodul/patternfind/pattern"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// Event names sent on a workspace stream.
const (
	EventWorkspaceState  = "workspace_state"
	EventGridUpdated     = "grid_updated"
	EventSearchCompleted = "search_completed"
	EventReset           = "reset"
	EventDeleted         = "workspace_deleted"
)

// ErrWorkspaceGone is returned when subscribing to a deleted workspace.
var ErrWorkspaceGone = errors.New("workspace no longer exists")

// Event is one change to a workspace. Data is encoded as JSON.
type Event struct {
	Name string
	Data any
}

// GridUpdate is the payload of grid_updated.
type GridUpdate struct {
	Grid      GridKind     `json:"grid"`
	Cells     pattern.Grid `json:"cells"`
	CanSearch bool         `json:"can_search"`
}

// SearchCompleted is the payload of search_completed.
type SearchCompleted struct {
	Matches []pattern.Position `json:"matches"`
	Count   int                `json:"count"`
}

// frame is an encoded event, ready to be written to any number of streams.
type frame struct {
	name string
	data []byte
}

func encodeEvent(e Event) (frame, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return frame{}, fmt.Errorf("encode %s event: %w", e.Name, err)
	}
	return frame{name: e.Name, data: data}, nil
}

func (f frame) writeTo(w io.Writer) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.name, f.data)
	return err
}

// subscriber is one open event stream on a workspace. frames is never
// closed; deletion of the workspace is signalled on gone.
type subscriber struct {
	workspaceID string
	frames      chan frame
	gone        chan struct{}
}

// Broadcaster fans workspace events out to the streams watching them.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe opens a stream on a workspace. state is called with the
// broadcaster locked, so the initial event is queued before any later
// Publish or CloseWorkspace for the workspace. state reports false once
// the workspace has been deleted.
func (b *Broadcaster) Subscribe(workspaceID string, state func() (Event, bool)) (*subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	initial, ok := state()
	if !ok {
		return nil, ErrWorkspaceGone
	}
	f, err := encodeEvent(initial)
	if err != nil {
		return nil, err
	}

	sub := &subscriber{
		workspaceID: workspaceID,
		frames:      make(chan frame, sseChannelBuffer),
		gone:        make(chan struct{}),
	}
	sub.frames <- f

	set, ok := b.subs[workspaceID]
	if !ok {
		set = make(map[*subscriber]struct{})
		b.subs[workspaceID] = set
	}
	set[sub] = struct{}{}
	return sub, nil
}

// Unsubscribe removes a stream. Calling it twice is harmless.
func (b *Broadcaster) Unsubscribe(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.subs[sub.workspaceID]
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.workspaceID)
	}
}

// Publish sends an event to every stream of a workspace. Streams whose
// buffer is full miss the event.
func (b *Broadcaster) Publish(workspaceID string, e Event) {
	f, err := encodeEvent(e)
	if err != nil {
		log.Printf("publish to workspace %s: %v", workspaceID, err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[workspaceID] {
		select {
		case sub.frames <- f:
		default:
		}
	}
}

// CloseWorkspace ends every stream of a deleted workspace.
func (b *Broadcaster) CloseWorkspace(workspaceID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs[workspaceID] {
		close(sub.gone)
	}
	delete(b.subs, workspaceID)
}

// ClientCount returns the number of open streams on a workspace.
func (b *Broadcaster) ClientCount(workspaceID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[workspaceID])
}

// ServeSSE streams a workspace's events, starting with the state returned
// by state, until the request ends or the workspace is deleted.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, workspaceID string, state func() (Event, bool)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := b.Subscribe(workspaceID, state)
	if errors.Is(err, ErrWorkspaceGone) {
		jsonError(w, "workspace not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("subscribe to workspace %s: %v", workspaceID, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer b.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case f := <-sub.frames:
			if err := f.writeTo(w); err != nil {
				return
			}
			flusher.Flush()
		case <-sub.gone:
			drain(w, sub.frames)
			deleted, _ := encodeEvent(Event{Name: EventDeleted, Data: map[string]string{"id": workspaceID}})
			deleted.writeTo(w)
			flusher.Flush()
			return
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// drain writes the frames already queued for a stream.
func drain(w io.Writer, frames <-chan frame) {
	for {
		select {
		case f := <-frames:
			f.writeTo(w)
		default:
			return
		}
	}
}
