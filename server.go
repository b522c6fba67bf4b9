package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bodul/patternfind/pattern"
)

const maxBodySize = 1 << 20

const blankPatternMessage = "draw at least one cell in the pattern before searching"

// rateLimiter is a simple per-IP token bucket rate limiter.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

const (
	janitorInterval = time.Minute
	visitorTTL      = 5 * time.Minute
)

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rl.janitor(janitorInterval)
	return rl
}

// janitor drops stale visitors until close is called.
func (rl *rateLimiter) janitor(every time.Duration) {
	defer close(rl.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep(time.Now())
		}
	}
}

func (rl *rateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.visitors {
		if now.Sub(b.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

// close stops the janitor and waits for it to exit. Safe to call twice.
func (rl *rateLimiter) close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: time.Now()}
		return true
	}

	elapsed := time.Since(b.lastSeen)
	refill := int(elapsed / rl.interval)
	if refill > 0 {
		b.tokens += refill * rl.rate
		if b.tokens > rl.rate {
			b.tokens = rl.rate
		}
		b.lastSeen = time.Now()
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Server is the main HTTP server.
type Server struct {
	mux            *http.ServeMux
	store          *Store
	summarizer     Summarizer
	sse            *Broadcaster
	limits         SizeLimits
	defaultPattern pattern.Size
	defaultSearch  pattern.Size
	summaryTimeout time.Duration
	editRL         *rateLimiter
	explainRL      *rateLimiter
}

// NewServer creates a configured HTTP server. summarizer may be nil, in
// which case explanations are answered with a notice.
func NewServer(cfg *Config, store *Store, summarizer Summarizer) *Server {
	s := &Server{
		mux:            http.NewServeMux(),
		store:          store,
		summarizer:     summarizer,
		sse:            NewBroadcaster(),
		limits:         SizeLimits{Min: cfg.MinSize, Max: cfg.MaxSize},
		defaultPattern: pattern.Size(cfg.DefaultPattern),
		defaultSearch:  pattern.Size(cfg.DefaultSearch),
		summaryTimeout: cfg.Summarizer.Timeout,
		editRL:         newRateLimiter(cfg.RateLimit.EditsPerSecond, time.Second),
		explainRL:      newRateLimiter(cfg.RateLimit.ExplainsPerMinute, time.Minute),
	}
	s.routes()
	return s
}

// Close stops the background work started by NewServer.
func (s *Server) Close() {
	s.editRL.close()
	s.explainRL.close()
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/shapes", s.handleShapes)
	s.mux.HandleFunc("POST /api/match", s.handleMatch)

	// Workspace API
	s.mux.HandleFunc("POST /api/workspaces", s.handleCreateWorkspace)
	s.mux.HandleFunc("GET /api/workspaces", s.handleListWorkspaces)
	s.mux.HandleFunc("GET /api/workspaces/{id}", s.handleGetWorkspace)
	s.mux.HandleFunc("DELETE /api/workspaces/{id}", s.handleDeleteWorkspace)
	s.mux.HandleFunc("PUT /api/workspaces/{id}/{grid}", s.handleSetGrid)
	s.mux.HandleFunc("PUT /api/workspaces/{id}/{grid}/size", s.handleResize)
	s.mux.HandleFunc("POST /api/workspaces/{id}/{grid}/toggle", s.handleToggle)
	s.mux.HandleFunc("POST /api/workspaces/{id}/{grid}/stamp", s.handleStamp)
	s.mux.HandleFunc("POST /api/workspaces/{id}/search", s.handleSearch)
	s.mux.HandleFunc("POST /api/workspaces/{id}/reset", s.handleReset)
	s.mux.HandleFunc("POST /api/workspaces/{id}/explain", s.handleExplain)
	s.mux.HandleFunc("GET /api/workspaces/{id}/events", s.handleEvents)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	s.mux.ServeHTTP(w, r)
}

// --- Stateless handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/shapes — list stamp presets.
func (s *Server) handleShapes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, pattern.Shapes())
}

// POST /api/match — match two grids sent in the body.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pattern pattern.Grid `json:"pattern"`
		Search  pattern.Grid `json:"search"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Pattern.Rows() > s.limits.Max || req.Pattern.Cols() > s.limits.Max ||
		req.Search.Rows() > s.limits.Max || req.Search.Cols() > s.limits.Max {
		jsonError(w, "grid larger than the configured maximum", http.StatusRequestEntityTooLarge)
		return
	}

	matches, err := pattern.FindMatchesChecked(req.Pattern, req.Search)
	if err != nil {
		jsonError(w, "grids must be rectangular", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"matches": matches,
		"count":   len(matches),
	})
}

// --- Workspace handlers ---

// POST /api/workspaces — create a workspace with empty grids.
func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PatternSize *pattern.Size `json:"pattern_size"`
		SearchSize  *pattern.Size `json:"search_size"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	patternSize, searchSize := s.defaultPattern, s.defaultSearch
	if req.PatternSize != nil {
		patternSize = *req.PatternSize
	}
	if req.SearchSize != nil {
		searchSize = *req.SearchSize
	}
	for _, size := range []pattern.Size{patternSize, searchSize} {
		if err := s.limits.Check(size); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	ws := s.store.Create(patternSize, searchSize)
	writeJSON(w, http.StatusCreated, ws.Snapshot())
}

// GET /api/workspaces — list all workspaces.
func (s *Server) handleListWorkspaces(w http.ResponseWriter, _ *http.Request) {
	list := s.store.List()
	views := make([]WorkspaceView, len(list))
	for i, ws := range list {
		views[i] = ws.Snapshot()
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /api/workspaces/{id}
func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := s.lookup(w, r)
	if ws == nil {
		return
	}
	writeJSON(w, http.StatusOK, ws.Snapshot())
}

// DELETE /api/workspaces/{id}
func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.Delete(id) {
		jsonError(w, "workspace not found", http.StatusNotFound)
		return
	}
	s.sse.CloseWorkspace(id)
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/workspaces/{id}/{grid} — replace every cell of a grid.
func (s *Server) handleSetGrid(w http.ResponseWriter, r *http.Request) {
	ws, kind, ok := s.lookupGrid(w, r)
	if !ok {
		return
	}
	var req struct {
		Cells pattern.Grid `json:"cells"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ws.SetGrid(kind, req.Cells); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.gridUpdated(w, ws, kind)
}

// PUT /api/workspaces/{id}/{grid}/size — resize and clear a grid.
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	ws, kind, ok := s.lookupGrid(w, r)
	if !ok {
		return
	}
	var size pattern.Size
	if !decodeBody(w, r, &size) {
		return
	}
	if err := s.limits.Check(size); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ws.Resize(kind, size)
	s.gridUpdated(w, ws, kind)
}

// POST /api/workspaces/{id}/{grid}/toggle — flip one cell.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if !s.editRL.allow(clientIP(r)) {
		jsonError(w, "too many requests, try again later", http.StatusTooManyRequests)
		return
	}
	ws, kind, ok := s.lookupGrid(w, r)
	if !ok {
		return
	}
	var req struct {
		Row int `json:"row"`
		Col int `json:"col"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ws.Toggle(kind, req.Row, req.Col); err != nil {
		jsonError(w, "position out of bounds", http.StatusBadRequest)
		return
	}
	s.gridUpdated(w, ws, kind)
}

// POST /api/workspaces/{id}/{grid}/stamp — draw a preset shape.
func (s *Server) handleStamp(w http.ResponseWriter, r *http.Request) {
	if !s.editRL.allow(clientIP(r)) {
		jsonError(w, "too many requests, try again later", http.StatusTooManyRequests)
		return
	}
	ws, kind, ok := s.lookupGrid(w, r)
	if !ok {
		return
	}
	var req struct {
		Shape string `json:"shape"`
		Row   int    `json:"row"`
		Col   int    `json:"col"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	shape, err := pattern.ParseShape(req.Shape)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ws.Stamp(kind, shape, req.Row, req.Col); err != nil {
		jsonError(w, "position out of bounds", http.StatusBadRequest)
		return
	}
	s.gridUpdated(w, ws, kind)
}

// POST /api/workspaces/{id}/search — run the matcher.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ws := s.lookup(w, r)
	if ws == nil {
		return
	}
	matches, err := ws.RunSearch()
	if errors.Is(err, ErrBlankPattern) {
		jsonError(w, blankPatternMessage, http.StatusUnprocessableEntity)
		return
	}

	s.sse.Publish(ws.ID(), Event{
		Name: EventSearchCompleted,
		Data: SearchCompleted{Matches: matches, Count: len(matches)},
	})
	writeJSON(w, http.StatusOK, ws.Snapshot())
}

// POST /api/workspaces/{id}/reset — clear both grids.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ws := s.lookup(w, r)
	if ws == nil {
		return
	}
	ws.Reset()
	view := ws.Snapshot()
	s.sse.Publish(ws.ID(), Event{Name: EventReset, Data: view})
	writeJSON(w, http.StatusOK, view)
}

// POST /api/workspaces/{id}/explain — prose summary of the last search.
// Summarizer failures never fail the request; they become a notice.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	if !s.explainRL.allow(clientIP(r)) {
		jsonError(w, "too many requests, try again later", http.StatusTooManyRequests)
		return
	}
	ws := s.lookup(w, r)
	if ws == nil {
		return
	}

	if s.summarizer == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"notice": "explanations are not configured on this server",
		})
		return
	}

	view := ws.Snapshot()
	if !view.CanSearch {
		jsonError(w, blankPatternMessage, http.StatusUnprocessableEntity)
		return
	}
	matches := view.Matches
	if !view.Searched {
		matches = pattern.FindMatches(view.Pattern, view.Search)
	}

	ctx := r.Context()
	if s.summaryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.summaryTimeout)
		defer cancel()
	}

	text, err := s.summarizer.Summarize(ctx, view.Pattern, view.Search, matches)
	if err != nil {
		log.Printf("summarize workspace %s: %v", ws.ID(), err)
		writeJSON(w, http.StatusOK, map[string]string{
			"notice": "an error occurred while generating an explanation",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"explanation": text})
}

// GET /api/workspaces/{id}/events — SSE stream.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ws := s.lookup(w, r)
	if ws == nil {
		return
	}

	id := ws.ID()
	s.sse.ServeSSE(w, r, id, func() (Event, bool) {
		if s.store.Get(id) == nil {
			return Event{}, false
		}
		return Event{Name: EventWorkspaceState, Data: ws.Snapshot()}, true
	})
}

// --- Helpers ---

// clientIP is the rate limit key: the remote host without its port, so that
// new connections from one client share a bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *Workspace {
	ws := s.store.Get(r.PathValue("id"))
	if ws == nil {
		jsonError(w, "workspace not found", http.StatusNotFound)
	}
	return ws
}

func (s *Server) lookupGrid(w http.ResponseWriter, r *http.Request) (*Workspace, GridKind, bool) {
	kind, err := ParseGridKind(r.PathValue("grid"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return nil, "", false
	}
	ws := s.lookup(w, r)
	if ws == nil {
		return nil, "", false
	}
	return ws, kind, true
}

// gridUpdated broadcasts the edited grid and answers with the workspace.
func (s *Server) gridUpdated(w http.ResponseWriter, ws *Workspace, kind GridKind) {
	view := ws.Snapshot()
	cells := view.Search
	if kind == PatternGrid {
		cells = view.Pattern
	}
	s.sse.Publish(ws.ID(), Event{
		Name: EventGridUpdated,
		Data: GridUpdate{Grid: kind, Cells: cells, CanSearch: view.CanSearch},
	})
	writeJSON(w, http.StatusOK, view)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
