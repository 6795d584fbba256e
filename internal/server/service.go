// Package server provides the budgetsim evaluation service and its HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/budgetsim/internal/config"
	"github.com/theirongolddev/budgetsim/internal/evaluate"
	"github.com/theirongolddev/budgetsim/internal/store"
	"github.com/theirongolddev/budgetsim/internal/wire"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	Interval     time.Duration
	Rewards      config.Rewards
	Seed         uint64
}

// Event is emitted for every graded submission.
type Event struct {
	Seq        int64       `json:"seq"`
	Type       string      `json:"type"`
	Timestamp  time.Time   `json:"timestamp"`
	Submission *wire.Event `json:"submission,omitempty"`
}

// Service serves simulations, grades submissions, and streams results.
type Service struct {
	cfg    Config
	st     *store.Store
	picker *evaluate.Picker

	mu           sync.RWMutex
	startedAt    time.Time
	simulations  int
	submissions  int64
	successes    int64
	lastSubmitAt time.Time
	lastError    string
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new service backed by st.
func New(cfg Config, st *store.Store) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	return &Service{
		cfg:       cfg,
		st:        st,
		picker:    evaluate.NewPicker(cfg.Seed),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.HandleFunc("GET /v1/simulations", s.handleListSimulations)
	mux.HandleFunc("GET /v1/simulations/next", s.handleNextSimulation)
	mux.HandleFunc("GET /v1/simulations/{id}", s.handleGetSimulation)
	mux.HandleFunc("POST /v1/simulations/{id}/submit", s.handleSubmit)
	mux.HandleFunc("GET /v1/players/{id}/progress", s.handleProgress)
	mux.HandleFunc("GET /v1/result", s.handleResultJSON)
	mux.HandleFunc("GET /result", s.handleResultPage)
	return mux
}

// Run starts the HTTP server and refreshes catalog stats until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.refresh()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.refresh()
		case err := <-errCh:
			return fmt.Errorf("budgetsim http server: %w", err)
		}
	}
}

// refresh re-reads the catalog size; imports may run while the server is up.
func (s *Service) refresh() {
	n, err := s.st.SimulationCount()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastError = err.Error()
		log.Printf("budgetsim server refresh error: %v", err)
		return
	}
	s.simulations = n
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
	log.Printf("budgetsim server error: %v", err)
}

// recordSubmission updates counters and publishes a submission event.
func (s *Service) recordSubmission(sub wire.Event) {
	s.mu.Lock()
	s.submissions++
	if sub.Successful {
		s.successes++
	}
	s.lastSubmitAt = sub.At
	s.nextEventID++
	ev := Event{
		Seq:        s.nextEventID,
		Type:       "submission",
		Timestamp:  sub.At,
		Submission: &sub,
	}
	s.mu.Unlock()

	s.publishEvent(ev)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() wire.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return wire.Status{
		StartedAt:      s.startedAt,
		Simulations:    s.simulations,
		Submissions:    s.submissions,
		Successes:      s.successes,
		Subscribers:    len(s.subs),
		LastError:      s.lastError,
		LastSubmitAt:   s.lastSubmitAt,
		EventsBuffered: len(s.events),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Announce the connection so clients know the stream is live.
	writeSSE(w, Event{Type: "hello", Timestamp: time.Now()})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, wire.ErrorBody{Error: msg})
}
