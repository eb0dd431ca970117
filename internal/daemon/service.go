// Package daemon provides the long-running background pet service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/theirongolddev/ascendia/internal/pet"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Store         pet.Store
	StoreBackend  string
	UserID        string
	DecayEnabled  bool
	DecayInterval time.Duration
	Addr          string
	EventsBuffer  int
	Now           func() time.Time
}

// Event is emitted for every notification and decay tick.
type Event struct {
	ID           int64             `json:"id"`
	Type         string            `json:"type"`
	Timestamp    time.Time         `json:"timestamp"`
	Notification *pet.Notification `json:"notification,omitempty"`
	Profile      *pet.Profile      `json:"profile,omitempty"`
	DecaySteps   int               `json:"decay_steps,omitempty"`
}

// Event types.
const (
	EventNotification = "notification"
	EventDecay        = "decay"
	EventSnapshot     = "snapshot"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt        time.Time    `json:"started_at"`
	Loading          bool         `json:"loading"`
	LoadStatus       string       `json:"load_status,omitempty"`
	Store            string       `json:"store"`
	DecayEnabled     bool         `json:"decay_enabled"`
	DecayIntervalSec int          `json:"decay_interval_sec"`
	LastDecayAt      time.Time    `json:"last_decay_at"`
	DecayCount       int64        `json:"decay_count"`
	DecaySteps       int64        `json:"decay_steps"`
	Pet              *pet.Profile `json:"pet,omitempty"`
	Mood             string       `json:"mood,omitempty"`
	EventCount       int          `json:"event_count"`
	LastEventID      int64        `json:"last_event_id"`
	SubscriberCount  int          `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	engine *pet.Engine

	mu          sync.RWMutex
	startedAt   time.Time
	loadStatus  string
	lastDecayAt time.Time
	decayCount  int64
	decaySteps  int64
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config. The service
// owns its engine and receives the engine's notifications.
func New(cfg Config) *Service {
	if cfg.DecayInterval < time.Second {
		cfg.DecayInterval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Service{
		cfg:       cfg,
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
	s.engine = pet.NewEngine(pet.Config{
		Store:  cfg.Store,
		Sink:   s,
		Now:    cfg.Now,
		UserID: cfg.UserID,
	})
	return s
}

// Engine returns the engine the service drives.
func (s *Service) Engine() *pet.Engine {
	return s.engine
}

// Init loads the pet profile. Run calls it when the engine is still loading.
func (s *Service) Init(ctx context.Context) {
	st := s.engine.Init(ctx)
	s.mu.Lock()
	s.loadStatus = st.String()
	s.mu.Unlock()
	log.Printf("ascendia daemon: pet profile %s", st)
}

// Run starts HTTP endpoints and the decay job until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.engine.IsLoading() {
		s.Init(ctx)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	if s.cfg.DecayEnabled {
		_, err = sched.NewJob(
			gocron.DurationJob(s.cfg.DecayInterval),
			gocron.NewTask(func() { s.decayOnce(ctx) }),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("scheduling decay: %w", err)
		}
	}
	sched.Start()
	defer func() {
		if err := sched.Shutdown(); err != nil {
			log.Printf("ascendia daemon: scheduler shutdown: %v", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	s.registerPetRoutes(mux)
	return mux
}

func (s *Service) decayOnce(ctx context.Context) {
	steps := s.engine.Decay(ctx)
	now := s.cfg.Now()

	s.mu.Lock()
	s.lastDecayAt = now
	s.decayCount++
	s.decaySteps += int64(steps)
	s.mu.Unlock()

	if steps == 0 {
		return
	}
	log.Printf("ascendia daemon: decay applied %d step(s)", steps)
	ev := Event{Type: EventDecay, Timestamp: now, DecaySteps: steps}
	if p, ok := s.engine.Profile(); ok {
		ev.Profile = &p
	}
	s.publishEvent(ev)
}

// Notify implements pet.Sink. Notifications are logged and fanned out to
// the event ring and stream subscribers.
func (s *Service) Notify(n pet.Notification) {
	log.Printf("ascendia daemon: [%s] %s: %s", n.Severity, n.Title, n.Description)
	ev := Event{Type: EventNotification, Timestamp: s.cfg.Now(), Notification: &n}
	if p, ok := s.engine.Profile(); ok {
		ev.Profile = &p
	}
	s.publishEvent(ev)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
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

func (s *Service) snapshotStatus() Status {
	p, ok := s.engine.Profile()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:        s.startedAt,
		Loading:          !ok,
		LoadStatus:       s.loadStatus,
		Store:            s.cfg.StoreBackend,
		DecayEnabled:     s.cfg.DecayEnabled,
		DecayIntervalSec: int(s.cfg.DecayInterval.Seconds()),
		LastDecayAt:      s.lastDecayAt,
		DecayCount:       s.decayCount,
		DecaySteps:       s.decaySteps,
		EventCount:       len(s.events),
		LastEventID:      s.nextEventID,
		SubscriberCount:  len(s.subs),
	}
	if ok {
		st.Pet = &p
		st.Mood = pet.Mood(p)
	}
	return st
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// handleEvents returns the buffered events, optionally only those with an
// ID above ?since=.
func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid since %q", v))
			return
		}
		since = n
	}

	s.mu.RLock()
	events := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.ID > since {
			events = append(events, ev)
		}
	}
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

	// Send the current pet immediately.
	current := Event{Type: EventSnapshot, Timestamp: s.cfg.Now()}
	if p, ok := s.engine.Profile(); ok {
		current.Profile = &p
	}
	writeSSE(w, current)
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
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
