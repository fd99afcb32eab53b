// Package tasks supervises background goroutines with a single slot per
// room. Starting a new task for a room cancels and waits out whatever
// was running there, so at most one narration producer exists per room.
package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/gm-api/internal/errors"
)

// DefaultTimeout bounds any supervised task's runtime
const DefaultTimeout = 60 * time.Second

// Func is a supervised unit of work. It must honor ctx cancellation.
type Func func(ctx context.Context) error

type task struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Config holds supervisor settings
type Config struct {
	// Timeout per task; DefaultTimeout when zero
	Timeout time.Duration
}

// Validate ensures the config is usable
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.Timeout < 0 {
		return errors.InvalidArgument("timeout must not be negative")
	}
	return nil
}

// Supervisor runs at most one background task per room
type Supervisor struct {
	// startMu serializes Start/Stop so cancel-and-replace is atomic
	// from the caller's view
	startMu sync.Mutex

	// mu guards the task map only
	mu      sync.Mutex
	tasks   map[string]*task
	started uint64

	timeout time.Duration
}

// Stats summarizes supervisor activity
type Stats struct {
	// Started counts every task ever launched
	Started uint64
	// Running counts tasks currently occupying a slot
	Running int
}

// NewSupervisor creates a supervisor
func NewSupervisor(cfg *Config) (*Supervisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Supervisor{
		tasks:   make(map[string]*task),
		timeout: timeout,
	}, nil
}

// Start launches fn in a goroutine under the room's slot. Any task
// already occupying the slot is canceled and waited for before the new
// one begins, so fn never runs concurrently with its predecessor.
//
// The task runs detached from the caller's context: a disconnecting
// client must not kill a narration other players are waiting on. It is
// bounded by the supervisor timeout instead.
func (s *Supervisor) Start(roomID, name string, fn Func) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	prev := s.tasks[roomID]
	s.mu.Unlock()

	if prev != nil {
		slog.Info("replacing background task",
			"room_id", roomID, "old", prev.name, "new", name)
		prev.cancel()
		<-prev.done
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	t := &task{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.tasks[roomID] = t
	s.started++
	s.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			s.mu.Lock()
			if s.tasks[roomID] == t {
				delete(s.tasks, roomID)
			}
			s.mu.Unlock()
			close(t.done)
		}()

		if err := fn(ctx); err != nil {
			switch {
			case errors.IsCanceled(err) || ctx.Err() == context.Canceled:
				slog.Info("background task canceled", "room_id", roomID, "task", name)
			case ctx.Err() == context.DeadlineExceeded:
				slog.Warn("background task timed out",
					"room_id", roomID, "task", name, "timeout", s.timeout)
			default:
				slog.Error("background task failed",
					"room_id", roomID, "task", name, "error", err)
			}
		}
	}()
}

// Stop cancels the room's task, if any, and waits for it to finish
func (s *Supervisor) Stop(roomID string) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	t := s.tasks[roomID]
	s.mu.Unlock()

	if t == nil {
		return
	}
	t.cancel()
	<-t.done
}

// StopAll cancels every task and waits for all of them. Called on
// server shutdown.
func (s *Supervisor) StopAll() {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	running := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		running = append(running, t)
	}
	s.mu.Unlock()

	for _, t := range running {
		t.cancel()
	}
	for _, t := range running {
		<-t.done
	}
}

// Running reports whether the room's slot is occupied
func (s *Supervisor) Running(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[roomID] != nil
}

// Len reports how many tasks are running
func (s *Supervisor) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stats snapshots supervisor counters
func (s *Supervisor) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Started: s.started, Running: len(s.tasks)}
}
