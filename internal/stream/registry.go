package stream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/gm-api/internal/errors"
	"github.com/KirkDiggler/gm-api/internal/pkg/clock"
)

// GCRetention is how long a completed buffer stays available for late
// consumers before the registry sweeps it.
const GCRetention = 5 * time.Minute

// RegistryConfig holds registry dependencies
type RegistryConfig struct {
	Clock clock.Clock
}

// Validate ensures required dependencies are provided
func (c *RegistryConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

// Registry owns each room's live buffer. A room has at most one buffer
// at a time, the one its current narration is being produced into.
type Registry struct {
	mu      sync.Mutex
	buffers map[string]*Buffer
	clk     clock.Clock
}

// NewRegistry creates an empty registry
func NewRegistry(cfg *RegistryConfig) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Registry{
		buffers: make(map[string]*Buffer),
		clk:     cfg.Clock,
	}, nil
}

// Create registers a fresh buffer for the room's narrative. Any buffer
// already registered for the room is stale (a superseded or finished
// round) and is replaced.
func (r *Registry) Create(roomID, narrativeID string) *Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.buffers[roomID]; ok {
		slog.Warn("replacing stale stream buffer",
			"room_id", roomID,
			"old_narrative_id", prev.NarrativeID(),
			"narrative_id", narrativeID)
	}

	buf := NewBuffer(narrativeID, r.clk)
	r.buffers[roomID] = buf
	return buf
}

// Get returns the room's current buffer
func (r *Registry) Get(roomID string) (*Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, ok := r.buffers[roomID]
	if !ok {
		return nil, errors.NotFoundf("no stream buffer for room %s", roomID)
	}
	return buf, nil
}

// Remove drops the room's buffer, as on room teardown. Missing rooms
// are ignored.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buffers, roomID)
}

// Len reports how many buffers are registered
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers)
}

// Stats snapshots every registered buffer, keyed by room ID
func (r *Registry) Stats() map[string]Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clk.Now()
	out := make(map[string]Stats, len(r.buffers))
	for id, buf := range r.buffers {
		out[id] = buf.Stats(now)
	}
	return out
}

// Sweep removes buffers that have been complete for longer than the
// retention window and returns how many were removed. In-progress
// buffers are never swept, no matter their age.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clk.Now()
	removed := 0
	for id, buf := range r.buffers {
		if age := buf.completedFor(now); age > GCRetention {
			delete(r.buffers, id)
			removed++
		}
	}
	return removed
}

// RunGC sweeps on the given interval until stop is closed. Intended to
// run in its own goroutine from server startup.
func (r *Registry) RunGC(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Debug("swept completed stream buffers", "removed", n, "remaining", r.Len())
			}
		}
	}
}
