// Package rounds tracks per-room turn readiness: which actors still owe
// a roll this round, which have rolled and what they rolled. Narration
// auto-triggers once the pending set is empty.
package rounds

import (
	"sync"
)

// Analysis is the judged outcome of one actor's declared action, kept
// with the round so clients can be re-sent their pending check.
type Analysis struct {
	Modifier   int32
	Difficulty int32
	Reasoning  string
}

// Snapshot is one room's round state, copied out for persistence
// mirroring
type Snapshot struct {
	RoundID int64
	Pending []string
	Rolled  map[string]int32
}

type round struct {
	id       int64
	pending  map[string]struct{}
	rolled   map[string]int32
	analyses map[string]Analysis
}

// Tracker is the in-memory readiness state, authoritative while the
// process lives. Safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	rooms map[string]*round
	// lastRound is the per-room high-water mark. It survives Reset so
	// round IDs are strictly increasing for the life of the process.
	lastRound map[string]int64
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		rooms:     make(map[string]*round),
		lastRound: make(map[string]int64),
	}
}

// OpenRound starts a fresh round for the room, replacing any prior round
// state, and returns its ID. IDs are strictly increasing per room.
func (t *Tracker) OpenRound(roomID string, actorIDs []string, analyses map[string]Analysis) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.newRoundLocked(roomID)
	for _, id := range actorIDs {
		r.pending[id] = struct{}{}
		if a, ok := analyses[id]; ok {
			r.analyses[id] = a
		}
	}
	return r.id
}

// Submit adds one actor to the room's current round, opening a new round
// if none is in progress. Resubmitting supersedes the previous action,
// so any earlier roll is cleared.
func (t *Tracker) Submit(roomID, actorID string, a Analysis) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rooms[roomID]
	if !ok {
		r = t.newRoundLocked(roomID)
	}
	r.pending[actorID] = struct{}{}
	delete(r.rolled, actorID)
	r.analyses[actorID] = a
}

// newRoundLocked must be called with mu held
func (t *Tracker) newRoundLocked(roomID string) *round {
	t.lastRound[roomID]++
	r := &round{
		id:       t.lastRound[roomID],
		pending:  make(map[string]struct{}),
		rolled:   make(map[string]int32),
		analyses: make(map[string]Analysis),
	}
	t.rooms[roomID] = r
	return r
}

// RecordRoll marks the actor as having rolled and stores the die.
// Returns false without mutating when the actor is not in the pending
// set: already rolled this round, or never part of it. The first
// recorded die wins.
func (t *Tracker) RecordRoll(roomID, actorID string, die int32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := r.pending[actorID]; !ok {
		return false
	}

	delete(r.pending, actorID)
	r.rolled[actorID] = die
	return true
}

// Discard drops the actor from the round, as when a player leaves the
// room mid-turn. Returns whether the remaining actors have now all
// rolled; a round emptied by discards is not ready.
func (t *Tracker) Discard(roomID, actorID string) (allRolled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rooms[roomID]
	if !ok {
		return false
	}
	delete(r.pending, actorID)
	delete(r.rolled, actorID)
	delete(r.analyses, actorID)
	if len(r.pending) == 0 && len(r.rolled) == 0 {
		delete(t.rooms, roomID)
		return false
	}
	return len(r.pending) == 0
}

// AllRolled reports whether the room has an open round with an empty
// pending set
func (t *Tracker) AllRolled(roomID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rooms[roomID]
	if !ok {
		return false
	}
	return len(r.pending) == 0 && len(r.rolled) > 0
}

// Results returns a copy of the room's revealed dice, keyed by actor.
// Empty for unknown rooms.
func (t *Tracker) Results(roomID string) map[string]int32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rooms[roomID]
	if !ok {
		return map[string]int32{}
	}
	out := make(map[string]int32, len(r.rolled))
	for id, die := range r.rolled {
		out[id] = die
	}
	return out
}

// Analyses returns a copy of the round's per-actor analysis payloads.
// Empty for unknown rooms.
func (t *Tracker) Analyses(roomID string) map[string]Analysis {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rooms[roomID]
	if !ok {
		return map[string]Analysis{}
	}
	out := make(map[string]Analysis, len(r.analyses))
	for id, a := range r.analyses {
		out[id] = a
	}
	return out
}

// RoundID returns the current round's ID, false when no round is open
func (t *Tracker) RoundID(roomID string) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rooms[roomID]
	if !ok {
		return 0, false
	}
	return r.id, true
}

// Reset closes the room's round. Called when narration for the round
// has been kicked off, so the next submission opens a fresh round with
// a greater ID.
func (t *Tracker) Reset(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rooms, roomID)
}

// Counts returns how many actors are part of the round and how many of
// those have rolled
func (t *Tracker) Counts(roomID string) (submitted, rolled int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rooms[roomID]
	if !ok {
		return 0, 0
	}
	return len(r.pending) + len(r.rolled), len(r.rolled)
}

// Snapshot returns a copy of the room's round state for persistence
// mirroring. Nil when no round is open.
func (t *Tracker) Snapshot(roomID string) *Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rooms[roomID]
	if !ok {
		return nil
	}

	snap := &Snapshot{
		RoundID: r.id,
		Pending: make([]string, 0, len(r.pending)),
		Rolled:  make(map[string]int32, len(r.rolled)),
	}
	for id := range r.pending {
		snap.Pending = append(snap.Pending, id)
	}
	for id, die := range r.rolled {
		snap.Rolled[id] = die
	}
	return snap
}

// Restore replaces the room's round state from a persisted snapshot and
// advances the round high-water mark so later rounds stay strictly
// increasing
func (t *Tracker) Restore(roomID string, snap Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if snap.RoundID > t.lastRound[roomID] {
		t.lastRound[roomID] = snap.RoundID
	}
	if len(snap.Pending) == 0 && len(snap.Rolled) == 0 {
		delete(t.rooms, roomID)
		return
	}

	r := &round{
		id:       snap.RoundID,
		pending:  make(map[string]struct{}, len(snap.Pending)),
		rolled:   make(map[string]int32, len(snap.Rolled)),
		analyses: make(map[string]Analysis),
	}
	for _, id := range snap.Pending {
		r.pending[id] = struct{}{}
	}
	for id, die := range snap.Rolled {
		r.rolled[id] = die
	}
	t.rooms[roomID] = r
}
