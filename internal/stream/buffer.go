// Package stream provides in-memory token buffers that decouple AI
// narration producers from paced consumers, plus a registry that owns
// buffer lifecycle and garbage collection.
package stream

import (
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/gm-api/internal/errors"
	"github.com/KirkDiggler/gm-api/internal/pkg/clock"
)

// MaxContentChars caps total buffered content. A token whose append
// would cross the cap is rejected and the buffer is forced complete, so
// a runaway producer cannot grow without bound and no token is ever
// half-kept.
const MaxContentChars = 100_000

// Buffer accumulates streamed tokens from one narration. One producer
// appends; one consumer drains. Safe for concurrent use.
type Buffer struct {
	mu sync.Mutex

	narrativeID string
	tokens      []string
	chars       int
	consumed    int
	complete    bool
	forced      bool
	err         error

	createdAt   time.Time
	completedAt time.Time

	clk clock.Clock
}

// NewBuffer creates an empty buffer for the given narrative
func NewBuffer(narrativeID string, clk clock.Clock) *Buffer {
	return &Buffer{
		narrativeID: narrativeID,
		clk:         clk,
		createdAt:   clk.Now(),
	}
}

// NarrativeID returns the narrative this buffer belongs to
func (b *Buffer) NarrativeID() string {
	return b.narrativeID
}

// Append adds one token. Appending to a completed buffer is an error;
// the producer should stop streaming. A token that would push content
// past the cap is rejected unappended and the buffer is forced
// complete, keeping everything generated so far.
func (b *Buffer) Append(token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.complete {
		return errors.FailedPreconditionf("buffer for narrative %s is already complete", b.narrativeID)
	}

	if b.chars+len(token) > MaxContentChars {
		b.forced = true
		b.markComplete()
		return errors.FailedPreconditionf("buffer for narrative %s reached the content cap", b.narrativeID)
	}

	b.tokens = append(b.tokens, token)
	b.chars += len(token)
	return nil
}

// Complete marks the end of the producer's stream. Idempotent.
func (b *Buffer) Complete() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markComplete()
}

// Fail records a producer error and completes the buffer. The consumer
// sees the error once it has drained everything appended before the
// failure.
func (b *Buffer) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err == nil {
		b.err = err
	}
	b.markComplete()
}

// markComplete must be called with mu held
func (b *Buffer) markComplete() {
	if !b.complete {
		b.complete = true
		b.completedAt = b.clk.Now()
	}
}

// NextTokens returns all tokens appended since the previous call, plus
// whether the buffer is drained: complete with nothing left to consume.
func (b *Buffer) NextTokens() (tokens []string, drained bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consumed < len(b.tokens) {
		tokens = b.tokens[b.consumed:]
		b.consumed = len(b.tokens)
	}

	return tokens, b.complete && b.consumed == len(b.tokens)
}

// Content joins every token appended so far
func (b *Buffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.tokens, "")
}

// IsComplete reports whether the producer has finished (or been forced
// or failed)
func (b *Buffer) IsComplete() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.complete
}

// WasForced reports whether completion came from hitting the content cap
func (b *Buffer) WasForced() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.forced
}

// Err returns the producer error, if any
func (b *Buffer) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Stats is a point-in-time snapshot of one buffer
type Stats struct {
	NarrativeID string
	Tokens      int
	Chars       int
	Complete    bool
	Forced      bool
	Errored     bool
	Age         time.Duration
}

// Stats snapshots the buffer's counters as of now
func (b *Buffer) Stats(now time.Time) Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		NarrativeID: b.narrativeID,
		Tokens:      len(b.tokens),
		Chars:       b.chars,
		Complete:    b.complete,
		Forced:      b.forced,
		Errored:     b.err != nil,
		Age:         now.Sub(b.createdAt),
	}
}

// completedFor reports how long the buffer has been complete as of now.
// Zero if not complete.
func (b *Buffer) completedFor(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.complete {
		return 0
	}
	return now.Sub(b.completedAt)
}
