package stream_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/gm-api/internal/errors"
	"github.com/KirkDiggler/gm-api/internal/pkg/clock"
	"github.com/KirkDiggler/gm-api/internal/stream"
)

type BufferTestSuite struct {
	suite.Suite
	clk *clock.Fixed
}

func (s *BufferTestSuite) SetupTest() {
	s.clk = clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func (s *BufferTestSuite) TestAppendAndDrain() {
	buf := stream.NewBuffer("narr-1", s.clk)

	s.Require().NoError(buf.Append("The "))
	s.Require().NoError(buf.Append("door "))

	tokens, drained := buf.NextTokens()
	s.Equal([]string{"The ", "door "}, tokens)
	s.False(drained)

	s.Require().NoError(buf.Append("creaks."))
	buf.Complete()

	tokens, drained = buf.NextTokens()
	s.Equal([]string{"creaks."}, tokens)
	s.True(drained)

	s.Equal("The door creaks.", buf.Content())
}

func (s *BufferTestSuite) TestAppendAfterCompleteFails() {
	buf := stream.NewBuffer("narr-1", s.clk)
	buf.Complete()

	err := buf.Append("late")
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *BufferTestSuite) TestContentCapRejectsOverflowingToken() {
	buf := stream.NewBuffer("narr-1", s.clk)

	chunk := strings.Repeat("x", 9_999)
	for i := 0; i < 10; i++ {
		s.Require().NoError(buf.Append(chunk))
	}
	s.False(buf.IsComplete())
	s.Len(buf.Content(), 99_990)

	// the token that would cross the cap is rejected whole, and the
	// buffer closes with only the accepted content
	err := buf.Append(strings.Repeat("y", 11))
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.True(buf.IsComplete())
	s.True(buf.WasForced())
	s.Len(buf.Content(), 99_990)
	s.NotContains(buf.Content(), "y")

	s.Error(buf.Append("overflow"))
}

func (s *BufferTestSuite) TestContentCapAcceptsExactFit() {
	buf := stream.NewBuffer("narr-1", s.clk)

	s.Require().NoError(buf.Append(strings.Repeat("x", stream.MaxContentChars)))
	s.False(buf.IsComplete())
	s.Len(buf.Content(), stream.MaxContentChars)

	s.Error(buf.Append("z"))
	s.True(buf.WasForced())
	s.Len(buf.Content(), stream.MaxContentChars)
}

func (s *BufferTestSuite) TestFailDeliversErrorAfterDrain() {
	buf := stream.NewBuffer("narr-1", s.clk)

	s.Require().NoError(buf.Append("partial "))
	buf.Fail(errors.Unavailable("model went away"))

	tokens, drained := buf.NextTokens()
	s.Equal([]string{"partial "}, tokens)
	s.True(drained)
	s.True(errors.IsUnavailable(buf.Err()))
	s.False(buf.WasForced())
}

func TestBufferTestSuite(t *testing.T) {
	suite.Run(t, new(BufferTestSuite))
}

type RegistryTestSuite struct {
	suite.Suite
	clk      *clock.Fixed
	registry *stream.Registry
}

func (s *RegistryTestSuite) SetupTest() {
	s.clk = clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	registry, err := stream.NewRegistry(&stream.RegistryConfig{Clock: s.clk})
	s.Require().NoError(err)
	s.registry = registry
}

func (s *RegistryTestSuite) TestCreateAndGet() {
	created := s.registry.Create("room-1", "narr-1")

	got, err := s.registry.Get("room-1")
	s.Require().NoError(err)
	s.Same(created, got)
	s.Equal("narr-1", got.NarrativeID())
}

func (s *RegistryTestSuite) TestCreateReplacesStaleBuffer() {
	stale := s.registry.Create("room-1", "narr-1")
	stale.Complete()

	fresh := s.registry.Create("room-1", "narr-2")

	got, err := s.registry.Get("room-1")
	s.Require().NoError(err)
	s.Same(fresh, got)
	s.Equal(1, s.registry.Len())
}

func (s *RegistryTestSuite) TestGetMissingFails() {
	_, err := s.registry.Get("nope")
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RegistryTestSuite) TestSweepRemovesOnlyStaleCompleted() {
	stale := s.registry.Create("room-stale", "narr-1")
	stale.Complete()

	fresh := s.registry.Create("room-fresh", "narr-2")

	// past the retention window: the in-progress buffer must survive
	s.clk.Advance(stream.GCRetention + time.Second)
	fresh.Complete()

	removed := s.registry.Sweep()
	s.Equal(1, removed)
	s.Equal(1, s.registry.Len())

	_, err := s.registry.Get("room-stale")
	s.True(errors.IsNotFound(err))

	_, err = s.registry.Get("room-fresh")
	s.NoError(err)
}

func (s *RegistryTestSuite) TestSweepIgnoresInProgress() {
	s.registry.Create("room-1", "narr-open")

	s.clk.Advance(time.Hour)
	s.Equal(0, s.registry.Sweep())
	s.Equal(1, s.registry.Len())
}

func (s *RegistryTestSuite) TestStatsSnapshotsBuffers() {
	buf := s.registry.Create("room-1", "narr-1")
	s.Require().NoError(buf.Append("one "))
	s.Require().NoError(buf.Append("two"))

	s.clk.Advance(time.Minute)
	buf.Complete()

	stats := s.registry.Stats()
	s.Require().Contains(stats, "room-1")
	s.Equal("narr-1", stats["room-1"].NarrativeID)
	s.Equal(2, stats["room-1"].Tokens)
	s.Equal(7, stats["room-1"].Chars)
	s.True(stats["room-1"].Complete)
	s.False(stats["room-1"].Forced)
	s.False(stats["room-1"].Errored)
	s.Equal(time.Minute, stats["room-1"].Age)
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}
