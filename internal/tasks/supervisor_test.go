package tasks_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/gm-api/internal/tasks"
)

type SupervisorTestSuite struct {
	suite.Suite
	supervisor *tasks.Supervisor
}

func (s *SupervisorTestSuite) SetupTest() {
	supervisor, err := tasks.NewSupervisor(&tasks.Config{})
	s.Require().NoError(err)
	s.supervisor = supervisor
}

func (s *SupervisorTestSuite) TestStartRunsTask() {
	done := make(chan struct{})

	s.supervisor.Start("room-1", "narrate", func(_ context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("task never ran")
	}
}

func (s *SupervisorTestSuite) TestSlotFreedAfterCompletion() {
	started := make(chan struct{})
	release := make(chan struct{})

	s.supervisor.Start("room-1", "narrate", func(_ context.Context) error {
		close(started)
		<-release
		return nil
	})

	<-started
	s.True(s.supervisor.Running("room-1"))

	close(release)
	s.Eventually(func() bool {
		return !s.supervisor.Running("room-1")
	}, time.Second, 5*time.Millisecond)
}

func (s *SupervisorTestSuite) TestStartCancelsPredecessor() {
	var firstCanceled atomic.Bool
	firstStarted := make(chan struct{})

	s.supervisor.Start("room-1", "narrate-old", func(ctx context.Context) error {
		close(firstStarted)
		<-ctx.Done()
		firstCanceled.Store(true)
		return ctx.Err()
	})
	<-firstStarted

	secondRan := make(chan struct{})
	s.supervisor.Start("room-1", "narrate-new", func(_ context.Context) error {
		close(secondRan)
		return nil
	})

	// Start must not return until the predecessor has fully exited
	s.True(firstCanceled.Load())

	select {
	case <-secondRan:
	case <-time.After(time.Second):
		s.Fail("replacement task never ran")
	}
}

func (s *SupervisorTestSuite) TestRoomsAreIndependent() {
	blockStarted := make(chan struct{})
	release := make(chan struct{})

	s.supervisor.Start("room-1", "narrate", func(_ context.Context) error {
		close(blockStarted)
		<-release
		return nil
	})
	<-blockStarted

	otherRan := make(chan struct{})
	s.supervisor.Start("room-2", "narrate", func(_ context.Context) error {
		close(otherRan)
		return nil
	})

	select {
	case <-otherRan:
	case <-time.After(time.Second):
		s.Fail("task in unrelated room was blocked")
	}

	s.True(s.supervisor.Running("room-1"))
	close(release)
}

func (s *SupervisorTestSuite) TestTimeoutCancelsTask() {
	supervisor, err := tasks.NewSupervisor(&tasks.Config{Timeout: 20 * time.Millisecond})
	s.Require().NoError(err)

	timedOut := make(chan struct{})
	supervisor.Start("room-1", "narrate", func(ctx context.Context) error {
		<-ctx.Done()
		close(timedOut)
		return ctx.Err()
	})

	select {
	case <-timedOut:
	case <-time.After(time.Second):
		s.Fail("task was not canceled by timeout")
	}
}

func (s *SupervisorTestSuite) TestStopWaitsForTask() {
	started := make(chan struct{})
	var finished atomic.Bool

	s.supervisor.Start("room-1", "narrate", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		finished.Store(true)
		return ctx.Err()
	})
	<-started

	s.supervisor.Stop("room-1")
	s.True(finished.Load())
	s.False(s.supervisor.Running("room-1"))
}

func (s *SupervisorTestSuite) TestStopAll() {
	for _, roomID := range []string{"room-1", "room-2", "room-3"} {
		started := make(chan struct{})
		s.supervisor.Start(roomID, "narrate", func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
		<-started
	}
	s.Equal(3, s.supervisor.Len())

	s.supervisor.StopAll()
	s.Equal(0, s.supervisor.Len())
}

func (s *SupervisorTestSuite) TestStatsCountStartedAndRunning() {
	release := make(chan struct{})
	for _, roomID := range []string{"room-1", "room-2"} {
		started := make(chan struct{})
		s.supervisor.Start(roomID, "narrate", func(ctx context.Context) error {
			close(started)
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		})
		<-started
	}

	stats := s.supervisor.Stats()
	s.Equal(uint64(2), stats.Started)
	s.Equal(2, stats.Running)

	close(release)
	s.Eventually(func() bool {
		return s.supervisor.Stats().Running == 0
	}, time.Second, 5*time.Millisecond)

	// started is cumulative
	s.Equal(uint64(2), s.supervisor.Stats().Started)
}

func TestSupervisorTestSuite(t *testing.T) {
	suite.Run(t, new(SupervisorTestSuite))
}
