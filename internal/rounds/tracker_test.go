package rounds_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/gm-api/internal/rounds"
)

type TrackerTestSuite struct {
	suite.Suite
	tracker *rounds.Tracker
}

func (s *TrackerTestSuite) SetupTest() {
	s.tracker = rounds.NewTracker()
}

func (s *TrackerTestSuite) TestSingleActorRound() {
	s.tracker.Submit("room-1", "actor-a", rounds.Analysis{Modifier: 3, Difficulty: 12})
	s.False(s.tracker.AllRolled("room-1"))

	s.True(s.tracker.RecordRoll("room-1", "actor-a", 14))
	s.True(s.tracker.AllRolled("room-1"))
}

func (s *TrackerTestSuite) TestNotReadyUntilEveryoneRolls() {
	s.tracker.Submit("room-1", "actor-a", rounds.Analysis{})
	s.tracker.Submit("room-1", "actor-b", rounds.Analysis{})

	s.True(s.tracker.RecordRoll("room-1", "actor-a", 14))
	s.False(s.tracker.AllRolled("room-1"))

	s.True(s.tracker.RecordRoll("room-1", "actor-b", 9))
	s.True(s.tracker.AllRolled("room-1"))
}

func (s *TrackerTestSuite) TestDuplicateRollRejectedFirstDieWins() {
	s.tracker.OpenRound("room-1", []string{"actor-a", "actor-b", "actor-c"}, nil)

	s.True(s.tracker.RecordRoll("room-1", "actor-a", 5))
	s.False(s.tracker.RecordRoll("room-1", "actor-a", 7))
	s.Equal(int32(5), s.tracker.Results("room-1")["actor-a"])

	s.False(s.tracker.AllRolled("room-1"))
	s.True(s.tracker.RecordRoll("room-1", "actor-b", 11))
	s.True(s.tracker.RecordRoll("room-1", "actor-c", 20))
	s.True(s.tracker.AllRolled("room-1"))
}

func (s *TrackerTestSuite) TestRollOutsideRoundRejected() {
	s.False(s.tracker.RecordRoll("room-1", "actor-a", 10))

	s.tracker.Submit("room-1", "actor-a", rounds.Analysis{})
	s.False(s.tracker.RecordRoll("room-1", "actor-b", 10))
}

func (s *TrackerTestSuite) TestResubmitClearsRoll() {
	s.tracker.Submit("room-1", "actor-a", rounds.Analysis{Difficulty: 12})
	s.True(s.tracker.RecordRoll("room-1", "actor-a", 14))
	s.True(s.tracker.AllRolled("room-1"))

	// new action supersedes the rolled one
	s.tracker.Submit("room-1", "actor-a", rounds.Analysis{Difficulty: 18})
	s.False(s.tracker.AllRolled("room-1"))
	s.Empty(s.tracker.Results("room-1"))
	s.Equal(int32(18), s.tracker.Analyses("room-1")["actor-a"].Difficulty)
}

func (s *TrackerTestSuite) TestOpenRoundReplacesPriorState() {
	first := s.tracker.OpenRound("room-1", []string{"actor-a"}, nil)
	s.True(s.tracker.RecordRoll("room-1", "actor-a", 14))

	second := s.tracker.OpenRound("room-1", []string{"actor-b"}, map[string]rounds.Analysis{
		"actor-b": {Modifier: 1, Difficulty: 15, Reasoning: "corroded lock"},
	})
	s.Greater(second, first)
	s.Empty(s.tracker.Results("room-1"))
	s.Equal(int32(15), s.tracker.Analyses("room-1")["actor-b"].Difficulty)
}

func (s *TrackerTestSuite) TestRoundIDsIncreaseAcrossResets() {
	first := s.tracker.OpenRound("room-1", []string{"actor-a"}, nil)
	s.tracker.Reset("room-1")

	_, open := s.tracker.RoundID("room-1")
	s.False(open)
	s.Empty(s.tracker.Results("room-1"))

	second := s.tracker.OpenRound("room-1", []string{"actor-a"}, nil)
	s.Greater(second, first)
}

func (s *TrackerTestSuite) TestDiscardUnblocksRound() {
	s.tracker.Submit("room-1", "actor-a", rounds.Analysis{})
	s.tracker.Submit("room-1", "actor-b", rounds.Analysis{})

	s.True(s.tracker.RecordRoll("room-1", "actor-a", 14))

	// the holdout leaves; the remaining rolls satisfy the round
	s.True(s.tracker.Discard("room-1", "actor-b"))
}

func (s *TrackerTestSuite) TestDiscardLastActorClosesRound() {
	s.tracker.Submit("room-1", "actor-a", rounds.Analysis{})

	s.False(s.tracker.Discard("room-1", "actor-a"))
	s.False(s.tracker.AllRolled("room-1"))

	submitted, rolled := s.tracker.Counts("room-1")
	s.Equal(0, submitted)
	s.Equal(0, rolled)
}

func (s *TrackerTestSuite) TestRoomsAreIndependent() {
	s.tracker.Submit("room-1", "actor-a", rounds.Analysis{})
	s.tracker.Submit("room-2", "actor-a", rounds.Analysis{})

	s.True(s.tracker.RecordRoll("room-1", "actor-a", 14))
	s.True(s.tracker.AllRolled("room-1"))
	s.False(s.tracker.AllRolled("room-2"))
}

func (s *TrackerTestSuite) TestSnapshotAndRestore() {
	s.tracker.Submit("room-1", "actor-a", rounds.Analysis{})
	s.tracker.Submit("room-1", "actor-b", rounds.Analysis{})
	s.True(s.tracker.RecordRoll("room-1", "actor-a", 14))

	snap := s.tracker.Snapshot("room-1")
	s.Require().NotNil(snap)
	s.Equal([]string{"actor-b"}, snap.Pending)
	s.Equal(map[string]int32{"actor-a": 14}, snap.Rolled)

	fresh := rounds.NewTracker()
	fresh.Restore("room-1", *snap)

	s.False(fresh.RecordRoll("room-1", "actor-a", 9))
	s.True(fresh.RecordRoll("room-1", "actor-b", 9))
	s.True(fresh.AllRolled("room-1"))

	// the restored ID becomes the floor for new rounds
	next := fresh.OpenRound("room-1", []string{"actor-a"}, nil)
	s.Greater(next, snap.RoundID)
}

func TestTrackerTestSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}
