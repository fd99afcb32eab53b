package roundstate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/gm-api/internal/errors"
	"github.com/KirkDiggler/gm-api/internal/repositories/roundstate"
	"github.com/KirkDiggler/gm-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    roundstate.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.repo = roundstate.NewRedisRepository(client)
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAndLoad() {
	_, err := s.repo.Save(s.ctx, roundstate.SaveInput{
		RoomID: "room-1",
		State: &roundstate.State{
			RoundID: 3,
			Pending: []string{"actor-2"},
			Rolled:  map[string]int32{"actor-1": 17},
		},
	})
	s.Require().NoError(err)

	out, err := s.repo.Load(s.ctx, roundstate.LoadInput{RoomID: "room-1"})
	s.Require().NoError(err)
	s.Equal(int64(3), out.State.RoundID)
	s.Equal([]string{"actor-2"}, out.State.Pending)
	s.Equal(int32(17), out.State.Rolled["actor-1"])
}

func (s *RedisRepositoryTestSuite) TestSaveRequiresState() {
	_, err := s.repo.Save(s.ctx, roundstate.SaveInput{RoomID: "room-1"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestLoadMissing() {
	_, err := s.repo.Load(s.ctx, roundstate.LoadInput{RoomID: "room-9"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestSaveOverwrites() {
	_, err := s.repo.Save(s.ctx, roundstate.SaveInput{
		RoomID: "room-1",
		State: &roundstate.State{
			RoundID: 1,
			Pending: []string{"actor-1"},
			Rolled:  map[string]int32{},
		},
	})
	s.Require().NoError(err)

	_, err = s.repo.Save(s.ctx, roundstate.SaveInput{
		RoomID: "room-1",
		State: &roundstate.State{
			RoundID: 1,
			Pending: []string{},
			Rolled:  map[string]int32{"actor-1": 20},
		},
	})
	s.Require().NoError(err)

	out, err := s.repo.Load(s.ctx, roundstate.LoadInput{RoomID: "room-1"})
	s.Require().NoError(err)
	s.Empty(out.State.Pending)
	s.Equal(int32(20), out.State.Rolled["actor-1"])
}

func (s *RedisRepositoryTestSuite) TestClear() {
	_, err := s.repo.Save(s.ctx, roundstate.SaveInput{
		RoomID: "room-1",
		State: &roundstate.State{
			RoundID: 1,
			Pending: []string{"actor-1"},
		},
	})
	s.Require().NoError(err)

	_, err = s.repo.Clear(s.ctx, roundstate.ClearInput{RoomID: "room-1"})
	s.Require().NoError(err)

	_, err = s.repo.Load(s.ctx, roundstate.LoadInput{RoomID: "room-1"})
	s.True(errors.IsNotFound(err))

	// clearing an absent mirror is fine
	_, err = s.repo.Clear(s.ctx, roundstate.ClearInput{RoomID: "room-1"})
	s.NoError(err)
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
