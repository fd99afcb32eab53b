package actor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/errors"
	"github.com/KirkDiggler/gm-api/internal/repositories/actor"
	"github.com/KirkDiggler/gm-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    actor.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.repo = actor.NewRedisRepository(client)
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *RedisRepositoryTestSuite) newActor(id, playerID string) *game.Actor {
	return &game.Actor{
		ID:       id,
		PlayerID: playerID,
		Name:     "Theren",
		Abilities: game.AbilityScores{
			Strength: 14, Dexterity: 12, Constitution: 13,
			Intelligence: 10, Wisdom: 8, Charisma: 15,
		},
		CreatedAt: time.Now().UTC(),
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	a := s.newActor("actor-1", "player-1")

	_, err := s.repo.Create(s.ctx, actor.CreateInput{RoomID: "room-1", Actor: a})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, actor.GetInput{ID: "actor-1"})
	s.Require().NoError(err)
	s.Equal("Theren", got.Actor.Name)
	s.Equal(int32(14), got.Actor.Abilities.Strength)
}

func (s *RedisRepositoryTestSuite) TestOneActorPerPlayerPerRoom() {
	_, err := s.repo.Create(s.ctx, actor.CreateInput{
		RoomID: "room-1", Actor: s.newActor("actor-1", "player-1"),
	})
	s.Require().NoError(err)

	_, err = s.repo.Create(s.ctx, actor.CreateInput{
		RoomID: "room-1", Actor: s.newActor("actor-2", "player-1"),
	})
	s.True(errors.IsAlreadyExists(err))

	// same player in a different room is fine
	_, err = s.repo.Create(s.ctx, actor.CreateInput{
		RoomID: "room-2", Actor: s.newActor("actor-3", "player-1"),
	})
	s.NoError(err)
}

func (s *RedisRepositoryTestSuite) TestGetByPlayer() {
	a := s.newActor("actor-1", "player-1")
	_, err := s.repo.Create(s.ctx, actor.CreateInput{RoomID: "room-1", Actor: a})
	s.Require().NoError(err)

	got, err := s.repo.GetByPlayer(s.ctx, actor.GetByPlayerInput{
		RoomID: "room-1", PlayerID: "player-1",
	})
	s.Require().NoError(err)
	s.Equal("actor-1", got.Actor.ID)

	_, err = s.repo.GetByPlayer(s.ctx, actor.GetByPlayerInput{
		RoomID: "room-2", PlayerID: "player-1",
	})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestListByRoom() {
	for i, playerID := range []string{"player-1", "player-2"} {
		a := s.newActor("actor-"+playerID, playerID)
		a.Name = []string{"Theren", "Mira"}[i]
		_, err := s.repo.Create(s.ctx, actor.CreateInput{RoomID: "room-1", Actor: a})
		s.Require().NoError(err)
	}

	out, err := s.repo.ListByRoom(s.ctx, actor.ListByRoomInput{RoomID: "room-1"})
	s.Require().NoError(err)
	s.Len(out.Actors, 2)

	empty, err := s.repo.ListByRoom(s.ctx, actor.ListByRoomInput{RoomID: "room-9"})
	s.Require().NoError(err)
	s.Empty(empty.Actors)
}

func (s *RedisRepositoryTestSuite) TestUpdate() {
	a := s.newActor("actor-1", "player-1")
	_, err := s.repo.Create(s.ctx, actor.CreateInput{RoomID: "room-1", Actor: a})
	s.Require().NoError(err)

	a.StatusEffects = []game.StatusEffect{{Name: "poisoned", Modifier: -2}}
	_, err = s.repo.Update(s.ctx, actor.UpdateInput{Actor: a})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, actor.GetInput{ID: "actor-1"})
	s.Require().NoError(err)
	s.Require().Len(got.Actor.StatusEffects, 1)
	s.Equal(int32(-2), got.Actor.StatusEffects[0].Modifier)
}

func (s *RedisRepositoryTestSuite) TestDelete() {
	a := s.newActor("actor-1", "player-1")
	_, err := s.repo.Create(s.ctx, actor.CreateInput{RoomID: "room-1", Actor: a})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, actor.DeleteInput{RoomID: "room-1", ID: "actor-1"})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, actor.GetInput{ID: "actor-1"})
	s.True(errors.IsNotFound(err))

	// the player slot is free again
	_, err = s.repo.Create(s.ctx, actor.CreateInput{
		RoomID: "room-1", Actor: s.newActor("actor-2", "player-1"),
	})
	s.NoError(err)
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
