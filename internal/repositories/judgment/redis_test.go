package judgment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/errors"
	"github.com/KirkDiggler/gm-api/internal/repositories/judgment"
	"github.com/KirkDiggler/gm-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    judgment.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.repo = judgment.NewRedisRepository(client)
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *RedisRepositoryTestSuite) newJudgment(id, actorID string, phase game.Phase) *game.Judgment {
	return &game.Judgment{
		ID:         id,
		RoomID:     "room-1",
		ActorID:    actorID,
		ActionText: "I pick the lock",
		ActionType: game.ActionDexterity,
		Modifier:   3,
		Difficulty: 15,
		Phase:      phase,
		CreatedAt:  time.Now().UTC(),
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	j := s.newJudgment("judg-1", "actor-a", game.PhasePreRolled)
	die := int32(14)
	j.DieResult = &die

	_, err := s.repo.Create(s.ctx, judgment.CreateInput{Judgment: j})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, judgment.GetInput{ID: "judg-1"})
	s.Require().NoError(err)
	s.Equal("judg-1", got.Judgment.ID)
	s.Equal(game.PhasePreRolled, got.Judgment.Phase)
	s.Require().NotNil(got.Judgment.DieResult)
	s.Equal(int32(14), *got.Judgment.DieResult)
}

func (s *RedisRepositoryTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, judgment.GetInput{ID: "missing"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestCreateValidation() {
	_, err := s.repo.Create(s.ctx, judgment.CreateInput{})
	s.True(errors.IsInvalidArgument(err))

	j := s.newJudgment("judg-1", "actor-a", game.PhasePreRolled)
	j.RoomID = ""
	_, err = s.repo.Create(s.ctx, judgment.CreateInput{Judgment: j})
	s.True(errors.IsInvalidArgument(err))

	j = s.newJudgment("judg-1", "actor-a", game.Phase(9))
	_, err = s.repo.Create(s.ctx, judgment.CreateInput{Judgment: j})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestCurrentForActorTracksLatest() {
	first := s.newJudgment("judg-1", "actor-a", game.PhasePreRolled)
	_, err := s.repo.Create(s.ctx, judgment.CreateInput{Judgment: first})
	s.Require().NoError(err)

	// a resubmitted action supersedes the first judgment
	second := s.newJudgment("judg-2", "actor-a", game.PhasePreRolled)
	second.ActionText = "I kick the door instead"
	_, err = s.repo.Create(s.ctx, judgment.CreateInput{Judgment: second})
	s.Require().NoError(err)

	current, err := s.repo.CurrentForActor(s.ctx, judgment.CurrentForActorInput{
		RoomID:  "room-1",
		ActorID: "actor-a",
	})
	s.Require().NoError(err)
	s.Equal("judg-2", current.Judgment.ID)
}

func (s *RedisRepositoryTestSuite) TestCurrentForActorNotFound() {
	_, err := s.repo.CurrentForActor(s.ctx, judgment.CurrentForActorInput{
		RoomID:  "room-1",
		ActorID: "actor-none",
	})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestListByPhase() {
	for _, j := range []*game.Judgment{
		s.newJudgment("judg-1", "actor-a", game.PhaseConfirmed),
		s.newJudgment("judg-2", "actor-b", game.PhasePreRolled),
		s.newJudgment("judg-3", "actor-c", game.PhaseConfirmed),
	} {
		_, err := s.repo.Create(s.ctx, judgment.CreateInput{Judgment: j})
		s.Require().NoError(err)
	}

	out, err := s.repo.ListByPhase(s.ctx, judgment.ListByPhaseInput{
		RoomID: "room-1",
		Phase:  game.PhaseConfirmed,
	})
	s.Require().NoError(err)
	s.Require().Len(out.Judgments, 2)
	s.Equal("judg-1", out.Judgments[0].ID)
	s.Equal("judg-3", out.Judgments[1].ID)
}

func (s *RedisRepositoryTestSuite) TestAdvancePhaseLinksNarrative() {
	for _, j := range []*game.Judgment{
		s.newJudgment("judg-1", "actor-a", game.PhaseConfirmed),
		s.newJudgment("judg-2", "actor-b", game.PhaseConfirmed),
		s.newJudgment("judg-3", "actor-c", game.PhasePreRolled),
	} {
		_, err := s.repo.Create(s.ctx, judgment.CreateInput{Judgment: j})
		s.Require().NoError(err)
	}

	out, err := s.repo.AdvancePhase(s.ctx, judgment.AdvancePhaseInput{
		RoomID:      "room-1",
		From:        game.PhaseConfirmed,
		To:          game.PhaseNarrated,
		NarrativeID: "narr-1",
	})
	s.Require().NoError(err)
	s.Require().Len(out.Judgments, 2)

	for _, id := range []string{"judg-1", "judg-2"} {
		got, err := s.repo.Get(s.ctx, judgment.GetInput{ID: id})
		s.Require().NoError(err)
		s.Equal(game.PhaseNarrated, got.Judgment.Phase)
		s.Equal("narr-1", got.Judgment.NarrativeID)
	}

	// the pre-rolled judgment was untouched
	got, err := s.repo.Get(s.ctx, judgment.GetInput{ID: "judg-3"})
	s.Require().NoError(err)
	s.Equal(game.PhasePreRolled, got.Judgment.Phase)
	s.Empty(got.Judgment.NarrativeID)
}

func (s *RedisRepositoryTestSuite) TestAdvancePhaseRejectsBackward() {
	_, err := s.repo.AdvancePhase(s.ctx, judgment.AdvancePhaseInput{
		RoomID: "room-1",
		From:   game.PhaseNarrated,
		To:     game.PhaseConfirmed,
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestUpdate() {
	j := s.newJudgment("judg-1", "actor-a", game.PhasePreRolled)
	_, err := s.repo.Create(s.ctx, judgment.CreateInput{Judgment: j})
	s.Require().NoError(err)

	j.Phase = game.PhaseConfirmed
	j.Outcome = game.OutcomeSuccess
	_, err = s.repo.Update(s.ctx, judgment.UpdateInput{Judgment: j})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, judgment.GetInput{ID: "judg-1"})
	s.Require().NoError(err)
	s.Equal(game.PhaseConfirmed, got.Judgment.Phase)
	s.Equal(game.OutcomeSuccess, got.Judgment.Outcome)
}

func (s *RedisRepositoryTestSuite) TestUpdateNotFound() {
	j := s.newJudgment("judg-ghost", "actor-a", game.PhaseConfirmed)
	_, err := s.repo.Update(s.ctx, judgment.UpdateInput{Judgment: j})
	s.True(errors.IsNotFound(err))
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
