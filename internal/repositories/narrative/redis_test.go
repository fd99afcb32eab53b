package narrative_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/errors"
	"github.com/KirkDiggler/gm-api/internal/repositories/narrative"
	"github.com/KirkDiggler/gm-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    narrative.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.repo = narrative.NewRedisRepository(client)
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *RedisRepositoryTestSuite) newEntry(id, content string) *game.NarrativeEntry {
	return &game.NarrativeEntry{
		ID:        id,
		RoomID:    "room-1",
		Role:      game.RoleAI,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	_, err := s.repo.Create(s.ctx, narrative.CreateInput{
		Entry: s.newEntry("narr-1", "The vault door grinds open."),
	})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, narrative.GetInput{ID: "narr-1"})
	s.Require().NoError(err)
	s.Equal(game.RoleAI, got.Entry.Role)
	s.Equal("The vault door grinds open.", got.Entry.Content)
}

func (s *RedisRepositoryTestSuite) TestCreateRejectsUnknownRole() {
	e := s.newEntry("narr-1", "text")
	e.Role = "system"

	_, err := s.repo.Create(s.ctx, narrative.CreateInput{Entry: e})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestListRecentReturnsNewestInOrder() {
	for i := 1; i <= 7; i++ {
		_, err := s.repo.Create(s.ctx, narrative.CreateInput{
			Entry: s.newEntry(fmt.Sprintf("narr-%d", i), fmt.Sprintf("round %d", i)),
		})
		s.Require().NoError(err)
	}

	out, err := s.repo.ListRecent(s.ctx, narrative.ListRecentInput{RoomID: "room-1", Limit: 5})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 5)

	// oldest of the window first, newest last
	s.Equal("round 3", out.Entries[0].Content)
	s.Equal("round 7", out.Entries[4].Content)
}

func (s *RedisRepositoryTestSuite) TestListRecentEmptyRoom() {
	out, err := s.repo.ListRecent(s.ctx, narrative.ListRecentInput{RoomID: "room-9", Limit: 5})
	s.Require().NoError(err)
	s.Empty(out.Entries)
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
