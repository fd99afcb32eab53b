package judgment

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/errors"
	redisclient "github.com/KirkDiggler/gm-api/internal/redis"
)

const (
	judgmentKeyPrefix  = "judgment:"
	roomJudgmentsKey   = "judgments:room:"
	actorCurrentPrefix = "judgment:current:"

	errJudgmentNil     = "judgment cannot be nil"
	errJudgmentIDEmpty = "judgment ID cannot be empty"
	errRoomIDEmpty     = "room ID cannot be empty"
	errActorIDEmpty    = "actor ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis-backed judgment repository
func NewRedisRepository(client redisclient.Client) Repository {
	return &redisRepository{
		client: client,
	}
}

// currentKey maps (room, actor) to the actor's most recent judgment ID
func currentKey(roomID, actorID string) string {
	return actorCurrentPrefix + roomID + ":" + actorID
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	j := input.Judgment
	if j == nil {
		return nil, errors.InvalidArgument(errJudgmentNil)
	}
	if j.ID == "" {
		return nil, errors.InvalidArgument(errJudgmentIDEmpty)
	}
	if j.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}
	if j.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}
	if !j.Phase.Valid() {
		return nil, errors.InvalidArgumentf("invalid phase %d", j.Phase)
	}

	data, err := json.Marshal(j)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal judgment")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, judgmentKeyPrefix+j.ID, data, 0)
	pipe.RPush(ctx, roomJudgmentsKey+j.RoomID, j.ID)
	pipe.Set(ctx, currentKey(j.RoomID, j.ActorID), j.ID, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create judgment")
	}

	return &CreateOutput{Judgment: j}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errJudgmentIDEmpty)
	}

	result, err := r.client.Get(ctx, judgmentKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("judgment with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get judgment")
	}

	var j game.Judgment
	if err := json.Unmarshal([]byte(result), &j); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal judgment")
	}

	return &GetOutput{Judgment: &j}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	j := input.Judgment
	if j == nil {
		return nil, errors.InvalidArgument(errJudgmentNil)
	}
	if j.ID == "" {
		return nil, errors.InvalidArgument(errJudgmentIDEmpty)
	}
	if !j.Phase.Valid() {
		return nil, errors.InvalidArgumentf("invalid phase %d", j.Phase)
	}

	key := judgmentKeyPrefix + j.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("judgment with ID %s not found", j.ID)
	}

	data, err := json.Marshal(j)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal judgment")
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update judgment")
	}

	return &UpdateOutput{Judgment: j}, nil
}

func (r *redisRepository) CurrentForActor(ctx context.Context, input CurrentForActorInput) (*CurrentForActorOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}
	if input.ActorID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	id, err := r.client.Get(ctx, currentKey(input.RoomID, input.ActorID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no judgment for actor %s in room %s", input.ActorID, input.RoomID)
		}
		return nil, errors.Wrapf(err, "failed to get current judgment mapping")
	}

	getOutput, err := r.Get(ctx, GetInput{ID: id})
	if err != nil {
		return nil, err
	}

	return &CurrentForActorOutput{Judgment: getOutput.Judgment}, nil
}

func (r *redisRepository) ListByPhase(ctx context.Context, input ListByPhaseInput) (*ListByPhaseOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}
	if !input.Phase.Valid() {
		return nil, errors.InvalidArgumentf("invalid phase %d", input.Phase)
	}

	judgments, err := r.loadRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}

	matched := make([]*game.Judgment, 0, len(judgments))
	for _, j := range judgments {
		if j.Phase == input.Phase {
			matched = append(matched, j)
		}
	}

	return &ListByPhaseOutput{Judgments: matched}, nil
}

func (r *redisRepository) AdvancePhase(ctx context.Context, input AdvancePhaseInput) (*AdvancePhaseOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}
	if !input.From.Valid() || !input.To.Valid() {
		return nil, errors.InvalidArgumentf("invalid phase transition %d -> %d", input.From, input.To)
	}
	if input.To < input.From {
		return nil, errors.InvalidArgumentf("phase cannot move backward: %d -> %d", input.From, input.To)
	}

	judgments, err := r.loadRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}

	advanced := make([]*game.Judgment, 0, len(judgments))
	pipe := r.client.TxPipeline()
	for _, j := range judgments {
		if j.Phase != input.From {
			continue
		}
		j.Phase = input.To
		if input.NarrativeID != "" {
			j.NarrativeID = input.NarrativeID
		}

		data, err := json.Marshal(j)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal judgment")
		}
		pipe.Set(ctx, judgmentKeyPrefix+j.ID, data, 0)
		advanced = append(advanced, j)
	}

	if len(advanced) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, errors.Wrapf(err, "failed to advance judgments")
		}
	}

	return &AdvancePhaseOutput{Judgments: advanced}, nil
}

// loadRoom returns the room's judgments in creation order
func (r *redisRepository) loadRoom(ctx context.Context, roomID string) ([]*game.Judgment, error) {
	ids, err := r.client.LRange(ctx, roomJudgmentsKey+roomID, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list room judgments")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = judgmentKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load room judgments")
	}

	judgments := make([]*game.Judgment, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var j game.Judgment
		if err := json.Unmarshal([]byte(s), &j); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal judgment")
		}
		judgments = append(judgments, &j)
	}

	return judgments, nil
}
