package actor

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/errors"
	redisclient "github.com/KirkDiggler/gm-api/internal/redis"
)

const (
	actorKeyPrefix    = "actor:"
	roomActorsPrefix  = "actors:room:"
	playerActorPrefix = "actor:player:"

	errActorNil      = "actor cannot be nil"
	errActorIDEmpty  = "actor ID cannot be empty"
	errRoomIDEmpty   = "room ID cannot be empty"
	errPlayerIDEmpty = "player ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis-backed actor repository
func NewRedisRepository(client redisclient.Client) Repository {
	return &redisRepository{
		client: client,
	}
}

// playerKey maps (room, player) to the player's actor ID in that room
func playerKey(roomID, playerID string) string {
	return playerActorPrefix + roomID + ":" + playerID
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Actor == nil {
		return nil, errors.InvalidArgument(errActorNil)
	}
	if input.Actor.ID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}
	if input.Actor.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	existing, err := r.client.Get(ctx, playerKey(input.RoomID, input.Actor.PlayerID)).Result()
	if err != nil && err != redis.Nil {
		return nil, errors.Wrapf(err, "failed to check existing actor")
	}
	if existing != "" {
		return nil, errors.AlreadyExistsf("player %s already has an actor in room %s",
			input.Actor.PlayerID, input.RoomID)
	}

	data, err := json.Marshal(input.Actor)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal actor")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, actorKeyPrefix+input.Actor.ID, data, 0)
	pipe.SAdd(ctx, roomActorsPrefix+input.RoomID, input.Actor.ID)
	pipe.Set(ctx, playerKey(input.RoomID, input.Actor.PlayerID), input.Actor.ID, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create actor")
	}

	return &CreateOutput{Actor: input.Actor}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	result, err := r.client.Get(ctx, actorKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("actor with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get actor")
	}

	var a game.Actor
	if err := json.Unmarshal([]byte(result), &a); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal actor")
	}

	return &GetOutput{Actor: &a}, nil
}

func (r *redisRepository) GetByPlayer(ctx context.Context, input GetByPlayerInput) (*GetByPlayerOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	actorID, err := r.client.Get(ctx, playerKey(input.RoomID, input.PlayerID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no actor for player %s in room %s", input.PlayerID, input.RoomID)
		}
		return nil, errors.Wrapf(err, "failed to get player actor mapping")
	}

	getOutput, err := r.Get(ctx, GetInput{ID: actorID})
	if err != nil {
		// stale mapping, clean it up
		if errors.IsNotFound(err) {
			r.client.Del(ctx, playerKey(input.RoomID, input.PlayerID))
		}
		return nil, err
	}

	return &GetByPlayerOutput{Actor: getOutput.Actor}, nil
}

func (r *redisRepository) ListByRoom(ctx context.Context, input ListByRoomInput) (*ListByRoomOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	ids, err := r.client.SMembers(ctx, roomActorsPrefix+input.RoomID).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list room actors")
	}
	if len(ids) == 0 {
		return &ListByRoomOutput{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = actorKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load room actors")
	}

	actors := make([]*game.Actor, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// actor deleted but index entry survived; skip
			continue
		}
		var a game.Actor
		if err := json.Unmarshal([]byte(s), &a); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal actor")
		}
		actors = append(actors, &a)
	}

	return &ListByRoomOutput{Actors: actors}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Actor == nil {
		return nil, errors.InvalidArgument(errActorNil)
	}
	if input.Actor.ID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}

	key := actorKeyPrefix + input.Actor.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("actor with ID %s not found", input.Actor.ID)
	}

	data, err := json.Marshal(input.Actor)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal actor")
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update actor")
	}

	return &UpdateOutput{Actor: input.Actor}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errActorIDEmpty)
	}
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	getOutput, err := r.Get(ctx, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, actorKeyPrefix+input.ID)
	pipe.SRem(ctx, roomActorsPrefix+input.RoomID, input.ID)
	pipe.Del(ctx, playerKey(input.RoomID, getOutput.Actor.PlayerID))

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete actor")
	}

	return &DeleteOutput{}, nil
}
