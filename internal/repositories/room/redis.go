package room

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/errors"
	redisclient "github.com/KirkDiggler/gm-api/internal/redis"
)

const (
	roomKeyPrefix  = "room:"
	activeRoomsKey = "rooms:active"

	errRoomNil     = "room cannot be nil"
	errRoomIDEmpty = "room ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis-backed room repository
func NewRedisRepository(client redisclient.Client) Repository {
	return &redisRepository{
		client: client,
	}
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Room == nil {
		return nil, errors.InvalidArgument(errRoomNil)
	}
	if input.Room.ID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}
	if input.Room.HostID == "" {
		return nil, errors.InvalidArgument("host ID cannot be empty")
	}

	data, err := json.Marshal(input.Room)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal room")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, roomKeyPrefix+input.Room.ID, data, 0)
	if input.Room.IsActive {
		pipe.SAdd(ctx, activeRoomsKey, input.Room.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create room")
	}

	return &CreateOutput{Room: input.Room}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	result, err := r.client.Get(ctx, roomKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("room with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get room")
	}

	var rm game.Room
	if err := json.Unmarshal([]byte(result), &rm); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal room")
	}

	return &GetOutput{Room: &rm}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Room == nil {
		return nil, errors.InvalidArgument(errRoomNil)
	}
	if input.Room.ID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	key := roomKeyPrefix + input.Room.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("room with ID %s not found", input.Room.ID)
	}

	data, err := json.Marshal(input.Room)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal room")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	if input.Room.IsActive {
		pipe.SAdd(ctx, activeRoomsKey, input.Room.ID)
	} else {
		pipe.SRem(ctx, activeRoomsKey, input.Room.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update room")
	}

	return &UpdateOutput{Room: input.Room}, nil
}

func (r *redisRepository) ListActive(ctx context.Context, _ ListActiveInput) (*ListActiveOutput, error) {
	ids, err := r.client.SMembers(ctx, activeRoomsKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list active rooms")
	}
	if len(ids) == 0 {
		return &ListActiveOutput{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = roomKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load active rooms")
	}

	rooms := make([]*game.Room, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rm game.Room
		if err := json.Unmarshal([]byte(s), &rm); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal room")
		}
		rooms = append(rooms, &rm)
	}

	return &ListActiveOutput{Rooms: rooms}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	if _, err := r.Get(ctx, GetInput(input)); err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, roomKeyPrefix+input.ID)
	pipe.SRem(ctx, activeRoomsKey, input.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete room")
	}

	return &DeleteOutput{}, nil
}
