package roundstate

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/gm-api/internal/errors"
	redisclient "github.com/KirkDiggler/gm-api/internal/redis"
)

const (
	roundKeyPrefix = "round:room:"

	// a mirror that old is stale; the round it described is long over
	mirrorTTL = 24 * time.Hour

	errRoomIDEmpty = "room ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis-backed round state repository
func NewRedisRepository(client redisclient.Client) Repository {
	return &redisRepository{
		client: client,
	}
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}
	if input.State == nil {
		return nil, errors.InvalidArgument("state cannot be nil")
	}

	data, err := json.Marshal(input.State)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal round state")
	}

	if err := r.client.Set(ctx, roundKeyPrefix+input.RoomID, data, mirrorTTL).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to save round state")
	}

	return &SaveOutput{}, nil
}

func (r *redisRepository) Load(ctx context.Context, input LoadInput) (*LoadOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	result, err := r.client.Get(ctx, roundKeyPrefix+input.RoomID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no round state for room %s", input.RoomID)
		}
		return nil, errors.Wrapf(err, "failed to load round state")
	}

	var state State
	if err := json.Unmarshal([]byte(result), &state); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal round state")
	}

	return &LoadOutput{State: &state}, nil
}

func (r *redisRepository) Clear(ctx context.Context, input ClearInput) (*ClearOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	if err := r.client.Del(ctx, roundKeyPrefix+input.RoomID).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to clear round state")
	}

	return &ClearOutput{}, nil
}
