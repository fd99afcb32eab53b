package narrative

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/errors"
	redisclient "github.com/KirkDiggler/gm-api/internal/redis"
)

const (
	entryKeyPrefix = "narrative:"
	roomLogKey     = "narratives:room:"

	errEntryNil     = "entry cannot be nil"
	errEntryIDEmpty = "entry ID cannot be empty"
	errRoomIDEmpty  = "room ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis-backed narrative repository
func NewRedisRepository(client redisclient.Client) Repository {
	return &redisRepository{
		client: client,
	}
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	e := input.Entry
	if e == nil {
		return nil, errors.InvalidArgument(errEntryNil)
	}
	if e.ID == "" {
		return nil, errors.InvalidArgument(errEntryIDEmpty)
	}
	if e.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}
	if e.Role != game.RoleUser && e.Role != game.RoleAI {
		return nil, errors.InvalidArgumentf("invalid narrative role %q", e.Role)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal entry")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, entryKeyPrefix+e.ID, data, 0)
	pipe.RPush(ctx, roomLogKey+e.RoomID, e.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to append entry")
	}

	return &CreateOutput{Entry: e}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errEntryIDEmpty)
	}

	result, err := r.client.Get(ctx, entryKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("narrative entry with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get entry")
	}

	var e game.NarrativeEntry
	if err := json.Unmarshal([]byte(result), &e); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal entry")
	}

	return &GetOutput{Entry: &e}, nil
}

func (r *redisRepository) ListRecent(ctx context.Context, input ListRecentInput) (*ListRecentOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	start := int64(0)
	if input.Limit > 0 {
		start = int64(-input.Limit)
	}

	ids, err := r.client.LRange(ctx, roomLogKey+input.RoomID, start, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list room narrative")
	}
	if len(ids) == 0 {
		return &ListRecentOutput{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load narrative entries")
	}

	entries := make([]*game.NarrativeEntry, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var e game.NarrativeEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal entry")
		}
		entries = append(entries, &e)
	}

	return &ListRecentOutput{Entries: entries}, nil
}
