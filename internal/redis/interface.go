package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client is the interface repositories depend on, so tests can swap in
// miniredis-backed clients without touching repository code
type Client interface {
	redis.UniversalClient
}

// Pipeliner re-exports redis.Pipeliner for batch writes
type Pipeliner interface {
	redis.Pipeliner
}
