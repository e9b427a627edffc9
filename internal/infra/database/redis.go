package database

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis returns the pub/sub client backing the realtime event feed.
func NewRedis(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
}
