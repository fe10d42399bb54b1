package redis

import (
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisConfig is the connection configuration of a standalone Redis server.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	MaxRetries  int
	PoolSize    int
	DialTimeout time.Duration
}

type redisImpl struct {
	client *goredis.Client
}
