package redis

import (
	"github.com/redis/go-redis/v9"
)

// Nil is returned by read operations when the key does not exist.
const Nil = redis.Nil

// NewScript prepares a Lua script for EVALSHA execution.
func NewScript(script string) *redis.Script {
	return redis.NewScript(script)
}
