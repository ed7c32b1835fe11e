package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Redis bundles an in-memory Redis server with a connected client. Both are
// closed automatically when the test completes.
type Redis struct {
	Server *miniredis.Miniredis
	Client *redis.Client
}

// NewRedis starts an in-memory Redis for unit tests (no Docker needed).
func NewRedis(t *testing.T) *Redis {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close miniredis client: %v", err)
		}
	})

	return &Redis{Server: server, Client: client}
}

// Addr returns the in-memory server's address
func (r *Redis) Addr() string {
	return r.Server.Addr()
}
