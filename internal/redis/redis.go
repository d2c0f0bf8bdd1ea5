package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Key layout shared by the session manager and the websocket relay.
const (
	FramesChannel    = "pinball:frames"
	SessionExpiryKey = "pinball:sessions:expiry"
)

// SnapshotKey is where the latest pose snapshot of a session is cached.
func SnapshotKey(sessionID string) string {
	return "pinball:session:" + sessionID + ":snapshot"
}

// Connect establishes a connection to Redis
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
