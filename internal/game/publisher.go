package game

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	rediskeys "github.com/playmatatu/pinball/internal/redis"
)

// Publisher receives every stepped frame of every session.
type Publisher interface {
	PublishFrame(ctx context.Context, f *Frame) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, f *Frame) error

func (fn PublisherFunc) PublishFrame(ctx context.Context, f *Frame) error { return fn(ctx, f) }

type nopPublisher struct{}

func (nopPublisher) PublishFrame(context.Context, *Frame) error { return nil }

// RedisPublisher fans frames out on a pub/sub channel so every server
// instance's websocket hub can relay them. Every every-th frame is also
// cached under the session's snapshot key so instances that do not run the
// session can still answer for it.
type RedisPublisher struct {
	rdb   *redis.Client
	every uint64
	ttl   time.Duration
}

func NewRedisPublisher(rdb *redis.Client, every int, ttl time.Duration) *RedisPublisher {
	if every < 1 {
		every = 1
	}
	return &RedisPublisher{rdb: rdb, every: uint64(every), ttl: ttl}
}

func (p *RedisPublisher) PublishFrame(ctx context.Context, f *Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := p.rdb.Publish(ctx, rediskeys.FramesChannel, data).Err(); err != nil {
		return fmt.Errorf("publish frame: %w", err)
	}
	if f.Frame%p.every == 0 {
		if err := p.rdb.SetEx(ctx, rediskeys.SnapshotKey(f.Session), data, p.ttl).Err(); err != nil {
			return fmt.Errorf("cache frame: %w", err)
		}
	}
	return nil
}

// LatestFrame reads the cached frame of a session, which may be running on
// another instance.
func (p *RedisPublisher) LatestFrame(ctx context.Context, sessionID string) (*Frame, error) {
	data, err := p.rdb.Get(ctx, rediskeys.SnapshotKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return nil, err
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &f, nil
}
