package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	rediskeys "github.com/playmatatu/pinball/internal/redis"
)

// ExpirySchedule tracks when idle sessions are due to be closed.
type ExpirySchedule interface {
	Schedule(ctx context.Context, id string, at time.Time) error
	Cancel(ctx context.Context, id string) error
	// Due removes and returns the sessions due at or before now.
	Due(ctx context.Context, now time.Time) ([]string, error)
}

// RedisExpiry keeps the schedule in a sorted set scored by unix time, so the
// schedule survives restarts of the worker.
type RedisExpiry struct {
	rdb *redis.Client
	key string
}

func NewRedisExpiry(rdb *redis.Client) *RedisExpiry {
	return &RedisExpiry{rdb: rdb, key: rediskeys.SessionExpiryKey}
}

func (r *RedisExpiry) Schedule(ctx context.Context, id string, at time.Time) error {
	return r.rdb.ZAdd(ctx, r.key, redis.Z{Score: float64(at.Unix()), Member: id}).Err()
}

func (r *RedisExpiry) Cancel(ctx context.Context, id string) error {
	return r.rdb.ZRem(ctx, r.key, id).Err()
}

func (r *RedisExpiry) Due(ctx context.Context, now time.Time) ([]string, error) {
	members, err := r.rdb.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		return nil, err
	}
	var due []string
	for _, m := range members {
		// Only the instance that removes the member expires the session.
		if removed, _ := r.rdb.ZRem(ctx, r.key, m).Result(); removed > 0 {
			due = append(due, m)
		}
	}
	return due, nil
}

// MemoryExpiry is the in-process schedule used without Redis.
type MemoryExpiry struct {
	mu sync.Mutex
	at map[string]time.Time
}

func NewMemoryExpiry() *MemoryExpiry {
	return &MemoryExpiry{at: make(map[string]time.Time)}
}

func (m *MemoryExpiry) Schedule(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	m.at[id] = at
	m.mu.Unlock()
	return nil
}

func (m *MemoryExpiry) Cancel(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.at, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryExpiry) Due(_ context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []string
	for id, at := range m.at {
		if !at.After(now) {
			due = append(due, id)
			delete(m.at, id)
		}
	}
	return due, nil
}

// StartExpiryWorker closes sessions that saw no actuation for the idle
// timeout. A session that was touched since it was scheduled is pushed back
// instead.
func StartExpiryWorker(ctx context.Context, m *Manager, poll time.Duration) {
	log := m.log.Named("expiry")
	log.Info("expiry worker started", zap.Duration("poll", poll))
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("expiry worker stopping")
				return
			case now := <-ticker.C:
				m.ExpireDue(ctx, now)
			}
		}
	}()
}

// ExpireDue runs one pass of the expiry worker.
func (m *Manager) ExpireDue(ctx context.Context, now time.Time) []string {
	due, err := m.expiry.Due(ctx, now)
	if err != nil {
		m.log.Warn("fetch due sessions", zap.Error(err))
		return nil
	}
	var closed []string
	for _, id := range due {
		s, err := m.Get(id)
		if err != nil {
			continue
		}
		if next := s.LastActive().Add(m.idle); next.After(now) {
			if err := m.expiry.Schedule(ctx, id, next); err != nil {
				m.log.Warn("reschedule session", zap.String("session", id), zap.Error(err))
			}
			continue
		}
		if err := m.Close(ctx, id); err == nil {
			m.log.Info("idle session closed", zap.String("session", id))
			closed = append(closed, id)
		}
	}
	return closed
}
