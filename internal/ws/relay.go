package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	rediskeys "github.com/playmatatu/pinball/internal/redis"
)

// StartRelay subscribes to the frames channel and forwards every frame to
// the clients of its session connected to this instance.
func (h *Hub) StartRelay(ctx context.Context, rdb *redis.Client) {
	pubsub := rdb.Subscribe(ctx, rediskeys.FramesChannel)
	ch := pubsub.Channel()
	h.log.Info("frame relay started", zap.String("channel", rediskeys.FramesChannel))
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				h.relay([]byte(msg.Payload))
			}
		}
	}()
}

// relay wraps a published frame in the client envelope.
func (h *Hub) relay(payload []byte) {
	var head struct {
		Session string `json:"session"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.Session == "" {
		h.log.Warn("invalid frame payload", zap.Error(err))
		return
	}
	data, err := json.Marshal(WSMessage{Type: TypeFrame, Data: payload})
	if err != nil {
		return
	}
	h.Broadcast(head.Session, data)
}
