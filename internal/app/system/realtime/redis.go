// internal/app/system/realtime/redis.go

package realtime

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// resubscribeDelay is how long the bridge waits before redialing after
// the pub/sub channel closes.
const resubscribeDelay = time.Second

// Bridge mirrors events through a redis channel so every process in a
// multi-instance deployment sees every publish. Local publishes go to
// redis; the subscribe loop feeds remote publishes into the local hub.
type Bridge struct {
	hub     *Hub
	rc      *redis.Client
	channel string
	log     *zap.Logger
}

func NewBridge(hub *Hub, rc *redis.Client, channel string, logger *zap.Logger) *Bridge {
	return &Bridge{hub: hub, rc: rc, channel: channel, log: logger}
}

// Publish sends the event through redis. If redis is unreachable the
// event still reaches local subscribers directly; remote instances miss
// it, which matches the best-effort delivery contract.
func (b *Bridge) Publish(ev Event) {
	data, err := marshalEvent(ev)
	if err != nil {
		b.log.Error("bridge event marshal failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.rc.Publish(ctx, b.channel, data).Err(); err != nil {
		b.log.Warn("bridge publish failed, delivering locally only",
			zap.Error(err),
			zap.String("event", ev.Name))
		b.hub.Publish(ev)
	}
}

// Run consumes the redis channel and republishes into the local hub
// until ctx is cancelled. The subscription is redialed after transient
// failures.
func (b *Bridge) Run(ctx context.Context) {
	for {
		sub := b.rc.Subscribe(ctx, b.channel)
		ch := sub.Channel()

	recv:
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				ev, err := unmarshalEvent([]byte(msg.Payload))
				if err != nil {
					b.log.Warn("bridge received malformed event", zap.Error(err))
					continue
				}
				b.hub.Publish(ev)
			}
		}

		_ = sub.Close()
		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
		}
		b.log.Info("bridge resubscribing", zap.String("channel", b.channel))
	}
}
