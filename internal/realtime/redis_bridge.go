package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the pub/sub channel shared by every server process.
const DefaultChannel = "bharatlink:realtime"

// DefaultPublishTimeout bounds a publish. Emits run on the request path.
const DefaultPublishTimeout = 500 * time.Millisecond

// envelope is what travels over Redis. An empty Room means global.
type envelope struct {
	Room  string          `json:"room,omitempty"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RedisBridge publishes emits to Redis and delivers everything received on
// the channel to the local hub, so several processes act as one gateway.
type RedisBridge struct {
	client         *redis.Client
	channel        string
	publishTimeout time.Duration
	hub            *Hub
	log            *zap.Logger
}

// NewRedisBridge creates a bridge on DefaultChannel.
func NewRedisBridge(client *redis.Client, hub *Hub, log *zap.Logger) *RedisBridge {
	return &RedisBridge{
		client:         client,
		channel:        DefaultChannel,
		publishTimeout: DefaultPublishTimeout,
		hub:            hub,
		log:            log.Named("realtime.redis"),
	}
}

var _ Emitter = (*RedisBridge)(nil)

func (b *RedisBridge) EmitToUser(userID, event string, payload any) {
	b.publish(RoomFor(userID), event, payload)
}

func (b *RedisBridge) EmitGlobal(event string, payload any) {
	b.publish("", event, payload)
}

// publish falls back to local delivery when Redis is unreachable.
func (b *RedisBridge) publish(room, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.log.Warn("dropping unencodable event", zap.String("event", event), zap.Error(err))
		return
	}
	msg, _ := json.Marshal(envelope{Room: room, Event: event, Data: data})

	ctx, cancel := context.WithTimeout(context.Background(), b.publishTimeout)
	defer cancel()
	if err := b.client.Publish(ctx, b.channel, msg).Err(); err != nil {
		b.log.Warn("redis publish failed, delivering locally", zap.String("event", event), zap.Error(err))
		b.dispatch(string(msg))
	}
}

// Run subscribes to the channel and relays messages until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before consuming.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			b.dispatch(m.Payload)
		}
	}
}

func (b *RedisBridge) dispatch(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil || env.Event == "" {
		b.log.Warn("ignoring malformed relay message", zap.Error(err))
		return
	}
	msg, err := json.Marshal(Frame{Event: env.Event, Data: env.Data})
	if err != nil {
		return
	}
	b.hub.deliver(env.Room, msg)
}
