package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PubSub definition event fan-out between service instances. A channel
// per user is the user's room, presence rides a global channel.
type PubSub interface {
	Publish(channel string, resp domain.WSResponse) error
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish serialize the envelope and publish it to channel
func (r *RedisPubSub) Publish(channel string, resp domain.WSResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe deliver every envelope on channel to handler until ctx is done
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var resp domain.WSResponse
				if err := json.Unmarshal([]byte(m.Payload), &resp); err != nil {
					logger.Log.Error("pubsub payload unmarshal err", zap.String("channel", channel), zap.String("err", err.Error()))
					continue
				}
				handler(resp)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				sub.Close()
			}
		}
	}()
	return nil
}
