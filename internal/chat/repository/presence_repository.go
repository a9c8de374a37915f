package repository

import (
	"context"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/pkg/database"

	"github.com/go-redis/redis/v8"
)

// PresenceRepository definition per-user online state store
type PresenceRepository interface {
	Set(ctx context.Context, p domain.Presence) error
	// Get returns an offline zero-value presence for unknown users
	Get(ctx context.Context, userID string) (domain.Presence, error)
}

type redisPresenceRepository struct {
	store database.RedisRepository[domain.Presence]
}

// NewRedisPresenceRepository create a PresenceRepository on redis,
// shared across instances so any node answers isOnline consistently
func NewRedisPresenceRepository(client *redis.Client) PresenceRepository {
	return &redisPresenceRepository{
		store: database.NewRedisRepository[domain.Presence](client),
	}
}

func presenceKey(userID string) string {
	return "chat:presence:" + userID
}

// Set last-writer-wins, no TTL: last_seen must survive the connection
func (r *redisPresenceRepository) Set(ctx context.Context, p domain.Presence) error {
	return r.store.Set(ctx, presenceKey(p.UserID), p, 0)
}

func (r *redisPresenceRepository) Get(ctx context.Context, userID string) (domain.Presence, error) {
	p, err := r.store.Get(ctx, presenceKey(userID))
	if err != nil {
		if err.Error() == database.ErrRedisNil {
			// never connected, treated as offline with zero last-seen
			return domain.Presence{UserID: userID, IsOnline: false, LastSeen: time.Time{}}, nil
		}
		return domain.Presence{}, err
	}
	return p, nil
}
