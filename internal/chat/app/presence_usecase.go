package app

import (
	"context"
	"fmt"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	errprocess "marketplace_chat_service/pkg/err"
	"marketplace_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// PresenceUseCase online/offline lifecycle. State is last-writer-wins in
// redis, a drop-and-reconnect simply overwrites.
type PresenceUseCase struct {
	presRepo repository.PresenceRepository
	pubSub   repository.PubSub
	delivery *DeliveryUseCase
}

// NewPresenceUseCase create PresenceUseCase
func NewPresenceUseCase(presRepo repository.PresenceRepository, pubSub repository.PubSub, delivery *DeliveryUseCase) *PresenceUseCase {
	return &PresenceUseCase{presRepo: presRepo, pubSub: pubSub, delivery: delivery}
}

// Online record the connection, broadcast the change and sweep pending
// deliveries toward the user
func (uc *PresenceUseCase) Online(ctx context.Context, userID, socketID string) error {
	p := domain.Presence{
		UserID:   userID,
		IsOnline: true,
		LastSeen: time.Now(),
		SocketID: socketID,
	}
	if err := uc.presRepo.Set(ctx, p); err != nil {
		return errprocess.Set(fmt.Sprintf("presence set err: %v", err))
	}

	uc.broadcast(p)

	if err := uc.delivery.MarkDeliveredOnConnect(ctx, userID); err != nil {
		logger.Log.Errorf("deliver-on-connect err:", err, zap.String("userID", userID))
	}
	return nil
}

// Offline record the disconnect with its last-seen timestamp. A close
// from a connection that no longer owns presence is a no-op, so closing
// one tab while another is open does not flap the user offline.
func (uc *PresenceUseCase) Offline(ctx context.Context, userID, socketID string) error {
	current, err := uc.presRepo.Get(ctx, userID)
	if err != nil {
		// unreadable state, flipping offline is the safe default
		logger.Log.Errorf("presence get err:", err, zap.String("userID", userID))
	} else if current.SocketID != "" && current.SocketID != socketID {
		return nil
	}

	p := domain.Presence{
		UserID:   userID,
		IsOnline: false,
		LastSeen: time.Now(),
	}
	if err := uc.presRepo.Set(ctx, p); err != nil {
		return errprocess.Set(fmt.Sprintf("presence set err: %v", err))
	}

	uc.broadcast(p)
	return nil
}

// Get current presence of a user, unknown users read as offline
func (uc *PresenceUseCase) Get(ctx context.Context, userID string) (domain.Presence, error) {
	p, err := uc.presRepo.Get(ctx, userID)
	if err != nil {
		return domain.Presence{}, errprocess.Set(fmt.Sprintf("presence get err: %v", err))
	}
	return p, nil
}

func (uc *PresenceUseCase) broadcast(p domain.Presence) {
	if err := uc.pubSub.Publish(domain.PresenceChannel, domain.PresenceEvent(p)); err != nil {
		logger.Log.Errorf("presence broadcast err:", err, zap.String("userID", p.UserID))
	}
}
