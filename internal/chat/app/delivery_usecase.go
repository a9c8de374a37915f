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

// DeliveryUseCase the sent→delivered→read state machine. Transitions are
// applied through conditional updates, so repeats and races converge on
// their own instead of needing a lock.
type DeliveryUseCase struct {
	msgRepo repository.MessageRepository
	pubSub  repository.PubSub
}

// NewDeliveryUseCase create DeliveryUseCase
func NewDeliveryUseCase(msgRepo repository.MessageRepository, pubSub repository.PubSub) *DeliveryUseCase {
	return &DeliveryUseCase{msgRepo: msgRepo, pubSub: pubSub}
}

// MarkDelivered receiver acks a single message, stale and repeated acks
// are silent no-ops
func (uc *DeliveryUseCase) MarkDelivered(ctx context.Context, userID, messageID string) error {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		if err == repository.ErrMessageNotFound {
			return errprocess.NotFound("message not found")
		}
		return errprocess.Set(fmt.Sprintf("find message err: %v", err))
	}
	if msg.ReceiverID != userID {
		return errprocess.Authorization("only the receiver can acknowledge delivery")
	}

	at := time.Now()
	changed, err := uc.msgRepo.MarkDelivered(ctx, messageID, at)
	if err != nil {
		return errprocess.Set(fmt.Sprintf("mark delivered err: %v", err))
	}
	if changed {
		uc.pushReceipt(domain.UserChannel(msg.SenderID), domain.DeliveredEvent(messageID, at))
	}
	return nil
}

// MarkRead receiver acks reading a single message
func (uc *DeliveryUseCase) MarkRead(ctx context.Context, userID, messageID string) error {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		if err == repository.ErrMessageNotFound {
			return errprocess.NotFound("message not found")
		}
		return errprocess.Set(fmt.Sprintf("find message err: %v", err))
	}
	if msg.ReceiverID != userID {
		return errprocess.Authorization("only the receiver can mark a message read")
	}

	at := time.Now()
	changed, err := uc.msgRepo.MarkRead(ctx, messageID, at)
	if err != nil {
		return errprocess.Set(fmt.Sprintf("mark read err: %v", err))
	}
	if changed {
		uc.pushReceipt(domain.UserChannel(msg.SenderID), domain.ReadEvent(messageID, at))
	}
	return nil
}

// MarkDeliveredOnConnect sweep every pending message toward a user that
// just came online, each flipped message produces a receipt toward its
// sender
func (uc *DeliveryUseCase) MarkDeliveredOnConnect(ctx context.Context, userID string) error {
	updates, err := uc.msgRepo.MarkDeliveredForReceiver(ctx, userID, time.Now())
	if err != nil {
		return errprocess.Set(fmt.Sprintf("bulk mark delivered err: %v", err))
	}
	for _, u := range updates {
		uc.pushReceipt(domain.UserChannel(u.SenderID), domain.DeliveredEvent(u.MessageID, u.DeliveredAt))
	}
	return nil
}

func (uc *DeliveryUseCase) pushReceipt(channel string, resp domain.WSResponse) {
	if err := uc.pubSub.Publish(channel, resp); err != nil {
		logger.Log.Errorf("push receipt err:", err, zap.String("channel", channel), zap.String("event", string(resp.Event)))
	}
}
