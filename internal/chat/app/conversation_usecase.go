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

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ConversationUseCase derived conversation views, a conversation is an
// aggregation over messages and never a stored record
type ConversationUseCase struct {
	msgRepo repository.MessageRepository
	pubSub  repository.PubSub
}

// NewConversationUseCase create ConversationUseCase
func NewConversationUseCase(msgRepo repository.MessageRepository, pubSub repository.PubSub) *ConversationUseCase {
	return &ConversationUseCase{msgRepo: msgRepo, pubSub: pubSub}
}

// List one summary per counterparty, most recently active first
func (uc *ConversationUseCase) List(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	summaries, err := uc.msgRepo.ListConversationSummaries(ctx, userID)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("list conversations err: %v", err))
	}
	if summaries == nil {
		summaries = []domain.ConversationSummary{}
	}
	return summaries, nil
}

// Get one page of the thread with counterpartyID, ascending by time.
// Fetching implicitly reads: every unread message from the counterparty
// flips to read and its sender gets a receipt.
func (uc *ConversationUseCase) Get(ctx context.Context, userID, counterpartyID string, page, limit int64) (*domain.ConversationPage, error) {
	if counterpartyID == "" {
		return nil, errprocess.Validation("counterparty is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	messages, total, err := uc.msgRepo.FindConversation(ctx, userID, counterpartyID, page, limit)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("find conversation err: %v", err))
	}

	// viewing is reading, the viewer never sees a stale unread flag
	now := time.Now()
	updates, err := uc.msgRepo.MarkConversationRead(ctx, userID, counterpartyID, now)
	if err != nil {
		// the fetch itself succeeded, the flip is retried on the next view
		logger.Log.Errorf("implicit read-mark err:", err, zap.String("userID", userID))
	} else {
		for _, u := range updates {
			uc.pushReceipt(domain.UserChannel(u.SenderID), domain.ReadEvent(u.MessageID, u.ReadAt))
		}
		for i := range messages {
			if messages[i].ReceiverID == userID && !messages[i].IsRead {
				messages[i].IsRead = true
				messages[i].MessageStatus = domain.StatusRead
				messages[i].ReadAt = &now
			}
		}
	}

	if messages == nil {
		messages = []domain.Message{}
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &domain.ConversationPage{
		Messages:   messages,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// MarkRead explicit whole-thread read, same semantics as viewing
func (uc *ConversationUseCase) MarkRead(ctx context.Context, userID, counterpartyID string) (int64, error) {
	if counterpartyID == "" {
		return 0, errprocess.Validation("counterparty is required")
	}

	updates, err := uc.msgRepo.MarkConversationRead(ctx, userID, counterpartyID, time.Now())
	if err != nil {
		return 0, errprocess.Set(fmt.Sprintf("mark conversation read err: %v", err))
	}
	for _, u := range updates {
		uc.pushReceipt(domain.UserChannel(u.SenderID), domain.ReadEvent(u.MessageID, u.ReadAt))
	}
	return int64(len(updates)), nil
}

// UnreadCount messages addressed to the user and not yet read, across
// all conversations
func (uc *ConversationUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := uc.msgRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errprocess.Set(fmt.Sprintf("count unread err: %v", err))
	}
	return count, nil
}

func (uc *ConversationUseCase) pushReceipt(channel string, resp domain.WSResponse) {
	if err := uc.pubSub.Publish(channel, resp); err != nil {
		logger.Log.Errorf("push receipt err:", err, zap.String("channel", channel), zap.String("event", string(resp.Event)))
	}
}
