package app

import (
	"context"
	"testing"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	errprocess "marketplace_chat_service/pkg/err"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestConversationUseCase_List(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	mockMsgRepo.On("ListConversationSummaries", ctx, userID).Return([]domain.ConversationSummary{
		{CounterpartyID: "broker-1", UnreadCount: 2, TotalMessages: 10},
		{CounterpartyID: "broker-2", UnreadCount: 0, TotalMessages: 4},
	}, nil)

	uc := NewConversationUseCase(mockMsgRepo, new(MockRedisPubSub))
	summaries, err := uc.List(ctx, userID)

	assert.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.Equal(t, "broker-1", summaries[0].CounterpartyID)
}

func TestConversationUseCase_Get_MarksRead(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()
	counterpartyID := uuid.New().String()
	now := time.Now()

	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockRedisPubSub)

	unreadID := uuid.New().String()
	page := []domain.Message{
		{ID: uuid.New().String(), SenderID: userID, ReceiverID: counterpartyID, IsRead: true, MessageStatus: domain.StatusRead},
		{ID: unreadID, SenderID: counterpartyID, ReceiverID: userID, IsRead: false, MessageStatus: domain.StatusDelivered},
	}
	mockMsgRepo.On("FindConversation", ctx, userID, counterpartyID, int64(1), int64(20)).Return(page, int64(42), nil)
	mockMsgRepo.On("MarkConversationRead", ctx, userID, counterpartyID, mock.Anything).Return([]domain.ReadUpdate{
		{MessageID: unreadID, SenderID: counterpartyID, ReadAt: now},
	}, nil)
	// the flipped message produces a receipt toward its sender
	mockPubSub.On("Publish", domain.UserChannel(counterpartyID), mock.Anything).Return(nil).Once()

	uc := NewConversationUseCase(mockMsgRepo, mockPubSub)
	result, err := uc.Get(ctx, userID, counterpartyID, 1, 20)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), result.Total)
	assert.Equal(t, int64(3), result.TotalPages)

	// the viewer sees the page already read
	for _, msg := range result.Messages {
		if msg.ReceiverID == userID {
			assert.True(t, msg.IsRead)
			assert.Equal(t, domain.StatusRead, msg.MessageStatus)
		}
	}
	mockPubSub.AssertExpectations(t)
}

func TestConversationUseCase_Get_DefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()
	counterpartyID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	// out-of-range paging falls back to page 1 / default limit
	mockMsgRepo.On("FindConversation", ctx, userID, counterpartyID, int64(1), int64(20)).Return([]domain.Message{}, int64(0), nil)
	mockMsgRepo.On("MarkConversationRead", ctx, userID, counterpartyID, mock.Anything).Return(nil, nil)

	uc := NewConversationUseCase(mockMsgRepo, new(MockRedisPubSub))
	result, err := uc.Get(ctx, userID, counterpartyID, -3, 0)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), result.Page)
	assert.Equal(t, int64(20), result.Limit)
	assert.NotNil(t, result.Messages)

	_, err = uc.Get(ctx, userID, "", 1, 20)
	assert.True(t, errprocess.Is(err, errprocess.KindValidation))
}

func TestConversationUseCase_MarkRead(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()
	counterpartyID := uuid.New().String()
	now := time.Now()

	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockRedisPubSub)

	mockMsgRepo.On("MarkConversationRead", ctx, userID, counterpartyID, mock.Anything).Return([]domain.ReadUpdate{
		{MessageID: uuid.New().String(), SenderID: counterpartyID, ReadAt: now},
		{MessageID: uuid.New().String(), SenderID: counterpartyID, ReadAt: now},
	}, nil)
	mockPubSub.On("Publish", domain.UserChannel(counterpartyID), mock.Anything).Return(nil).Twice()

	uc := NewConversationUseCase(mockMsgRepo, mockPubSub)
	updated, err := uc.MarkRead(ctx, userID, counterpartyID)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	mockPubSub.AssertExpectations(t)
}

func TestConversationUseCase_UnreadCount(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	mockMsgRepo.On("CountUnread", ctx, userID).Return(int64(7), nil)

	uc := NewConversationUseCase(mockMsgRepo, new(MockRedisPubSub))
	count, err := uc.UnreadCount(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
