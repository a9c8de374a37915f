package app

import (
	"context"
	"testing"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	errprocess "marketplace_chat_service/pkg/err"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDeliveryUseCase_MarkDelivered(t *testing.T) {
	ctx := context.Background()
	senderID := uuid.New().String()
	receiverID := uuid.New().String()
	messageID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockRedisPubSub)

	mockMsgRepo.On("FindByID", ctx, messageID).Return(&domain.Message{
		ID: messageID, SenderID: senderID, ReceiverID: receiverID, MessageStatus: domain.StatusSent,
	}, nil)
	mockMsgRepo.On("MarkDelivered", ctx, messageID, mock.Anything).Return(true, nil)
	mockPubSub.On("Publish", domain.UserChannel(senderID), mock.Anything).Return(nil)

	uc := NewDeliveryUseCase(mockMsgRepo, mockPubSub)
	err := uc.MarkDelivered(ctx, receiverID, messageID)

	assert.NoError(t, err)
	mockMsgRepo.AssertExpectations(t)
	mockPubSub.AssertExpectations(t)
}

func TestDeliveryUseCase_MarkDelivered_AlreadyFurther(t *testing.T) {
	ctx := context.Background()
	senderID := uuid.New().String()
	receiverID := uuid.New().String()
	messageID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockRedisPubSub)

	mockMsgRepo.On("FindByID", ctx, messageID).Return(&domain.Message{
		ID: messageID, SenderID: senderID, ReceiverID: receiverID, MessageStatus: domain.StatusRead,
	}, nil)
	// the conditional update matches nothing
	mockMsgRepo.On("MarkDelivered", ctx, messageID, mock.Anything).Return(false, nil)

	uc := NewDeliveryUseCase(mockMsgRepo, mockPubSub)
	err := uc.MarkDelivered(ctx, receiverID, messageID)

	// idempotent no-op, no receipt goes out
	assert.NoError(t, err)
	mockPubSub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestDeliveryUseCase_MarkDelivered_OnlyReceiver(t *testing.T) {
	ctx := context.Background()
	senderID := uuid.New().String()
	messageID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	mockMsgRepo.On("FindByID", ctx, messageID).Return(&domain.Message{
		ID: messageID, SenderID: senderID, ReceiverID: uuid.New().String(),
	}, nil)

	uc := NewDeliveryUseCase(mockMsgRepo, new(MockRedisPubSub))

	// the sender cannot acknowledge its own message
	err := uc.MarkDelivered(ctx, senderID, messageID)
	assert.True(t, errprocess.Is(err, errprocess.KindAuthorization))
}

func TestDeliveryUseCase_MarkRead(t *testing.T) {
	ctx := context.Background()
	senderID := uuid.New().String()
	receiverID := uuid.New().String()
	messageID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockRedisPubSub)

	mockMsgRepo.On("FindByID", ctx, messageID).Return(&domain.Message{
		ID: messageID, SenderID: senderID, ReceiverID: receiverID, MessageStatus: domain.StatusSent,
	}, nil)
	mockMsgRepo.On("MarkRead", ctx, messageID, mock.Anything).Return(true, nil)
	mockPubSub.On("Publish", domain.UserChannel(senderID), mock.Anything).Return(nil)

	uc := NewDeliveryUseCase(mockMsgRepo, mockPubSub)

	// read straight from sent is a legal forward jump
	err := uc.MarkRead(ctx, receiverID, messageID)
	assert.NoError(t, err)
	mockPubSub.AssertExpectations(t)
}

func TestDeliveryUseCase_MarkRead_NotFound(t *testing.T) {
	ctx := context.Background()
	messageID := uuid.New().String()

	mockMsgRepo := new(MockMessageRepository)
	mockMsgRepo.On("FindByID", ctx, messageID).Return(nil, repository.ErrMessageNotFound)

	uc := NewDeliveryUseCase(mockMsgRepo, new(MockRedisPubSub))
	err := uc.MarkRead(ctx, uuid.New().String(), messageID)
	assert.True(t, errprocess.Is(err, errprocess.KindNotFound))
}

func TestDeliveryUseCase_MarkDeliveredOnConnect(t *testing.T) {
	ctx := context.Background()
	receiverID := uuid.New().String()
	senderA := uuid.New().String()
	senderB := uuid.New().String()
	now := time.Now()

	mockMsgRepo := new(MockMessageRepository)
	mockPubSub := new(MockRedisPubSub)

	mockMsgRepo.On("MarkDeliveredForReceiver", ctx, receiverID, mock.Anything).Return([]domain.DeliveryUpdate{
		{MessageID: uuid.New().String(), SenderID: senderA, DeliveredAt: now},
		{MessageID: uuid.New().String(), SenderID: senderA, DeliveredAt: now},
		{MessageID: uuid.New().String(), SenderID: senderB, DeliveredAt: now},
	}, nil)
	mockPubSub.On("Publish", domain.UserChannel(senderA), mock.Anything).Return(nil).Twice()
	mockPubSub.On("Publish", domain.UserChannel(senderB), mock.Anything).Return(nil).Once()

	uc := NewDeliveryUseCase(mockMsgRepo, mockPubSub)
	err := uc.MarkDeliveredOnConnect(ctx, receiverID)

	assert.NoError(t, err)
	mockPubSub.AssertExpectations(t)
}
