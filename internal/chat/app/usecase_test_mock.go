package app

import (
	"context"
	"io"
	"time"

	"marketplace_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// EnsureIndexes mock index creation
func (m *MockMessageRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Insert mock insert message
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByID mock find message by id
func (m *MockMessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete mock delete message
func (m *MockMessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// UpdateContent mock edit content
func (m *MockMessageRepository) UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error {
	args := m.Called(ctx, id, content, editedAt)
	return args.Error(0)
}

// SetReaction mock per-user reaction replace
func (m *MockMessageRepository) SetReaction(ctx context.Context, id string, reaction domain.Reaction) error {
	args := m.Called(ctx, id, reaction)
	return args.Error(0)
}

// MarkDelivered mock single delivery transition
func (m *MockMessageRepository) MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

// MarkRead mock single read transition
func (m *MockMessageRepository) MarkRead(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

// MarkConversationRead mock whole-thread read flip
func (m *MockMessageRepository) MarkConversationRead(ctx context.Context, receiverID, senderID string, at time.Time) ([]domain.ReadUpdate, error) {
	args := m.Called(ctx, receiverID, senderID, at)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ReadUpdate), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkDeliveredForReceiver mock bulk delivery sweep
func (m *MockMessageRepository) MarkDeliveredForReceiver(ctx context.Context, receiverID string, at time.Time) ([]domain.DeliveryUpdate, error) {
	args := m.Called(ctx, receiverID, at)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.DeliveryUpdate), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindConversation mock thread page
func (m *MockMessageRepository) FindConversation(ctx context.Context, userID, counterpartyID string, page, limit int64) ([]domain.Message, int64, error) {
	args := m.Called(ctx, userID, counterpartyID, page, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

// ListConversationSummaries mock conversation rollup
func (m *MockMessageRepository) ListConversationSummaries(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ConversationSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

// CountUnread mock global unread count
func (m *MockMessageRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// Search mock content search
func (m *MockMessageRepository) Search(ctx context.Context, userID, query string, limit int64) ([]domain.Message, error) {
	args := m.Called(ctx, userID, query, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPresenceRepository Mock PresenceRepository
type MockPresenceRepository struct {
	mock.Mock
}

// Set mock presence write
func (m *MockPresenceRepository) Set(ctx context.Context, p domain.Presence) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// Get mock presence read
func (m *MockPresenceRepository) Get(ctx context.Context, userID string) (domain.Presence, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Presence), args.Error(1)
}

// MockRedisPubSub Mock PubSub
type MockRedisPubSub struct {
	mock.Mock
}

// Publish mock publisher
func (m *MockRedisPubSub) Publish(channel string, resp domain.WSResponse) error {
	args := m.Called(channel, resp)
	return args.Error(0)
}

// Subscribe mock subscriber
func (m *MockRedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	args := m.Called(channel, handler)
	return args.Error(0)
}

// MockAttachmentRepository Mock AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

// Save mock object store
func (m *MockAttachmentRepository) Save(ctx context.Context, messageID, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, messageID, fileName, reader, size, contentType)
	return args.String(0), args.Error(1)
}

// Open mock object stream
func (m *MockAttachmentRepository) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	args := m.Called(ctx, objectName)
	if args.Get(0) != nil {
		return args.Get(0).(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// Remove mock object delete
func (m *MockAttachmentRepository) Remove(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

// PresignURL mock presigned link
func (m *MockAttachmentRepository) PresignURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

// MockNotificationQueue Mock NotificationQueue
type MockNotificationQueue struct {
	mock.Mock
}

// PublishMessageNotification mock notifier hand-off
func (m *MockNotificationQueue) PublishMessageNotification(n domain.MessageNotification) error {
	args := m.Called(n)
	return args.Error(0)
}

// MockActivityProducer Mock ActivityProducer
type MockActivityProducer struct {
	mock.Mock
}

// Emit mock lifecycle event
func (m *MockActivityProducer) Emit(ctx context.Context, ev domain.ActivityEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
