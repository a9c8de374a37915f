package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	errprocess "marketplace_chat_service/pkg/err"
	"marketplace_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttachmentUpload an incoming file, read once during send
type AttachmentUpload struct {
	FileName    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// SendMessageInput everything the send operation accepts
type SendMessageInput struct {
	ReceiverID      string
	Content         string
	MessageType     string
	PropertyID      string
	ParentMessageID string
	Attachment      *AttachmentUpload
}

// MessageUseCase message store operations: send, edit, delete,
// reactions, search, attachment access
type MessageUseCase struct {
	msgRepo      repository.MessageRepository
	attachRepo   repository.AttachmentRepository
	presenceRepo repository.PresenceRepository
	pubSub       repository.PubSub
	notifyQueue  repository.NotificationQueue
	activity     repository.ActivityProducer
}

// NewMessageUseCase create MessageUseCase, notifyQueue and activity may
// be nil when the brokers are not wired
func NewMessageUseCase(
	msgRepo repository.MessageRepository,
	attachRepo repository.AttachmentRepository,
	presenceRepo repository.PresenceRepository,
	pubSub repository.PubSub,
	notifyQueue repository.NotificationQueue,
	activity repository.ActivityProducer,
) *MessageUseCase {
	return &MessageUseCase{
		msgRepo:      msgRepo,
		attachRepo:   attachRepo,
		presenceRepo: presenceRepo,
		pubSub:       pubSub,
		notifyQueue:  notifyQueue,
		activity:     activity,
	}
}

// Send validate, persist and push a new message. The receiver being
// online at send time advances the message straight to delivered.
func (uc *MessageUseCase) Send(ctx context.Context, senderID string, in SendMessageInput) (*domain.Message, error) {
	content := strings.TrimSpace(in.Content)

	if in.ReceiverID == "" {
		return nil, errprocess.Validation("receiver is required")
	}
	if in.ReceiverID == senderID {
		return nil, errprocess.Validation("sender and receiver must differ")
	}
	if content == "" && in.Attachment == nil {
		return nil, errprocess.Validation("message needs content or a file")
	}
	if utf8.RuneCountInString(content) > domain.MaxContentLength {
		return nil, errprocess.Validation(fmt.Sprintf("content exceeds %d characters", domain.MaxContentLength))
	}

	// parent is a weak reference but must resolve at send time
	if in.ParentMessageID != "" {
		if _, err := uc.msgRepo.FindByID(ctx, in.ParentMessageID); err != nil {
			if err == repository.ErrMessageNotFound {
				return nil, errprocess.NotFound("parent message not found")
			}
			return nil, errprocess.Set(fmt.Sprintf("find parent message err: %v", err))
		}
	}

	now := time.Now()
	msg := &domain.Message{
		ID:              uuid.New().String(),
		SenderID:        senderID,
		ReceiverID:      in.ReceiverID,
		Content:         content,
		MessageType:     resolveMessageType(in, content),
		ParentMessageID: in.ParentMessageID,
		PropertyID:      in.PropertyID,
		MessageStatus:   domain.StatusSent,
		IsRead:          false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if in.Attachment != nil {
		objectName, err := uc.attachRepo.Save(ctx, msg.ID, in.Attachment.FileName, in.Attachment.Reader, in.Attachment.Size, in.Attachment.ContentType)
		if err != nil {
			return nil, errprocess.Set(fmt.Sprintf("store attachment err: %v", err))
		}
		msg.FileURL = objectName
		msg.FileName = in.Attachment.FileName
		msg.FileSize = in.Attachment.Size
		msg.FileType = in.Attachment.ContentType
	}

	// receiver observed online at send time counts as delivered
	receiverOnline := false
	if presence, err := uc.presenceRepo.Get(ctx, in.ReceiverID); err != nil {
		logger.Log.Errorf("presence lookup err:", err, zap.String("userID", in.ReceiverID))
	} else if presence.IsOnline {
		receiverOnline = true
		msg.MessageStatus = domain.StatusDelivered
		msg.DeliveredAt = &now
	}

	if err := uc.msgRepo.Insert(ctx, msg); err != nil {
		// best-effort cleanup of the orphaned object
		if msg.HasAttachment() {
			if rmErr := uc.attachRepo.Remove(ctx, msg.FileURL); rmErr != nil {
				logger.Log.Errorf("attachment cleanup err:", rmErr, zap.String("object", msg.FileURL))
			}
		}
		return nil, errprocess.Set(fmt.Sprintf("insert message err: %v", err))
	}

	// persist → push → notify is best-effort sequential, a failed push
	// is recovered on the receiver's next fetch or reconnect
	if err := uc.pubSub.Publish(domain.UserChannel(msg.ReceiverID), domain.NewMessageEvent(msg)); err != nil {
		logger.Log.Errorf("push new_message err:", err, zap.String("messageID", msg.ID))
	}

	if receiverOnline {
		if err := uc.pubSub.Publish(domain.UserChannel(msg.SenderID), domain.DeliveredEvent(msg.ID, now)); err != nil {
			logger.Log.Errorf("push delivered receipt err:", err, zap.String("messageID", msg.ID))
		}
	} else if uc.notifyQueue != nil {
		n := domain.MessageNotification{
			MessageID:  msg.ID,
			SenderID:   msg.SenderID,
			ReceiverID: msg.ReceiverID,
			Type:       msg.MessageType,
			Preview:    preview(msg),
			PropertyID: msg.PropertyID,
			SentAt:     now,
		}
		if err := uc.notifyQueue.PublishMessageNotification(n); err != nil {
			logger.Log.Errorf("notification publish err:", err, zap.String("messageID", msg.ID))
		}
	}

	uc.emitActivity(ctx, "message_sent", msg)

	return msg, nil
}

// Edit only the sender may edit, only text messages are editable
func (uc *MessageUseCase) Edit(ctx context.Context, requesterID, messageID, newContent string) (*domain.Message, error) {
	content := strings.TrimSpace(newContent)
	if content == "" {
		return nil, errprocess.Validation("content is required")
	}
	if utf8.RuneCountInString(content) > domain.MaxContentLength {
		return nil, errprocess.Validation(fmt.Sprintf("content exceeds %d characters", domain.MaxContentLength))
	}

	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		if err == repository.ErrMessageNotFound {
			return nil, errprocess.NotFound("message not found")
		}
		return nil, errprocess.Set(fmt.Sprintf("find message err: %v", err))
	}

	if msg.SenderID != requesterID {
		return nil, errprocess.Authorization("only the sender can edit a message")
	}
	if msg.MessageType != domain.MessageTypeText {
		return nil, errprocess.InvalidState("only text messages can be edited")
	}

	now := time.Now()
	if err := uc.msgRepo.UpdateContent(ctx, messageID, content, now); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("update content err: %v", err))
	}

	msg.Content = content
	msg.IsEdited = true
	msg.EditedAt = &now
	msg.UpdatedAt = now

	if err := uc.pubSub.Publish(domain.UserChannel(msg.ReceiverID), domain.EditedEvent(msg)); err != nil {
		logger.Log.Errorf("push edited err:", err, zap.String("messageID", msg.ID))
	}

	return msg, nil
}

// Delete hard delete by sender or receiver, the backing file goes too.
// A repeated call reports NotFound, callers treat that as settled.
func (uc *MessageUseCase) Delete(ctx context.Context, requesterID, messageID string) error {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		if err == repository.ErrMessageNotFound {
			return errprocess.NotFound("message not found")
		}
		return errprocess.Set(fmt.Sprintf("find message err: %v", err))
	}

	if !msg.InvolvedUser(requesterID) {
		return errprocess.Authorization("only sender or receiver can delete a message")
	}

	removed, err := uc.msgRepo.Delete(ctx, messageID)
	if err != nil {
		return errprocess.Set(fmt.Sprintf("delete message err: %v", err))
	}
	if !removed {
		// lost the race with a concurrent delete
		return errprocess.NotFound("message not found")
	}

	if msg.HasAttachment() {
		if err := uc.attachRepo.Remove(ctx, msg.FileURL); err != nil {
			logger.Log.Errorf("attachment remove err:", err, zap.String("object", msg.FileURL))
		}
	}

	counterparty := msg.ReceiverID
	if requesterID == msg.ReceiverID {
		counterparty = msg.SenderID
	}
	if err := uc.pubSub.Publish(domain.UserChannel(counterparty), domain.DeletedEvent(msg.ID)); err != nil {
		logger.Log.Errorf("push deleted err:", err, zap.String("messageID", msg.ID))
	}

	uc.emitActivity(ctx, "message_deleted", msg)

	return nil
}

// AddReaction replace the user's prior reaction then append the new one
func (uc *MessageUseCase) AddReaction(ctx context.Context, userID, messageID, emoji string) ([]domain.Reaction, error) {
	if strings.TrimSpace(emoji) == "" {
		return nil, errprocess.Validation("emoji is required")
	}

	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		if err == repository.ErrMessageNotFound {
			return nil, errprocess.NotFound("message not found")
		}
		return nil, errprocess.Set(fmt.Sprintf("find message err: %v", err))
	}

	if !msg.InvolvedUser(userID) {
		return nil, errprocess.Authorization("only sender or receiver can react")
	}

	reaction := domain.Reaction{UserID: userID, Emoji: emoji, CreatedAt: time.Now()}
	// the store replaces only this user's slot, the local copy mirrors
	// that for the event payload
	if err := uc.msgRepo.SetReaction(ctx, messageID, reaction); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("set reaction err: %v", err))
	}
	msg.SetReaction(reaction)

	// both parties see the updated list
	ev := domain.ReactionEvent(msg.ID, msg.Reactions)
	for _, party := range []string{msg.SenderID, msg.ReceiverID} {
		if err := uc.pubSub.Publish(domain.UserChannel(party), ev); err != nil {
			logger.Log.Errorf("push reaction err:", err, zap.String("messageID", msg.ID))
		}
	}

	return msg.Reactions, nil
}

// Search substring scan across the caller's messages, soft-fails to an
// empty list on storage trouble
func (uc *MessageUseCase) Search(ctx context.Context, userID, query string, limit int64) ([]domain.Message, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, errprocess.Validation("query needs at least 2 characters")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, err := uc.msgRepo.Search(ctx, userID, query, limit)
	if err != nil {
		logger.Log.Errorf("search err:", err, zap.String("userID", userID))
		return []domain.Message{}, nil
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// OpenAttachment stream the stored file of a message the requester is
// involved in, caller closes the reader
func (uc *MessageUseCase) OpenAttachment(ctx context.Context, requesterID, messageID string) (io.ReadCloser, *domain.Message, error) {
	msg, err := uc.authorizeAttachment(ctx, requesterID, messageID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := uc.attachRepo.Open(ctx, msg.FileURL)
	if err != nil {
		return nil, nil, errprocess.Set(fmt.Sprintf("open attachment err: %v", err))
	}
	return rc, msg, nil
}

// DownloadDescriptor presigned-URL descriptor instead of the bytes
func (uc *MessageUseCase) DownloadDescriptor(ctx context.Context, requesterID, messageID string) (*domain.DownloadDescriptor, error) {
	msg, err := uc.authorizeAttachment(ctx, requesterID, messageID)
	if err != nil {
		return nil, err
	}

	const expiry = 15 * time.Minute
	url, err := uc.attachRepo.PresignURL(ctx, msg.FileURL, expiry)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("presign attachment err: %v", err))
	}

	return &domain.DownloadDescriptor{
		URL:       url,
		FileName:  msg.FileName,
		FileSize:  msg.FileSize,
		FileType:  msg.FileType,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

func (uc *MessageUseCase) authorizeAttachment(ctx context.Context, requesterID, messageID string) (*domain.Message, error) {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		if err == repository.ErrMessageNotFound {
			return nil, errprocess.NotFound("message not found")
		}
		return nil, errprocess.Set(fmt.Sprintf("find message err: %v", err))
	}
	if !msg.InvolvedUser(requesterID) {
		return nil, errprocess.Authorization("not a participant of this message")
	}
	if !msg.HasAttachment() {
		return nil, errprocess.NotFound("message has no attachment")
	}
	return msg, nil
}

func (uc *MessageUseCase) emitActivity(ctx context.Context, action string, msg *domain.Message) {
	if uc.activity == nil {
		return
	}
	ev := domain.ActivityEvent{
		Action:     action,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		OccurredAt: time.Now(),
	}
	if err := uc.activity.Emit(ctx, ev); err != nil {
		logger.Log.Errorf("activity emit err:", err, zap.String("messageID", msg.ID))
	}
}

// resolveMessageType honor a valid explicit type, otherwise infer from
// the payload shape
func resolveMessageType(in SendMessageInput, content string) domain.MessageType {
	if t := domain.MessageType(in.MessageType); t != "" && t.Valid() {
		return t
	}
	if in.Attachment != nil {
		if content != "" {
			return domain.MessageTypeMixed
		}
		if strings.HasPrefix(in.Attachment.ContentType, "image/") {
			return domain.MessageTypeImage
		}
		return domain.MessageTypeDocument
	}
	if in.PropertyID != "" {
		return domain.MessageTypePropertyInquiry
	}
	return domain.MessageTypeText
}

func preview(msg *domain.Message) string {
	if msg.Content != "" {
		if len(msg.Content) > 80 {
			return msg.Content[:80]
		}
		return msg.Content
	}
	return msg.FileName
}
