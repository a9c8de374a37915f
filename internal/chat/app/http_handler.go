package app

import (
	"fmt"
	"strconv"

	errprocess "marketplace_chat_service/pkg/err"
	"marketplace_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// ChatHTTPHandler REST surface over the chat use cases
type ChatHTTPHandler struct {
	messageUC  *MessageUseCase
	convUC     *ConversationUseCase
	deliveryUC *DeliveryUseCase
	presenceUC *PresenceUseCase
	maxUpload  int64
}

// NewChatHTTPHandler create ChatHTTPHandler, maxUpload caps attachment
// bytes per message
func NewChatHTTPHandler(
	messageUC *MessageUseCase,
	convUC *ConversationUseCase,
	deliveryUC *DeliveryUseCase,
	presenceUC *PresenceUseCase,
	maxUpload int64,
) *ChatHTTPHandler {
	return &ChatHTTPHandler{
		messageUC:  messageUC,
		convUC:     convUC,
		deliveryUC: deliveryUC,
		presenceUC: presenceUC,
		maxUpload:  maxUpload,
	}
}

// SendMessage POST /send, multipart so content and file travel together
func (h *ChatHTTPHandler) SendMessage(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	in := SendMessageInput{
		ReceiverID:      c.FormValue("receiverId"),
		Content:         c.FormValue("content"),
		MessageType:     c.FormValue("messageType"),
		PropertyID:      c.FormValue("propertyId"),
		ParentMessageID: c.FormValue("parentMessageId"),
	}

	if fileHeader, err := c.FormFile("file"); err == nil && fileHeader != nil {
		if fileHeader.Size > h.maxUpload {
			return fail(c, errprocess.Validation(fmt.Sprintf("file exceeds %d bytes", h.maxUpload)))
		}
		f, err := fileHeader.Open()
		if err != nil {
			return fail(c, errprocess.Set(fmt.Sprintf("open upload err: %v", err)))
		}
		defer f.Close()
		in.Attachment = &AttachmentUpload{
			FileName:    fileHeader.Filename,
			Size:        fileHeader.Size,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Reader:      f,
		}
	}

	msg, err := h.messageUC.Send(c.UserContext(), userID, in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": msg,
	})
}

// ListConversations GET /conversations
func (h *ChatHTTPHandler) ListConversations(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	summaries, err := h.convUC.List(c.UserContext(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"conversations": summaries,
	})
}

// GetConversation GET /conversation/:userId, fetching marks the thread read
func (h *ChatHTTPHandler) GetConversation(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)
	counterpartyID := c.Params("userId")
	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", defaultPageLimit)

	pageResult, err := h.convUC.Get(c.UserContext(), userID, counterpartyID, page, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"messages": pageResult.Messages,
		"pagination": fiber.Map{
			"page":        pageResult.Page,
			"limit":       pageResult.Limit,
			"total":       pageResult.Total,
			"total_pages": pageResult.TotalPages,
		},
	})
}

// MarkConversationRead PATCH /conversation/:userId/read
func (h *ChatHTTPHandler) MarkConversationRead(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)
	counterpartyID := c.Params("userId")

	updated, err := h.convUC.MarkRead(c.UserContext(), userID, counterpartyID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"updated": updated,
	})
}

// MarkMessageRead PATCH /message/:messageId/read
func (h *ChatHTTPHandler) MarkMessageRead(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	if err := h.deliveryUC.MarkRead(c.UserContext(), userID, c.Params("messageId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// UnreadCount GET /unread-count
func (h *ChatHTTPHandler) UnreadCount(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	count, err := h.convUC.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"unread_count": count,
	})
}

// AddReaction PATCH /message/:messageId/reaction
func (h *ChatHTTPHandler) AddReaction(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	var body struct {
		Emoji string `json:"emoji"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, errprocess.Validation("malformed body"))
	}

	reactions, err := h.messageUC.AddReaction(c.UserContext(), userID, c.Params("messageId"), body.Emoji)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"reactions": reactions,
	})
}

// EditMessage PUT /messages/:messageId/edit
func (h *ChatHTTPHandler) EditMessage(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	var body struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, errprocess.Validation("malformed body"))
	}

	msg, err := h.messageUC.Edit(c.UserContext(), userID, c.Params("messageId"), body.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": msg,
	})
}

// DeleteMessage DELETE /messages/:messageId/delete
func (h *ChatHTTPHandler) DeleteMessage(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	if err := h.messageUC.Delete(c.UserContext(), userID, c.Params("messageId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// Search GET /search
func (h *ChatHTTPHandler) Search(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	messages, err := h.messageUC.Search(c.UserContext(), userID, c.Query("query"), queryInt64(c, "limit", 50))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"messages": messages,
	})
}

// GetFile GET /file/:messageId, streams the stored bytes
func (h *ChatHTTPHandler) GetFile(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	rc, msg, err := h.messageUC.OpenAttachment(c.UserContext(), userID, c.Params("messageId"))
	if err != nil {
		return fail(c, err)
	}

	if msg.FileType != "" {
		c.Set(fiber.HeaderContentType, msg.FileType)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", msg.FileName))
	return c.SendStream(rc, int(msg.FileSize))
}

// DownloadDescriptor GET /message/:messageId/download, hands out a
// short-lived presigned URL instead of the bytes
func (h *ChatHTTPHandler) DownloadDescriptor(c *fiber.Ctx) error {
	userID := c.Locals(middlewares.TokenUserID).(string)

	desc, err := h.messageUC.DownloadDescriptor(c.UserContext(), userID, c.Params("messageId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"download": desc,
	})
}

// GetPresence GET /presence/:userId
func (h *ChatHTTPHandler) GetPresence(c *fiber.Ctx) error {
	p, err := h.presenceUC.Get(c.UserContext(), c.Params("userId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"user_id":   p.UserID,
		"is_online": p.IsOnline,
		"last_seen": p.LastSeen,
	})
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(errprocess.StatusOf(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func queryInt64(c *fiber.Ctx, key string, def int64) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return def
	}
	return v
}
