package router

import (
	"context"

	"marketplace_chat_service/internal/chat/app"
	"marketplace_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes register the chat REST and websocket routes, every
// route sits behind the JWT middleware
func RegisterRoutes(r *fiber.App, httpHandler *app.ChatHTTPHandler, wsHandler *app.ChatWebsocketHandler) {
	r.Use(middlewares.JWTMiddleware())

	r.Post("/send", httpHandler.SendMessage)
	r.Get("/conversations", httpHandler.ListConversations)
	r.Get("/conversation/:userId", httpHandler.GetConversation)
	r.Patch("/conversation/:userId/read", httpHandler.MarkConversationRead)
	r.Patch("/message/:messageId/read", httpHandler.MarkMessageRead)
	r.Get("/unread-count", httpHandler.UnreadCount)
	r.Patch("/message/:messageId/reaction", httpHandler.AddReaction)
	r.Put("/messages/:messageId/edit", httpHandler.EditMessage)
	r.Delete("/messages/:messageId/delete", httpHandler.DeleteMessage)
	r.Get("/search", httpHandler.Search)
	r.Get("/file/:messageId", httpHandler.GetFile)
	r.Get("/message/:messageId/download", httpHandler.DownloadDescriptor)
	r.Get("/presence/:userId", httpHandler.GetPresence)

	// plain HTTP requests on /ws must not reach the websocket handler
	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHandler.HandleConnection(context.Background(), c)
	}))
}
