package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	"marketplace_chat_service/pkg/logger"
	"marketplace_chat_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// wsHandlerFunc one entry of the inbound dispatch table
type wsHandlerFunc func(ctx context.Context, userID string, req domain.WSRequest) domain.WSResponse

// wsConn the writing half of a websocket connection
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
}

// connWriter funnels the subscriber, ping and reply goroutines onto the
// connection one frame at a time, the underlying conn supports only a
// single concurrent writer
type connWriter struct {
	mu   sync.Mutex
	conn wsConn
}

func (w *connWriter) write(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(messageType, data)
}

// ChatWebsocketHandler websocket entry point. Every inbound event goes
// through one dispatch table keyed by the typed event, outbound events
// arrive over the user's redis channel.
type ChatWebsocketHandler struct {
	presenceUC *PresenceUseCase
	deliveryUC *DeliveryUseCase
	pubSub     repository.PubSub
	dispatch   map[domain.EventType]wsHandlerFunc
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	presenceUC *PresenceUseCase,
	deliveryUC *DeliveryUseCase,
	pubSub repository.PubSub,
) *ChatWebsocketHandler {
	h := &ChatWebsocketHandler{
		presenceUC: presenceUC,
		deliveryUC: deliveryUC,
		pubSub:     pubSub,
	}
	h.dispatch = map[domain.EventType]wsHandlerFunc{
		domain.EventTypingStart:      h.relayTyping,
		domain.EventTypingStop:       h.relayTyping,
		domain.EventMessageDelivered: h.ackDelivered,
		domain.EventMessageRead:      h.ackRead,
	}
	return h
}

// HandleConnection websocket connection entry point
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenUser := conn.Locals(middlewares.TokenUserID)
	userID, ok := tokenUser.(string)
	if !ok || userID == "" {
		logger.Log.Error("websocket connection without user identity")
		conn.Close()
		return
	}

	socketID := uuid.New().String()
	logger.Log.Info("websocket connected", zap.String("userID", userID), zap.String("socketID", socketID))

	writer := &connWriter{conn: conn}

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		if err := h.presenceUC.Offline(ctx, userID, socketID); err != nil {
			logger.Log.Errorf("presence offline err:", err, zap.String("userID", userID))
		}
		logger.Log.Info("websocket close", zap.String("userID", userID))
		conn.Close()
		cancel()
	}()

	// fiber handles close frames itself, the handler only observes
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Infof("Received PONG:", appData)
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// the user's room: every event addressed to the user lands here, one
	// subscription per open connection fans out to all tabs
	h.pubSub.Subscribe(ctxClose, domain.UserChannel(userID), func(resp domain.WSResponse) {
		h.sendResponse(writer, resp)
	})
	// presence changes are broadcast to everyone connected
	h.pubSub.Subscribe(ctxClose, domain.PresenceChannel, func(resp domain.WSResponse) {
		h.sendResponse(writer, resp)
	})

	if err := h.presenceUC.Online(ctx, userID, socketID); err != nil {
		logger.Log.Errorf("presence online err:", err, zap.String("userID", userID))
	}

	// periodic ping keeps idle connections alive
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := writer.write(websocket.PingMessage, []byte("ping message")); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				logger.Log.Infof("Ping goroutine cancelled for user:", userID)
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, writer, userID, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, writer *connWriter, userID string, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, writer, userID, msg)
	default:
		h.sendError(writer, "unknown message type")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, writer *connWriter, userID string, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		h.sendError(writer, "malformed request")
		return
	}

	handler, ok := h.dispatch[req.Event]
	if !ok {
		h.sendError(writer, "unknown event")
		return
	}

	resp := handler(ctx, userID, req)
	if resp.Error != "" {
		logger.Log.Error("websocket err", zap.String("userID", userID), zap.String("event", string(req.Event)), zap.String("err", resp.Error))
	}
	h.sendResponse(writer, resp)
}

// relayTyping forward the indicator to the receiver's room, nothing is
// persisted and a failed relay is simply lost
func (h *ChatWebsocketHandler) relayTyping(_ context.Context, userID string, req domain.WSRequest) domain.WSResponse {
	resp := domain.WSResponse{Event: req.Event, Success: false, Payload: map[string]interface{}{}}
	if req.ReceiverID == "" {
		resp.Error = "receiver is required"
		return resp
	}
	if err := h.pubSub.Publish(domain.UserChannel(req.ReceiverID), domain.TypingEvent(req.Event, userID)); err != nil {
		logger.Log.Errorf("typing relay err:", err, zap.String("userID", userID))
	}
	resp.Success = true
	return resp
}

func (h *ChatWebsocketHandler) ackDelivered(ctx context.Context, userID string, req domain.WSRequest) domain.WSResponse {
	resp := domain.WSResponse{Event: req.Event, Success: false, Payload: map[string]interface{}{}}
	if err := h.deliveryUC.MarkDelivered(ctx, userID, req.MessageID); err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Success = true
	resp.Payload["message_id"] = req.MessageID
	return resp
}

func (h *ChatWebsocketHandler) ackRead(ctx context.Context, userID string, req domain.WSRequest) domain.WSResponse {
	resp := domain.WSResponse{Event: req.Event, Success: false, Payload: map[string]interface{}{}}
	if err := h.deliveryUC.MarkRead(ctx, userID, req.MessageID); err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Success = true
	resp.Payload["message_id"] = req.MessageID
	return resp
}

// sendResponse marshal and write one envelope to the client
func (h *ChatWebsocketHandler) sendResponse(writer *connWriter, resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	if err := writer.write(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

func (h *ChatWebsocketHandler) sendError(writer *connWriter, errorMsg string) {
	h.sendResponse(writer, domain.WSResponse{
		Event:   domain.EventError,
		Success: false,
		Error:   errorMsg,
	})
}
