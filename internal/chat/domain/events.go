package domain

import "time"

// EventType websocket event, one typed enum instead of loose strings
type EventType string

const (
	// EventNewMessage server→client, full message pushed to the receiver's room
	EventNewMessage EventType = "new_message"
	// EventTypingStart client→server→client, relayed to the receiver, no persistence
	EventTypingStart EventType = "typing_start"
	// EventTypingStop client→server→client, relayed to the receiver
	EventTypingStop EventType = "typing_stop"
	// EventMessageDelivered delivery ack round-trip
	EventMessageDelivered EventType = "message_delivered"
	// EventMessageRead read ack round-trip
	EventMessageRead EventType = "message_read"
	// EventReactionUpdated server→client, pushed to both parties' rooms
	EventReactionUpdated EventType = "reaction_updated"
	// EventMessageEdited server→client, pushed to the counterparty's room
	EventMessageEdited EventType = "message_edited"
	// EventMessageDeleted server→client, pushed to the counterparty's room
	EventMessageDeleted EventType = "message_deleted"
	// EventPresenceChanged server→all, global broadcast
	EventPresenceChanged EventType = "presence_changed"
	// EventError server→client, request could not be handled
	EventError EventType = "error"
)

// WSRequest websocket inbound envelope
type WSRequest struct {
	Event      EventType `json:"event"`
	MessageID  string    `json:"message_id,omitempty"`
	ReceiverID string    `json:"receiver_id,omitempty"`
}

// WSResponse websocket outbound envelope
type WSResponse struct {
	Event   EventType              `json:"event"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// UserChannel redis pub/sub channel acting as the user's room, every
// active connection of the user subscribes to it
func UserChannel(userID string) string {
	return "chat:user:" + userID
}

// PresenceChannel global broadcast channel for presence changes
const PresenceChannel = "chat:presence"

// NewMessageEvent push a freshly persisted message to the receiver
func NewMessageEvent(msg *Message) WSResponse {
	return WSResponse{
		Event:   EventNewMessage,
		Success: true,
		Payload: map[string]interface{}{"message": msg},
	}
}

// TypingEvent relay a typing indicator, ev is typing_start or typing_stop
func TypingEvent(ev EventType, senderID string) WSResponse {
	return WSResponse{
		Event:   ev,
		Success: true,
		Payload: map[string]interface{}{"user_id": senderID},
	}
}

// DeliveredEvent delivery receipt toward the sender
func DeliveredEvent(messageID string, deliveredAt time.Time) WSResponse {
	return WSResponse{
		Event:   EventMessageDelivered,
		Success: true,
		Payload: map[string]interface{}{
			"message_id":   messageID,
			"delivered_at": deliveredAt,
		},
	}
}

// ReadEvent read receipt toward the sender
func ReadEvent(messageID string, readAt time.Time) WSResponse {
	return WSResponse{
		Event:   EventMessageRead,
		Success: true,
		Payload: map[string]interface{}{
			"message_id": messageID,
			"read_at":    readAt,
		},
	}
}

// ReactionEvent updated reaction list toward both parties
func ReactionEvent(messageID string, reactions []Reaction) WSResponse {
	return WSResponse{
		Event:   EventReactionUpdated,
		Success: true,
		Payload: map[string]interface{}{
			"message_id": messageID,
			"reactions":  reactions,
		},
	}
}

// EditedEvent edited message toward the counterparty
func EditedEvent(msg *Message) WSResponse {
	return WSResponse{
		Event:   EventMessageEdited,
		Success: true,
		Payload: map[string]interface{}{"message": msg},
	}
}

// DeletedEvent deleted message id toward the counterparty
func DeletedEvent(messageID string) WSResponse {
	return WSResponse{
		Event:   EventMessageDeleted,
		Success: true,
		Payload: map[string]interface{}{"message_id": messageID},
	}
}

// PresenceEvent presence change toward everyone
func PresenceEvent(p Presence) WSResponse {
	return WSResponse{
		Event:   EventPresenceChanged,
		Success: true,
		Payload: map[string]interface{}{
			"user_id":   p.UserID,
			"is_online": p.IsOnline,
			"last_seen": p.LastSeen,
		},
	}
}

// MessageNotification job handed to the external notifier when the
// receiver is offline at send time
type MessageNotification struct {
	MessageID  string      `json:"message_id"`
	SenderID   string      `json:"sender_id"`
	ReceiverID string      `json:"receiver_id"`
	Type       MessageType `json:"type"`
	Preview    string      `json:"preview"`
	PropertyID string      `json:"property_id,omitempty"`
	SentAt     time.Time   `json:"sent_at"`
}

// ActivityEvent message lifecycle record for downstream consumers
type ActivityEvent struct {
	Action     string    `json:"action"` // message_sent / message_deleted
	MessageID  string    `json:"message_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
