package domain

import "time"

// MessageType definition message classification
type MessageType string

const (
	// MessageTypeText plain text message
	MessageTypeText MessageType = "text"
	// MessageTypeImage image attachment
	MessageTypeImage MessageType = "image"
	// MessageTypeDocument document attachment
	MessageTypeDocument MessageType = "document"
	// MessageTypePropertyInquiry inquiry about a listing
	MessageTypePropertyInquiry MessageType = "property_inquiry"
	// MessageTypeGeneral uncategorized message
	MessageTypeGeneral MessageType = "general"
	// MessageTypeSystem system generated message
	MessageTypeSystem MessageType = "system"
	// MessageTypeMixed text plus attachment
	MessageTypeMixed MessageType = "mixed"
)

// Valid check the message type is a known one
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeDocument,
		MessageTypePropertyInquiry, MessageTypeGeneral, MessageTypeSystem, MessageTypeMixed:
		return true
	}
	return false
}

// MessageStatus definition delivery progression, forward only
type MessageStatus string

const (
	// StatusSent message persisted
	StatusSent MessageStatus = "sent"
	// StatusDelivered message reached an active connection of the receiver
	StatusDelivered MessageStatus = "delivered"
	// StatusRead message viewed by the receiver, terminal
	StatusRead MessageStatus = "read"
)

// Rank total order of the status progression
func (s MessageStatus) Rank() int {
	switch s {
	case StatusSent:
		return 0
	case StatusDelivered:
		return 1
	case StatusRead:
		return 2
	}
	return -1
}

// CanAdvanceTo check the transition goes forward. read is reachable
// straight from sent, a status never regresses.
func (s MessageStatus) CanAdvanceTo(next MessageStatus) bool {
	return next.Rank() > s.Rank()
}

// Reaction one user's emoji on a message
type Reaction struct {
	UserID    string    `bson:"user_id" json:"userId"`
	Emoji     string    `bson:"emoji" json:"emoji"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// MaxContentLength message text cap
const MaxContentLength = 2000

// Message the atomic unit of communication between two marketplace users
type Message struct {
	ID         string `bson:"_id" json:"id"`
	SenderID   string `bson:"sender_id" json:"senderId"`
	ReceiverID string `bson:"receiver_id" json:"receiverId"`

	Content string `bson:"content,omitempty" json:"content,omitempty"`

	FileURL  string `bson:"file_url,omitempty" json:"fileUrl,omitempty"`
	FileName string `bson:"file_name,omitempty" json:"fileName,omitempty"`
	FileSize int64  `bson:"file_size,omitempty" json:"fileSize,omitempty"`
	FileType string `bson:"file_type,omitempty" json:"fileType,omitempty"`

	MessageType MessageType `bson:"message_type" json:"messageType"`

	// weak references, never cascade on delete
	ParentMessageID string `bson:"parent_message_id,omitempty" json:"parentMessageId,omitempty"`
	PropertyID      string `bson:"property_id,omitempty" json:"propertyId,omitempty"`

	MessageStatus MessageStatus `bson:"message_status" json:"messageStatus"`
	IsRead        bool          `bson:"is_read" json:"isRead"`
	ReadAt        *time.Time    `bson:"read_at,omitempty" json:"readAt,omitempty"`
	DeliveredAt   *time.Time    `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`

	IsEdited bool       `bson:"is_edited" json:"isEdited"`
	EditedAt *time.Time `bson:"edited_at,omitempty" json:"editedAt,omitempty"`

	// ordered set keyed by user id, at most one reaction per user
	Reactions []Reaction `bson:"reactions,omitempty" json:"reactions,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasAttachment check the message carries a stored file
func (m *Message) HasAttachment() bool {
	return m.FileURL != ""
}

// InvolvedUser check userID is sender or receiver
func (m *Message) InvolvedUser(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// SetReaction replace any prior reaction by r.UserID then append r,
// keeping the list an ordered set keyed by user id
func (m *Message) SetReaction(r Reaction) {
	kept := m.Reactions[:0]
	for _, existing := range m.Reactions {
		if existing.UserID != r.UserID {
			kept = append(kept, existing)
		}
	}
	m.Reactions = append(kept, r)
}

// DeliveryUpdate one message that advanced to delivered, receipts go
// back to the sender's channel
type DeliveryUpdate struct {
	MessageID   string    `json:"messageId"`
	SenderID    string    `json:"senderId"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// ReadUpdate one message that advanced to read
type ReadUpdate struct {
	MessageID string    `json:"messageId"`
	SenderID  string    `json:"senderId"`
	ReadAt    time.Time `json:"readAt"`
}
