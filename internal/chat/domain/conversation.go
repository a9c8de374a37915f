package domain

import "time"

// ConversationSummary one inbox row per counterparty. Derived at read
// time from the flat message collection, never stored.
type ConversationSummary struct {
	CounterpartyID string    `bson:"_id" json:"counterpartyId"`
	LastMessage    Message   `bson:"last_message" json:"lastMessage"`
	UnreadCount    int64     `bson:"unread_count" json:"unreadCount"`
	TotalMessages  int64     `bson:"total_messages" json:"totalMessages"`
	LastActivityAt time.Time `bson:"last_activity_at" json:"lastActivityAt"`
}

// ConversationPage a page of messages with one counterparty,
// chronological ascending for display
type ConversationPage struct {
	Messages   []Message `json:"messages"`
	Page       int64     `json:"page"`
	Limit      int64     `json:"limit"`
	Total      int64     `json:"total"`
	TotalPages int64     `json:"totalPages"`
}

// DownloadDescriptor what the download endpoint returns instead of bytes
type DownloadDescriptor struct {
	URL       string    `json:"url"`
	FileName  string    `json:"fileName"`
	FileSize  int64     `json:"fileSize"`
	FileType  string    `json:"fileType"`
	ExpiresAt time.Time `json:"expiresAt"`
}
