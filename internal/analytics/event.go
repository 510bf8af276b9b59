package analytics

import "time"

// Topics carrying link lifecycle and click events.
const (
	TopicURLCreated  = "url.created"
	TopicURLAccessed = "url.accessed"
	TopicURLDeleted  = "url.deleted"
)

// URLCreatedEvent represents an event emitted when a URL is shortened.
type URLCreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	CreatedBy   string    `json:"createdBy"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// URLAccessedEvent is published by the redirect path for every successful resolution.
type URLAccessedEvent struct {
	Code       string    `json:"code"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer"`
	AccessedAt time.Time `json:"accessedAt"`
}

// URLDeletedEvent represents a soft delete by the owner or an admin.
type URLDeletedEvent struct {
	Code      string    `json:"code"`
	DeletedBy string    `json:"deletedBy"`
	AsAdmin   bool      `json:"asAdmin"`
	DeletedAt time.Time `json:"deletedAt"`
}
