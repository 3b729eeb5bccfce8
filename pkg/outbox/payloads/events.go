package payloads

import (
	"time"

	"github.com/google/uuid"
)

// ListingPublicationScheduledEvent asks the scheduler to publish a listing later.
type ListingPublicationScheduledEvent struct {
	ListingID   uuid.UUID        `json:"listing_id"`
	Channels    []string         `json:"channels"`
	ScheduledAt time.Time        `json:"scheduled_at"`
	Content     ScheduledContent `json:"content"`
}

// ScheduledContent is the listing snapshot captured when the schedule was requested.
type ScheduledContent struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price"`
	Currency    string   `json:"currency"`
	Location    string   `json:"location,omitempty"`
	PublicURL   string   `json:"public_url,omitempty"`
	Media       []string `json:"media"`
}
