package gateway

import (
	"context"
	"time"
)

// Event types published by the orchestrators.
const (
	EventListingCreated = "listing.created"
	EventListingUpdated = "listing.updated"
	EventListingDeleted = "listing.deleted"
	EventReviewCreated  = "review.created"
	EventReviewDeleted  = "review.deleted"

	// EventReviewOrphaned marks a review left without (or outside) its listing
	// after one half of a two-step write failed.
	EventReviewOrphaned  = "review.orphaned"
	EventGeocodeDegraded = "geocode.degraded"
)

// Event is a small JSON-friendly notification about a state change.
type Event struct {
	Type      string    `json:"type"`
	ListingID string    `json:"listing_id,omitempty"`
	ReviewID  string    `json:"review_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// Degraded reports whether the event describes a consistency or enrichment degradation.
func (e Event) Degraded() bool {
	return e.Type == EventReviewOrphaned || e.Type == EventGeocodeDegraded
}

// EventPublisher delivers events; publishing is always best effort.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}
