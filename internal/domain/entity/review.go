package entity

import "time"

// Review is a rating with a comment left by a user on a listing.
// Author is immutable once the review is created.
type Review struct {
	ID        string    `json:"id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	Author    UserRef   `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}
