package entity

import "time"

// User is the account that owns listings and authors reviews.
// Password holds a bcrypt hash, never the plain text.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserRef is the non-owning reference listings and reviews keep to a user.
// Username is only filled when the reference has been populated.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}
