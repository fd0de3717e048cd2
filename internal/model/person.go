package model

import "time"

// Person represents a child who may hold articles.
type Person struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`

	// Joined field (populated on list views).
	ArticleCount int `json:"articleCount,omitempty"`
}

// Person statuses.
const (
	PersonActive   = "active"
	PersonInactive = "inactive"
)

// FullName returns the person's display name, which also names their
// 1:1 location.
func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}
