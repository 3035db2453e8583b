package database

import (
	"time"
)

// Content is a durable content record, resolved from an ephemeral upstream id.
// At most one row exists per (namespace, external_id); the unique constraint
// closes the lookup-then-create race.
type Content struct {
	ID         string // Database UUID, safe as a long-lived foreign key
	Namespace  string // Upstream source table the external id came from
	ExternalID string
	Title      string
	URL        string
	ImageURL   string
	Kind       string
	Provider   string
	CreatedAt  time.Time
}

// SavedItem links a user to a durable content record.
type SavedItem struct {
	UserID    string
	ContentID string
	SavedAt   time.Time
}
