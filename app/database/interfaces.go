package database

import (
	"time"
)

// NewContent carries the denormalized fields needed to create a durable record
// from an ephemeral upstream item.
type NewContent struct {
	Namespace  string
	ExternalID string
	Title      string
	URL        string
	ImageURL   string
	Kind       string
	Provider   string
}

type ContentRepository interface {
	GetContentByExternalID(namespace, externalID string) (*Content, error)
	CreateContent(content NewContent) (string, error)
	GetContentCount() (int, error)

	DeleteUnreferencedContent(olderThan time.Time) (int64, error)
}

type SavedItemRepository interface {
	UpsertSavedItem(userID, contentID string) error
	DeleteSavedItem(userID, contentID string) error
	ListSavedContentIDs(userID string) ([]string, error)
	GetSavedItemCount() (int, error)
}

type PrefsRepository interface {
	GetPref(userID, key string) (string, error)
	SetPref(userID, key, value string) error
}
