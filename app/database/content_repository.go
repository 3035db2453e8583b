package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentDBRepository handles database operations for durable content records
type ContentDBRepository struct {
	db *DB
}

var _ ContentRepository = (*ContentDBRepository)(nil)

func NewContentRepository(db *DB) *ContentDBRepository {
	return &ContentDBRepository{db: db}
}

// GetContentByExternalID looks up a durable record by its upstream identity.
// Returns nil without error when no record exists.
func (r *ContentDBRepository) GetContentByExternalID(namespace, externalID string) (*Content, error) {
	var content Content
	err := r.db.QueryRow(`
		SELECT id, namespace, external_id, title, url, image_url, kind, provider, created_at
		FROM content_items
		WHERE namespace = ? AND external_id = ?
	`, namespace, externalID).Scan(
		&content.ID, &content.Namespace, &content.ExternalID, &content.Title,
		&content.URL, &content.ImageURL, &content.Kind, &content.Provider,
		&content.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content by external id: %w", err)
	}

	return &content, nil
}

// CreateContent inserts a durable record and returns its new id. When a
// concurrent caller created the same (namespace, external_id) first, the
// unique constraint fires and the existing id is returned instead, so the
// operation is idempotent end to end.
func (r *ContentDBRepository) CreateContent(content NewContent) (string, error) {
	id := uuid.NewString()

	_, err := r.db.Exec(`
		INSERT INTO content_items (id, namespace, external_id, title, url, image_url, kind, provider)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, content.Namespace, content.ExternalID, content.Title,
		content.URL, content.ImageURL, content.Kind, content.Provider)

	if err != nil {
		existing, lookupErr := r.GetContentByExternalID(content.Namespace, content.ExternalID)
		if lookupErr == nil && existing != nil {
			return existing.ID, nil
		}
		return "", fmt.Errorf("failed to create content: %w", err)
	}

	return id, nil
}

// GetContentCount returns the total number of durable content records
func (r *ContentDBRepository) GetContentCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM content_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get content count: %w", err)
	}
	return count, nil
}

// DeleteUnreferencedContent removes durable records older than the given time
// that no saved item references, returning the number of rows deleted.
func (r *ContentDBRepository) DeleteUnreferencedContent(olderThan time.Time) (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM content_items
		WHERE created_at < ?
		  AND id NOT IN (SELECT content_id FROM saved_items)
	`, olderThan.UTC())

	if err != nil {
		return 0, fmt.Errorf("failed to delete unreferenced content: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted content rows: %w", err)
	}

	return deleted, nil
}
