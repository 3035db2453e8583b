package database

import (
	"fmt"
)

// SavedItemDBRepository handles database operations for saved items
type SavedItemDBRepository struct {
	db *DB
}

var _ SavedItemRepository = (*SavedItemDBRepository)(nil)

func NewSavedItemRepository(db *DB) *SavedItemDBRepository {
	return &SavedItemDBRepository{db: db}
}

// UpsertSavedItem records a save. Saving an already-saved item is a no-op.
func (r *SavedItemDBRepository) UpsertSavedItem(userID, contentID string) error {
	_, err := r.db.Exec(`
		INSERT INTO saved_items (user_id, content_id)
		VALUES (?, ?)
		ON CONFLICT (user_id, content_id) DO NOTHING
	`, userID, contentID)

	if err != nil {
		return fmt.Errorf("failed to upsert saved item: %w", err)
	}

	return nil
}

// DeleteSavedItem removes a save. Unsaving an item that is not saved is a no-op.
func (r *SavedItemDBRepository) DeleteSavedItem(userID, contentID string) error {
	_, err := r.db.Exec(`
		DELETE FROM saved_items
		WHERE user_id = ? AND content_id = ?
	`, userID, contentID)

	if err != nil {
		return fmt.Errorf("failed to delete saved item: %w", err)
	}

	return nil
}

// ListSavedContentIDs returns the durable content ids the user has saved,
// newest first.
func (r *SavedItemDBRepository) ListSavedContentIDs(userID string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT content_id
		FROM saved_items
		WHERE user_id = ?
		ORDER BY saved_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved content ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan saved item row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved item rows: %w", err)
	}

	return ids, nil
}

// GetSavedItemCount returns the total number of saved items across all users
func (r *SavedItemDBRepository) GetSavedItemCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM saved_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get saved item count: %w", err)
	}
	return count, nil
}
