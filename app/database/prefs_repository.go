package database

import (
	"database/sql"
	"fmt"
)

// PrefsDBRepository handles database operations for user preferences
type PrefsDBRepository struct {
	db *DB
}

var _ PrefsRepository = (*PrefsDBRepository)(nil)

func NewPrefsRepository(db *DB) *PrefsDBRepository {
	return &PrefsDBRepository{db: db}
}

// GetPref returns the stored value for a preference key, or "" when unset.
func (r *PrefsDBRepository) GetPref(userID, key string) (string, error) {
	var value string
	err := r.db.QueryRow(`
		SELECT value FROM user_prefs
		WHERE user_id = ? AND key = ?
	`, userID, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get pref: %w", err)
	}

	return value, nil
}

// SetPref writes a preference value, replacing any previous one.
func (r *PrefsDBRepository) SetPref(userID, key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO user_prefs (user_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, userID, key, value)

	if err != nil {
		return fmt.Errorf("failed to set pref: %w", err)
	}

	return nil
}
