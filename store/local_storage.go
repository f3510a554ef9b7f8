package store

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// GetItem returns the value stored under key. The boolean is false when the key is absent.
func (s *Store) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "querying item %s", key)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
func (s *Store) SetItem(key, value string) error {
	_, err := s.db.Exec(`
		REPLACE INTO local_storage (key, value, update_timestamp)
		VALUES (?, ?, ?)
	`, key, value, time.Now().UnixMicro())
	if err != nil {
		return errors.Wrapf(err, "writing item %s", key)
	}
	return nil
}

// RemoveItem deletes key. Removing an absent key is not an error.
func (s *Store) RemoveItem(key string) error {
	if _, err := s.db.Exec(`DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return errors.Wrapf(err, "removing item %s", key)
	}
	return nil
}
