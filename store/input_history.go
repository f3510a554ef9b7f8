package store

import (
	"github.com/pkg/errors"
)

// LoadHistory returns the most recent input history entries, oldest first.
func (s *Store) LoadHistory(limit int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT entry FROM (
			SELECT id, entry FROM input_history
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying input history")
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, errors.Wrap(err, "scanning input history row")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating input history rows")
	}
	return entries, nil
}

// AppendHistory records an entry and drops everything but the newest limit entries.
func (s *Store) AppendHistory(entry string, limit int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO input_history (entry) VALUES (?)`, entry); err != nil {
		return errors.Wrap(err, "inserting input history entry")
	}
	_, err = tx.Exec(`
		DELETE FROM input_history
		WHERE id NOT IN (
			SELECT id FROM input_history ORDER BY id DESC LIMIT ?
		)
	`, limit)
	if err != nil {
		return errors.Wrap(err, "trimming input history")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}
