package store

import (
	"database/sql"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/malonaz/pdfchat/internal/file"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_storage (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	update_timestamp INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS input_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entry TEXT NOT NULL
);
`

// Store implements a SQLite store for client-local state.
// It plays the role browser local storage plays for a web client.
type Store struct {
	db *sql.DB
}

// New store.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := file.CreateDirectoryIfNotExist(filepath.Dir(dbPath)); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating tables")
	}

	return &Store{
		db: db,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
