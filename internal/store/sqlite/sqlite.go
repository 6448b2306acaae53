package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wirechat-relay/internal/store"
)

// Schema creates the tables used by the store. It is safe to apply repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS uploads (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path       TEXT NOT NULL UNIQUE,
	link       TEXT NOT NULL,
	room       TEXT NOT NULL,
	username   TEXT NOT NULL,
	stored_at  DATETIME NOT NULL,
	delete_at  DATETIME NOT NULL,
	deleted_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_uploads_pending ON uploads(deleted_at, delete_at);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits before setup
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordUpload inserts a pending upload.
func (s *SQLiteStore) RecordUpload(ctx context.Context, upload *store.Upload) error {
	query := `
		INSERT INTO uploads (path, link, room, username, stored_at, delete_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		upload.Path,
		upload.Link,
		upload.Room,
		upload.Username,
		upload.StoredAt.UTC(),
		upload.DeleteAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	upload.ID = id
	return nil
}

// PendingUploads lists uploads whose files have not been deleted yet.
func (s *SQLiteStore) PendingUploads(ctx context.Context) ([]*store.Upload, error) {
	query := `
		SELECT id, path, link, room, username, stored_at, delete_at, deleted_at
		FROM uploads
		WHERE deleted_at IS NULL
		ORDER BY delete_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*store.Upload
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}

	return uploads, rows.Err()
}

// MarkDeleted stamps the deletion time of a pending upload.
func (s *SQLiteStore) MarkDeleted(ctx context.Context, path string, at time.Time) error {
	query := `
		UPDATE uploads
		SET deleted_at = ?
		WHERE path = ? AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, at.UTC(), path)
	if err != nil {
		return fmt.Errorf("mark upload deleted: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("upload %s: %w", path, store.ErrNotFound)
	}
	return nil
}

// GetUpload retrieves an upload by its disk path.
func (s *SQLiteStore) GetUpload(ctx context.Context, path string) (*store.Upload, error) {
	query := `
		SELECT id, path, link, room, username, stored_at, delete_at, deleted_at
		FROM uploads
		WHERE path = ?
	`
	upload, err := scanUpload(s.db.QueryRowContext(ctx, query, path))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("upload %s: %w", path, store.ErrNotFound)
		}
		return nil, err
	}
	return upload, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(row scanner) (*store.Upload, error) {
	var upload store.Upload
	var deletedAt sql.NullTime
	err := row.Scan(
		&upload.ID,
		&upload.Path,
		&upload.Link,
		&upload.Room,
		&upload.Username,
		&upload.StoredAt,
		&upload.DeleteAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan upload: %w", err)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		upload.DeletedAt = &t
	}
	return &upload, nil
}
