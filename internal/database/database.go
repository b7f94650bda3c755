// Package database provides SQLite storage for feed snapshots.
//
// The site serves everything from the upstream RSS document, so the only
// persistent state is the last successfully fetched copy of that document.
// Keeping it on disk lets a cold process, or one facing an upstream outage,
// keep serving stale-but-complete content.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Snapshot is one stored copy of a feed document.
type Snapshot struct {
	FeedURL   string
	Body      string
	FetchedAt time.Time
}

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// New opens or creates an SQLite database at the given path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS feed_snapshots (
		feed_url TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot stores the latest good copy of a feed document, replacing
// any previous one for the same URL.
func (db *DB) SaveSnapshot(feedURL, body string, fetchedAt time.Time) error {
	_, err := db.conn.Exec(`
		INSERT INTO feed_snapshots (feed_url, body, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(feed_url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		feedURL, body, fetchedAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the stored copy for a feed URL, or nil if none exists.
func (db *DB) GetSnapshot(feedURL string) (*Snapshot, error) {
	var s Snapshot
	err := db.conn.QueryRow(
		"SELECT feed_url, body, fetched_at FROM feed_snapshots WHERE feed_url = ?",
		feedURL).Scan(&s.FeedURL, &s.Body, &s.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &s, nil
}
