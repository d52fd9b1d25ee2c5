// Package storage wraps the bot's sqlite database.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // sqlite driver registered as 'sqlite3'
)

// Braindump is one stored channel note.
type Braindump struct {
	Date  string
	Topic string
}

// DB holds the sqlite handle shared with the command dispatcher.
type DB struct {
	conn *sql.DB
}

// Open opens the sqlite database at path and makes sure the braindumps
// table exists.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// ensureSchema probes for the braindumps table and creates it when the
// probe fails.
func (db *DB) ensureSchema() error {
	if _, err := db.conn.Exec("SELECT date, topic FROM braindumps LIMIT 1"); err == nil {
		return nil
	}
	if _, err := db.conn.Exec("CREATE TABLE braindumps (date text, topic text)"); err != nil {
		return fmt.Errorf("failed to create braindumps table: %w", err)
	}
	return nil
}

// AddBraindump stores one note with its timestamp.
func (db *DB) AddBraindump(date, topic string) error {
	if _, err := db.conn.Exec("INSERT INTO braindumps (date, topic) VALUES (?, ?)", date, topic); err != nil {
		return fmt.Errorf("failed to store braindump: %w", err)
	}
	return nil
}

// RecentBraindumps returns up to n notes, newest first.
func (db *DB) RecentBraindumps(n int) ([]Braindump, error) {
	rows, err := db.conn.Query("SELECT date, topic FROM braindumps ORDER BY rowid DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("failed to read braindumps: %w", err)
	}
	defer rows.Close()

	var dumps []Braindump
	for rows.Next() {
		var d Braindump
		if err := rows.Scan(&d.Date, &d.Topic); err != nil {
			return nil, fmt.Errorf("failed to read braindumps: %w", err)
		}
		dumps = append(dumps, d)
	}
	return dumps, rows.Err()
}

// Close releases the database handle.
func (db *DB) Close() error {
	return db.conn.Close()
}
