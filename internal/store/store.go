// Package store persists per-user conversation histories in SQLite. The
// auditor core never touches it directly: conversations come out of the
// store already loaded, and resolution results go back in wholesale.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"chatwarden/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS conversations (
	user_email TEXT PRIMARY KEY,
	history    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// Store wraps the SQLite database holding conversation histories.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at the given path and applies the
// table schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces a user's conversation history wholesale.
func (s *Store) Save(email string, conv model.Conversation) error {
	history, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("store: marshal history: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO conversations (user_email, history, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_email) DO UPDATE SET history = excluded.history, updated_at = excluded.updated_at`,
		email, string(history), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: save conversation for %s: %w", email, err)
	}
	return nil
}

// Conversation loads one user's history. The second return is false when
// the user has no stored conversation.
func (s *Store) Conversation(email string) (model.Conversation, bool, error) {
	var history string
	row := s.db.QueryRow(`SELECT history FROM conversations WHERE user_email = ?`, email)
	if err := row.Scan(&history); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: load conversation for %s: %w", email, err)
	}
	conv, err := model.ParseConversation([]byte(history))
	if err != nil {
		return nil, false, fmt.Errorf("store: %s: %w", email, err)
	}
	return conv, true, nil
}

// Record pairs a user with their stored conversation.
type Record struct {
	Email        string
	Conversation model.Conversation
}

// List returns all stored conversations ordered by user email.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query(`SELECT user_email, history FROM conversations ORDER BY user_email ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list conversations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var email, history string
		if err := rows.Scan(&email, &history); err != nil {
			return nil, fmt.Errorf("store: scan row: %w", err)
		}
		conv, err := model.ParseConversation([]byte(history))
		if err != nil {
			return nil, fmt.Errorf("store: %s: %w", email, err)
		}
		out = append(out, Record{Email: email, Conversation: conv})
	}
	return out, rows.Err()
}
