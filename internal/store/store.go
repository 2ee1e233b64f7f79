package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

var (
	ErrNoAuth     = errors.New("no persisted auth state")
	ErrNoSnapshot = errors.New("no snapshot for key")
)

// Store is the client's persisted local state: auth token, serialized
// profile, login timestamp, per-resource snapshots and saved filter
// preferences. It is the durable fallback the UI reads when the network is
// unavailable, so it must work with no external services.
type Store struct {
	db *sql.DB
}

// Open creates or opens the state database at path, creating parent
// directories as needed. Safe to call repeatedly.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect state db: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveAuth replaces the persisted auth state.
func (s *Store) SaveAuth(token string, profile []byte, loginAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO auth (id, token, profile, login_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET token = excluded.token, profile = excluded.profile, login_at = excluded.login_at`,
		token, string(profile), loginAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save auth: %w", err)
	}
	return nil
}

// Auth returns the persisted token, profile payload and login timestamp, or
// ErrNoAuth when nobody is logged in.
func (s *Store) Auth() (string, []byte, time.Time, error) {
	var (
		token   string
		profile string
		loginAt time.Time
	)
	err := s.db.QueryRow(`SELECT token, profile, login_at FROM auth WHERE id = 1`).
		Scan(&token, &profile, &loginAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, time.Time{}, ErrNoAuth
	}
	if err != nil {
		return "", nil, time.Time{}, fmt.Errorf("read auth: %w", err)
	}
	return token, []byte(profile), loginAt, nil
}

func (s *Store) ClearAuth() error {
	if _, err := s.db.Exec(`DELETE FROM auth WHERE id = 1`); err != nil {
		return fmt.Errorf("clear auth: %w", err)
	}
	return nil
}

// SaveSnapshot overwrites the snapshot for key; last writer wins.
func (s *Store) SaveSnapshot(key string, payload []byte, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (key, payload, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		key, string(payload), at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}

func (s *Store) Snapshot(key string) ([]byte, time.Time, error) {
	var (
		payload string
		savedAt time.Time
	)
	err := s.db.QueryRow(`SELECT payload, saved_at FROM snapshots WHERE key = ?`, key).
		Scan(&payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read snapshot %q: %w", key, err)
	}
	return []byte(payload), savedAt, nil
}

func (s *Store) DeleteSnapshot(key string) error {
	if _, err := s.db.Exec(`DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", key, err)
	}
	return nil
}

func (s *Store) SaveFilterPrefs(userID string, prefs []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO filter_prefs (user_id, prefs) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET prefs = excluded.prefs`,
		userID, string(prefs),
	)
	if err != nil {
		return fmt.Errorf("save filter prefs: %w", err)
	}
	return nil
}

func (s *Store) FilterPrefs(userID string) ([]byte, error) {
	var prefs string
	err := s.db.QueryRow(`SELECT prefs FROM filter_prefs WHERE user_id = ?`, userID).Scan(&prefs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read filter prefs: %w", err)
	}
	return []byte(prefs), nil
}
