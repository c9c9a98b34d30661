// Package session owns the local credential: the bearer token issued by
// the backend at login plus the minimal identity behind it. The store is
// the only place the token lives; everything else reads it through the
// api.TokenSource interface and never writes it.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Lifetime matches the backend session policy: tokens are good for 30
// days from login, after which the user must log in again.
const Lifetime = 30 * 24 * time.Hour

// ErrNoSession means nobody is logged in, or the stored session expired.
var ErrNoSession = errors.New("no active session")

// Credential is a bearer token tied to a signed-in identity.
type Credential struct {
	Token     string
	UserID    int
	Email     string
	FullName  string
	ExpiresAt time.Time
}

func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Store persists a single credential in a local SQLite file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS credential (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			email TEXT NOT NULL,
			full_name TEXT,
			expires_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Save replaces any existing credential. ExpiresAt is stamped from now
// when the caller left it zero.
func (s *Store) Save(cred Credential) error {
	if cred.ExpiresAt.IsZero() {
		cred.ExpiresAt = s.now().Add(Lifetime)
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO credential (id, token, user_id, email, full_name, expires_at)
		 VALUES (1, ?, ?, ?, ?, ?)`,
		cred.Token, cred.UserID, cred.Email, cred.FullName, cred.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Get returns the stored credential, failing with ErrNoSession when none
// exists or the stored one has expired. Expired rows are cleared so a
// later Save starts clean.
func (s *Store) Get() (Credential, error) {
	var cred Credential
	var expires int64
	err := s.db.QueryRow(
		`SELECT token, user_id, email, full_name, expires_at FROM credential WHERE id = 1`,
	).Scan(&cred.Token, &cred.UserID, &cred.Email, &cred.FullName, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, ErrNoSession
	}
	if err != nil {
		return Credential{}, fmt.Errorf("read credential: %w", err)
	}
	cred.ExpiresAt = time.Unix(expires, 0)
	if cred.Expired(s.now()) {
		_ = s.Clear()
		return Credential{}, ErrNoSession
	}
	return cred, nil
}

// Clear forgets the stored credential. Clearing an empty store is fine.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM credential WHERE id = 1`); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Token implements api.TokenSource.
func (s *Store) Token() (string, error) {
	cred, err := s.Get()
	if err != nil {
		return "", err
	}
	return cred.Token, nil
}
