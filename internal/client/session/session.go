// Package session holds the CLI's locally cached login state: the bearer
// token plus a display-only copy of the user. One JSON file is the single
// source of truth for the cached token.
//
// The validity check here decodes the token payload WITHOUT verifying the
// signature -- the client holds no secret and cannot verify. It gates only
// what the CLI is willing to attempt locally; the server re-validates every
// protected request regardless of what this package reports.
package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoSession indicates no session is stored locally.
var ErrNoSession = errors.New("no stored session")

// User is the display-only copy of the account, denormalized from the
// login response. It never includes credentials.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is what gets persisted between CLI invocations.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Store reads and writes the session file.
type Store struct {
	path string
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the session file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "skycast", "session.json"), nil
}

// Save persists the session, creating the parent directory if needed.
// The file is user-readable only.
func (s *Store) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Load reads the stored session. Returns ErrNoSession when none exists.
func (s *Store) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Clear removes the stored session. Clearing an absent session is not an
// error, so logout is idempotent.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IsAuthenticated reports whether a stored token exists and its exp claim
// is still in the future. Advisory only: any parse failure, missing token,
// or missing exp claim yields false (fail closed).
func (s *Store) IsAuthenticated() bool {
	sess, err := s.Load()
	if err != nil {
		return false
	}
	return tokenValid(sess.Token, time.Now())
}

// tokenValid decodes the claims segment of a JWT and checks exp against
// now. No signature verification happens here.
func tokenValid(token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return false
	}
	if claims.Exp == 0 {
		return false
	}
	return claims.Exp > now.Unix()
}
