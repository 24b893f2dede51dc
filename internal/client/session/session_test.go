package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "session.json"))
}

// fakeToken builds a JWT-shaped string whose payload carries the given
// claims. The signature is garbage; the guard never checks it.
func fakeToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString(payload)
	return fmt.Sprintf("%s.%s.%s", header, body, "bm90LWEtcmVhbC1zaWduYXR1cmU")
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	sess := Session{
		Token: "some-token",
		User:  User{ID: 1, Username: "alice", Email: "alice@x.com"},
	}
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded != sess {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", loaded, sess)
	}
}

func TestSaveRestrictsFileMode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)
	if err := store.Save(Session{Token: "tok"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("session file mode = %o, want 600", perm)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.Load(); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestClearIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.Save(Session{Token: "tok"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear must not error: %v", err)
	}
	if _, err := store.Load(); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession after Clear, got %v", err)
	}
}

func TestIsAuthenticated(t *testing.T) {
	t.Parallel()

	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	cases := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid future exp", fakeToken(t, map[string]interface{}{"exp": future, "userId": 1}), true},
		{"expired", fakeToken(t, map[string]interface{}{"exp": past}), false},
		{"missing exp", fakeToken(t, map[string]interface{}{"userId": 1}), false},
		{"not a jwt", "just-some-string", false},
		{"two segments", "aaaa.bbbb", false},
		{"payload not base64", "aaaa.!!!.cccc", false},
		{"payload not json", "aaaa." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".cccc", false},
		{"empty token", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)
			if err := store.Save(Session{Token: tc.token}); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			if got := store.IsAuthenticated(); got != tc.want {
				t.Fatalf("IsAuthenticated() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsAuthenticatedNoSession(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if store.IsAuthenticated() {
		t.Fatal("missing session must not count as authenticated")
	}
}
