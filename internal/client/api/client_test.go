package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/skycast-dev/skycast-be/internal/client/session"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	return New(srv.URL, store), store
}

func TestLoginSavesSession(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "issued-token",
			"user":  map[string]interface{}{"id": 1, "username": "alice", "email": "alice@x.com"},
		})
	})
	client, store := newTestClient(t, handler)

	sess, err := client.Login(context.Background(), "alice@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if sess.Token != "issued-token" || sess.User.Username != "alice" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	stored, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if stored != sess {
		t.Fatalf("stored session %+v differs from returned %+v", stored, sess)
	}
}

func TestLoginFailureSurfacesServerMessage(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	})
	client, _ := newTestClient(t, handler)

	_, err := client.Login(context.Background(), "alice@x.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Invalid credentials" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestProtectedCallAttachesBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": 1, "username": "alice", "email": "alice@x.com"},
		})
	})
	client, store := newTestClient(t, handler)
	if err := store.Save(session.Session{Token: "stored-token"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	users, err := client.Users(context.Background())
	if err != nil {
		t.Fatalf("Users error: %v", err)
	}
	if gotAuth != "Bearer stored-token" {
		t.Fatalf("Authorization header = %q", gotAuth)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestServer401ClearsSession(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Token has expired"})
	})
	client, store := newTestClient(t, handler)
	if err := store.Save(session.Session{Token: "stale-token"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	_, err := client.Me(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, session.ErrNoSession) {
		t.Fatal("session must be cleared after a server 401")
	}
}

func TestProtectedCallWithoutSession(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server without a stored session")
	})
	client, _ := newTestClient(t, handler)

	_, err := client.Me(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
