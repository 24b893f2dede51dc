// Package api is the HTTP client for the Skycast backend. It attaches the
// stored bearer token to protected requests and drops the local session as
// soon as the server answers 401, mirroring the lifecycle the backend
// expects: a rejected token is dead, there is nothing to retry.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/skycast-dev/skycast-be/internal/client/session"
)

// ErrUnauthorized is returned when the server rejects the stored token.
// The local session has already been cleared by the time callers see it.
var ErrUnauthorized = errors.New("unauthorized")

// APIError carries a non-2xx response's status and server message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// User mirrors the backend's user representation.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Client talks to the Skycast backend API.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Store
}

// New creates a Client for the backend at baseURL, using store for the
// cached session.
func New(baseURL string, store *session.Store) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		sessions: store,
	}
}

// Register creates a new account. Returns the server's confirmation message.
func (c *Client) Register(ctx context.Context, username, email, password string) (string, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", body, &resp, false); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login authenticates and persists the returned token plus the display
// copy of the user in the session store.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string       `json:"token"`
		User  session.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &resp, false); err != nil {
		return session.Session{}, err
	}

	sess := session.Session{Token: resp.Token, User: resp.User}
	if err := c.sessions.Save(sess); err != nil {
		return session.Session{}, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Logout clears the stored session before anything else happens.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &user, true); err != nil {
		return User{}, err
	}
	return user, nil
}

// Users fetches all accounts, newest first.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users", nil, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/health", nil, nil, false)
}

// do runs one request. For authed calls the stored token is attached; a
// 401 response clears the session and returns ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if authed {
		sess, err := c.sessions.Load()
		if err != nil {
			return ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && authed {
		// Token expired or invalid: drop the cached session.
		_ = c.sessions.Clear()
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
