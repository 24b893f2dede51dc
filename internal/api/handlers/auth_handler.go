package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/skycast-dev/skycast-be/internal/auth"
	"github.com/skycast-dev/skycast-be/internal/services"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users  services.UserServiceProvider
	events services.EventServiceProvider
	issuer *auth.TokenIssuer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, events services.EventServiceProvider, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, events: events, issuer: issuer}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := h.users.CreateUser(payload.Username, payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEmail):
			writeMessage(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, services.ErrDuplicateUsername):
			writeMessage(w, http.StatusBadRequest, "Username already taken")
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
			writeMessage(w, http.StatusInternalServerError, "Server error during registration")
		}
		return
	}

	h.recordEvent(services.EventUserRegistered, "info",
		fmt.Sprintf("user %s registered", user.Username), &user.ID)

	writeMessage(w, http.StatusCreated, "User registered successfully")
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Email == "" || payload.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			h.recordEvent(services.EventLoginFailed, "warn",
				fmt.Sprintf("failed login for %s", payload.Email), nil)
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Authentication error")
		writeMessage(w, http.StatusInternalServerError, "Server error during login")
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to issue token")
		writeMessage(w, http.StatusInternalServerError, "Server error during login")
		return
	}

	h.recordEvent(services.EventUserLogin, "info",
		fmt.Sprintf("user %s logged in", user.Username), &user.ID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// recordEvent writes an audit event; a failed write is logged, never
// surfaced to the caller.
func (h *AuthHandler) recordEvent(eventType, level, message string, userID *int64) {
	if err := h.events.CreateEvent(eventType, level, message, userID); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}
