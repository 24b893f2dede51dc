package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/skycast-dev/skycast-be/internal/auth"
	"github.com/skycast-dev/skycast-be/internal/models"
	"github.com/skycast-dev/skycast-be/internal/services"
)

// UserHandler handles HTTP requests for the protected user endpoints.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// List returns all users, most recently created first. Password hashes are
// never selected by the service, and the model keeps the field out of JSON.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeMessage(w, http.StatusInternalServerError, "Server error fetching users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GetMe retrieves the currently authenticated user from the token claims.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		writeMessage(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	user, err := h.service.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			log.Warn().Int64("user_id", claims.UserID).Msg("User from token not found in DB")
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to fetch user")
		writeMessage(w, http.StatusInternalServerError, "Server error fetching user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
