package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListEvents(t *testing.T) {
	s := NewEventService(newTestDB(t))

	userID := int64(7)
	require.NoError(t, s.CreateEvent(EventUserRegistered, "info", "user alice registered", &userID))
	require.NoError(t, s.CreateEvent(EventLoginFailed, "warn", "failed login for bob@x.com", nil))

	events, err := s.GetRecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	for _, e := range events {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	}

	types := []string{events[0].Type, events[1].Type}
	assert.Contains(t, types, EventUserRegistered)
	assert.Contains(t, types, EventLoginFailed)
}

func TestGetRecentEventsLimit(t *testing.T) {
	s := NewEventService(newTestDB(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateEvent(EventUserLogin, "info", "login", nil))
	}

	events, err := s.GetRecentEvents(3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
