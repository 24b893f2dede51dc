package services

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/skycast-dev/skycast-be/internal/auth"
	"github.com/skycast-dev/skycast-be/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// A pooled connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(newTestDB(t), auth.NewPasswordHasher(bcrypt.MinCost))
}

func TestCreateUser(t *testing.T) {
	s := newTestUserService(t)

	user, err := s.CreateUser("alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.Empty(t, user.PasswordHash, "password hash must not leave the store")
	assert.False(t, user.CreatedAt.IsZero())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestUserService(t)

	_, err := s.CreateUser("alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	_, err = s.CreateUser("bob", "alice@x.com", "secret2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s := newTestUserService(t)

	_, err := s.CreateUser("alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	_, err = s.CreateUser("alice", "other@x.com", "secret2")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestAuthenticateUser(t *testing.T) {
	s := newTestUserService(t)

	created, err := s.CreateUser("alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	user, err := s.AuthenticateUser("alice@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestAuthenticateUserFailuresIndistinguishable(t *testing.T) {
	s := newTestUserService(t)

	_, err := s.CreateUser("alice", "alice@x.com", "secret1")
	require.NoError(t, err)

	_, wrongPassword := s.AuthenticateUser("alice@x.com", "wrong")
	_, unknownEmail := s.AuthenticateUser("nobody@x.com", "secret1")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error(),
		"credential failures must not reveal whether the email exists")
}

func TestListUsersNewestFirst(t *testing.T) {
	s := newTestUserService(t)

	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := s.CreateUser(name, name+"@x.com", "secret1")
		require.NoError(t, err)
	}

	users, err := s.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 3)

	assert.Equal(t, "carol", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "alice", users[2].Username)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	s := newTestUserService(t)

	_, err := s.GetUserByID(12345)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
