package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/skycast-dev/skycast-be/internal/auth"
	"github.com/skycast-dev/skycast-be/internal/models"
)

// Credential errors surfaced to handlers. ErrInvalidCredentials covers both
// an unknown email and a wrong password so callers cannot enumerate users.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(username, email, password string) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
	GetUserByID(id int64) (models.User, error)
	ListUsers() ([]models.User, error)
}

// UserService provides business logic for user management. Uniqueness of
// username and email is enforced by the store's UNIQUE constraints, never
// by a check-then-insert in this layer.
type UserService struct {
	db     *sql.DB
	hasher *auth.PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, hasher *auth.PasswordHasher) *UserService {
	return &UserService{db: db, hasher: hasher}
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(username, email, password string) (models.User, error) {
	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, err
	}

	res, err := s.db.Exec("INSERT INTO users(username, email, password_hash) VALUES(?, ?, ?)",
		username, email, hashedPassword)
	if err != nil {
		if dupErr := classifyUniqueViolation(err); dupErr != nil {
			return models.User{}, dupErr
		}
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("failed to read new user id: %w", err)
	}
	return s.GetUserByID(id)
}

// AuthenticateUser verifies a user's credentials. The error for an unknown
// email is indistinguishable from the error for a wrong password.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.getUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	ok, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(id int64) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, email, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// ListUsers retrieves all users, most recently created first. The password
// hash is never selected. Ties on created_at fall back to id so insertion
// order still wins within the same second.
func (s *UserService) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT id, username, email, created_at FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// getUserByEmail retrieves a single user by their email, including the
// password hash. Internal to this service.
func (s *UserService) getUserByEmail(email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// classifyUniqueViolation maps a SQLite unique-constraint violation to the
// matching duplicate error, or returns nil if err is something else.
func classifyUniqueViolation(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return nil
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "users.username"):
		return ErrDuplicateUsername
	default:
		return nil
	}
}
