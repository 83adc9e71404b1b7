package data

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hafizmfadli/movie-catalog/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

// AnonymousUser represents a caller that presented no valid credentials.
var AnonymousUser = &User{}

type User struct {
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email,omitempty"`
	Password   password `json:"-"`
	MovieCount int      `json:"movie_count"`
	Version    int32    `json:"-"`
}

// IsAnonymous reports whether u is the AnonymousUser.
func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

// password holds the bcrypt hash of a user's password.
type password struct {
	hash []byte
}

// Set computes and stores the bcrypt hash of plaintextPassword.
func (p *password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), 12)
	if err != nil {
		return err
	}

	p.hash = hash

	return nil
}

// Matches reports whether plaintextPassword matches the stored hash. A
// missing or malformed hash never matches.
func (p *password) Matches(plaintextPassword string) bool {
	if len(p.hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(p.hash, []byte(plaintextPassword)) == nil
}

func ValidateUsername(v *validator.Validator, username string) {
	v.Check(username != "", "username", "must be provided")
	v.Check(len(username) <= 64, "username", "must not be more than 64 bytes long")
}

func ValidateEmail(v *validator.Validator, email string) {
	v.Check(len(email) <= 254, "email", "must not be more than 254 bytes long")
	v.Check(validator.Matches(email, validator.EmailRX), "email", "must be a valid email address")
}

// ValidatePasswordPlaintext checks a password received from a client. bcrypt
// only looks at the first 72 bytes, so longer passwords are rejected.
func ValidatePasswordPlaintext(v *validator.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(len(password) <= 72, "password", "must not be more than 72 bytes long")
}

// UserModel is the PostgreSQL implementation of UserStore.
type UserModel struct {
	DB  *sql.DB
	Now func() time.Time
}

// Insert adds user and sets its ID and Version. A taken username yields
// ErrDuplicateUsername; the UNIQUE constraint on users.username backs the
// check made by the handler.
func (m UserModel) Insert(user *User) error {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, version`

	args := []any{user.Username, sql.NullString{String: user.Email, Valid: user.Email != ""}, user.Password.hash}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Version)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrDuplicateUsername
		default:
			return fmt.Errorf("insert user: %w", err)
		}
	}

	return nil
}

// Get returns the user with id together with the number of movies it owns.
func (m UserModel) Get(id int64) (*User, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.version,
		       (SELECT count(*) FROM movies WHERE movies.user_id = u.id)
		FROM users u
		WHERE u.id = $1`

	return m.getOne(query, id)
}

func (m UserModel) GetByUsername(username string) (*User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.version,
		       (SELECT count(*) FROM movies WHERE movies.user_id = u.id)
		FROM users u
		WHERE u.username = $1`

	return m.getOne(query, username)
}

// GetForToken resolves a bearer token to its user. Unknown, revoked and
// expired tokens all yield ErrRecordNotFound.
func (m UserModel) GetForToken(tokenPlaintext string) (*User, error) {
	tokenHash := sha256.Sum256([]byte(tokenPlaintext))

	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.version,
		       (SELECT count(*) FROM movies WHERE movies.user_id = u.id)
		FROM users u
		WHERE u.token_hash = $1
		AND u.token_expiry > $2`

	return m.getOne(query, tokenHash[:], m.Now())
}

func (m UserModel) getOne(query string, args ...any) (*User, error) {
	var (
		user  User
		email sql.NullString
	)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&email,
		&user.Password.hash,
		&user.Version,
		&user.MovieCount,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, fmt.Errorf("select user: %w", err)
		}
	}

	user.Email = email.String

	return &user, nil
}
