package data

import (
	"database/sql"
	"errors"
	"time"
)

var (
	// ErrRecordNotFound is returned when looking up a row that doesn't exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrEditConflict is returned when a movie changed between read and update.
	ErrEditConflict = errors.New("edit conflict")
	// ErrDuplicateUsername is returned when inserting a username that is taken.
	ErrDuplicateUsername = errors.New("duplicate username")
)

// queryTimeout bounds every database call made by the models.
const queryTimeout = 3 * time.Second

// MovieStore is the set of operations on movies. Ownership is not enforced
// here; callers compare Movie.UserID with the authenticated user.
type MovieStore interface {
	Insert(movie *Movie) error
	Get(id int64) (*Movie, error)
	GetAllForUser(userID int64, filters Filters) ([]*Movie, Metadata, error)
	Update(movie *Movie) error
	Delete(id int64) error
}

// UserStore is the set of operations on users.
type UserStore interface {
	Insert(user *User) error
	Get(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	GetForToken(tokenPlaintext string) (*User, error)
}

// TokenStore issues and revokes the single bearer token a user may hold.
type TokenStore interface {
	New(userID int64, ttl time.Duration) (*Token, error)
	Revoke(userID int64) error
}

// Models is 'container' which can hold and respresent all your database models
type Models struct {
	Movies MovieStore
	Users  UserStore
	Tokens TokenStore
}

// NewModels returns Models backed by a PostgreSQL connection pool.
func NewModels(db *sql.DB) Models {
	return Models{
		Movies: MovieModel{DB: db},
		Users:  UserModel{DB: db, Now: time.Now},
		Tokens: TokenModel{DB: db, Now: time.Now},
	}
}
