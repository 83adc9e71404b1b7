package data

import (
	"bytes"
	"crypto/sha256"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryDB keeps users and movies in maps guarded by one mutex. It mirrors
// the constraints of the PostgreSQL schema: unique usernames, movies bound to
// an existing user, one token per user.
type memoryDB struct {
	mu          sync.Mutex
	now         func() time.Time
	users       map[int64]*memoryUser
	movies      map[int64]*Movie
	nextUserID  int64
	nextMovieID int64
}

type memoryUser struct {
	user        User
	tokenHash   []byte
	tokenExpiry time.Time
}

// NewMemoryModels returns Models kept in process memory. now is the clock
// used for token expiry; nil means time.Now.
func NewMemoryModels(now func() time.Time) Models {
	if now == nil {
		now = time.Now
	}

	db := &memoryDB{
		now:    now,
		users:  make(map[int64]*memoryUser),
		movies: make(map[int64]*Movie),
	}

	return Models{
		Movies: memoryMovies{db},
		Users:  memoryUsers{db},
		Tokens: memoryTokens{db},
	}
}

type memoryUsers struct{ db *memoryDB }

func (m memoryUsers) Insert(user *User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, u := range m.db.users {
		if u.user.Username == user.Username {
			return ErrDuplicateUsername
		}
	}

	m.db.nextUserID++
	user.ID = m.db.nextUserID
	user.Version = 1
	m.db.users[user.ID] = &memoryUser{user: *user}

	return nil
}

func (m memoryUsers) Get(id int64) (*User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	u, ok := m.db.users[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return m.db.userCopy(u), nil
}

func (m memoryUsers) GetByUsername(username string) (*User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, u := range m.db.users {
		if u.user.Username == username {
			return m.db.userCopy(u), nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m memoryUsers) GetForToken(tokenPlaintext string) (*User, error) {
	hash := sha256.Sum256([]byte(tokenPlaintext))

	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	now := m.db.now()
	for _, u := range m.db.users {
		if u.tokenHash != nil && bytes.Equal(u.tokenHash, hash[:]) && now.Before(u.tokenExpiry) {
			return m.db.userCopy(u), nil
		}
	}
	return nil, ErrRecordNotFound
}

// userCopy must be called with mu held.
func (db *memoryDB) userCopy(u *memoryUser) *User {
	user := u.user
	user.MovieCount = 0
	for _, movie := range db.movies {
		if movie.UserID == user.ID {
			user.MovieCount++
		}
	}
	return &user
}

type memoryTokens struct{ db *memoryDB }

func (m memoryTokens) New(userID int64, ttl time.Duration) (*Token, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	u, ok := m.db.users[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}

	token, err := generateToken(userID, ttl, m.db.now())
	if err != nil {
		return nil, err
	}

	u.tokenHash = token.Hash
	u.tokenExpiry = token.Expiry

	return token, nil
}

func (m memoryTokens) Revoke(userID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if u, ok := m.db.users[userID]; ok {
		u.tokenHash = nil
		u.tokenExpiry = time.Time{}
	}
	return nil
}

type memoryMovies struct{ db *memoryDB }

func (m memoryMovies) Insert(movie *Movie) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.users[movie.UserID]; !ok {
		return ErrRecordNotFound
	}

	m.db.nextMovieID++
	movie.ID = m.db.nextMovieID
	movie.CreatedAt = m.db.now()
	movie.Version = 1

	m.db.movies[movie.ID] = cloneMovie(movie)

	return nil
}

func (m memoryMovies) Get(id int64) (*Movie, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	movie, ok := m.db.movies[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	return cloneMovie(movie), nil
}

func (m memoryMovies) GetAllForUser(userID int64, filters Filters) ([]*Movie, Metadata, error) {
	m.db.mu.Lock()
	owned := []*Movie{}
	for _, movie := range m.db.movies {
		if movie.UserID == userID {
			owned = append(owned, cloneMovie(movie))
		}
	}
	m.db.mu.Unlock()

	column, desc := filters.sortColumn(), filters.sortDirection() == "DESC"
	sort.SliceStable(owned, func(i, j int) bool {
		c := compareMovies(owned[i], owned[j], column)
		if c == 0 {
			return owned[i].ID < owned[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})

	total := len(owned)
	if filters.Paginated() {
		start := filters.offset()
		if start > total {
			start = total
		}
		end := start + filters.PageSize
		if end > total {
			end = total
		}
		owned = owned[start:end]
	}

	return owned, calculateMetadata(total, filters.Page, filters.PageSize), nil
}

// compareMovies orders a and b by column. A missing year sorts after any
// year, like NULL in PostgreSQL.
func compareMovies(a, b *Movie, column string) int {
	switch column {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "year":
		ay, by := int32(math.MaxInt32), int32(math.MaxInt32)
		if a.Year != nil {
			ay = *a.Year
		}
		if b.Year != nil {
			by = *b.Year
		}
		switch {
		case ay < by:
			return -1
		case ay > by:
			return 1
		}
		return 0
	default:
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	}
}

func (m memoryMovies) Update(movie *Movie) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	stored, ok := m.db.movies[movie.ID]
	if !ok || stored.Version != movie.Version {
		return ErrEditConflict
	}

	updated := cloneMovie(movie)
	updated.CreatedAt = stored.CreatedAt
	updated.UserID = stored.UserID
	updated.Version = stored.Version + 1
	m.db.movies[movie.ID] = updated

	movie.Version = updated.Version

	return nil
}

func (m memoryMovies) Delete(id int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.movies[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.db.movies, id)

	return nil
}

// cloneMovie copies movie so callers never share pointers with the store.
func cloneMovie(movie *Movie) *Movie {
	c := *movie
	if movie.Year != nil {
		year := *movie.Year
		c.Year = &year
	}
	if movie.Genre != nil {
		genre := *movie.Genre
		c.Genre = &genre
	}
	if movie.Oscars != nil {
		oscars := *movie.Oscars
		c.Oscars = &oscars
	}
	return &c
}
