package data

import (
	"crypto/sha256"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hafizmfadli/movie-catalog/internal/validator"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return db, mock
}

func TestPassword_SetAndMatches(t *testing.T) {
	var p password
	require.NoError(t, p.Set("pw1"))

	assert.NotEqual(t, []byte("pw1"), p.hash)
	assert.True(t, p.Matches("pw1"))
	assert.False(t, p.Matches("pw2"))
	assert.False(t, p.Matches(""))
}

func TestPassword_MalformedHashNeverMatches(t *testing.T) {
	assert.False(t, (&password{}).Matches("pw1"))
	assert.False(t, (&password{hash: []byte("not-a-bcrypt-hash")}).Matches("pw1"))
}

func TestValidateUserFields(t *testing.T) {
	v := validator.New()
	ValidateUsername(v, "")
	ValidatePasswordPlaintext(v, string(make([]byte, 73)))
	ValidateEmail(v, "ann")

	assert.Equal(t, "must be provided", v.Errors["username"])
	assert.Equal(t, "must not be more than 72 bytes long", v.Errors["password"])
	assert.Equal(t, "must be a valid email address", v.Errors["email"])

	v = validator.New()
	ValidateUsername(v, "ann")
	ValidatePasswordPlaintext(v, "pw1")
	assert.True(t, v.Valid())
}

func TestUserModel_Insert(t *testing.T) {
	db, mock := newMock(t)
	m := UserModel{DB: db, Now: time.Now}

	user := &User{Username: "ann"}
	user.Password.hash = []byte("hash")

	mock.ExpectQuery(`INSERT INTO users \(username, email, password_hash\)`).
		WithArgs("ann", nil, []byte("hash")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(int64(1), int32(1)))

	require.NoError(t, m.Insert(user))
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, int32(1), user.Version)
}

func TestUserModel_InsertDuplicate(t *testing.T) {
	db, mock := newMock(t)
	m := UserModel{DB: db, Now: time.Now}

	user := &User{Username: "ann", Email: "ann@example.com"}
	user.Password.hash = []byte("hash")

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ann", "ann@example.com", []byte("hash")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	assert.ErrorIs(t, m.Insert(user), ErrDuplicateUsername)
}

func TestUserModel_InsertDBError(t *testing.T) {
	db, mock := newMock(t)
	m := UserModel{DB: db, Now: time.Now}

	user := &User{Username: "ann"}
	user.Password.hash = []byte("hash")

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	err := m.Insert(user)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert user: db down")
}

func TestUserModel_Get(t *testing.T) {
	db, mock := newMock(t)
	m := UserModel{DB: db, Now: time.Now}

	mock.ExpectQuery(`FROM users u\s+WHERE u.id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "version", "count"}).
			AddRow(int64(3), "ann", nil, []byte("hash"), int32(1), int64(2)))

	user, err := m.Get(3)
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
	assert.Empty(t, user.Email)
	assert.Equal(t, 2, user.MovieCount)
	assert.Equal(t, []byte("hash"), user.Password.hash)
}

func TestUserModel_GetNotFound(t *testing.T) {
	db, mock := newMock(t)
	m := UserModel{DB: db, Now: time.Now}

	_, err := m.Get(0)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	mock.ExpectQuery(`WHERE u.username = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err = m.GetByUsername("ghost")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUserModel_GetForTokenChecksExpiry(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := UserModel{DB: db, Now: func() time.Time { return now }}

	plaintext := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	hash := sha256.Sum256([]byte(plaintext))

	mock.ExpectQuery(`WHERE u.token_hash = \$1\s+AND u.token_expiry > \$2`).
		WithArgs(hash[:], now).
		WillReturnError(sql.ErrNoRows)

	_, err := m.GetForToken(plaintext)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
