package data

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/hafizmfadli/movie-catalog/internal/validator"
)

// DefaultTokenTTL is how long an issued bearer token stays valid.
const DefaultTokenTTL = time.Hour

// Token is an opaque bearer token. Only Hash is persisted; Plaintext is
// returned to the client once, at issue time.
type Token struct {
	Plaintext string    `json:"token"`
	Hash      []byte    `json:"-"`
	UserID    int64     `json:"-"`
	Expiry    time.Time `json:"expiry"`
}

func generateToken(userID int64, ttl time.Duration, now time.Time) (*Token, error) {
	token := &Token{
		UserID: userID,
		Expiry: now.Add(ttl),
	}

	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, err
	}

	// 16 random bytes encode to a 26 character string once the padding is
	// dropped.
	token.Plaintext = base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)

	hash := sha256.Sum256([]byte(token.Plaintext))
	token.Hash = hash[:]

	return token, nil
}

func ValidateTokenPlaintext(v *validator.Validator, tokenPlaintext string) {
	v.Check(tokenPlaintext != "", "token", "must be provided")
	v.Check(len(tokenPlaintext) == 26, "token", "must be 26 bytes long")
}

// TokenModel is the PostgreSQL implementation of TokenStore. The token lives
// on the users row, so a user holds at most one token at a time.
type TokenModel struct {
	DB  *sql.DB
	Now func() time.Time
}

// New issues a token for userID, replacing any token issued before.
func (m TokenModel) New(userID int64, ttl time.Duration) (*Token, error) {
	token, err := generateToken(userID, ttl, m.Now())
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE users
		SET token_hash = $1, token_expiry = $2
		WHERE id = $3`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, query, token.Hash, token.Expiry, userID)
	if err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrRecordNotFound
	}

	return token, nil
}

// Revoke clears the token held by userID, if any.
func (m TokenModel) Revoke(userID int64) error {
	query := `
		UPDATE users
		SET token_hash = NULL, token_expiry = NULL
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := m.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
