package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hafizmfadli/movie-catalog/internal/validator"
)

type Movie struct {
	// Unique ID
	ID int64 `json:"id"`
	// Timestamp for when the movie is added to our database
	CreatedAt time.Time `json:"-"`
	// Movie title
	Title string `json:"title"`
	// Movie release year
	Year *int32 `json:"year"`
	// Free-form genre, e.g. "drama"
	Genre *string `json:"genre"`
	// Number of Oscars won
	Oscars *int32 `json:"oscars"`
	// ID of the owning user, set at creation and never changed
	UserID int64 `json:"user_id"`
	// Version number starts at 1 and will be incremented each time the movie is updated
	Version int32 `json:"version"`
}

// ValidateMovie checks the fields a client may set. Year, Genre and Oscars
// are optional and only checked when present.
func ValidateMovie(v *validator.Validator, movie *Movie) {
	v.Check(movie.Title != "", "title", "must be provided")
	v.Check(len(movie.Title) <= 128, "title", "must not be more than 128 bytes long")

	if movie.Year != nil {
		v.Check(*movie.Year >= 1888, "year", "must be 1888 or later")
		v.Check(int(*movie.Year) <= time.Now().Year(), "year", "must not be in the future")
	}

	if movie.Genre != nil {
		v.Check(len(*movie.Genre) <= 100, "genre", "must not be more than 100 bytes long")
	}

	if movie.Oscars != nil {
		v.Check(*movie.Oscars >= 0, "oscars", "must not be negative")
	}
}

// MovieModel is the PostgreSQL implementation of MovieStore.
type MovieModel struct {
	DB *sql.DB
}

// Insert adds movie and fills in the system-generated ID, CreatedAt and
// Version fields.
func (m MovieModel) Insert(movie *Movie) error {
	query := `
		INSERT INTO movies (title, year, genre, oscars, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version`

	args := []any{movie.Title, movie.Year, movie.Genre, movie.Oscars, movie.UserID}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&movie.ID, &movie.CreatedAt, &movie.Version)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	return nil
}

func (m MovieModel) Get(id int64) (*Movie, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT id, created_at, title, year, genre, oscars, user_id, version
		FROM movies
		WHERE id = $1`

	var movie Movie

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, id).Scan(movieFields(&movie)...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, fmt.Errorf("select movie: %w", err)
		}
	}

	return &movie, nil
}

// GetAllForUser returns the movies owned by userID in the order given by
// filters. A zero PageSize returns every movie.
func (m MovieModel) GetAllForUser(userID int64, filters Filters) ([]*Movie, Metadata, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var totalRecords int
	err := m.DB.QueryRowContext(ctx, `SELECT count(*) FROM movies WHERE user_id = $1`, userID).Scan(&totalRecords)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("count movies: %w", err)
	}

	// sortColumn() comes from a safelist, so interpolating it is safe.
	query := fmt.Sprintf(`
		SELECT id, created_at, title, year, genre, oscars, user_id, version
		FROM movies
		WHERE user_id = $1
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`, filters.sortColumn(), filters.sortDirection())

	rows, err := m.DB.QueryContext(ctx, query, userID, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("select movies: %w", err)
	}
	defer rows.Close()

	movies := []*Movie{}
	for rows.Next() {
		var movie Movie
		if err := rows.Scan(movieFields(&movie)...); err != nil {
			return nil, Metadata{}, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, &movie)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return movies, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Update writes every client-settable field of movie. The version check makes
// a concurrent update fail with ErrEditConflict instead of being lost.
func (m MovieModel) Update(movie *Movie) error {
	query := `
		UPDATE movies
		SET title = $1, year = $2, genre = $3, oscars = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version`

	args := []any{movie.Title, movie.Year, movie.Genre, movie.Oscars, movie.ID, movie.Version}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&movie.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return fmt.Errorf("update movie: %w", err)
		}
	}
	return nil
}

func (m MovieModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func movieFields(movie *Movie) []any {
	return []any{
		&movie.ID,
		&movie.CreatedAt,
		&movie.Title,
		&movie.Year,
		&movie.Genre,
		&movie.Oscars,
		&movie.UserID,
		&movie.Version,
	}
}
