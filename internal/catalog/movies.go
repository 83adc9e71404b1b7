package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hafizmfadli/movie-catalog/internal/validator"
)

// ErrNotFound is returned when no movie has the requested id.
var ErrNotFound = errors.New("movie not found")

// Movie is one catalog entry. Every field is required.
type Movie struct {
	ID             int64
	Title          string
	Year           int
	NumberOfOscars int
}

func ValidateMovie(v *validator.Validator, m *Movie) {
	v.Check(m.Title != "", "title", "must be provided")
	v.Check(len(m.Title) <= 200, "title", "must not be more than 200 bytes long")
	v.Check(m.Year >= 1888, "year", "must be 1888 or later")
	v.Check(m.Year <= time.Now().Year(), "year", "must not be in the future")
	v.Check(m.NumberOfOscars >= 0, "number_of_oscars", "must not be negative")
}

// MovieRepository handles database operations for catalog movies.
type MovieRepository struct {
	db *DB
}

func NewMovieRepository(db *DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// GetAll returns every movie in insertion order.
func (r *MovieRepository) GetAll() ([]Movie, error) {
	rows, err := r.db.Query(`SELECT id, title, year, number_of_oscars FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	movies := []Movie{}
	for rows.Next() {
		var m Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Year, &m.NumberOfOscars); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return movies, nil
}

func (r *MovieRepository) GetByID(id int64) (*Movie, error) {
	var m Movie

	err := r.db.QueryRow(`SELECT id, title, year, number_of_oscars FROM movies WHERE id = ?`, id).
		Scan(&m.ID, &m.Title, &m.Year, &m.NumberOfOscars)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get movie %d: %w", id, err)
	}
	return &m, nil
}

// Create inserts m and sets its ID.
func (r *MovieRepository) Create(m *Movie) error {
	res, err := r.db.Exec(`INSERT INTO movies (title, year, number_of_oscars) VALUES (?, ?, ?)`,
		m.Title, m.Year, m.NumberOfOscars)
	if err != nil {
		return fmt.Errorf("failed to create movie: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get movie id: %w", err)
	}
	m.ID = id
	return nil
}

func (r *MovieRepository) Update(m *Movie) error {
	res, err := r.db.Exec(`UPDATE movies SET title = ?, year = ?, number_of_oscars = ? WHERE id = ?`,
		m.Title, m.Year, m.NumberOfOscars, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update movie %d: %w", m.ID, err)
	}
	return checkAffected(res)
}

func (r *MovieRepository) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie %d: %w", id, err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
