// Package catalog stores the standalone movie catalog: a single SQLite table
// of movies with a title, a release year and an Oscar count.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection.
type DB struct {
	*sql.DB
}

// NewDB opens the SQLite database at dataSourceName, e.g. "movies.db" or
// ":memory:".
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// InitSchema creates the movies table if it does not exist yet.
func (db *DB) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS movies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		year INTEGER NOT NULL,
		number_of_oscars INTEGER NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// seedMovies fills an empty catalog.
var seedMovies = []Movie{
	{Title: "Inception", Year: 2010, NumberOfOscars: 4},
	{Title: "The Dark Knight", Year: 2008, NumberOfOscars: 2},
	{Title: "The Godfather", Year: 1972, NumberOfOscars: 3},
	{Title: "Shawshank Redemption", Year: 1994, NumberOfOscars: 5},
}

// Seed inserts the starter movies when the table is empty and reports how
// many rows it added.
func (db *DB) Seed() (int, error) {
	var count int
	if err := db.QueryRow(`SELECT count(*) FROM movies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, m := range seedMovies {
		_, err := tx.Exec(`INSERT INTO movies (title, year, number_of_oscars) VALUES (?, ?, ?)`,
			m.Title, m.Year, m.NumberOfOscars)
		if err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", m.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return len(seedMovies), nil
}
