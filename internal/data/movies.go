package data

import (
	"context"
	"database/sql"
	"errors"
)

// Movie represents a movie record in the database.
type Movie struct {
	ID          int64  `json:"id"`           // Unique identifier for the movie, assigned by the database.
	Name        string `json:"name"`         // The name of the movie.
	ReleaseDate string `json:"release_date"` // The release date, stored as submitted.
}

// MovieModel represents the methods that can be performed on the movies in the database.
type MovieModel struct {
	DB *sql.DB // Database connection pool.
}

// Insert adds a new movie record to the database and sets movie.ID to the assigned id.
func (m MovieModel) Insert(ctx context.Context, movie *Movie) error {
	query := `
INSERT INTO movies (name, release_date)
VALUES ($1, $2)
RETURNING id`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return m.DB.QueryRowContext(ctx, query, movie.Name, movie.ReleaseDate).Scan(&movie.ID)
}

// Get retrieves a specific movie record from the database by its ID.
func (m MovieModel) Get(ctx context.Context, id int64) (*Movie, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
SELECT id, name, release_date
FROM movies
WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var movie Movie
	err := m.DB.QueryRowContext(ctx, query, id).Scan(&movie.ID, &movie.Name, &movie.ReleaseDate)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &movie, nil
}

// Search returns every movie whose name contains term, ignoring case, ordered by id.
// No match is not an error: the returned slice is empty.
func (m MovieModel) Search(ctx context.Context, term string) ([]*Movie, error) {
	query := `
SELECT id, name, release_date
FROM movies
WHERE search_fold(name) LIKE $1 ESCAPE '\'
ORDER BY id ASC`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, namePattern(term))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := []*Movie{}
	for rows.Next() {
		var movie Movie
		if err := rows.Scan(&movie.ID, &movie.Name, &movie.ReleaseDate); err != nil {
			return nil, err
		}
		movies = append(movies, &movie)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// Update overwrites the name and release date of the movie with movie.ID.
// It returns ErrRecordNotFound when no such movie exists.
func (m MovieModel) Update(ctx context.Context, movie *Movie) error {
	if movie.ID < 1 {
		return ErrRecordNotFound
	}

	query := `
UPDATE movies
SET name = $1, release_date = $2
WHERE id = $3`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, query, movie.Name, movie.ReleaseDate, movie.ID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a specific movie record from the database by its ID.
func (m MovieModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	query := `
DELETE FROM movies
WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
