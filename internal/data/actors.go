package data

import (
	"context"
	"database/sql"
	"errors"
)

// Actor represents an actor record in the database.
type Actor struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// ActorModel wraps the connection pool for queries against the actors table.
type ActorModel struct {
	DB *sql.DB
}

// Insert adds a new actor and sets actor.ID to the id the database assigned.
func (m ActorModel) Insert(ctx context.Context, actor *Actor) error {
	query := `
INSERT INTO actors (name, age, gender)
VALUES ($1, $2, $3)
RETURNING id`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return m.DB.QueryRowContext(ctx, query, actor.Name, actor.Age, actor.Gender).Scan(&actor.ID)
}

// Get retrieves an actor by id.
func (m ActorModel) Get(ctx context.Context, id int64) (*Actor, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
SELECT id, name, age, gender
FROM actors
WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var actor Actor
	err := m.DB.QueryRowContext(ctx, query, id).Scan(&actor.ID, &actor.Name, &actor.Age, &actor.Gender)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &actor, nil
}

// Search returns the actors whose name contains term, ignoring case.
func (m ActorModel) Search(ctx context.Context, term string) ([]*Actor, error) {
	query := `
SELECT id, name, age, gender
FROM actors
WHERE search_fold(name) LIKE $1 ESCAPE '\'
ORDER BY id ASC`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, namePattern(term))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actors := []*Actor{}
	for rows.Next() {
		var actor Actor
		if err := rows.Scan(&actor.ID, &actor.Name, &actor.Age, &actor.Gender); err != nil {
			return nil, err
		}
		actors = append(actors, &actor)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return actors, nil
}

// Update replaces every column of the actor with actor.ID.
func (m ActorModel) Update(ctx context.Context, actor *Actor) error {
	if actor.ID < 1 {
		return ErrRecordNotFound
	}

	query := `
UPDATE actors
SET name = $1, age = $2, gender = $3
WHERE id = $4`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, query, actor.Name, actor.Age, actor.Gender, actor.ID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes an actor by id.
func (m ActorModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	query := `
DELETE FROM actors
WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
