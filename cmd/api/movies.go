package main

import (
	"errors"
	"fmt"
	"net/http"

	"casting.interimme.net/internal/data"
	"casting.interimme.net/internal/validator"
)

var (
	// movieSchema is shared by create and update; an update replaces every field.
	movieSchema = validator.MustSchema(
		validator.Field{Name: "name", Kind: validator.String},
		validator.Field{Name: "release_date", Kind: validator.String},
	)

	searchSchema = validator.MustSchema(
		validator.Field{Name: "search_term", Kind: validator.String},
	)
)

type movieInput struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// showMovieHandler handles requests to retrieve a specific movie by ID.
func (app *application) showMovieHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	movie, err := app.models.Movies.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"success": true, "movie_data": movie}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// searchMoviesHandler returns every movie whose name contains the search term,
// ignoring case. No match is an empty result, not an error.
func (app *application) searchMoviesHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SearchTerm string `json:"search_term"`
	}

	err := app.readJSON(w, r, searchSchema, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movies, err := app.models.Movies.Search(r.Context(), input.SearchTerm)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	env := envelope{
		"success": true,
		"movie_data": envelope{
			"count": len(movies),
			"data":  movies,
		},
	}
	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createMovieHandler handles requests to create a new movie record.
func (app *application) createMovieHandler(w http.ResponseWriter, r *http.Request) {
	var input movieInput

	err := app.readJSON(w, r, movieSchema, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie := &data.Movie{
		Name:        input.Name,
		ReleaseDate: input.ReleaseDate,
	}

	err = app.models.Movies.Insert(r.Context(), movie)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/movies/%d", movie.ID))

	err = app.writeJSON(w, http.StatusOK, envelope{"success": true, "id": movie.ID}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateMovieHandler replaces the name and release date of an existing movie.
func (app *application) updateMovieHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input movieInput

	err = app.readJSON(w, r, movieSchema, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie := &data.Movie{
		ID:          id,
		Name:        input.Name,
		ReleaseDate: input.ReleaseDate,
	}

	err = app.models.Movies.Update(r.Context(), movie)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"success": true}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteMovieHandler handles requests to delete a specific movie by ID.
func (app *application) deleteMovieHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Movies.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"success": true}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
