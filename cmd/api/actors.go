package main

import (
	"errors"
	"fmt"
	"net/http"

	"casting.interimme.net/internal/data"
	"casting.interimme.net/internal/validator"
)

var actorSchema = validator.MustSchema(
	validator.Field{Name: "name", Kind: validator.String},
	validator.Field{Name: "age", Kind: validator.Integer},
	validator.Field{Name: "gender", Kind: validator.String},
)

type actorInput struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// showActorHandler handles requests to retrieve a specific actor by ID.
func (app *application) showActorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	actor, err := app.models.Actors.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"success": true, "actor_data": actor}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// searchActorsHandler returns every actor whose name contains the search term,
// ignoring case.
func (app *application) searchActorsHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SearchTerm string `json:"search_term"`
	}

	err := app.readJSON(w, r, searchSchema, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	actors, err := app.models.Actors.Search(r.Context(), input.SearchTerm)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	env := envelope{
		"success": true,
		"actor_data": envelope{
			"count": len(actors),
			"data":  actors,
		},
	}
	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createActorHandler handles requests to create a new actor record.
func (app *application) createActorHandler(w http.ResponseWriter, r *http.Request) {
	var input actorInput

	err := app.readJSON(w, r, actorSchema, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	actor := &data.Actor{
		Name:   input.Name,
		Age:    input.Age,
		Gender: input.Gender,
	}

	err = app.models.Actors.Insert(r.Context(), actor)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/actors/%d", actor.ID))

	err = app.writeJSON(w, http.StatusOK, envelope{"success": true, "id": actor.ID}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateActorHandler replaces every field of an existing actor.
func (app *application) updateActorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input actorInput

	err = app.readJSON(w, r, actorSchema, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	actor := &data.Actor{
		ID:     id,
		Name:   input.Name,
		Age:    input.Age,
		Gender: input.Gender,
	}

	err = app.models.Actors.Update(r.Context(), actor)
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

// deleteActorHandler handles requests to delete a specific actor by ID.
func (app *application) deleteActorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Actors.Delete(r.Context(), id)
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
