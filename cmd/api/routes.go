package main

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
)

// routes sets up the application's routing and middleware chain.
func (app *application) routes() http.Handler {
	router := httprouter.New()

	// Unknown routes and unsupported methods answer with the error envelope.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthcheckHandler)

	// Movie routes. httprouter keeps a tree per method, so the static
	// /movies/search does not collide with GET /movies/:id.
	router.HandlerFunc(http.MethodGet, "/movies/:id", app.requirePermission("get:movies", app.showMovieHandler))
	router.HandlerFunc(http.MethodPost, "/movies/search", app.requirePermission("get:movies", app.searchMoviesHandler))
	router.HandlerFunc(http.MethodPost, "/movies", app.requirePermission("post:movies", app.createMovieHandler))
	router.HandlerFunc(http.MethodPatch, "/movies/:id", app.requirePermission("patch:movies", app.updateMovieHandler))
	router.HandlerFunc(http.MethodDelete, "/movies/:id", app.requirePermission("delete:movies", app.deleteMovieHandler))

	// Actor routes.
	router.HandlerFunc(http.MethodGet, "/actors/:id", app.requirePermission("get:actors", app.showActorHandler))
	router.HandlerFunc(http.MethodPost, "/actors/search", app.requirePermission("get:actors", app.searchActorsHandler))
	router.HandlerFunc(http.MethodPost, "/actors", app.requirePermission("post:actors", app.createActorHandler))
	router.HandlerFunc(http.MethodPatch, "/actors/:id", app.requirePermission("patch:actors", app.updateActorHandler))
	router.HandlerFunc(http.MethodDelete, "/actors/:id", app.requirePermission("delete:actors", app.deleteActorHandler))

	router.Handler(http.MethodGet, "/debug/vars", expvar.Handler())

	// Outermost first: metrics see every response, including recovered panics.
	standard := alice.New(app.metrics, app.recoverPanic, app.requestID, app.enableCORS, app.rateLimit)

	return standard.Then(router)
}
