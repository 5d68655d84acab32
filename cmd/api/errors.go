package main

import (
	"errors"
	"fmt"
	"net/http"

	"casting.interimme.net/internal/auth"
	"casting.interimme.net/internal/data"
	"casting.interimme.net/internal/jsonlog"
)

// statusMessages are the only messages sent with non-auth errors. Client
// facing bodies never carry internal detail.
var statusMessages = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusNotFound:            "Not Found",
	http.StatusMethodNotAllowed:    "Method Not Allowed",
	http.StatusUnprocessableEntity: "Unprocessable Entity",
	http.StatusTooManyRequests:     "Too Many Requests",
	http.StatusInternalServerError: "Internal Server Error",
}

// requestLogger binds the request's method, URL, id and token subject to the logger.
func (app *application) requestLogger(r *http.Request) *jsonlog.Logger {
	properties := map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
		"request_id":     app.contextGetRequestID(r),
	}
	if claims := app.contextGetClaims(r); claims != nil {
		properties["subject"] = claims.Subject
	}
	return app.logger.With(properties)
}

// logError logs an error message along with the request that caused it.
func (app *application) logError(r *http.Request, err error) {
	var properties map[string]string
	if data.IsConnectionError(err) {
		properties = map[string]string{"database": "connection"}
	}
	app.requestLogger(r).PrintError(err, properties)
}

// errorResponse sends the error envelope with the given status and message.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	env := envelope{
		"success": false,
		"error":   status,
		"message": message,
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

// statusResponse sends the error envelope with the fixed message for status.
func (app *application) statusResponse(w http.ResponseWriter, r *http.Request, status int) {
	message, ok := statusMessages[status]
	if !ok {
		message = http.StatusText(status)
	}
	app.errorResponse(w, r, status, message)
}

// serverErrorResponse logs err and sends a 500 Internal Server Error response.
func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.statusResponse(w, r, http.StatusInternalServerError)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.statusResponse(w, r, http.StatusNotFound)
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.statusResponse(w, r, http.StatusMethodNotAllowed)
}

// badRequestResponse sends a 400 Bad Request response. The reason is logged, not returned.
func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	properties := map[string]string{"reason": err.Error()}

	var invalid *invalidBodyError
	if errors.As(err, &invalid) {
		for field, problem := range invalid.v.Errors {
			properties["field."+field] = problem
		}
	}

	app.requestLogger(r).PrintInfo("bad request", properties)
	app.statusResponse(w, r, http.StatusBadRequest)
}

func (app *application) unprocessableEntityResponse(w http.ResponseWriter, r *http.Request) {
	app.statusResponse(w, r, http.StatusUnprocessableEntity)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.statusResponse(w, r, http.StatusTooManyRequests)
}

// authErrorResponse sends an authentication or authorization failure. The
// message is the failure description and the machine code travels in the
// WWW-Authenticate challenge.
func (app *application) authErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		app.serverErrorResponse(w, r, err)
		return
	}

	properties := map[string]string{"code": authErr.Code}
	if authErr.Err != nil {
		properties["cause"] = authErr.Err.Error()
	}
	// A key set that cannot be fetched is an operational problem, not a client one.
	if authErr.Status == http.StatusUnauthorized && authErr.Code == auth.CodeInvalidHeader && authErr.Err != nil {
		app.requestLogger(r).PrintWarn("key set unavailable", properties)
	} else {
		app.requestLogger(r).PrintInfo("request rejected", properties)
	}

	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Bearer error=%q, error_description=%q", authErr.Code, authErr.Description))
	app.errorResponse(w, r, authErr.Status, authErr.Description)
}
