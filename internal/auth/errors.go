package auth

import (
	"fmt"
	"net/http"
)

// Error is an authentication or authorization failure. Status is the HTTP
// status the failure maps to and Code is a stable machine-readable kind.
type Error struct {
	Code        string
	Description string
	Status      int
	Err         error // underlying cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.Err)
	}
	return e.Code + ": " + e.Description
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Failure kinds.
const (
	CodeMissingHeader     = "missing_header"
	CodeMalformedHeader   = "malformed_header"
	CodeInvalidHeader     = "invalid_header"
	CodeTokenExpired      = "token_expired"
	CodeInvalidClaims     = "invalid_claims"
	CodeInvalidPermission = "invalid_permission"
)

func newError(code, description string, status int, cause error) *Error {
	return &Error{Code: code, Description: description, Status: status, Err: cause}
}

func errMissingHeader() *Error {
	return newError(CodeMissingHeader, "Request does not contain authorization header.", http.StatusUnauthorized, nil)
}

func errWrongParts() *Error {
	return newError(CodeMalformedHeader, "Authorization header does not contain the expected 2 parts.", http.StatusUnauthorized, nil)
}

func errNoBearer() *Error {
	return newError(CodeMalformedHeader, "Authorization header does not have a bearer marker.", http.StatusUnauthorized, nil)
}

func errNoKeyID() *Error {
	return newError(CodeInvalidHeader, "Authorization malformed.", http.StatusUnauthorized, nil)
}

func errKeySet(cause error) *Error {
	return newError(CodeInvalidHeader, "Unable to fetch the signing keys.", http.StatusUnauthorized, cause)
}

func errNoMatchingKey() *Error {
	return newError(CodeInvalidHeader, "Unable to find the appropriate key.", http.StatusBadRequest, nil)
}

func errUnparsable(cause error) *Error {
	return newError(CodeInvalidHeader, "Unable to parse authentication token.", http.StatusBadRequest, cause)
}

func errExpired() *Error {
	return newError(CodeTokenExpired, "Token expired.", http.StatusUnauthorized, nil)
}

func errClaims() *Error {
	return newError(CodeInvalidClaims, "Incorrect claims. Please check the audience and issuer.", http.StatusUnauthorized, nil)
}

func errNoPermissions() *Error {
	return newError(CodeInvalidPermission, "No permissions found in authentication token.", http.StatusBadRequest, nil)
}

func errDenied() *Error {
	return newError(CodeInvalidPermission, "Authentication token did not contain the required permissions.", http.StatusForbidden, nil)
}
