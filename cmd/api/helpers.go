package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"casting.interimme.net/internal/validator"
)

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1_048_576

// readIDParam extracts the "id" parameter from the URL and converts it to an int64.
// Returns an error if the "id" parameter is missing, invalid, or less than 1.
func (app *application) readIDParam(r *http.Request) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id parameter")
	}
	return id, nil
}

// envelope is a type alias for a map that holds JSON response data.
type envelope map[string]interface{}

// writeJSON writes a JSON response to the client with a specified status code and optional headers.
func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	// Marshal the data into a pretty-printed JSON format.
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	// Terminal-friendly trailing newline.
	js = append(js, '\n')

	// Add any additional headers.
	for key, value := range headers {
		w.Header()[key] = value
	}

	// Set the content type, write the status code and the body.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// invalidBodyError reports the fields of a request body that failed the schema.
type invalidBodyError struct {
	v *validator.Validator
}

func (e *invalidBodyError) Error() string {
	return e.v.Err("body failed validation: ", func(key, message string) string {
		return key + ": " + message
	}).Error()
}

// readJSON reads the request body, checks it against schema and decodes it into dst.
// The body must be a single JSON object no larger than maxBodyBytes holding
// every key the schema requires with the declared type. Only the schema's keys,
// matched exactly, reach dst; any other key is ignored.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, schema *validator.Schema, dst interface{}) error {
	// Limit the size of the request body to 1 MiB.
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	// Read the whole body once; it is both validated and decoded.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		}
		return err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("body must not be empty")
	}

	// Check required keys and their types before touching dst.
	v := validator.New()
	if v.CheckJSON(schema, body); !v.Valid() {
		return &invalidBodyError{v: v}
	}

	dec := json.NewDecoder(bytes.NewReader(body))

	// Decode the top-level object, keeping each value raw.
	var document map[string]json.RawMessage
	if err := dec.Decode(&document); err != nil {
		return decodeError(err)
	}

	// Ensure the body only contains a single JSON value.
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	// encoding/json matches struct fields case-insensitively, so a key such as
	// "Name" would otherwise overwrite "name". Keep the schema's exact keys only.
	known := make(map[string]json.RawMessage, len(schema.Fields()))
	for _, field := range schema.Fields() {
		if raw, ok := document[field.Name]; ok {
			known[field.Name] = raw
		}
	}

	exact, err := json.Marshal(known)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(exact, dst); err != nil {
		return decodeError(err)
	}
	return nil
}

// decodeError translates encoding/json errors into messages about the body.
func decodeError(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError

	switch {
	case errors.As(err, &syntaxError):
		// JSON syntax error.
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		// Unexpected end of input.
		return errors.New("body contains badly-formed JSON")
	case errors.As(err, &unmarshalTypeError):
		// The schema admits any JSON integer; values that overflow the Go field land here.
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
	case errors.As(err, &invalidUnmarshalError):
		// A non-pointer dst is a programming error.
		panic(err)
	default:
		return err
	}
}
