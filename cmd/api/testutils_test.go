package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	_ "modernc.org/sqlite"

	"casting.interimme.net/internal/auth/authtest"
	"casting.interimme.net/internal/data"
	"casting.interimme.net/internal/jsonlog"
	"casting.interimme.net/migrations"
)

const trustedOrigin = "https://casting.example"

var allPermissions = []string{
	"get:movies", "post:movies", "patch:movies", "delete:movies",
	"get:actors", "post:actors", "patch:actors", "delete:actors",
}

type testEnv struct {
	app    *application
	db     *sql.DB
	issuer *authtest.Issuer
	logs   *bytes.Buffer
	token  string // grants every permission
}

// newTestEnv builds an application backed by a fresh SQLite database and a
// local key set server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	c := qt.New(t)

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "casting.sqlite"))
	c.Assert(err, qt.IsNil)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)
	c.Assert(migrations.Up(context.Background(), db, "sqlite"), qt.IsNil)

	issuer := authtest.NewIssuer(t)

	var cfg config
	cfg.env = "development"
	cfg.cors.trustedOrigins = []string{trustedOrigin}
	cfg.auth.domain = authtest.Domain
	cfg.auth.audience = authtest.Audience
	cfg.auth.jwksURL = issuer.KeySetURL()
	cfg.auth.jwksTimeout = 5 * time.Second

	logs := new(bytes.Buffer)
	app := &application{
		config:   cfg,
		logger:   jsonlog.New(logs, jsonlog.LevelInfo),
		models:   data.NewModels(db),
		verifier: newVerifier(cfg),
	}

	return &testEnv{
		app:    app,
		db:     db,
		issuer: issuer,
		logs:   logs,
		token:  issuer.Token(t, allPermissions...),
	}
}

type response struct {
	status int
	header http.Header
	body   map[string]interface{}
}

// do sends a request through the full middleware chain. An empty token sends
// no Authorization header.
func (e *testEnv) do(t *testing.T, method, path, token, body string) response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) response {
	t.Helper()

	rec := httptest.NewRecorder()
	e.app.routes().ServeHTTP(rec, req)

	res := response{status: rec.Code, header: rec.Header()}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &res.body); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return res
}

// errorEnvelope is the decoded form of an error response.
func errorEnvelope(status int, message string) map[string]interface{} {
	return map[string]interface{}{
		"success": false,
		"error":   float64(status),
		"message": message,
	}
}

// createMovie posts a movie and returns its id.
func (e *testEnv) createMovie(t *testing.T, name, releaseDate string) float64 {
	t.Helper()
	c := qt.New(t)

	body, err := json.Marshal(map[string]string{"name": name, "release_date": releaseDate})
	c.Assert(err, qt.IsNil)

	res := e.do(t, http.MethodPost, "/movies", e.token, string(body))
	c.Assert(res.status, qt.Equals, http.StatusOK)
	c.Assert(res.body["success"], qt.Equals, true)

	id, ok := res.body["id"].(float64)
	c.Assert(ok, qt.IsTrue, qt.Commentf("id = %#v", res.body["id"]))
	c.Assert(id > 0, qt.IsTrue)
	return id
}

// wwwAuthenticateCode extracts the error code from a Bearer challenge.
func wwwAuthenticateCode(h http.Header) string {
	challenge := h.Get("WWW-Authenticate")
	const prefix = `Bearer error="`
	if !strings.HasPrefix(challenge, prefix) {
		return ""
	}
	rest := challenge[len(prefix):]
	if i := strings.IndexByte(rest, '"'); i >= 0 {
		return rest[:i]
	}
	return ""
}
