package main

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHealthcheck(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t)

	res := env.do(t, http.MethodGet, "/healthcheck", "", "")
	c.Assert(res.status, qt.Equals, http.StatusOK)
	c.Assert(res.body, qt.DeepEquals, map[string]interface{}{
		"success": true,
		"status":  "available",
		"system_info": map[string]interface{}{
			"environment": "development",
			"version":     version,
		},
	})
}

func TestUnknownRoute(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t)

	res := env.do(t, http.MethodGet, "/directors/1", env.token, "")
	c.Assert(res.status, qt.Equals, http.StatusNotFound)
	c.Assert(res.body, qt.DeepEquals, errorEnvelope(http.StatusNotFound, "Not Found"))
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	for _, tt := range []struct{ method, path string }{
		{http.MethodPut, "/movies/1"},
		{http.MethodGet, "/movies"},
		{http.MethodDelete, "/actors"},
		{http.MethodPost, "/healthcheck"},
	} {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			c := qt.New(t)
			res := env.do(t, tt.method, tt.path, env.token, "")
			c.Assert(res.status, qt.Equals, http.StatusMethodNotAllowed)
			c.Assert(res.body, qt.DeepEquals, errorEnvelope(http.StatusMethodNotAllowed, "Method Not Allowed"))
			c.Assert(res.header.Get("Allow"), qt.Not(qt.Equals), "")
		})
	}
}

func TestSearchRouteDoesNotShadowID(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t)

	// GET on the search path is a lookup of id "search", which cannot exist.
	res := env.do(t, http.MethodGet, "/movies/search", env.token, "")
	c.Assert(res.status, qt.Equals, http.StatusNotFound)
}

func TestDebugVars(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/healthcheck", "", "")
	res := env.do(t, http.MethodGet, "/debug/vars", "", "")
	c.Assert(res.status, qt.Equals, http.StatusOK)
	c.Assert(res.body["total_requests_received"], qt.Not(qt.IsNil))
	c.Assert(res.body["total_responses_sent_by_status"], qt.Not(qt.IsNil))
}
