package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"casting.interimme.net/internal/auth/authtest"
	"casting.interimme.net/migrations"
)

func validConfig() config {
	var cfg config
	cfg.port = 4000
	cfg.env = "development"
	cfg.logLevel = "info"
	cfg.db.driver = "sqlite"
	cfg.db.dsn = "casting.sqlite"
	cfg.limiter.enabled = true
	cfg.limiter.rps = 2
	cfg.limiter.burst = 4
	cfg.auth.domain = authtest.Domain
	cfg.auth.audience = authtest.Audience
	cfg.auth.jwksTimeout = 5 * time.Second
	return cfg
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config)
		err    string
	}{
		{
			name:   "valid",
			modify: func(*config) {},
		},
		{
			name: "auth disabled in development",
			modify: func(cfg *config) {
				cfg.auth.disabled = true
				cfg.auth.domain = ""
				cfg.auth.audience = ""
			},
		},
		{
			name: "auth disabled in production",
			modify: func(cfg *config) {
				cfg.env = "production"
				cfg.auth.disabled = true
			},
			err: "invalid configuration: --auth-disabled must not be set in production",
		},
		{
			name:   "missing domain",
			modify: func(cfg *config) { cfg.auth.domain = "" },
			err:    "invalid configuration: --auth0-domain must be provided",
		},
		{
			name: "several problems",
			modify: func(cfg *config) {
				cfg.db.driver = "mysql"
				cfg.db.dsn = ""
			},
			err: "invalid configuration: --db-driver must be postgres or sqlite; --db-dsn must be provided",
		},
		{
			name:   "unknown env",
			modify: func(cfg *config) { cfg.env = "prod" },
			err:    "invalid configuration: --env must be development, staging or production",
		},
		{
			name:   "negative cache ttl",
			modify: func(cfg *config) { cfg.auth.jwksCacheTTL = -time.Second },
			err:    "invalid configuration: --jwks-cache-ttl must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			cfg := validConfig()
			tt.modify(&cfg)

			err := validateConfig(cfg)
			if tt.err == "" {
				c.Assert(err, qt.IsNil)
				return
			}
			c.Assert(err, qt.ErrorMatches, tt.err)
		})
	}
}

func TestOpenDB(t *testing.T) {
	c := qt.New(t)
	cfg := validConfig()
	cfg.db.dsn = filepath.Join(t.TempDir(), "casting.sqlite")
	cfg.db.maxOpenConns = 1
	cfg.db.maxIdleConns = 1
	cfg.db.maxIdleTime = time.Minute

	db, err := openDB(cfg)
	c.Assert(err, qt.IsNil)
	defer db.Close()

	c.Assert(migrations.Up(context.Background(), db, cfg.db.driver), qt.IsNil)
	// Applying twice is a no-op.
	c.Assert(migrations.Up(context.Background(), db, cfg.db.driver), qt.IsNil)
}

func TestNewVerifierUsesConfiguredKeySet(t *testing.T) {
	c := qt.New(t)
	issuer := authtest.NewIssuer(t)

	cfg := validConfig()
	cfg.auth.jwksURL = issuer.KeySetURL()
	cfg.auth.jwksCacheTTL = time.Minute
	verifier := newVerifier(cfg)

	for i := 0; i < 3; i++ {
		claims, err := verifier.Verify(context.Background(), issuer.Token(t, "get:movies"))
		c.Assert(err, qt.IsNil)
		c.Assert(claims.Issuer, qt.Equals, "https://"+authtest.Domain+"/")
	}
	// The cached key set served the later verifications.
	c.Assert(issuer.Fetches(), qt.Equals, int64(1))
}

func TestUnprocessableEntityResponse(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.app.unprocessableEntityResponse(rec, httptest.NewRequest(http.MethodPost, "/movies", nil))
	c.Assert(rec.Code, qt.Equals, http.StatusUnprocessableEntity)
	c.Assert(rec.Body.String(), qt.Contains, `"message": "Unprocessable Entity"`)
}
