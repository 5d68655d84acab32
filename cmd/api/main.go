package main

import (
	"context"
	"database/sql"
	"expvar"
	"os"
	"runtime"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v3"
	_ "modernc.org/sqlite"

	"casting.interimme.net/internal/auth"
	"casting.interimme.net/internal/data"
	"casting.interimme.net/internal/jsonlog"
	"casting.interimme.net/internal/validator"
	"casting.interimme.net/migrations"
)

// Build information, set with -ldflags.
var (
	buildTime string
	version   string
)

// config struct holds all configuration settings for the application.
type config struct {
	port     int    // Port for the API server
	env      string // Environment (development|staging|production)
	logLevel string
	db       struct {
		driver       string        // database/sql driver: postgres or sqlite
		dsn          string        // Data Source Name
		maxOpenConns int           // Maximum number of open connections to the database
		maxIdleConns int           // Maximum number of idle connections in the pool
		maxIdleTime  time.Duration // Maximum time a connection can remain idle
		migrate      bool          // Apply schema migrations at startup
	}
	limiter struct { // Rate limiter settings
		enabled bool    // Enable rate limiter
		rps     float64 // Maximum requests per second
		burst   int     // Maximum burst size
	}
	cors struct {
		trustedOrigins []string // Trusted origins for CORS
	}
	auth struct {
		// disabled bypasses every permission check. Development only; refused in production.
		disabled     bool
		domain       string        // Identity provider domain; tokens must be issued by https://<domain>/
		audience     string        // Required "aud" claim
		jwksURL      string        // Key set location, defaults to the domain's well-known URL
		jwksTimeout  time.Duration // Bound on a single key set fetch
		jwksCacheTTL time.Duration // How long a fetched key set may be reused; 0 fetches on every request
	}
}

// application struct holds the dependencies shared by the HTTP handlers and middleware.
type application struct {
	config   config
	logger   *jsonlog.Logger
	models   data.Models
	verifier *auth.Verifier
}

func main() {
	cmd := &cli.Command{
		Name:    "casting-api",
		Usage:   "JSON API for movies and actors",
		Version: version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 4000, Usage: "API server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "env", Value: "development", Usage: "Environment (development|staging|production)", Sources: cli.EnvVars("CASTING_ENV")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Minimum log level (info|warn|error|fatal|off)"},

			&cli.StringFlag{Name: "db-driver", Value: "postgres", Usage: "Database driver (postgres|sqlite)", Sources: cli.EnvVars("DATABASE_DRIVER")},
			&cli.StringFlag{Name: "db-dsn", Usage: "Database DSN", Sources: cli.EnvVars("DATABASE_URL")},
			&cli.IntFlag{Name: "db-max-open-conns", Value: 25, Usage: "Database max open connections"},
			&cli.IntFlag{Name: "db-max-idle-conns", Value: 25, Usage: "Database max idle connections"},
			&cli.DurationFlag{Name: "db-max-idle-time", Value: 15 * time.Minute, Usage: "Database max connection idle time"},
			&cli.BoolFlag{Name: "db-migrate", Value: true, Usage: "Apply schema migrations at startup"},

			&cli.BoolFlag{Name: "limiter-enabled", Value: true, Usage: "Enable rate limiter"},
			&cli.FloatFlag{Name: "limiter-rps", Value: 2, Usage: "Rate limiter maximum requests per second"},
			&cli.IntFlag{Name: "limiter-burst", Value: 4, Usage: "Rate limiter maximum burst"},

			&cli.StringSliceFlag{Name: "cors-trusted-origins", Usage: "Trusted CORS origins", Sources: cli.EnvVars("CORS_TRUSTED_ORIGINS")},

			&cli.StringFlag{Name: "auth0-domain", Usage: "Identity provider domain", Sources: cli.EnvVars("AUTH0_DOMAIN")},
			&cli.StringFlag{Name: "auth0-audience", Usage: "Required token audience", Sources: cli.EnvVars("API_AUDIENCE")},
			&cli.StringFlag{Name: "jwks-url", Usage: "Override the key set URL (defaults to https://<domain>/.well-known/jwks.json)"},
			&cli.DurationFlag{Name: "jwks-timeout", Value: 5 * time.Second, Usage: "Timeout for fetching the key set"},
			&cli.DurationFlag{Name: "jwks-cache-ttl", Value: 0, Usage: "Reuse a fetched key set for this long (0 fetches on every request)"},
			&cli.BoolFlag{
				Name:    "auth-disabled",
				Usage:   "DEVELOPMENT ONLY: skip token verification and permission checks on every route",
				Sources: cli.EnvVars("CAPSTONE_RBAC_SKIP"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var cfg config
			cfg.port = cmd.Int("port")
			cfg.env = cmd.String("env")
			cfg.logLevel = cmd.String("log-level")

			cfg.db.driver = cmd.String("db-driver")
			cfg.db.dsn = cmd.String("db-dsn")
			cfg.db.maxOpenConns = cmd.Int("db-max-open-conns")
			cfg.db.maxIdleConns = cmd.Int("db-max-idle-conns")
			cfg.db.maxIdleTime = cmd.Duration("db-max-idle-time")
			cfg.db.migrate = cmd.Bool("db-migrate")

			cfg.limiter.enabled = cmd.Bool("limiter-enabled")
			cfg.limiter.rps = cmd.Float("limiter-rps")
			cfg.limiter.burst = cmd.Int("limiter-burst")

			for _, origin := range cmd.StringSlice("cors-trusted-origins") {
				cfg.cors.trustedOrigins = append(cfg.cors.trustedOrigins, strings.Fields(origin)...)
			}

			cfg.auth.disabled = cmd.Bool("auth-disabled")
			cfg.auth.domain = cmd.String("auth0-domain")
			cfg.auth.audience = cmd.String("auth0-audience")
			cfg.auth.jwksURL = cmd.String("jwks-url")
			cfg.auth.jwksTimeout = cmd.Duration("jwks-timeout")
			cfg.auth.jwksCacheTTL = cmd.Duration("jwks-cache-ttl")

			return run(ctx, cfg)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		jsonlog.New(os.Stderr, jsonlog.LevelInfo).PrintFatal(err, nil)
	}
}

// run validates the configuration, wires the dependencies and serves until shutdown.
func run(ctx context.Context, cfg config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	level, _ := jsonlog.ParseLevel(cfg.logLevel)
	logger := jsonlog.New(os.Stdout, level)

	if cfg.auth.disabled {
		logger.PrintWarn("AUTHENTICATION DISABLED: all permission checks are bypassed", map[string]string{
			"flag": "auth-disabled",
			"env":  cfg.env,
		})
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.PrintInfo("database connection pool established", map[string]string{"driver": cfg.db.driver})

	if cfg.db.migrate {
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := migrations.Up(migrateCtx, db, cfg.db.driver)
		cancel()
		if err != nil {
			return err
		}
		logger.PrintInfo("database migrations applied", nil)
	}

	expvar.NewString("version").Set(version)
	expvar.NewString("build_time").Set(buildTime)
	expvar.Publish("goroutines", expvar.Func(func() interface{} {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("database", expvar.Func(func() interface{} {
		return db.Stats()
	}))
	expvar.Publish("timestamp", expvar.Func(func() interface{} {
		return time.Now().Unix()
	}))

	app := &application{
		config:   cfg,
		logger:   logger,
		models:   data.NewModels(db),
		verifier: newVerifier(cfg),
	}

	return app.serve(ctx)
}

// validateConfig rejects settings the server cannot run with.
func validateConfig(cfg config) error {
	v := validator.New()

	v.Check(validator.In(cfg.env, "development", "staging", "production"), "env", "must be development, staging or production")
	_, ok := jsonlog.ParseLevel(cfg.logLevel)
	v.Check(ok, "log-level", "must be info, warn, error, fatal or off")
	v.Check(cfg.port > 0 && cfg.port < 65536, "port", "must be between 1 and 65535")
	v.Check(validator.In(cfg.db.driver, "postgres", "sqlite"), "db-driver", "must be postgres or sqlite")
	v.Check(cfg.db.dsn != "", "db-dsn", "must be provided")
	v.Check(!cfg.limiter.enabled || cfg.limiter.rps > 0, "limiter-rps", "must be greater than zero")
	v.Check(cfg.auth.jwksTimeout > 0, "jwks-timeout", "must be greater than zero")
	v.Check(cfg.auth.jwksCacheTTL >= 0, "jwks-cache-ttl", "must not be negative")

	if cfg.auth.disabled {
		v.Check(cfg.env != "production", "auth-disabled", "must not be set in production")
	} else {
		v.Check(cfg.auth.domain != "", "auth0-domain", "must be provided")
		v.Check(cfg.auth.audience != "", "auth0-audience", "must be provided")
	}

	return v.Err("invalid configuration: ", func(key, message string) string {
		return "--" + key + " " + message
	})
}

// newVerifier builds the token verifier from the auth settings.
func newVerifier(cfg config) *auth.Verifier {
	jwksURL := cfg.auth.jwksURL
	if jwksURL == "" {
		jwksURL = auth.KeySetURL(cfg.auth.domain)
	}
	keys := auth.NewKeySet(jwksURL, cfg.auth.jwksTimeout, cfg.auth.jwksCacheTTL)
	return auth.NewVerifier(cfg.auth.domain, cfg.auth.audience, keys)
}

// openDB establishes a new database connection pool and verifies it with a ping.
func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open(cfg.db.driver, cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConns)
	db.SetMaxIdleConns(cfg.db.maxIdleConns)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
