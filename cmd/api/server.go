package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// serve starts the HTTP server and shuts it down gracefully on SIGINT, SIGTERM
// or when ctx is cancelled.
func (app *application) serve(ctx context.Context) error {
	// Configure the HTTP server from the application configuration.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.port), // Server address, based on configured port.
		Handler:      app.routes(),                        // Router with the full middleware chain.
		ErrorLog:     log.New(app.logger, "", 0),          // net/http's own errors go through the JSON logger.
		IdleTimeout:  time.Minute,                         // Maximum time to keep idle connections alive.
		ReadTimeout:  10 * time.Second,                    // Maximum duration for reading the entire request.
		WriteTimeout: 30 * time.Second,                    // Maximum duration before timing out writes of the response.
	}

	// Channel to receive the result of the shutdown.
	shutdownError := make(chan error)

	// Goroutine to shut the server down on a signal or on ctx cancellation.
	go func() {
		// Notify the channel on SIGINT (Ctrl+C) or SIGTERM.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		// Block until a signal arrives or ctx is done.
		select {
		case s := <-quit:
			app.logger.PrintInfo("caught signal", map[string]string{
				"signal": s.String(),
			})
		case <-ctx.Done():
			app.logger.PrintInfo("context cancelled", nil)
		}

		// In-flight requests get five seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Stop accepting connections and report how shutdown went.
		shutdownError <- srv.Shutdown(shutdownCtx)
	}()

	// Log message indicating the server is starting.
	app.logger.PrintInfo("starting server", map[string]string{
		"addr":          srv.Addr,
		"env":           app.config.env,
		"version":       version,
		"auth_disabled": fmt.Sprint(app.config.auth.disabled),
	})

	// Start the HTTP server. http.ErrServerClosed means Shutdown was called.
	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Wait for the shutdown goroutine to finish.
	err = <-shutdownError
	if err != nil {
		return err
	}

	// Log message indicating the server has stopped.
	app.logger.PrintInfo("stopped server", map[string]string{
		"addr": srv.Addr,
	})

	return nil
}
