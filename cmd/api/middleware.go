package main

import (
	"expvar"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/tomasen/realip"
	"golang.org/x/time/rate"

	"casting.interimme.net/internal/auth"
)

// recoverPanic is a middleware that recovers from any panic that occurs during the HTTP request handling.
// It logs the panic and returns a 500 Internal Server Error response to the client.
func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				// Set the Connection header to close to prevent the client from reusing the connection.
				w.Header().Set("Connection", "close")
				// Log the error and send a generic server error response.
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestID tags every request with an id, reusing a well-formed X-Request-Id
// sent by the client or a proxy, and echoes it on the response.
func (app *application) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Keep the incoming id only when it parses as a UUID.
		id := r.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, app.contextSetRequestID(r, id))
	})
}

// rateLimit is a middleware that implements rate limiting for incoming HTTP requests based on the client's IP address.
// It uses a token bucket algorithm to control the rate of requests.
func (app *application) rateLimit(next http.Handler) http.Handler {
	if !app.config.limiter.enabled {
		return next
	}

	type client struct {
		limiter  *rate.Limiter // Rate limiter for the client
		lastSeen time.Time     // Timestamp of the last request from the client
	}

	var (
		mu      sync.Mutex                 // Guards the clients map
		clients = make(map[string]*client) // Rate limiter per client IP
	)

	// Background goroutine to periodically clean up old clients from the map.
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			// Drop clients that haven't been seen in the last 3 minutes.
			for ip, client := range clients {
				if time.Since(client.lastSeen) > 3*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract the client's IP address, honouring proxy headers.
		ip := realip.FromRequest(r)

		mu.Lock()
		// Initialize a new rate limiter for the client if it doesn't exist.
		if _, found := clients[ip]; !found {
			clients[ip] = &client{
				limiter: rate.NewLimiter(rate.Limit(app.config.limiter.rps), app.config.limiter.burst),
			}
		}
		clients[ip].lastSeen = time.Now()

		// Check if the client is allowed to make a request.
		if !clients[ip].limiter.Allow() {
			mu.Unlock()
			app.rateLimitExceededResponse(w, r)
			return
		}
		mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// requirePermission guards a handler: the request must carry a valid bearer
// token whose permissions claim includes code. Verified claims are stored in
// the request context. With auth disabled the guard passes every request.
func (app *application) requirePermission(code string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.config.auth.disabled {
			next.ServeHTTP(w, r)
			return
		}

		// Responses differ by credentials, so caches must key on them.
		w.Header().Add("Vary", "Authorization")

		// Extract the bearer token from the Authorization header.
		token, err := auth.TokenFromHeader(r.Header)
		if err != nil {
			app.authErrorResponse(w, r, err)
			return
		}

		// Check the token's signature, issuer, audience and expiry.
		claims, err := app.verifier.Verify(r.Context(), token)
		if err != nil {
			app.authErrorResponse(w, r, err)
			return
		}

		// Check if the token grants the required permission.
		if err := auth.CheckPermission(claims, code); err != nil {
			app.authErrorResponse(w, r, err)
			return
		}

		// Add the verified claims to the request context.
		next.ServeHTTP(w, app.contextSetClaims(r, claims))
	}
}

// enableCORS is a middleware that adds the necessary headers to support Cross-Origin Resource Sharing (CORS).
func (app *application) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Responses vary by Origin and Access-Control-Request-Method.
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin != "" {
			// Check if the request origin is in the list of trusted origins.
			for i := range app.config.cors.trustedOrigins {
				if origin == app.config.cors.trustedOrigins[i] {
					// Allow the origin.
					w.Header().Set("Access-Control-Allow-Origin", origin)
					// Handle preflight requests.
					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE")
						w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
						w.WriteHeader(http.StatusOK)
						return
					}
					break
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// metrics is a middleware that tracks application metrics such as total requests received, total responses sent,
// and the processing time for each request.
func (app *application) metrics(next http.Handler) http.Handler {
	// Define expvar variables to hold the metrics.
	totalRequestsReceived := publishedInt("total_requests_received")
	totalResponsesSent := publishedInt("total_responses_sent")
	totalProcessingTimeMicroseconds := publishedInt("total_processing_time_μs")
	totalResponsesSentByStatus := publishedMap("total_responses_sent_by_status")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Increment the total number of requests received.
		totalRequestsReceived.Add(1)

		// Capture status code and duration while serving the request.
		metrics := httpsnoop.CaptureMetrics(next, w, r)

		// Record the response, its processing time and its status code.
		totalResponsesSent.Add(1)
		totalProcessingTimeMicroseconds.Add(metrics.Duration.Microseconds())
		totalResponsesSentByStatus.Add(strconv.Itoa(metrics.Code), 1)
	})
}

// expvar panics on duplicate names; routes may be built more than once per process.
var expvarMu sync.Mutex

func publishedInt(name string) *expvar.Int {
	expvarMu.Lock()
	defer expvarMu.Unlock()
	if v, ok := expvar.Get(name).(*expvar.Int); ok {
		return v
	}
	return expvar.NewInt(name)
}

func publishedMap(name string) *expvar.Map {
	expvarMu.Lock()
	defer expvarMu.Unlock()
	if v, ok := expvar.Get(name).(*expvar.Map); ok {
		return v
	}
	return expvar.NewMap(name)
}
