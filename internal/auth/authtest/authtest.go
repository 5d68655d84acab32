// Package authtest provides a local token issuer for tests: it mints RS256
// tokens and publishes the matching key set from an httptest server.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	Domain   = "casting.test"
	Audience = "casting"
	KeyID    = "test-key"
)

var (
	keyOnce   sync.Once
	sharedKey *rsa.PrivateKey
	keyErr    error
)

func signingKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		sharedKey, keyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if keyErr != nil {
		t.Fatalf("generate rsa key: %v", keyErr)
	}
	return sharedKey
}

// Issuer signs tokens and serves its key set.
type Issuer struct {
	Server *httptest.Server

	key     *rsa.PrivateKey
	fetches atomic.Int64
	failing atomic.Bool
}

// NewIssuer starts an issuer whose key set is served at KeySetURL. The
// server is closed when the test ends.
func NewIssuer(t testing.TB) *Issuer {
	t.Helper()

	iss := &Issuer{key: signingKey(t)}
	keySet := iss.keySetJSON(t)

	iss.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		iss.fetches.Add(1)
		if iss.failing.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(keySet)
	}))
	t.Cleanup(iss.Server.Close)
	return iss
}

// KeySetURL is where the issuer's key set is published.
func (iss *Issuer) KeySetURL() string {
	return iss.Server.URL + "/.well-known/jwks.json"
}

// Fetches reports how many times the key set has been requested.
func (iss *Issuer) Fetches() int64 {
	return iss.fetches.Load()
}

// SetFailing makes the key set endpoint answer 503 while failing is true.
func (iss *Issuer) SetFailing(failing bool) {
	iss.failing.Store(failing)
}

func (iss *Issuer) keySetJSON(t testing.TB) []byte {
	t.Helper()

	pub, err := jwk.FromRaw(&iss.key.PublicKey)
	if err != nil {
		t.Fatalf("jwk from key: %v", err)
	}
	for name, value := range map[string]interface{}{
		jwk.KeyIDKey:     KeyID,
		jwk.AlgorithmKey: jwa.RS256,
		jwk.KeyUsageKey:  "sig",
	} {
		if err := pub.Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	other, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	decoy, err := jwk.FromRaw(&other.PublicKey)
	if err != nil {
		t.Fatalf("jwk from key: %v", err)
	}
	if err := decoy.Set(jwk.KeyIDKey, "decoy-key"); err != nil {
		t.Fatalf("set kid: %v", err)
	}

	set := jwk.NewSet()
	if err := set.AddKey(decoy); err != nil {
		t.Fatalf("add key: %v", err)
	}
	if err := set.AddKey(pub); err != nil {
		t.Fatalf("add key: %v", err)
	}

	js, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal key set: %v", err)
	}
	return js
}

// Claims describes the token to mint. Zero values select a valid token:
// the default issuer, audience and key id, expiring in one hour.
type Claims struct {
	Issuer      string
	Audience    string
	KeyID       string
	NoKeyID     bool
	Expires     time.Time
	NotBefore   time.Time
	Permissions []string // nil omits the claim
	Extra       map[string]interface{}
}

// Token mints a valid token granting permissions.
func (iss *Issuer) Token(t testing.TB, permissions ...string) string {
	t.Helper()
	if permissions == nil {
		permissions = []string{}
	}
	return iss.Sign(t, Claims{Permissions: permissions})
}

// Sign mints a token from c.
func (iss *Issuer) Sign(t testing.TB, c Claims) string {
	t.Helper()

	if c.Issuer == "" {
		c.Issuer = "https://" + Domain + "/"
	}
	if c.Audience == "" {
		c.Audience = Audience
	}
	if c.KeyID == "" {
		c.KeyID = KeyID
	}
	now := time.Now()
	if c.Expires.IsZero() {
		c.Expires = now.Add(time.Hour)
	}

	builder := jwt.NewBuilder().
		Issuer(c.Issuer).
		Audience([]string{c.Audience}).
		Subject("auth0|tester").
		IssuedAt(now).
		Expiration(c.Expires)
	if !c.NotBefore.IsZero() {
		builder = builder.NotBefore(c.NotBefore)
	}
	if c.Permissions != nil {
		builder = builder.Claim("permissions", c.Permissions)
	}
	for name, value := range c.Extra {
		builder = builder.Claim(name, value)
	}

	token, err := builder.Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}

	headers := jws.NewHeaders()
	if !c.NoKeyID {
		if err := headers.Set(jws.KeyIDKey, c.KeyID); err != nil {
			t.Fatalf("set kid: %v", err)
		}
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, iss.key, jws.WithProtectedHeaders(headers)))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}
