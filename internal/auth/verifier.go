// Package auth authenticates bearer tokens issued by an external identity
// provider and checks the permissions they grant.
package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/pascaldekloe/jwt"
)

// KeyLookup resolves a key id to the public key that signed a token.
type KeyLookup interface {
	Lookup(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// Verifier checks RS256 tokens against a key set and the expected audience and issuer.
type Verifier struct {
	Audience string
	Issuer   string
	Keys     KeyLookup

	now func() time.Time
}

// IssuerURL is the issuer claim tokens from domain carry.
func IssuerURL(domain string) string {
	return "https://" + domain + "/"
}

// KeySetURL is the well-known location of the key set published for domain.
func KeySetURL(domain string) string {
	return "https://" + domain + "/.well-known/jwks.json"
}

// NewVerifier returns a Verifier accepting tokens issued by domain for audience.
func NewVerifier(domain, audience string, keys KeyLookup) *Verifier {
	return &Verifier{
		Audience: audience,
		Issuer:   IssuerURL(domain),
		Keys:     keys,
		now:      time.Now,
	}
}

// TokenFromHeader extracts the bearer token from the Authorization header.
func TokenFromHeader(h http.Header) (string, error) {
	values := h.Values("Authorization")
	if len(values) == 0 {
		return "", errMissingHeader()
	}

	headerParts := strings.Split(values[0], " ")
	if len(headerParts) != 2 {
		return "", errWrongParts()
	}
	if !strings.EqualFold(headerParts[0], "bearer") {
		return "", errNoBearer()
	}
	return headerParts[1], nil
}

// Verify checks the token signature and standard claims and returns the
// decoded claims. Every failure is an *Error.
func (v *Verifier) Verify(ctx context.Context, token string) (*jwt.Claims, error) {
	msg, err := jws.Parse([]byte(token))
	if err != nil {
		return nil, errUnparsable(err)
	}
	sigs := msg.Signatures()
	if len(sigs) != 1 {
		return nil, errUnparsable(errors.New("expected exactly one signature"))
	}
	header := sigs[0].ProtectedHeaders()

	kid := header.KeyID()
	if kid == "" {
		return nil, errNoKeyID()
	}
	if header.Algorithm() != jwa.RS256 {
		return nil, errUnparsable(errors.New("unsupported signing algorithm " + header.Algorithm().String()))
	}

	key, err := v.Keys.Lookup(ctx, kid)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return nil, errNoMatchingKey()
	case errors.Is(err, ErrNotRSAKey):
		return nil, errUnparsable(err)
	case err != nil:
		return nil, errKeySet(err)
	}

	claims, err := jwt.RSACheck([]byte(token), key)
	if err != nil {
		return nil, errUnparsable(err)
	}

	now := v.clock()
	if claims.Expires != nil && !now.Before(claims.Expires.Time()) {
		return nil, errExpired()
	}
	if claims.NotBefore != nil && now.Before(claims.NotBefore.Time()) {
		return nil, errClaims()
	}
	if !claims.AcceptAudience(v.Audience) || claims.Issuer != v.Issuer {
		return nil, errClaims()
	}
	return claims, nil
}

func (v *Verifier) clock() time.Time {
	if v.now == nil {
		return time.Now()
	}
	return v.now()
}
