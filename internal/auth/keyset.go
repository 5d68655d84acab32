package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// ErrKeyNotFound is returned by KeySet.Lookup when no published key carries the requested key id.
var ErrKeyNotFound = errors.New("no key with matching key id")

// ErrNotRSAKey is returned when the matching key is not an RSA public key.
var ErrNotRSAKey = errors.New("key is not an RSA public key")

const maxKeySetBytes = 1 << 20

// KeySet retrieves a published JSON Web Key Set.
//
// With a zero TTL the set is fetched on every lookup. With a positive TTL a
// fetched set is reused for at most TTL; a key id missing from a cached set
// forces one refetch so that rotated keys are picked up immediately.
type KeySet struct {
	URL    string
	Client *http.Client
	TTL    time.Duration

	now func() time.Time

	mu        sync.Mutex
	cached    jwk.Set
	fetchedAt time.Time
}

// NewKeySet returns a KeySet for url whose fetches are bounded by timeout.
func NewKeySet(url string, timeout, ttl time.Duration) *KeySet {
	return &KeySet{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
		TTL:    ttl,
		now:    time.Now,
	}
}

// Lookup returns the RSA public key published under kid.
func (ks *KeySet) Lookup(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	set, fromCache := ks.fromCache()
	if set == nil {
		var err error
		if set, err = ks.refresh(ctx); err != nil {
			return nil, err
		}
	}

	key, ok := set.LookupKeyID(kid)
	if !ok && fromCache {
		var err error
		if set, err = ks.refresh(ctx); err != nil {
			return nil, err
		}
		key, ok = set.LookupKeyID(kid)
	}
	if !ok {
		return nil, ErrKeyNotFound
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("key %q: %w", kid, err)
	}
	pub, ok := raw.(*rsa.PublicKey)
	if !ok {
		return nil, ErrNotRSAKey
	}
	return pub, nil
}

func (ks *KeySet) fromCache() (jwk.Set, bool) {
	if ks.TTL <= 0 {
		return nil, false
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	if ks.cached == nil || ks.clock().Sub(ks.fetchedAt) >= ks.TTL {
		return nil, false
	}
	return ks.cached, true
}

func (ks *KeySet) refresh(ctx context.Context) (jwk.Set, error) {
	fetchedAt := ks.clock()
	set, err := ks.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if ks.TTL > 0 {
		ks.mu.Lock()
		ks.cached = set
		ks.fetchedAt = fetchedAt
		ks.mu.Unlock()
	}
	return set, nil
}

func (ks *KeySet) fetch(ctx context.Context) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build key set request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := ks.Client
	if client == nil {
		client = http.DefaultClient
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch key set: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch key set: unexpected status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxKeySetBytes))
	if err != nil {
		return nil, fmt.Errorf("read key set: %w", err)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse key set: %w", err)
	}
	return set, nil
}

func (ks *KeySet) clock() time.Time {
	if ks.now == nil {
		return time.Now()
	}
	return ks.now()
}
