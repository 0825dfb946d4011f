package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// JWKSKeyFetcher serves public keys from the identity provider's JWKS endpoint.
// The key set is cached and refreshed in the background; an unknown kid
// forces one refresh so rotated keys are picked up immediately.
type JWKSKeyFetcher struct {
	cache *jwk.Cache
	url   string
}

// NewJWKSKeyFetcher registers url with a refreshing cache bound to ctx
func NewJWKSKeyFetcher(ctx context.Context, url string, minRefresh time.Duration) (*JWKSKeyFetcher, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(url, jwk.WithMinRefreshInterval(minRefresh)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS url: %w", err)
	}
	return &JWKSKeyFetcher{cache: cache, url: url}, nil
}

// FetchPublicKey returns the raw public key (RSA or ECDSA) for kid
func (f *JWKSKeyFetcher) FetchPublicKey(ctx context.Context, kid string) (interface{}, error) {
	set, err := f.cache.Get(ctx, f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	key, found := set.LookupKeyID(kid)
	if !found {
		set, err = f.cache.Refresh(ctx, f.url)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh JWKS: %w", err)
		}
		if key, found = set.LookupKeyID(kid); !found {
			return nil, fmt.Errorf("key %q not found in JWKS", kid)
		}
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to convert JWK: %w", err)
	}
	return raw, nil
}
