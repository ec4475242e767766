package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/daikw/angertranslator/internal/kv"
)

const identityKey = "ratelimit.identity"

// Fingerprint hashes environment traits into a short identity.
// Similar clients may collide; it only keys the limiter.
func Fingerprint(traits ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(traits, "\x1f")))
	return hex.EncodeToString(sum[:8])
}

// CachedIdentity returns the identity stored in store, deriving and saving
// one from traits on first use.
func CachedIdentity(ctx context.Context, store kv.Store, traits ...string) (string, error) {
	if id, ok, err := store.Get(ctx, identityKey); err != nil {
		return "", fmt.Errorf("failed to read identity: %w", err)
	} else if ok && id != "" {
		return id, nil
	}

	id := Fingerprint(traits...)
	if err := store.Set(ctx, identityKey, id); err != nil {
		return "", fmt.Errorf("failed to save identity: %w", err)
	}
	return id, nil
}
