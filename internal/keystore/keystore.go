// Package keystore keeps API keys in the key-value store under a reversible
// XOR obfuscation.
//
// The obfuscation key lives in the same store as the obfuscated values, so
// anyone who can read the store can recover the keys. It hides keys from
// casual inspection of the store and nothing more.
package keystore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/kv"
	"github.com/daikw/angertranslator/internal/reliability"
)

// DefaultTTL applies when Store is called without a ttl
const DefaultTTL = 24 * time.Hour

const (
	sessionKeyName = "keystore.session"
	entryPrefix    = "keystore.entry."
	sessionKeySize = 32
	// magic prefixes the plaintext so a wrong session key is detected on decode.
	magic = "atk1:"
)

// ErrInvalidFormat is returned when a key does not look like a key for its service
var ErrInvalidFormat = errors.New("key format not recognized for service")

var (
	genericFormat  = regexp.MustCompile(`^\S{16,}$`)
	serviceFormats = map[string]*regexp.Regexp{
		"openai":     regexp.MustCompile(`^sk-[A-Za-z0-9_-]{20,}$`),
		"elevenlabs": regexp.MustCompile(`^(sk_)?[A-Za-z0-9]{32,}$`),
		"gcp":        regexp.MustCompile(`^AIza[0-9A-Za-z_-]{35}$`),
	}
)

// FormatFor returns the pattern keys for service must match
func FormatFor(service string) *regexp.Regexp {
	if re, ok := serviceFormats[service]; ok {
		return re
	}
	return genericFormat
}

type entry struct {
	Obfuscated string    `json:"obfuscated"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Keystore stores, retrieves and removes API keys per service.
type Keystore struct {
	store kv.Store
	now   func() time.Time

	mu         sync.Mutex
	sessionKey []byte
}

// Option configures a Keystore
type Option func(*Keystore)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(k *Keystore) { k.now = now }
}

func New(store kv.Store, opts ...Option) *Keystore {
	k := &Keystore{store: store, now: time.Now}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Store validates rawKey against the service format and saves it until ttl
// elapses. An invalid key is never stored.
func (k *Keystore) Store(ctx context.Context, service, rawKey string, ttl time.Duration) error {
	if !FormatFor(service).MatchString(rawKey) {
		return reliability.New(reliability.KindValidation, "keystore.store", fmt.Errorf("%w: %s", ErrInvalidFormat, service))
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	sk, err := k.session(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(entry{
		Obfuscated: base64.StdEncoding.EncodeToString(xor([]byte(magic+rawKey), sk)),
		ExpiresAt:  k.now().Add(ttl).UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := k.store.Set(ctx, entryPrefix+service, string(data)); err != nil {
		return reliability.New(reliability.KindStorage, "keystore.store", err)
	}

	log.Debug().Str("service", service).Time("expires_at", k.now().Add(ttl)).Msg("Stored API key")
	return nil
}

// Retrieve returns the key for service. Expired entries are deleted and
// reported absent, as are entries that cannot be decoded.
func (k *Keystore) Retrieve(ctx context.Context, service string) (string, bool, error) {
	raw, ok, err := k.store.Get(ctx, entryPrefix+service)
	if err != nil {
		return "", false, reliability.New(reliability.KindStorage, "keystore.retrieve", err)
	}
	if !ok {
		return "", false, nil
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		log.Warn().Str("service", service).Msg("Stored key entry is corrupt, ignoring it")
		return "", false, nil
	}

	if !k.now().Before(e.ExpiresAt) {
		log.Debug().Str("service", service).Msg("Stored key expired")
		if err := k.Remove(ctx, service); err != nil {
			return "", false, err
		}
		return "", false, nil
	}

	obfuscated, err := base64.StdEncoding.DecodeString(e.Obfuscated)
	if err != nil {
		log.Warn().Str("service", service).Msg("Stored key entry is corrupt, ignoring it")
		return "", false, nil
	}
	sk, err := k.session(ctx)
	if err != nil {
		return "", false, err
	}

	plain := string(xor(obfuscated, sk))
	// A lost session key yields garbage; treat it as no key.
	key, found := strings.CutPrefix(plain, magic)
	if !found {
		log.Warn().Str("service", service).Msg("Stored key does not decode, ignoring it")
		return "", false, nil
	}
	return key, true, nil
}

// Remove deletes the key for service
func (k *Keystore) Remove(ctx context.Context, service string) error {
	if err := k.store.Remove(ctx, entryPrefix+service); err != nil {
		return reliability.New(reliability.KindStorage, "keystore.remove", err)
	}
	return nil
}

// session loads or creates the random obfuscation key.
func (k *Keystore) session(ctx context.Context) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.sessionKey != nil {
		return k.sessionKey, nil
	}

	encoded, ok, err := k.store.Get(ctx, sessionKeyName)
	if err != nil {
		return nil, reliability.New(reliability.KindStorage, "keystore.session", err)
	}
	if ok {
		if sk, err := base64.StdEncoding.DecodeString(encoded); err == nil && len(sk) == sessionKeySize {
			k.sessionKey = sk
			return sk, nil
		}
		log.Warn().Msg("Session key is corrupt, generating a new one")
	}

	sk := make([]byte, sessionKeySize)
	if _, err := rand.Read(sk); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	if err := k.store.Set(ctx, sessionKeyName, base64.StdEncoding.EncodeToString(sk)); err != nil {
		return nil, reliability.New(reliability.KindStorage, "keystore.session", err)
	}
	k.sessionKey = sk
	return sk, nil
}

// xor applies the repeating keystream; applying it twice restores the input.
func xor(data, key []byte) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}

// Mask shows only the ends of a key
func Mask(key string) string {
	if len(key) <= 12 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
