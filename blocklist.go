package jose

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Blocklist is an in-memory set of revoked tokens, keyed by "jti" or, for
// tokens without one, by the raw compact bytes. It plugs into the policy as
// a claims validator so revocation runs after the payload is decoded, and
// it drops entries once their expiry passes.
type Blocklist struct {
	mu      sync.RWMutex
	entries map[string]int64 // jti or raw token -> expiry unix seconds
}

// NewBlocklist returns an empty blocklist and, when gcEvery is positive,
// starts a garbage collection loop bound to the context.
func NewBlocklist(ctx context.Context, gcEvery time.Duration) *Blocklist {
	b := &Blocklist{entries: make(map[string]int64)}
	if gcEvery > 0 {
		go b.runGC(ctx, gcEvery)
	}
	return b
}

// ValidateClaims implements ClaimsValidator. A token is blocked when its
// "jti" is revoked or, absent a "jti", when its exact bytes are.
func (b *Blocklist) ValidateClaims(token []byte, payload *JwtPayload) error {
	key := payload.Jti
	if key == "" {
		key = BytesToString(token)
	}
	if key == "" {
		return nil
	}

	b.mu.RLock()
	_, blocked := b.entries[key]
	b.mu.RUnlock()

	if blocked {
		return fmt.Errorf("%w: jti", ErrPolicyViolation)
	}
	return nil
}

// Revoke blocks a token id until "expiry" (unix seconds), typically the
// token's own "exp" so the entry dies with the token.
func (b *Blocklist) Revoke(jti string, expiry int64) {
	b.mu.Lock()
	b.entries[jti] = expiry
	b.mu.Unlock()
}

// RevokeToken blocks a token without a "jti" by its exact compact bytes.
func (b *Blocklist) RevokeToken(token []byte, expiry int64) {
	b.Revoke(string(token), expiry)
}

// Del removes a token id from the blocklist.
func (b *Blocklist) Del(jti string) {
	b.mu.Lock()
	delete(b.entries, jti)
	b.mu.Unlock()
}

// Count returns the number of blocked token ids.
func (b *Blocklist) Count() int {
	b.mu.RLock()
	n := len(b.entries)
	b.mu.RUnlock()
	return n
}

// GC removes expired entries and reports how many were dropped.
func (b *Blocklist) GC() int {
	now := Clock().Unix()

	b.mu.Lock()
	n := 0
	for key, expiry := range b.entries {
		if expiry > 0 && now > expiry {
			delete(b.entries, key)
			n++
		}
	}
	b.mu.Unlock()
	return n
}

func (b *Blocklist) runGC(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			b.GC()
		}
	}
}
