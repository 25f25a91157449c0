package jose

import (
	"fmt"
	"sync/atomic"

	"github.com/goccy/go-json"
)

// KeyProvider yields candidate keys for a token being read. Implementations
// must return synchronously; any I/O or caching behind the call is the
// caller's responsibility. The returned order is the order keys are tried.
type KeyProvider interface {
	// GetSigningKeys returns the candidate signature verification keys for
	// the given header.
	GetSigningKeys(header *JwtHeader) []Jwk
	// GetEncryptionKeys returns the candidate key-decryption keys for the
	// given header.
	GetEncryptionKeys(header *JwtHeader) []Jwk
}

// Jwks is an ordered JSON Web Key Set with a kid index.
// Reads are lock-free; Refresh swaps the whole set atomically, so concurrent
// readers observe either the old or the new set, never a mix.
type Jwks struct {
	state atomic.Pointer[jwksState]
}

type jwksState struct {
	keys  []Jwk
	byKid map[string][]Jwk
}

// NewJwks builds a key set from the given keys, preserving their order.
func NewJwks(keys ...Jwk) *Jwks {
	s := &Jwks{}
	s.Refresh(keys)
	return s
}

// ParseJwks decodes a {"keys":[...]} document.
// Unparsable or unsupported entries make the whole set invalid.
func ParseJwks(data []byte) (*Jwks, error) {
	var doc struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	keys := make([]Jwk, 0, len(doc.Keys))
	for _, raw := range doc.Keys {
		key, err := ParseJwk(raw)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return NewJwks(keys...), nil
}

// Refresh atomically replaces the whole set.
func (s *Jwks) Refresh(keys []Jwk) {
	state := &jwksState{
		keys:  append([]Jwk(nil), keys...),
		byKid: make(map[string][]Jwk, len(keys)),
	}
	for _, k := range keys {
		if kid := k.Kid(); kid != "" {
			state.byKid[kid] = append(state.byKid[kid], k)
		}
	}
	s.state.Store(state)
}

// Keys returns the keys in their original order.
// Callers must not mutate the result.
func (s *Jwks) Keys() []Jwk { return s.state.Load().keys }

// Lookup returns the keys registered under "kid", in order.
func (s *Jwks) Lookup(kid string) []Jwk { return s.state.Load().byKid[kid] }

// Len returns the number of keys in the set.
func (s *Jwks) Len() int { return len(s.state.Load().keys) }

// MarshalJSON emits the {"keys":[...]} document.
func (s *Jwks) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Keys []Jwk `json:"keys"`
	}{Keys: s.Keys()})
}

// GetSigningKeys implements KeyProvider. Selection follows the header:
// an exact kid match wins; without a kid every algorithm-compatible key
// whose "use"/"alg" members do not contradict signing is a candidate.
func (s *Jwks) GetSigningKeys(header *JwtHeader) []Jwk {
	return s.selectKeys(header, "sig")
}

// GetEncryptionKeys implements KeyProvider with the same selection rules,
// gated on "use":"enc".
func (s *Jwks) GetEncryptionKeys(header *JwtHeader) []Jwk {
	return s.selectKeys(header, "enc")
}

func (s *Jwks) selectKeys(header *JwtHeader, use string) []Jwk {
	state := s.state.Load()

	alg := header.Alg
	if kid := header.Kid; kid != "" {
		matches := state.byKid[kid]
		if len(matches) < 2 {
			return matches
		}
		// Two keys share the kid: the algorithm-compatible one wins.
		ordered := make([]Jwk, 0, len(matches))
		for _, k := range matches {
			if alg != "" && k.supportsAlgorithm(alg) {
				ordered = append(ordered, k)
			}
		}
		for _, k := range matches {
			if alg == "" || !k.supportsAlgorithm(alg) {
				ordered = append(ordered, k)
			}
		}
		return ordered
	}

	var candidates []Jwk
	for _, k := range state.keys {
		if u := k.Use(); u != "" && u != use {
			continue
		}
		if ka := k.Alg(); ka != "" && alg != "" && ka != alg {
			continue
		}
		if alg != "" && !k.supportsAlgorithm(alg) {
			continue
		}
		candidates = append(candidates, k)
	}
	return candidates
}
