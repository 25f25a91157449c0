package jose

import (
	"crypto/hmac"
	"hash"
)

// symmetricSigner computes HMAC-SHA-N over the signing input.
// hmac.New precomputes the ipad/opad keyed blocks once, so the pooled
// contexts amortize the key schedule across operations; Reset restores the
// keyed state without touching the key.
type symmetricSigner struct {
	alg  *SignatureAlgorithm
	pool *contextPool[hash.Hash]
}

func newSymmetricSigner(alg *SignatureAlgorithm, key *SymmetricJwk) *symmetricSigner {
	secret := key.Key()
	return &symmetricSigner{
		alg: alg,
		pool: newContextPool(defaultPoolCapacity(), func() hash.Hash {
			return hmac.New(alg.hash.New, secret)
		}),
	}
}

func (s *symmetricSigner) Algorithm() *SignatureAlgorithm { return s.alg }

func (s *symmetricSigner) Sign(data []byte) ([]byte, error) {
	h := s.pool.get()
	h.Reset()
	h.Write(data) // never fails per hash.Hash contract.
	sum := h.Sum(nil)
	s.pool.put(h)
	return sum, nil
}

func (s *symmetricSigner) Verify(data, signature []byte) error {
	expected, err := s.Sign(data)
	if err != nil {
		return err
	}
	// Constant-time comparison over the full hash length.
	if !hmac.Equal(expected, signature) {
		return ErrSignatureValidation
	}
	return nil
}
