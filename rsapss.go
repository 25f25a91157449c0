package jose

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
)

// rsaPSSSigner implements RSASSA-PSS with SHA-2 and a salt length equal to
// the hash size, RFC 7518 §3.5.
type rsaPSSSigner struct {
	alg *SignatureAlgorithm
	key *RsaJwk
}

func (s *rsaPSSSigner) options() *rsa.PSSOptions {
	return &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: s.alg.hash}
}

func (s *rsaPSSSigner) Algorithm() *SignatureAlgorithm { return s.alg }

func (s *rsaPSSSigner) Sign(data []byte) ([]byte, error) {
	private := s.key.PrivateKey()
	if private == nil {
		return nil, fmt.Errorf("%w: RSA signing requires a private key", ErrInvalidKey)
	}

	h := s.alg.hash.New()
	h.Write(data)
	return rsa.SignPSS(rand.Reader, private, s.alg.hash, h.Sum(nil), s.options())
}

func (s *rsaPSSSigner) Verify(data, signature []byte) error {
	h := s.alg.hash.New()
	h.Write(data)
	// Verify with PSSSaltLengthAuto so signatures from producers using a
	// different salt length still verify.
	opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto, Hash: s.alg.hash}
	if err := rsa.VerifyPSS(s.key.PublicKey(), s.alg.hash, h.Sum(nil), signature, opts); err != nil {
		return ErrSignatureValidation
	}
	return nil
}
