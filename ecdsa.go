package jose

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"
)

// ecdsaSigner implements ECDSA over the NIST P-curves with the fixed-size
// R‖S signature encoding of RFC 7518 §3.4 (not DER): each component is
// left-padded to the full coordinate size, 2·⌈curveBits/8⌉ bytes total,
// 132 for P-521.
type ecdsaSigner struct {
	alg *SignatureAlgorithm
	key *ECJwk
}

func (s *ecdsaSigner) Algorithm() *SignatureAlgorithm { return s.alg }

func (s *ecdsaSigner) coordinateSize() int {
	return (s.alg.curveBits + 7) / 8
}

func (s *ecdsaSigner) Sign(data []byte) ([]byte, error) {
	private := s.key.PrivateKey()
	if private == nil {
		return nil, fmt.Errorf("%w: ECDSA signing requires a private key", ErrInvalidKey)
	}

	h := s.alg.hash.New()
	h.Write(data)

	r, sv, err := ecdsa.Sign(rand.Reader, private, h.Sum(nil))
	if err != nil {
		return nil, err
	}

	size := s.coordinateSize()
	signature := make([]byte, 2*size)
	r.FillBytes(signature[:size])
	sv.FillBytes(signature[size:])
	return signature, nil
}

func (s *ecdsaSigner) Verify(data, signature []byte) error {
	size := s.coordinateSize()
	// A wrong-size signature is a verification failure, never a panic.
	if len(signature) != 2*size {
		return ErrSignatureValidation
	}

	r := new(big.Int).SetBytes(signature[:size])
	sv := new(big.Int).SetBytes(signature[size:])

	h := s.alg.hash.New()
	h.Write(data)
	if !ecdsa.Verify(s.key.PublicKey(), h.Sum(nil), r, sv) {
		return ErrSignatureValidation
	}
	return nil
}
