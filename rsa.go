package jose

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
)

// rsaSigner implements RSASSA-PKCS1-v1_5 with SHA-2.
type rsaSigner struct {
	alg *SignatureAlgorithm
	key *RsaJwk
}

func (s *rsaSigner) Algorithm() *SignatureAlgorithm { return s.alg }

func (s *rsaSigner) Sign(data []byte) ([]byte, error) {
	private := s.key.PrivateKey()
	if private == nil {
		return nil, fmt.Errorf("%w: RSA signing requires a private key", ErrInvalidKey)
	}

	h := s.alg.hash.New()
	h.Write(data)
	return rsa.SignPKCS1v15(rand.Reader, private, s.alg.hash, h.Sum(nil))
}

func (s *rsaSigner) Verify(data, signature []byte) error {
	h := s.alg.hash.New()
	h.Write(data)
	if err := rsa.VerifyPKCS1v15(s.key.PublicKey(), s.alg.hash, h.Sum(nil), signature); err != nil {
		return ErrSignatureValidation
	}
	return nil
}
