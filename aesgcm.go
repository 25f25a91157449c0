package jose

import (
	"crypto/aes"
	"crypto/cipher"
)

// gcmCipher is native AES-GCM per NIST SP 800-38D: 12-byte nonce,
// 16-byte tag.
type gcmCipher struct {
	aead cipher.AEAD
}

func newGCMCipher(cek []byte, tagSize int) (*gcmCipher, error) {
	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, err
	}
	return &gcmCipher{aead: aead}, nil
}

func (c *gcmCipher) encrypt(nonce, plaintext, aad []byte) ([]byte, []byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, nil, ErrDecryptionFailed
	}
	sealed := c.aead.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - c.aead.Overhead()
	return sealed[:split], sealed[split:], nil
}

func (c *gcmCipher) decrypt(nonce, ciphertext, aad, tag []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() || len(tag) != c.aead.Overhead() {
		return nil, ErrDecryptionFailed
	}
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		// cipher.AEAD already withholds the plaintext on tag mismatch.
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
