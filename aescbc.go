package jose

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"encoding/binary"
	"fmt"
)

// cbcHMACCipher is the composite AES-CBC + HMAC-SHA-2 AEAD of RFC 7518 §5.2.
// The CEK of 2·m bits splits in half: the first m bits key the MAC, the last
// m bits key the cipher. The tag is the leading m/8 bytes of
// HMAC(K_mac, A ∥ IV ∥ E ∥ AL) with AL the 64-bit big-endian bit length
// of the associated data.
type cbcHMACCipher struct {
	enc    *EncryptionAlgorithm
	block  cipher.Block
	macKey []byte
}

func newCBCHMACCipher(enc *EncryptionAlgorithm, cek []byte) (*cbcHMACCipher, error) {
	half := len(cek) / 2
	block, err := aes.NewCipher(cek[half:])
	if err != nil {
		return nil, err
	}
	return &cbcHMACCipher{
		enc:    enc,
		block:  block,
		macKey: append([]byte(nil), cek[:half]...),
	}, nil
}

func (c *cbcHMACCipher) computeTag(aad, iv, ciphertext []byte) []byte {
	al := make([]byte, 8)
	binary.BigEndian.PutUint64(al, uint64(len(aad))*8)

	h := hmac.New(c.enc.hash.New, c.macKey)
	h.Write(aad)
	h.Write(iv)
	h.Write(ciphertext)
	h.Write(al)
	return h.Sum(nil)[:c.enc.tagSize]
}

func (c *cbcHMACCipher) encrypt(nonce, plaintext, aad []byte) ([]byte, []byte, error) {
	if len(nonce) != c.enc.ivSize {
		return nil, nil, fmt.Errorf("%w: bad nonce size", ErrInvalidKey)
	}

	// PKCS#7 padding to the next full block.
	padded := c.enc.ciphertextSize(len(plaintext))
	buf := make([]byte, padded)
	copy(buf, plaintext)
	pad := byte(padded - len(plaintext))
	for i := len(plaintext); i < padded; i++ {
		buf[i] = pad
	}

	cipher.NewCBCEncrypter(c.block, nonce).CryptBlocks(buf, buf)
	return buf, c.computeTag(aad, nonce, buf), nil
}

func (c *cbcHMACCipher) decrypt(nonce, ciphertext, aad, tag []byte) ([]byte, error) {
	if len(nonce) != c.enc.ivSize || len(ciphertext) == 0 || len(ciphertext)%16 != 0 {
		return nil, ErrDecryptionFailed
	}

	// Authenticate before touching the ciphertext, constant-time.
	expected := c.computeTag(aad, nonce, ciphertext)
	if !hmac.Equal(expected, tag) {
		return nil, ErrDecryptionFailed
	}

	buf := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, nonce).CryptBlocks(buf, ciphertext)

	pad := int(buf[len(buf)-1])
	if pad == 0 || pad > 16 || pad > len(buf) {
		zeroBytes(buf)
		return nil, ErrDecryptionFailed
	}
	for _, b := range buf[len(buf)-pad:] {
		if int(b) != pad {
			zeroBytes(buf)
			return nil, ErrDecryptionFailed
		}
	}
	return buf[:len(buf)-pad], nil
}
