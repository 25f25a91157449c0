package jose

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
)

// KeyWrapper resolves the content encryption key on the write path and
// recovers it on the read path. The wrap/unwrap size contracts are fixed by
// the algorithm: AES-KW grows the CEK by 8 bytes, RSA produces one modulus
// worth of ciphertext, "dir" and plain ECDH-ES leave the segment empty.
type KeyWrapper interface {
	// Algorithm returns the key management algorithm.
	Algorithm() *KeyManagementAlgorithm

	// WrapKey produces the CEK to encrypt the payload with, the
	// encrypted-key segment, and any header members the operation minted
	// (epk for ECDH-ES, iv and tag for the GCM wraps).
	WrapKey(enc *EncryptionAlgorithm) (cek, encryptedKey []byte, params map[string]any, err error)

	// UnwrapKey recovers the CEK from the encrypted-key segment.
	// A failed unwrap is an authentication failure: ErrDecryptionFailed,
	// with nothing recovered observable.
	UnwrapKey(encryptedKey []byte, enc *EncryptionAlgorithm, header *JwtHeader) ([]byte, error)
}

// NewKeyWrapper binds a key management algorithm to a key, validating the
// key category. Ephemeral contexts built here live for one operation.
func NewKeyWrapper(alg *KeyManagementAlgorithm, key Jwk) (KeyWrapper, error) {
	if alg == nil {
		return nil, ErrUnsupportedAlgorithm
	}
	if key == nil {
		return nil, fmt.Errorf("%w: nil key for %s", ErrInvalidKey, alg.name)
	}

	switch alg.keyType {
	case KeyTypeOctet:
		k, ok := key.(*SymmetricJwk)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires an oct key", ErrInvalidKey, alg.name)
		}
		switch {
		case alg == Dir:
			return &directKeyWrapper{key: k}, nil
		case alg.id >= A128KW.id && alg.id <= A256KW.id:
			return &aesKeyWrapper{alg: alg, kek: k.Key()}, nil
		default:
			return &gcmKeyWrapper{alg: alg, kek: k.Key()}, nil
		}
	case KeyTypeRSA:
		k, ok := key.(*RsaJwk)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires an RSA key", ErrInvalidKey, alg.name)
		}
		return &rsaKeyWrapper{alg: alg, key: k}, nil
	case KeyTypeEC:
		k, ok := key.(*ECJwk)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires an EC key", ErrInvalidKey, alg.name)
		}
		return &ecdhKeyWrapper{alg: alg, key: k}, nil
	}
	return nil, ErrUnsupportedAlgorithm
}

// directKeyWrapper uses the shared symmetric key itself as the CEK.
type directKeyWrapper struct {
	key *SymmetricJwk
}

func (w *directKeyWrapper) Algorithm() *KeyManagementAlgorithm { return Dir }

func (w *directKeyWrapper) WrapKey(enc *EncryptionAlgorithm) ([]byte, []byte, map[string]any, error) {
	if len(w.key.Key()) != enc.KeySize() {
		return nil, nil, nil, fmt.Errorf("%w: dir with %s requires a %d-byte key",
			ErrInvalidKey, enc.name, enc.KeySize())
	}
	return w.key.Key(), nil, nil, nil
}

func (w *directKeyWrapper) UnwrapKey(encryptedKey []byte, enc *EncryptionAlgorithm, _ *JwtHeader) ([]byte, error) {
	// The encrypted-key segment must be empty for "dir".
	if len(encryptedKey) != 0 {
		return nil, ErrDecryptionFailed
	}
	if len(w.key.Key()) != enc.KeySize() {
		return nil, ErrDecryptionFailed
	}
	return w.key.Key(), nil
}

// aesKeyWrapper wraps a fresh CEK with AES-KW.
type aesKeyWrapper struct {
	alg *KeyManagementAlgorithm
	kek []byte
}

func (w *aesKeyWrapper) Algorithm() *KeyManagementAlgorithm { return w.alg }

func (w *aesKeyWrapper) WrapKey(enc *EncryptionAlgorithm) ([]byte, []byte, map[string]any, error) {
	block, err := newKEKBlock(w.kek, w.alg.kekBits)
	if err != nil {
		return nil, nil, nil, err
	}
	cek, err := GenerateRandom(enc.KeySize())
	if err != nil {
		return nil, nil, nil, err
	}
	wrapped, err := aesKeyWrap(block, cek)
	if err != nil {
		return nil, nil, nil, err
	}
	return cek, wrapped, nil, nil
}

func (w *aesKeyWrapper) UnwrapKey(encryptedKey []byte, enc *EncryptionAlgorithm, _ *JwtHeader) ([]byte, error) {
	block, err := newKEKBlock(w.kek, w.alg.kekBits)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	cek, err := aesKeyUnwrap(block, encryptedKey)
	if err != nil {
		return nil, err
	}
	if len(cek) != enc.KeySize() {
		zeroBytes(cek)
		return nil, ErrDecryptionFailed
	}
	return cek, nil
}

// gcmKeyWrapper wraps a fresh CEK with AES-GCM; the per-wrap nonce and tag
// travel in the "iv" and "tag" header members.
type gcmKeyWrapper struct {
	alg *KeyManagementAlgorithm
	kek []byte
}

func (w *gcmKeyWrapper) Algorithm() *KeyManagementAlgorithm { return w.alg }

func (w *gcmKeyWrapper) WrapKey(enc *EncryptionAlgorithm) ([]byte, []byte, map[string]any, error) {
	if len(w.kek)*8 != w.alg.kekBits {
		return nil, nil, nil, fmt.Errorf("%w: %s requires a %d-bit KEK",
			ErrInvalidKey, w.alg.name, w.alg.kekBits)
	}
	gcm, err := newGCMCipher(w.kek, 16)
	if err != nil {
		return nil, nil, nil, err
	}
	cek, err := GenerateRandom(enc.KeySize())
	if err != nil {
		return nil, nil, nil, err
	}
	iv, err := GenerateRandom(12)
	if err != nil {
		return nil, nil, nil, err
	}
	wrapped, tag, err := gcm.encrypt(iv, cek, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	params := map[string]any{
		"iv":  Base64EncodeString(iv),
		"tag": Base64EncodeString(tag),
	}
	return cek, wrapped, params, nil
}

func (w *gcmKeyWrapper) UnwrapKey(encryptedKey []byte, enc *EncryptionAlgorithm, header *JwtHeader) ([]byte, error) {
	if len(w.kek)*8 != w.alg.kekBits {
		return nil, ErrDecryptionFailed
	}
	iv, err1 := header.bytesParam("iv")
	tag, err2 := header.bytesParam("tag")
	if err1 != nil || err2 != nil {
		return nil, ErrDecryptionFailed
	}
	gcm, err := newGCMCipher(w.kek, 16)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	cek, err := gcm.decrypt(iv, encryptedKey, nil, tag)
	if err != nil || len(cek) != enc.KeySize() {
		return nil, ErrDecryptionFailed
	}
	return cek, nil
}

// rsaKeyWrapper encrypts a fresh CEK under the recipient's RSA public key.
// The padding follows the "alg" member: PKCS#1 v1.5 for RSA1_5, OAEP with
// SHA-1 for RSA-OAEP and OAEP with the named SHA-2 for the dashed variants.
type rsaKeyWrapper struct {
	alg *KeyManagementAlgorithm
	key *RsaJwk
}

func (w *rsaKeyWrapper) Algorithm() *KeyManagementAlgorithm { return w.alg }

func (w *rsaKeyWrapper) oaepHash() hash.Hash {
	switch w.alg.oaepHash {
	case 1:
		return sha1.New()
	case 256:
		return sha256.New()
	case 384:
		return sha512.New384()
	case 512:
		return sha512.New()
	}
	return nil
}

func (w *rsaKeyWrapper) WrapKey(enc *EncryptionAlgorithm) ([]byte, []byte, map[string]any, error) {
	cek, err := GenerateRandom(enc.KeySize())
	if err != nil {
		return nil, nil, nil, err
	}

	var wrapped []byte
	if w.alg == RSA1_5 {
		wrapped, err = rsa.EncryptPKCS1v15(rand.Reader, w.key.PublicKey(), cek)
	} else {
		wrapped, err = rsa.EncryptOAEP(w.oaepHash(), rand.Reader, w.key.PublicKey(), cek, nil)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	return cek, wrapped, nil, nil
}

func (w *rsaKeyWrapper) UnwrapKey(encryptedKey []byte, enc *EncryptionAlgorithm, _ *JwtHeader) ([]byte, error) {
	private := w.key.PrivateKey()
	if private == nil {
		return nil, errors.New("jose: RSA key unwrap requires a private key")
	}

	var cek []byte
	var err error
	if w.alg == RSA1_5 {
		cek, err = rsa.DecryptPKCS1v15(rand.Reader, private, encryptedKey)
	} else {
		cek, err = rsa.DecryptOAEP(w.oaepHash(), rand.Reader, private, encryptedKey, nil)
	}
	if err != nil || len(cek) != enc.KeySize() {
		return nil, ErrDecryptionFailed
	}
	return cek, nil
}

// ecdhKeyWrapper derives key material from an ECDH agreement through the
// Concat KDF. Plain ECDH-ES uses the derivation directly as the CEK; the
// +A*KW combinations derive a KEK and wrap a fresh CEK with it.
type ecdhKeyWrapper struct {
	alg *KeyManagementAlgorithm
	key *ECJwk
}

func (w *ecdhKeyWrapper) Algorithm() *KeyManagementAlgorithm { return w.alg }

func (w *ecdhKeyWrapper) derivedBitsAndID(enc *EncryptionAlgorithm) (int, string) {
	if w.alg == ECDHES {
		return enc.cekBits, enc.name
	}
	return w.alg.wrapAlg.kekBits, w.alg.name
}

func (w *ecdhKeyWrapper) WrapKey(enc *EncryptionAlgorithm) ([]byte, []byte, map[string]any, error) {
	ephemeral, err := generateEphemeralKey(w.key.PublicKey().Curve)
	if err != nil {
		return nil, nil, nil, err
	}
	z, err := deriveECDHSecret(ephemeral, w.key.PublicKey())
	if err != nil {
		return nil, nil, nil, err
	}

	bits, algID := w.derivedBitsAndID(enc)
	derived := concatKDF(z, algID, nil, nil, bits)
	params := map[string]any{"epk": epkFromPublic(&ephemeral.PublicKey)}

	if w.alg == ECDHES {
		return derived, nil, params, nil
	}

	block, err := newKEKBlock(derived, w.alg.wrapAlg.kekBits)
	if err != nil {
		return nil, nil, nil, err
	}
	cek, err := GenerateRandom(enc.KeySize())
	if err != nil {
		return nil, nil, nil, err
	}
	wrapped, err := aesKeyWrap(block, cek)
	if err != nil {
		return nil, nil, nil, err
	}
	return cek, wrapped, params, nil
}

func (w *ecdhKeyWrapper) UnwrapKey(encryptedKey []byte, enc *EncryptionAlgorithm, header *JwtHeader) ([]byte, error) {
	private := w.key.PrivateKey()
	if private == nil {
		return nil, errors.New("jose: ECDH-ES key unwrap requires a private key")
	}

	epk, err := header.ephemeralKey()
	if err != nil {
		return nil, err
	}
	z, err := deriveECDHSecret(private, epk)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	apu, _ := header.bytesParam("apu")
	apv, _ := header.bytesParam("apv")

	bits, algID := w.derivedBitsAndID(enc)
	derived := concatKDF(z, algID, apu, apv, bits)

	if w.alg == ECDHES {
		if len(encryptedKey) != 0 {
			return nil, ErrDecryptionFailed
		}
		return derived, nil
	}

	block, err := newKEKBlock(derived, w.alg.wrapAlg.kekBits)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	cek, err := aesKeyUnwrap(block, encryptedKey)
	if err != nil {
		return nil, err
	}
	if len(cek) != enc.KeySize() {
		zeroBytes(cek)
		return nil, ErrDecryptionFailed
	}
	return cek, nil
}
