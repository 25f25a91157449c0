package jose

import (
	"bytes"
	"errors"
	"testing"
)

var allEncryptionAlgorithms = []*EncryptionAlgorithm{
	A128CBCHS256, A192CBCHS384, A256CBCHS512,
	A128GCM, A192GCM, A256GCM,
}

func TestContentCipherRoundTrip(t *testing.T) {
	aad := []byte("eyJhbGciOiJkaXIifQ")
	for _, enc := range allEncryptionAlgorithms {
		cek := MustGenerateRandom(enc.KeySize())
		cipher, err := newContentCipher(enc, cek)
		if err != nil {
			t.Fatalf("[%s] %v", enc.Name(), err)
		}

		for _, size := range []int{0, 1, 15, 16, 17, 1000} {
			plaintext := MustGenerateRandom(size)
			nonce := MustGenerateRandom(enc.IVSize())

			ciphertext, tag, err := cipher.encrypt(nonce, plaintext, aad)
			if err != nil {
				t.Fatalf("[%s] encrypt: %v", enc.Name(), err)
			}
			if len(ciphertext) != enc.ciphertextSize(size) {
				t.Fatalf("[%s] expected %d ciphertext bytes but got %d",
					enc.Name(), enc.ciphertextSize(size), len(ciphertext))
			}
			if len(tag) != enc.TagSize() {
				t.Fatalf("[%s] expected %d tag bytes but got %d", enc.Name(), enc.TagSize(), len(tag))
			}

			decrypted, err := cipher.decrypt(nonce, ciphertext, aad, tag)
			if err != nil {
				t.Fatalf("[%s] decrypt: %v", enc.Name(), err)
			}
			if !bytes.Equal(plaintext, decrypted) {
				t.Fatalf("[%s] size %d: round trip mismatch", enc.Name(), size)
			}
		}
	}
}

func TestContentCipherRejectsTampering(t *testing.T) {
	aad := []byte("header")
	for _, enc := range allEncryptionAlgorithms {
		cek := MustGenerateRandom(enc.KeySize())
		cipher, err := newContentCipher(enc, cek)
		if err != nil {
			t.Fatal(err)
		}
		nonce := MustGenerateRandom(enc.IVSize())
		ciphertext, tag, err := cipher.encrypt(nonce, []byte(`{"a":1}`), aad)
		if err != nil {
			t.Fatal(err)
		}

		flip := func(b []byte, i int) []byte {
			out := append([]byte(nil), b...)
			out[i] ^= 0x01
			return out
		}

		// Any alteration of ciphertext, tag, nonce or associated data fails.
		if _, err := cipher.decrypt(nonce, flip(ciphertext, 0), aad, tag); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("[%s] altered ciphertext: expected ErrDecryptionFailed but got: %v", enc.Name(), err)
		}
		if _, err := cipher.decrypt(nonce, ciphertext, aad, flip(tag, 0)); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("[%s] altered tag: expected ErrDecryptionFailed but got: %v", enc.Name(), err)
		}
		if _, err := cipher.decrypt(flip(nonce, 0), ciphertext, aad, tag); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("[%s] altered nonce: expected ErrDecryptionFailed but got: %v", enc.Name(), err)
		}
		if _, err := cipher.decrypt(nonce, ciphertext, []byte("headex"), tag); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("[%s] altered aad: expected ErrDecryptionFailed but got: %v", enc.Name(), err)
		}
	}
}

func TestContentCipherRejectsWrongKeySize(t *testing.T) {
	if _, err := newContentCipher(A128CBCHS256, MustGenerateRandom(16)); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey but got: %v", err)
	}
}
