package jose

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// AES Key Wrap, RFC 3394: 6·n rounds over the n 64-bit halves of the key
// being wrapped, with the fixed initial value A6A6A6A6A6A6A6A6. Wrapping
// grows the data by exactly 8 bytes; unwrap authenticates by recovering the
// initial value.

var keyWrapIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

func aesKeyWrap(block cipher.Block, plaintext []byte) ([]byte, error) {
	if len(plaintext) < 16 || len(plaintext)%8 != 0 {
		return nil, fmt.Errorf("%w: key wrap input must be 8-byte aligned", ErrInvalidKey)
	}

	n := len(plaintext) / 8
	out := make([]byte, len(plaintext)+8)
	copy(out[:8], keyWrapIV[:])
	copy(out[8:], plaintext)

	var scratch [16]byte
	a := out[:8]
	for t := 0; t < 6*n; t++ {
		ri := out[8*(t%n)+8 : 8*(t%n)+16]
		copy(scratch[:8], a)
		copy(scratch[8:], ri)
		block.Encrypt(scratch[:], scratch[:])
		binary.BigEndian.PutUint64(a, binary.BigEndian.Uint64(scratch[:8])^uint64(t+1))
		copy(ri, scratch[8:])
	}
	return out, nil
}

func aesKeyUnwrap(block cipher.Block, wrapped []byte) ([]byte, error) {
	if len(wrapped) < 24 || len(wrapped)%8 != 0 {
		return nil, ErrDecryptionFailed
	}

	n := len(wrapped)/8 - 1
	a := make([]byte, 8)
	copy(a, wrapped[:8])
	out := make([]byte, len(wrapped)-8)
	copy(out, wrapped[8:])

	var scratch [16]byte
	for t := 6*n - 1; t >= 0; t-- {
		ri := out[8*(t%n) : 8*(t%n)+8]
		binary.BigEndian.PutUint64(scratch[:8], binary.BigEndian.Uint64(a)^uint64(t+1))
		copy(scratch[8:], ri)
		block.Decrypt(scratch[:], scratch[:])
		copy(a, scratch[:8])
		copy(ri, scratch[8:])
	}

	// A recovered initial value that differs is an authentication failure;
	// the unwrapped material must not be observable.
	if subtle.ConstantTimeCompare(a, keyWrapIV[:]) != 1 {
		zeroBytes(out)
		return nil, ErrDecryptionFailed
	}
	return out, nil
}

func newKEKBlock(kek []byte, bits int) (cipher.Block, error) {
	if len(kek)*8 != bits {
		return nil, fmt.Errorf("%w: key wrap requires a %d-bit KEK, got %d",
			ErrInvalidKey, bits, len(kek)*8)
	}
	return aes.NewCipher(kek)
}
