package jose

import (
	"crypto/rand"
	"io"
	"unsafe"
)

// BytesToString converts a byte slice to a string without copying.
// The caller must not mutate "b" for as long as the string is alive.
func BytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// StringToBytes converts a string to a byte slice without copying.
// The returned slice must never be written to.
func StringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// GenerateRandom returns "n" cryptographically random bytes.
// It feeds fresh CEKs and nonces and is handy for generating symmetric keys.
func GenerateRandom(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// MustGenerateRandom is a GenerateRandom that panics on entropy failure.
func MustGenerateRandom(n int) []byte {
	buf, err := GenerateRandom(n)
	if err != nil {
		panic(err)
	}
	return buf
}

// zeroBytes wipes a scratch buffer, used after failed decryptions so partial
// plaintext never leaks through a shared workspace.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
