package jose

import (
	"bytes"
	"errors"
	"testing"
)

func TestBase64RoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 2, 3, 4, 15, 16, 17, 31, 64, 1000} {
		src := MustGenerateRandom(size)
		encoded := Base64Encode(src)
		decoded, err := Base64Decode(encoded)
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		if !bytes.Equal(src, decoded) {
			t.Fatalf("size %d: round trip mismatch", size)
		}
	}
}

func TestBase64NoPadding(t *testing.T) {
	encoded := Base64Encode([]byte("f"))
	if bytes.ContainsRune(encoded, '=') {
		t.Fatalf("encoded form contains padding: %q", encoded)
	}
	if string(encoded) != "Zg" {
		t.Fatalf("expected Zg but got: %q", encoded)
	}
}

func TestBase64DecodeRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{
		"e30=",  // padding is not part of the alphabet.
		"ab\nc", // neither is whitespace.
		"a+b/",  // standard alphabet, not url-safe.
		"€",
		"Zh", // non-zero trailing bits.
	} {
		if _, err := Base64Decode([]byte(input)); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("%q: expected ErrMalformedToken but got: %v", input, err)
		}
	}
}

func TestBase64Lengths(t *testing.T) {
	for n := 0; n < 100; n++ {
		src := make([]byte, n)
		if got, want := base64EncodedLen(n), len(Base64Encode(src)); got != want {
			t.Fatalf("encoded len %d: expected %d but got %d", n, want, got)
		}
	}
}
