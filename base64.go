package jose

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// The URL-safe alphabet without padding, strict about trailing bits:
// never '=' and never a non-zero partial final sextet.
var b64 = base64.RawURLEncoding.Strict()

// Base64Encode encodes "src" to the unpadded base64 url format used by
// every compact-form segment.
func Base64Encode(src []byte) []byte {
	buf := make([]byte, b64.EncodedLen(len(src)))
	b64.Encode(buf, src)
	return buf
}

// Base64EncodeString is a Base64Encode that returns a string.
func Base64EncodeString(src []byte) string {
	return b64.EncodeToString(src)
}

// Base64Decode decodes a base64 url segment.
// Any byte outside the alphabet, a padding character or non-zero trailing
// bits make the whole token malformed.
func Base64Decode(src []byte) ([]byte, error) {
	// encoding/base64 silently skips CR and LF; reject them here.
	if bytes.ContainsAny(src, "\r\n") {
		return nil, fmt.Errorf("%w: line break in base64url segment", ErrMalformedToken)
	}
	buf := make([]byte, b64.DecodedLen(len(src)))
	n, err := b64.Decode(buf, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return buf[:n], nil
}

// base64EncodedLen reports the exact encoded size of n raw bytes, ⌈4n/3⌉.
func base64EncodedLen(n int) int {
	return b64.EncodedLen(n)
}
