package jose

import "fmt"

const (
	jwsSegmentCount = 3
	jweSegmentCount = 5
)

// segment is an (offset, length) descriptor into the token bytes.
type segment struct {
	offset int
	length int
}

func (s segment) slice(token []byte) []byte {
	return token[s.offset : s.offset+s.length]
}

// tokenize scans the token left to right, splitting on '.' into up to five
// segment descriptors. Fewer than three segments, more than five, or an
// empty header segment make the token malformed.
func tokenize(token []byte) ([]segment, error) {
	segments := make([]segment, 0, jweSegmentCount)
	start := 0
	for i, b := range token {
		if b != '.' {
			continue
		}
		if len(segments) == jweSegmentCount-1 {
			return nil, fmt.Errorf("%w: too many segments", ErrMalformedToken)
		}
		segments = append(segments, segment{offset: start, length: i - start})
		start = i + 1
	}
	segments = append(segments, segment{offset: start, length: len(token) - start})

	if len(segments) < jwsSegmentCount {
		return nil, fmt.Errorf("%w: %d segments", ErrMalformedToken, len(segments))
	}
	if segments[0].length == 0 {
		return nil, fmt.Errorf("%w: empty header", ErrMalformedToken)
	}
	return segments, nil
}

// Jwt is a validated token. A JWS carries a payload; a JWE carries either a
// nested validated token or, when nested validation was skipped or not
// applicable, the raw decrypted plaintext. The resolved key that verified
// or decrypted the token rides along. The token owns its buffers and
// outlives the input it was read from.
type Jwt struct {
	Header  *JwtHeader
	Payload *JwtPayload

	// Nested is the inner token of a JWE carrying a JWT.
	Nested *Jwt
	// Plaintext is the decrypted JWE content when no nested token was
	// parsed out of it.
	Plaintext []byte

	// SigningKey is the key that verified the signature, nil for "none"
	// and for pure JWE tokens.
	SigningKey Jwk
	// EncryptionKey is the key that decrypted the token, nil for JWS.
	EncryptionKey Jwk
}

// InnerPayload walks to the innermost payload: the token's own for a JWS,
// the nested token's for a JWE-of-JWS.
func (t *Jwt) InnerPayload() *JwtPayload {
	if t.Nested != nil {
		return t.Nested.InnerPayload()
	}
	return t.Payload
}
