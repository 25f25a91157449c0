package jose

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/goccy/go-json"
)

// Registered header member names, bit-exact per RFC 7515/7516/7518.
// Names outside this registry are preserved verbatim for policy access.
var registeredHeaderNames = []string{
	"alg", "enc", "zip", "kid", "typ", "cty",
	"jku", "jwk", "x5u", "x5c", "x5t", "x5t#S256",
	"crit", "epk", "apu", "apv", "p2c", "p2s",
}

// JwtHeader is the decoded first segment of a compact token.
// The well-known string members are interned into fields; every other
// member, registered or not, stays available through Get as raw JSON.
type JwtHeader struct {
	// Alg is the only required member.
	Alg string
	// Enc present means the token is a JWE with five segments;
	// absent means a JWS with three.
	Enc string
	Zip string
	Kid string
	Typ string
	Cty string
	// Crit is preserved; no built-in validator rejects unknown critical
	// extensions, that choice is left to policy composition.
	Crit []string

	raw   []byte
	extra map[string]json.RawMessage
}

// parseHeader decodes the header JSON. Member names dispatch on their byte
// length before comparing, so the common three-letter members never hit the
// generic path.
func parseHeader(data []byte) (*JwtHeader, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}

	h := &JwtHeader{raw: data}
	for name, value := range members {
		var dst *string
		switch len(name) {
		case 3:
			switch name {
			case "alg":
				dst = &h.Alg
			case "enc":
				dst = &h.Enc
			case "zip":
				dst = &h.Zip
			case "kid":
				dst = &h.Kid
			case "typ":
				dst = &h.Typ
			case "cty":
				dst = &h.Cty
			}
		case 4:
			if name == "crit" {
				if err := json.Unmarshal(value, &h.Crit); err != nil {
					return nil, fmt.Errorf("%w: crit", ErrInvalidHeader)
				}
				continue
			}
		}

		if dst == nil {
			if h.extra == nil {
				h.extra = make(map[string]json.RawMessage, 4)
			}
			h.extra[name] = value
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidHeader, name)
		}
	}

	if h.Alg == "" {
		return nil, fmt.Errorf("%w: alg", ErrInvalidHeader)
	}
	return h, nil
}

// Raw returns the exact decoded header JSON.
func (h *JwtHeader) Raw() []byte { return h.raw }

// IsEncrypted reports whether the header describes a JWE.
func (h *JwtHeader) IsEncrypted() bool { return h.Enc != "" }

// Get returns a non-interned member as raw JSON.
func (h *JwtHeader) Get(name string) (json.RawMessage, bool) {
	v, ok := h.extra[name]
	return v, ok
}

// stringParam decodes a non-interned member as a JSON string.
func (h *JwtHeader) stringParam(name string) (string, error) {
	raw, ok := h.extra[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidHeader, name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidHeader, name)
	}
	return s, nil
}

// bytesParam decodes a non-interned member as base64url-encoded bytes.
func (h *JwtHeader) bytesParam(name string) ([]byte, error) {
	s, err := h.stringParam(name)
	if err != nil {
		return nil, err
	}
	raw, err := Base64Decode(StringToBytes(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHeader, name)
	}
	return raw, nil
}

// ephemeralKey decodes the "epk" member for ECDH-ES.
func (h *JwtHeader) ephemeralKey() (*ecdsa.PublicKey, error) {
	raw, ok := h.extra["epk"]
	if !ok {
		return nil, fmt.Errorf("%w: epk", ErrInvalidHeader)
	}
	var epk epkHeader
	if err := json.Unmarshal(raw, &epk); err != nil {
		return nil, fmt.Errorf("%w: epk", ErrInvalidHeader)
	}
	return epk.publicKey()
}
