package jose

import (
	"fmt"

	"github.com/goccy/go-json"
)

// JwtPayload is the decoded claims set. Registered claims are interned into
// fields; everything else stays available through Get as raw JSON.
type JwtPayload struct {
	Iss string
	Sub string
	Jti string
	// Aud accepts both wire forms: a single string or an array of strings.
	Aud []string

	// Numeric-date claims, seconds since the Unix epoch.
	// The has* flags distinguish an absent claim from a zero one.
	Exp int64
	Nbf int64
	Iat int64

	hasExp bool
	hasNbf bool
	hasIat bool

	raw   []byte
	extra map[string]json.RawMessage
}

// parsePayload decodes the claims JSON with the same byte-length dispatch
// the header parser uses. Every registered claim name is three bytes.
func parsePayload(data []byte) (*JwtPayload, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedToken, err)
	}

	p := &JwtPayload{raw: data}
	for name, value := range members {
		if len(name) != 3 {
			p.setExtra(name, value)
			continue
		}

		var err error
		switch name {
		case "iss":
			err = json.Unmarshal(value, &p.Iss)
		case "sub":
			err = json.Unmarshal(value, &p.Sub)
		case "jti":
			err = json.Unmarshal(value, &p.Jti)
		case "aud":
			err = unmarshalAudience(value, &p.Aud)
		case "exp":
			err = json.Unmarshal(value, &p.Exp)
			p.hasExp = err == nil
		case "nbf":
			err = json.Unmarshal(value, &p.Nbf)
			p.hasNbf = err == nil
		case "iat":
			err = json.Unmarshal(value, &p.Iat)
			p.hasIat = err == nil
		default:
			p.setExtra(name, value)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: claim %q", ErrMalformedToken, name)
		}
	}
	return p, nil
}

func (p *JwtPayload) setExtra(name string, value json.RawMessage) {
	if p.extra == nil {
		p.extra = make(map[string]json.RawMessage, 4)
	}
	p.extra[name] = value
}

// unmarshalAudience accepts "aud" as either a string or an array of strings.
func unmarshalAudience(value json.RawMessage, dst *[]string) error {
	if len(value) > 0 && value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return err
		}
		*dst = []string{s}
		return nil
	}
	return json.Unmarshal(value, dst)
}

// Raw returns the exact decoded payload JSON.
func (p *JwtPayload) Raw() []byte { return p.raw }

// Get returns a non-registered claim as raw JSON.
func (p *JwtPayload) Get(name string) (json.RawMessage, bool) {
	v, ok := p.extra[name]
	return v, ok
}

// Has reports whether a claim, registered or not, is present.
func (p *JwtPayload) Has(name string) bool {
	switch name {
	case "iss":
		return p.Iss != ""
	case "sub":
		return p.Sub != ""
	case "jti":
		return p.Jti != ""
	case "aud":
		return len(p.Aud) > 0
	case "exp":
		return p.hasExp
	case "nbf":
		return p.hasNbf
	case "iat":
		return p.hasIat
	}
	_, ok := p.extra[name]
	return ok
}

// Claims binds the full payload to "dest", e.g. a custom struct or a
// map[string]any.
func (p *JwtPayload) Claims(dest any) error {
	return json.Unmarshal(p.raw, dest)
}
