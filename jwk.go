package jose

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/goccy/go-json"
)

// Jwk is a JSON Web Key, RFC 7517. The three variants are SymmetricJwk,
// RsaJwk and ECJwk. A key is immutable after construction except for its
// "kid", which may be computed and assigned post-hoc (commonly from the
// thumbprint).
type Jwk interface {
	// Kty returns the key type: "oct", "RSA" or "EC".
	Kty() string
	// Kid returns the opaque key identifier, empty when unset.
	Kid() string
	// SetKid assigns the key identifier.
	SetKid(kid string)
	// Use returns the "use" member: "sig", "enc" or empty.
	Use() string
	// Alg returns the "alg" hint, empty when unset.
	Alg() string
	// KeyOps returns the "key_ops" member, nil when unset.
	KeyOps() []string
	// KeySizeBits returns the key size in bits.
	KeySizeBits() int
	// Thumbprint computes the RFC 7638 SHA-256 thumbprint over the
	// canonical JSON of the required members in lexicographic order.
	Thumbprint() ([]byte, error)
	// IsPrivate reports whether the key carries private material.
	IsPrivate() bool

	// canonical returns the RFC 7638 canonical JSON.
	canonical() ([]byte, error)
	// supportsAlgorithm reports whether the "alg" name is valid for the
	// variant, used both for the "alg" invariant and key selection.
	supportsAlgorithm(name string) bool
}

// baseJwk carries the members common to every variant.
type baseJwk struct {
	kid    string
	use    string
	alg    string
	keyOps []string
}

func (b *baseJwk) Kid() string       { return b.kid }
func (b *baseJwk) SetKid(kid string) { b.kid = kid }
func (b *baseJwk) Use() string       { return b.use }
func (b *baseJwk) Alg() string       { return b.alg }
func (b *baseJwk) KeyOps() []string  { return b.keyOps }

// SymmetricJwk is an octet sequence key, "kty":"oct".
type SymmetricJwk struct {
	baseJwk
	k []byte
}

// NewSymmetricJwk builds a symmetric key from raw bytes.
func NewSymmetricJwk(k []byte) (*SymmetricJwk, error) {
	if len(k) == 0 {
		return nil, fmt.Errorf("%w: empty symmetric key", ErrInvalidKey)
	}
	return &SymmetricJwk{k: append([]byte(nil), k...)}, nil
}

// SymmetricJwkFromBase64 builds a symmetric key from its base64url form,
// the way the "k" member travels on the wire.
func SymmetricJwkFromBase64(k string) (*SymmetricJwk, error) {
	raw, err := Base64Decode(StringToBytes(k))
	if err != nil {
		return nil, fmt.Errorf("%w: k", ErrInvalidKey)
	}
	return NewSymmetricJwk(raw)
}

func (k *SymmetricJwk) Kty() string      { return "oct" }
func (k *SymmetricJwk) KeySizeBits() int { return len(k.k) * 8 }
func (k *SymmetricJwk) IsPrivate() bool  { return true }

// Key returns the raw key bytes. Callers must not mutate the result.
func (k *SymmetricJwk) Key() []byte { return k.k }

func (k *SymmetricJwk) canonical() ([]byte, error) {
	return []byte(`{"k":"` + Base64EncodeString(k.k) + `","kty":"oct"}`), nil
}

func (k *SymmetricJwk) Thumbprint() ([]byte, error) { return thumbprint(k) }

func (k *SymmetricJwk) supportsAlgorithm(name string) bool {
	if a := ParseSignatureAlgorithm(name); a != nil {
		return a.keyType == KeyTypeOctet
	}
	if a := ParseKeyManagementAlgorithm(name); a != nil {
		return a.keyType == KeyTypeOctet
	}
	return ParseEncryptionAlgorithm(name) != nil
}

// RsaJwk is an RSA key, "kty":"RSA". The public half is always present,
// the private half only when d (and the CRT members) were supplied.
type RsaJwk struct {
	baseJwk
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// NewRsaJwk builds an RSA JWK from a platform public key.
func NewRsaJwk(key *rsa.PublicKey) (*RsaJwk, error) {
	if key == nil || key.N == nil {
		return nil, fmt.Errorf("%w: nil RSA key", ErrInvalidKey)
	}
	return &RsaJwk{public: key}, nil
}

// NewRsaPrivateJwk builds an RSA JWK carrying the private half.
func NewRsaPrivateJwk(key *rsa.PrivateKey) (*RsaJwk, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil RSA key", ErrInvalidKey)
	}
	return &RsaJwk{public: &key.PublicKey, private: key}, nil
}

func (k *RsaJwk) Kty() string      { return "RSA" }
func (k *RsaJwk) KeySizeBits() int { return k.public.N.BitLen() }
func (k *RsaJwk) IsPrivate() bool  { return k.private != nil }

// PublicKey returns the platform public key.
func (k *RsaJwk) PublicKey() *rsa.PublicKey { return k.public }

// PrivateKey returns the platform private key, nil for public-only keys.
func (k *RsaJwk) PrivateKey() *rsa.PrivateKey { return k.private }

func (k *RsaJwk) canonical() ([]byte, error) {
	e := big.NewInt(int64(k.public.E))
	return []byte(`{"e":"` + Base64EncodeString(e.Bytes()) +
		`","kty":"RSA","n":"` + Base64EncodeString(k.public.N.Bytes()) + `"}`), nil
}

func (k *RsaJwk) Thumbprint() ([]byte, error) { return thumbprint(k) }

func (k *RsaJwk) supportsAlgorithm(name string) bool {
	if a := ParseSignatureAlgorithm(name); a != nil {
		return a.keyType == KeyTypeRSA
	}
	if a := ParseKeyManagementAlgorithm(name); a != nil {
		return a.keyType == KeyTypeRSA
	}
	return false
}

// ECJwk is an elliptic-curve key on a NIST P-curve, "kty":"EC".
type ECJwk struct {
	baseJwk
	public  *ecdsa.PublicKey
	private *ecdsa.PrivateKey
}

// NewECJwk builds an EC JWK from a platform public key.
func NewECJwk(key *ecdsa.PublicKey) (*ECJwk, error) {
	if key == nil || key.Curve == nil {
		return nil, fmt.Errorf("%w: nil EC key", ErrInvalidKey)
	}
	if curveName(key.Curve) == "" {
		return nil, fmt.Errorf("%w: unsupported curve", ErrInvalidKey)
	}
	return &ECJwk{public: key}, nil
}

// NewECPrivateJwk builds an EC JWK carrying the private half.
func NewECPrivateJwk(key *ecdsa.PrivateKey) (*ECJwk, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil EC key", ErrInvalidKey)
	}
	jwk, err := NewECJwk(&key.PublicKey)
	if err != nil {
		return nil, err
	}
	jwk.private = key
	return jwk, nil
}

func (k *ECJwk) Kty() string      { return "EC" }
func (k *ECJwk) KeySizeBits() int { return k.public.Curve.Params().BitSize }
func (k *ECJwk) IsPrivate() bool  { return k.private != nil }

// Crv returns the curve name: "P-256", "P-384" or "P-521".
func (k *ECJwk) Crv() string { return curveName(k.public.Curve) }

// PublicKey returns the platform public key.
func (k *ECJwk) PublicKey() *ecdsa.PublicKey { return k.public }

// PrivateKey returns the platform private key, nil for public-only keys.
func (k *ECJwk) PrivateKey() *ecdsa.PrivateKey { return k.private }

func (k *ECJwk) canonical() ([]byte, error) {
	size := (k.public.Curve.Params().BitSize + 7) / 8
	return []byte(`{"crv":"` + k.Crv() +
		`","kty":"EC","x":"` + Base64EncodeString(padCoordinate(k.public.X, size)) +
		`","y":"` + Base64EncodeString(padCoordinate(k.public.Y, size)) + `"}`), nil
}

func (k *ECJwk) Thumbprint() ([]byte, error) { return thumbprint(k) }

func (k *ECJwk) supportsAlgorithm(name string) bool {
	if a := ParseSignatureAlgorithm(name); a != nil {
		return a.keyType == KeyTypeEC
	}
	if a := ParseKeyManagementAlgorithm(name); a != nil {
		return a.keyType == KeyTypeEC
	}
	return false
}

func thumbprint(k Jwk) ([]byte, error) {
	canon, err := k.canonical()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(canon)
	return sum[:], nil
}

func curveName(c elliptic.Curve) string {
	switch c {
	case elliptic.P256():
		return "P-256"
	case elliptic.P384():
		return "P-384"
	case elliptic.P521():
		return "P-521"
	}
	return ""
}

func curveByName(name string) elliptic.Curve {
	switch name {
	case "P-256":
		return elliptic.P256()
	case "P-384":
		return elliptic.P384()
	case "P-521":
		return elliptic.P521()
	}
	return nil
}

// padCoordinate left-pads a curve coordinate to the full field size,
// the fixed-width form the JWK members and R‖S signatures use.
func padCoordinate(v *big.Int, size int) []byte {
	out := make([]byte, size)
	v.FillBytes(out)
	return out
}

// jwkJSON is the wire shape of a JWK; binary members are unpadded base64url.
type jwkJSON struct {
	Kty    string   `json:"kty"`
	Kid    string   `json:"kid,omitempty"`
	Use    string   `json:"use,omitempty"`
	Alg    string   `json:"alg,omitempty"`
	KeyOps []string `json:"key_ops,omitempty"`

	K string `json:"k,omitempty"`

	N  string `json:"n,omitempty"`
	E  string `json:"e,omitempty"`
	D  string `json:"d,omitempty"`
	P  string `json:"p,omitempty"`
	Q  string `json:"q,omitempty"`
	Dp string `json:"dp,omitempty"`
	Dq string `json:"dq,omitempty"`
	Qi string `json:"qi,omitempty"`

	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
}

// ParseJwk decodes a single JWK from its JSON form, enforcing the per-kty
// invariants: "k" for oct, "n" and "e" for RSA, "crv", "x" and "y" for EC,
// and an "alg" member, when present, that the variant supports.
func ParseJwk(data []byte) (Jwk, error) {
	var raw jwkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return jwkFromJSON(&raw)
}

func jwkFromJSON(raw *jwkJSON) (Jwk, error) {
	var key Jwk
	var err error

	switch raw.Kty {
	case "oct":
		key, err = octFromJSON(raw)
	case "RSA":
		key, err = rsaFromJSON(raw)
	case "EC":
		key, err = ecFromJSON(raw)
	case "":
		return nil, fmt.Errorf("%w: missing kty", ErrInvalidKey)
	default:
		return nil, fmt.Errorf("%w: kty %q", ErrUnsupportedAlgorithm, raw.Kty)
	}
	if err != nil {
		return nil, err
	}

	if raw.Alg != "" && !key.supportsAlgorithm(raw.Alg) {
		return nil, fmt.Errorf("%w: alg %q does not match kty %q", ErrInvalidKey, raw.Alg, raw.Kty)
	}
	return key, nil
}

func octFromJSON(raw *jwkJSON) (Jwk, error) {
	if raw.K == "" {
		return nil, fmt.Errorf("%w: oct key requires k", ErrInvalidKey)
	}
	key, err := SymmetricJwkFromBase64(raw.K)
	if err != nil {
		return nil, err
	}
	key.baseJwk = baseJwk{kid: raw.Kid, use: raw.Use, alg: raw.Alg, keyOps: raw.KeyOps}
	return key, nil
}

func rsaFromJSON(raw *jwkJSON) (Jwk, error) {
	if raw.N == "" || raw.E == "" {
		return nil, fmt.Errorf("%w: RSA key requires n and e", ErrInvalidKey)
	}
	n, err := decodeBigInt(raw.N)
	if err != nil {
		return nil, fmt.Errorf("%w: n", ErrInvalidKey)
	}
	e, err := decodeBigInt(raw.E)
	if err != nil {
		return nil, fmt.Errorf("%w: e", ErrInvalidKey)
	}
	public := &rsa.PublicKey{N: n, E: int(e.Int64())}

	var key *RsaJwk
	if raw.D != "" {
		d, err := decodeBigInt(raw.D)
		if err != nil {
			return nil, fmt.Errorf("%w: d", ErrInvalidKey)
		}
		private := &rsa.PrivateKey{PublicKey: *public, D: d}
		if raw.P != "" && raw.Q != "" {
			p, err1 := decodeBigInt(raw.P)
			q, err2 := decodeBigInt(raw.Q)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%w: p/q", ErrInvalidKey)
			}
			private.Primes = []*big.Int{p, q}
			private.Precompute()
		}
		key, err = NewRsaPrivateJwk(private)
		if err != nil {
			return nil, err
		}
	} else {
		key, err = NewRsaJwk(public)
		if err != nil {
			return nil, err
		}
	}
	key.baseJwk = baseJwk{kid: raw.Kid, use: raw.Use, alg: raw.Alg, keyOps: raw.KeyOps}
	return key, nil
}

func ecFromJSON(raw *jwkJSON) (Jwk, error) {
	if raw.Crv == "" || raw.X == "" || raw.Y == "" {
		return nil, fmt.Errorf("%w: EC key requires crv, x and y", ErrInvalidKey)
	}
	curve := curveByName(raw.Crv)
	if curve == nil {
		return nil, fmt.Errorf("%w: crv %q", ErrUnsupportedAlgorithm, raw.Crv)
	}
	x, err := decodeBigInt(raw.X)
	if err != nil {
		return nil, fmt.Errorf("%w: x", ErrInvalidKey)
	}
	y, err := decodeBigInt(raw.Y)
	if err != nil {
		return nil, fmt.Errorf("%w: y", ErrInvalidKey)
	}
	public := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}

	var key *ECJwk
	if raw.D != "" {
		d, err := decodeBigInt(raw.D)
		if err != nil {
			return nil, fmt.Errorf("%w: d", ErrInvalidKey)
		}
		key, err = NewECPrivateJwk(&ecdsa.PrivateKey{PublicKey: *public, D: d})
		if err != nil {
			return nil, err
		}
	} else {
		key, err = NewECJwk(public)
		if err != nil {
			return nil, err
		}
	}
	key.baseJwk = baseJwk{kid: raw.Kid, use: raw.Use, alg: raw.Alg, keyOps: raw.KeyOps}
	return key, nil
}

func decodeBigInt(s string) (*big.Int, error) {
	raw, err := Base64Decode(StringToBytes(s))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

// MarshalJSON emits the JWK wire shape, private members included when held.
func (k *SymmetricJwk) MarshalJSON() ([]byte, error) {
	return json.Marshal(jwkJSON{
		Kty: "oct", Kid: k.kid, Use: k.use, Alg: k.alg, KeyOps: k.keyOps,
		K: Base64EncodeString(k.k),
	})
}

func (k *RsaJwk) MarshalJSON() ([]byte, error) {
	e := big.NewInt(int64(k.public.E))
	out := jwkJSON{
		Kty: "RSA", Kid: k.kid, Use: k.use, Alg: k.alg, KeyOps: k.keyOps,
		N: Base64EncodeString(k.public.N.Bytes()),
		E: Base64EncodeString(e.Bytes()),
	}
	if k.private != nil {
		out.D = Base64EncodeString(k.private.D.Bytes())
		if len(k.private.Primes) == 2 {
			out.P = Base64EncodeString(k.private.Primes[0].Bytes())
			out.Q = Base64EncodeString(k.private.Primes[1].Bytes())
			if k.private.Precomputed.Dp != nil {
				out.Dp = Base64EncodeString(k.private.Precomputed.Dp.Bytes())
				out.Dq = Base64EncodeString(k.private.Precomputed.Dq.Bytes())
				out.Qi = Base64EncodeString(k.private.Precomputed.Qinv.Bytes())
			}
		}
	}
	return json.Marshal(out)
}

func (k *ECJwk) MarshalJSON() ([]byte, error) {
	size := (k.public.Curve.Params().BitSize + 7) / 8
	out := jwkJSON{
		Kty: "EC", Kid: k.kid, Use: k.use, Alg: k.alg, KeyOps: k.keyOps,
		Crv: k.Crv(),
		X:   Base64EncodeString(padCoordinate(k.public.X, size)),
		Y:   Base64EncodeString(padCoordinate(k.public.Y, size)),
	}
	if k.private != nil {
		out.D = Base64EncodeString(padCoordinate(k.private.D, size))
	}
	return json.Marshal(out)
}
