package jose

import (
	"crypto"
	_ "crypto/sha256" // link the SHA-2 implementations in.
	_ "crypto/sha512"
)

// KeyType is the JWK key category an algorithm operates on.
type KeyType int

const (
	// KeyTypeOctet is a symmetric key ("kty":"oct").
	KeyTypeOctet KeyType = iota + 1
	// KeyTypeRSA is an RSA key pair ("kty":"RSA").
	KeyTypeRSA
	// KeyTypeEC is an elliptic-curve key pair ("kty":"EC").
	KeyTypeEC
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeOctet:
		return "oct"
	case KeyTypeRSA:
		return "RSA"
	case KeyTypeEC:
		return "EC"
	}
	return "unknown"
}

// SignatureAlgorithm describes one member of the closed "alg" set for JWS.
// Instances carry their attributes (key category, minimum key size, hash)
// and are identified by a small integer; the set is populated once at init
// and never extended at runtime.
type SignatureAlgorithm struct {
	id      int
	name    string
	keyType KeyType
	// requiredKeyBits is the minimum key size accepted by the signer,
	// in bits: half the hash size for HMAC, 2048 for RSA, the curve size for EC.
	requiredKeyBits int
	hash            crypto.Hash
	// curveBits is set for ECDSA only and fixes the R‖S encoding size.
	curveBits int
}

// Name returns the RFC 7518 identifier, e.g. "HS256".
func (a *SignatureAlgorithm) Name() string { return a.name }

func (a *SignatureAlgorithm) String() string { return a.name }

// KeyType returns the key category the algorithm requires.
func (a *SignatureAlgorithm) KeyType() KeyType { return a.keyType }

// Hash returns the underlying SHA-2 member, zero for "none".
func (a *SignatureAlgorithm) Hash() crypto.Hash { return a.hash }

// signatureSize reports the exact signature length in bytes for a key of
// "keyBits" bits, used to preallocate the output buffer on the write path.
func (a *SignatureAlgorithm) signatureSize(keyBits int) int {
	switch a.keyType {
	case KeyTypeOctet:
		return a.hash.Size()
	case KeyTypeRSA:
		return (keyBits + 7) / 8
	case KeyTypeEC:
		return 2 * ((a.curveBits + 7) / 8)
	}
	return 0
}

// The closed JWS algorithm set.
var (
	// SigNone is the unsecured "none" algorithm: empty signature, no key.
	// Never accept it unless the policy explicitly allows it.
	SigNone = &SignatureAlgorithm{id: 0, name: "none"}

	// HMAC with SHA-2.
	HS256 = &SignatureAlgorithm{id: 1, name: "HS256", keyType: KeyTypeOctet, requiredKeyBits: 128, hash: crypto.SHA256}
	HS384 = &SignatureAlgorithm{id: 2, name: "HS384", keyType: KeyTypeOctet, requiredKeyBits: 192, hash: crypto.SHA384}
	HS512 = &SignatureAlgorithm{id: 3, name: "HS512", keyType: KeyTypeOctet, requiredKeyBits: 256, hash: crypto.SHA512}

	// RSASSA-PKCS1-v1_5.
	RS256 = &SignatureAlgorithm{id: 4, name: "RS256", keyType: KeyTypeRSA, requiredKeyBits: 2048, hash: crypto.SHA256}
	RS384 = &SignatureAlgorithm{id: 5, name: "RS384", keyType: KeyTypeRSA, requiredKeyBits: 2048, hash: crypto.SHA384}
	RS512 = &SignatureAlgorithm{id: 6, name: "RS512", keyType: KeyTypeRSA, requiredKeyBits: 2048, hash: crypto.SHA512}

	// RSASSA-PSS.
	PS256 = &SignatureAlgorithm{id: 7, name: "PS256", keyType: KeyTypeRSA, requiredKeyBits: 2048, hash: crypto.SHA256}
	PS384 = &SignatureAlgorithm{id: 8, name: "PS384", keyType: KeyTypeRSA, requiredKeyBits: 2048, hash: crypto.SHA384}
	PS512 = &SignatureAlgorithm{id: 9, name: "PS512", keyType: KeyTypeRSA, requiredKeyBits: 2048, hash: crypto.SHA512}

	// ECDSA over the NIST P-curves, fixed-size R‖S encoding (not DER).
	// Note that ES512 runs on P-521: 66-byte coordinates, 132-byte signature.
	ES256 = &SignatureAlgorithm{id: 10, name: "ES256", keyType: KeyTypeEC, requiredKeyBits: 256, hash: crypto.SHA256, curveBits: 256}
	ES384 = &SignatureAlgorithm{id: 11, name: "ES384", keyType: KeyTypeEC, requiredKeyBits: 384, hash: crypto.SHA384, curveBits: 384}
	ES512 = &SignatureAlgorithm{id: 12, name: "ES512", keyType: KeyTypeEC, requiredKeyBits: 521, hash: crypto.SHA512, curveBits: 521}
)

var signatureAlgorithms = map[string]*SignatureAlgorithm{}

func init() {
	for _, a := range []*SignatureAlgorithm{
		SigNone,
		HS256, HS384, HS512,
		RS256, RS384, RS512,
		PS256, PS384, PS512,
		ES256, ES384, ES512,
	} {
		signatureAlgorithms[a.name] = a
	}
}

// ParseSignatureAlgorithm returns the algorithm by its case-sensitive
// RFC 7518 name, or nil when the name is not a member of the closed set.
func ParseSignatureAlgorithm(name string) *SignatureAlgorithm {
	return signatureAlgorithms[name]
}
