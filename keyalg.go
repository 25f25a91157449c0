package jose

// KeyManagementAlgorithm describes one member of the closed "alg" set for
// JWE key management. Same registry model as SignatureAlgorithm.
type KeyManagementAlgorithm struct {
	id      int
	name    string
	keyType KeyType
	// producesWrappedKey reports whether the compact form carries a non-empty
	// encrypted-key segment.
	producesWrappedKey bool
	// kekBits is the exact key-encryption-key size for the AES modes, 0 when
	// the size is not fixed by the algorithm (dir, RSA, ECDH-ES).
	kekBits int
	// wrapAlg is the inner A*KW member for the ECDH-ES+A*KW combinations.
	wrapAlg *KeyManagementAlgorithm
	// oaepHash selects the RSA padding: 0 PKCS#1 v1.5, 1 OAEP-SHA1,
	// 256/384/512 OAEP with that SHA-2 member.
	oaepHash int
}

// Name returns the RFC 7518 identifier, e.g. "A128KW".
func (a *KeyManagementAlgorithm) Name() string { return a.name }

func (a *KeyManagementAlgorithm) String() string { return a.name }

// KeyType returns the key category the algorithm requires.
func (a *KeyManagementAlgorithm) KeyType() KeyType { return a.keyType }

// ProducesWrappedKey reports whether tokens using this algorithm carry an
// encrypted-key segment. "dir" and plain "ECDH-ES" leave it empty.
func (a *KeyManagementAlgorithm) ProducesWrappedKey() bool {
	return a.producesWrappedKey
}

// The closed JWE key management set.
var (
	// Dir uses the shared symmetric key directly as the CEK.
	Dir = &KeyManagementAlgorithm{id: 0, name: "dir", keyType: KeyTypeOctet}

	// AES Key Wrap, RFC 3394.
	A128KW = &KeyManagementAlgorithm{id: 1, name: "A128KW", keyType: KeyTypeOctet, producesWrappedKey: true, kekBits: 128}
	A192KW = &KeyManagementAlgorithm{id: 2, name: "A192KW", keyType: KeyTypeOctet, producesWrappedKey: true, kekBits: 192}
	A256KW = &KeyManagementAlgorithm{id: 3, name: "A256KW", keyType: KeyTypeOctet, producesWrappedKey: true, kekBits: 256}

	// AES-GCM key wrapping; the per-wrap nonce and tag travel in the header.
	A128GCMKW = &KeyManagementAlgorithm{id: 4, name: "A128GCMKW", keyType: KeyTypeOctet, producesWrappedKey: true, kekBits: 128}
	A192GCMKW = &KeyManagementAlgorithm{id: 5, name: "A192GCMKW", keyType: KeyTypeOctet, producesWrappedKey: true, kekBits: 192}
	A256GCMKW = &KeyManagementAlgorithm{id: 6, name: "A256GCMKW", keyType: KeyTypeOctet, producesWrappedKey: true, kekBits: 256}

	// RSA key encryption.
	RSA1_5     = &KeyManagementAlgorithm{id: 7, name: "RSA1_5", keyType: KeyTypeRSA, producesWrappedKey: true, oaepHash: 0}
	RSAOAEP    = &KeyManagementAlgorithm{id: 8, name: "RSA-OAEP", keyType: KeyTypeRSA, producesWrappedKey: true, oaepHash: 1}
	RSAOAEP256 = &KeyManagementAlgorithm{id: 9, name: "RSA-OAEP-256", keyType: KeyTypeRSA, producesWrappedKey: true, oaepHash: 256}
	RSAOAEP384 = &KeyManagementAlgorithm{id: 10, name: "RSA-OAEP-384", keyType: KeyTypeRSA, producesWrappedKey: true, oaepHash: 384}
	RSAOAEP512 = &KeyManagementAlgorithm{id: 11, name: "RSA-OAEP-512", keyType: KeyTypeRSA, producesWrappedKey: true, oaepHash: 512}

	// ECDH-ES key agreement, direct or combined with AES Key Wrap.
	ECDHES       = &KeyManagementAlgorithm{id: 12, name: "ECDH-ES", keyType: KeyTypeEC}
	ECDHESA128KW = &KeyManagementAlgorithm{id: 13, name: "ECDH-ES+A128KW", keyType: KeyTypeEC, producesWrappedKey: true, wrapAlg: A128KW}
	ECDHESA192KW = &KeyManagementAlgorithm{id: 14, name: "ECDH-ES+A192KW", keyType: KeyTypeEC, producesWrappedKey: true, wrapAlg: A192KW}
	ECDHESA256KW = &KeyManagementAlgorithm{id: 15, name: "ECDH-ES+A256KW", keyType: KeyTypeEC, producesWrappedKey: true, wrapAlg: A256KW}
)

var keyManagementAlgorithms = map[string]*KeyManagementAlgorithm{}

func init() {
	for _, a := range []*KeyManagementAlgorithm{
		Dir,
		A128KW, A192KW, A256KW,
		A128GCMKW, A192GCMKW, A256GCMKW,
		RSA1_5, RSAOAEP, RSAOAEP256, RSAOAEP384, RSAOAEP512,
		ECDHES, ECDHESA128KW, ECDHESA192KW, ECDHESA256KW,
	} {
		keyManagementAlgorithms[a.name] = a
	}
}

// ParseKeyManagementAlgorithm returns the algorithm by its case-sensitive
// name, or nil when the name is not a member of the closed set.
func ParseKeyManagementAlgorithm(name string) *KeyManagementAlgorithm {
	return keyManagementAlgorithms[name]
}
