package jose

import "crypto"

// EncryptionAlgorithm describes one member of the closed "enc" set.
// It fixes the CEK length, the nonce size and the authentication tag size
// of the content encryption, plus the MAC hash for the composite modes.
type EncryptionAlgorithm struct {
	id   int
	name string
	// cekBits is the full content-encryption-key length. For the composite
	// CBC-HMAC modes half of it is the MAC key and half the AES key.
	cekBits int
	ivSize  int
	tagSize int
	// hash is the HMAC member of the composite modes, zero for GCM.
	hash crypto.Hash
}

// Name returns the RFC 7518 identifier, e.g. "A128CBC-HS256".
func (e *EncryptionAlgorithm) Name() string { return e.name }

func (e *EncryptionAlgorithm) String() string { return e.name }

// KeySize returns the required CEK length in bytes.
func (e *EncryptionAlgorithm) KeySize() int { return e.cekBits / 8 }

// IVSize returns the nonce length in bytes: 16 for CBC, 12 for GCM.
func (e *EncryptionAlgorithm) IVSize() int { return e.ivSize }

// TagSize returns the authentication tag length in bytes.
func (e *EncryptionAlgorithm) TagSize() int { return e.tagSize }

// isGCM reports whether the member is a native AES-GCM mode.
func (e *EncryptionAlgorithm) isGCM() bool { return e.hash == 0 }

// ciphertextSize reports the exact ciphertext length for a plaintext of n
// bytes: padded to the next block for CBC, identical for GCM.
func (e *EncryptionAlgorithm) ciphertextSize(n int) int {
	if e.isGCM() {
		return n
	}
	return (n + 16) &^ 15
}

// The closed JWE content encryption set.
var (
	A128CBCHS256 = &EncryptionAlgorithm{id: 0, name: "A128CBC-HS256", cekBits: 256, ivSize: 16, tagSize: 16, hash: crypto.SHA256}
	A192CBCHS384 = &EncryptionAlgorithm{id: 1, name: "A192CBC-HS384", cekBits: 384, ivSize: 16, tagSize: 24, hash: crypto.SHA384}
	A256CBCHS512 = &EncryptionAlgorithm{id: 2, name: "A256CBC-HS512", cekBits: 512, ivSize: 16, tagSize: 32, hash: crypto.SHA512}

	A128GCM = &EncryptionAlgorithm{id: 3, name: "A128GCM", cekBits: 128, ivSize: 12, tagSize: 16}
	A192GCM = &EncryptionAlgorithm{id: 4, name: "A192GCM", cekBits: 192, ivSize: 12, tagSize: 16}
	A256GCM = &EncryptionAlgorithm{id: 5, name: "A256GCM", cekBits: 256, ivSize: 12, tagSize: 16}
)

var encryptionAlgorithms = map[string]*EncryptionAlgorithm{}

func init() {
	for _, e := range []*EncryptionAlgorithm{
		A128CBCHS256, A192CBCHS384, A256CBCHS512,
		A128GCM, A192GCM, A256GCM,
	} {
		encryptionAlgorithms[e.name] = e
	}
}

// ParseEncryptionAlgorithm returns the algorithm by its case-sensitive name,
// or nil when the name is not a member of the closed set.
func ParseEncryptionAlgorithm(name string) *EncryptionAlgorithm {
	return encryptionAlgorithms[name]
}
