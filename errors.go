package jose

import "errors"

var (
	// ErrMalformedToken indicates a structural or JSON error in the input:
	// wrong segment count, bad base64url, invalid UTF-8 or broken JSON.
	ErrMalformedToken = errors.New("jose: malformed token")

	// ErrInvalidHeader indicates an unsupported or conflicting header value.
	// The offending header name is appended, e.g. "jose: invalid header: alg".
	ErrInvalidHeader = errors.New("jose: invalid header")

	// ErrMissingEncryptionAlgorithm indicates a five-segment token whose
	// header carries no "enc" member.
	ErrMissingEncryptionAlgorithm = errors.New("jose: missing enc header")

	// ErrSigningKeyNotFound indicates that the key provider yielded no key
	// able to verify the token's signature.
	ErrSigningKeyNotFound = errors.New("jose: signing key not found")

	// ErrEncryptionKeyNotFound indicates that the key provider yielded no key
	// able to decrypt the token.
	ErrEncryptionKeyNotFound = errors.New("jose: encryption key not found")

	// ErrSignatureValidation indicates that signature verification failed:
	// the signature is missing, malformed or does not match.
	ErrSignatureValidation = errors.New("jose: invalid token signature")

	// ErrDecryptionFailed indicates a key unwrap failure or an AEAD tag
	// mismatch. No plaintext is ever returned alongside this error.
	ErrDecryptionFailed = errors.New("jose: decryption failed")

	// ErrDecompressionFailed indicates that the decrypted payload could not
	// be inflated with the negotiated "zip" algorithm.
	ErrDecompressionFailed = errors.New("jose: decompression failed")

	// ErrPolicyViolation indicates that a claim validator rejected the token.
	// The claim name is appended, e.g. "jose: policy violation: exp".
	ErrPolicyViolation = errors.New("jose: policy violation")

	// ErrUnsupportedAlgorithm indicates an algorithm that is recognized by
	// the registries but not available in this build.
	ErrUnsupportedAlgorithm = errors.New("jose: unsupported algorithm")

	// ErrInvalidKey indicates that the provided key does not satisfy the
	// algorithm's key category or minimum size.
	ErrInvalidKey = errors.New("jose: invalid key")

	// ErrTokenGeneration wraps any failure of the write pipeline.
	ErrTokenGeneration = errors.New("jose: token generation failed")
)
