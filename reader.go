package jose

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// headerCacheSize bounds the reader's header cache. Tokens minted by the
// same issuer repeat the exact header bytes, so a small LRU amortizes the
// base64 decode and JSON parse across tokens.
const headerCacheSize = 16

type cachedHeader struct {
	raw    []byte
	header *JwtHeader
}

var readerHeaderCache, _ = lru.New[uint64, cachedHeader](headerCacheSize)

// decodeHeader resolves the encoded header segment to a parsed header,
// through the cache. Entries are keyed by the xxhash of the exact encoded
// bytes; a hash hit still compares the raw bytes before being trusted.
func decodeHeader(encoded []byte) (*JwtHeader, error) {
	key := xxhash.Sum64(encoded)
	if entry, ok := readerHeaderCache.Get(key); ok && bytes.Equal(entry.raw, encoded) {
		return entry.header, nil
	}

	raw, err := Base64Decode(encoded)
	if err != nil {
		return nil, err
	}
	header, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}

	readerHeaderCache.Add(key, cachedHeader{raw: append([]byte(nil), encoded...), header: header})
	return header, nil
}

// TryReadToken runs the read pipeline over a compact-form token:
// tokenize, decode and validate the header, then verify (JWS) or decrypt
// (JWE), parse the payload and validate the claims. All classifiable
// failures come back as error values; nothing escapes as a panic.
//
// The returned token owns its buffers and stays valid after the caller
// recycles the input.
func TryReadToken(token []byte, policy *TokenValidationPolicy) (*Jwt, error) {
	if policy == nil {
		policy = NewPolicyBuilder().Build()
	}
	if len(token) == 0 || len(token) > policy.maxTokenSize {
		return nil, fmt.Errorf("%w: token size", ErrMalformedToken)
	}

	segments, err := tokenize(token)
	if err != nil {
		return nil, err
	}

	header, err := decodeHeader(segments[0].slice(token))
	if err != nil {
		return nil, err
	}
	if err := policy.validateHeader(header); err != nil {
		return nil, err
	}

	switch len(segments) {
	case jwsSegmentCount:
		if header.IsEncrypted() {
			return nil, fmt.Errorf("%w: enc", ErrInvalidHeader)
		}
		return readSignedToken(token, segments, header, policy)
	case jweSegmentCount:
		if !header.IsEncrypted() {
			return nil, ErrMissingEncryptionAlgorithm
		}
		return readEncryptedToken(token, segments, header, policy)
	}
	return nil, fmt.Errorf("%w: %d segments", ErrMalformedToken, len(segments))
}

func readSignedToken(token []byte, segments []segment, header *JwtHeader, policy *TokenValidationPolicy) (*Jwt, error) {
	alg := ParseSignatureAlgorithm(header.Alg)
	if alg == nil {
		return nil, fmt.Errorf("%w: alg", ErrInvalidHeader)
	}

	var signingKey Jwk
	if sig := policy.signature; sig != nil {
		signature, err := Base64Decode(segments[2].slice(token))
		if err != nil {
			return nil, fmt.Errorf("%w: signature", ErrSignatureValidation)
		}
		// The signature covers the ASCII "header.payload" concatenation.
		signingInput := token[segments[0].offset : segments[1].offset+segments[1].length]

		signingKey, err = verifySignature(alg, sig, header, signingInput, signature)
		if err != nil {
			return nil, err
		}
	}

	payloadRaw, err := Base64Decode(segments[1].slice(token))
	if err != nil {
		return nil, err
	}
	payload, err := parsePayload(payloadRaw)
	if err != nil {
		return nil, err
	}
	if err := policy.validateClaims(token, payload); err != nil {
		return nil, err
	}

	return &Jwt{Header: header, Payload: payload, SigningKey: signingKey}, nil
}

// verifySignature tries the candidate keys in provider order; the first key
// that verifies wins. "none" verifies without a key when the policy accepts
// it (validateHeader has already gated the algorithm set).
func verifySignature(alg *SignatureAlgorithm, sig *signatureRequirement, header *JwtHeader, signingInput, signature []byte) (Jwk, error) {
	if alg == SigNone {
		if len(signature) != 0 {
			return nil, ErrSignatureValidation
		}
		return nil, nil
	}

	keys := sig.keys.GetSigningKeys(header)
	if len(keys) == 0 {
		return nil, ErrSigningKeyNotFound
	}

	for _, key := range keys {
		signer, err := NewSigner(alg, key)
		if err != nil {
			continue
		}
		if signer.Verify(signingInput, signature) == nil {
			return key, nil
		}
	}
	return nil, ErrSignatureValidation
}

func readEncryptedToken(token []byte, segments []segment, header *JwtHeader, policy *TokenValidationPolicy) (*Jwt, error) {
	keyAlg := ParseKeyManagementAlgorithm(header.Alg)
	if keyAlg == nil {
		return nil, fmt.Errorf("%w: alg", ErrInvalidHeader)
	}
	enc := ParseEncryptionAlgorithm(header.Enc)
	if enc == nil {
		return nil, fmt.Errorf("%w: enc", ErrInvalidHeader)
	}

	encryptedKey, err := Base64Decode(segments[1].slice(token))
	if err != nil {
		return nil, err
	}
	nonce, err := Base64Decode(segments[2].slice(token))
	if err != nil {
		return nil, err
	}
	ciphertext, err := Base64Decode(segments[3].slice(token))
	if err != nil {
		return nil, err
	}
	tag, err := Base64Decode(segments[4].slice(token))
	if err != nil {
		return nil, err
	}

	if policy.decryptionKeys == nil {
		return nil, ErrEncryptionKeyNotFound
	}
	candidates := policy.decryptionKeys.GetEncryptionKeys(header)
	if len(candidates) == 0 {
		return nil, ErrEncryptionKeyNotFound
	}

	// The associated data is the ASCII form of the encoded header.
	aad := segments[0].slice(token)

	var plaintext []byte
	var decryptionKey Jwk
	for _, key := range candidates {
		wrapper, err := NewKeyWrapper(keyAlg, key)
		if err != nil {
			continue
		}
		cek, err := wrapper.UnwrapKey(encryptedKey, enc, header)
		if err != nil {
			continue
		}
		cipher, err := newContentCipher(enc, cek)
		if err != nil {
			continue
		}
		if p, err := cipher.decrypt(nonce, ciphertext, aad, tag); err == nil {
			plaintext, decryptionKey = p, key
			break
		}
	}
	if decryptionKey == nil {
		return nil, ErrDecryptionFailed
	}

	if header.Zip != "" {
		compressor := ParseCompressionAlgorithm(header.Zip)
		if compressor == nil {
			return nil, fmt.Errorf("%w: zip", ErrInvalidHeader)
		}
		if plaintext, err = compressor.Decompress(plaintext); err != nil {
			return nil, err
		}
	}

	outer := &Jwt{Header: header, EncryptionKey: decryptionKey}
	if policy.ignoreNestedToken {
		outer.Plaintext = plaintext
		return outer, nil
	}

	nested, err := TryReadToken(plaintext, policy)
	if err != nil {
		// Content that is not a token stays opaque when the policy imposes
		// no validation; with validation in force the failure stands.
		if errors.Is(err, ErrMalformedToken) && !policy.hasValidation {
			outer.Plaintext = plaintext
			return outer, nil
		}
		return nil, err
	}
	outer.Nested = nested
	return outer, nil
}
