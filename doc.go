/*
Package jose reads, validates, writes and cryptographically protects JSON
Web Tokens in Compact Serialization form, both signed (JWS, RFC 7515) and
encrypted (JWE, RFC 7516), with the JOSE key formats JWK and JWKS
(RFC 7517) and the full RFC 7518 algorithm suite.

Reading goes through TryReadToken with an immutable TokenValidationPolicy:

	key, _ := jose.NewSymmetricJwk([]byte("a-32-byte-minimum-shared-secret!"))
	policy := jose.NewPolicyBuilder().
		RequireSignature(key, jose.HS256).
		RequireIssuer("https://issuer.example.com").
		RequireLifetime(time.Minute, true).
		Build()

	token, err := jose.TryReadToken(raw, policy)
	if err != nil {
		// errors.Is against jose.ErrSignatureValidation,
		// jose.ErrPolicyViolation, jose.ErrMalformedToken, ...
	}

Writing goes through descriptors:

	signed, err := jose.WriteToken(&jose.JwsDescriptor{
		Algorithm:  jose.HS256,
		SigningKey: key,
		Claims:     map[string]any{"sub": "alice"},
	})

	encrypted, err := jose.WriteToken(&jose.JweDescriptor{
		Algorithm:     jose.A128KW,
		Encryption:    jose.A128CBCHS256,
		EncryptionKey: wrapKey,
		Content:       jose.TextContent(`{"a":1}`),
	})

A JWE may nest a signed token (NestedContent); the reader recurses into the
decrypted payload and validates the inner token under the same policy unless
the policy says IgnoreNestedToken.

Readers, writers, policies and keys are safe for concurrent use. The
library never spawns goroutines of its own (the optional Blocklist GC loop
is opt-in), performs no I/O, and returns every classifiable failure as an
error value.
*/
package jose
