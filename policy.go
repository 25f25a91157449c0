package jose

import (
	"fmt"
	"time"
)

// DefaultMaxTokenSize is the default input cap of the read pipeline.
// Tokens larger than the cap are malformed; raise it through
// WithMaxTokenSize when bigger tokens are expected.
const DefaultMaxTokenSize = 16 * 1024

// HeaderValidator inspects the decoded header before any cryptography runs.
type HeaderValidator interface {
	ValidateHeader(header *JwtHeader) error
}

// HeaderValidatorFunc adapts a function to HeaderValidator.
type HeaderValidatorFunc func(header *JwtHeader) error

func (f HeaderValidatorFunc) ValidateHeader(header *JwtHeader) error { return f(header) }

// ClaimsValidator inspects the decoded claims of a JWS or of the innermost
// decrypted payload of a JWE. The raw compact bytes of the token being
// validated ride along for validators that key on the token itself,
// e.g. a revocation list for tokens without a "jti".
type ClaimsValidator interface {
	ValidateClaims(token []byte, payload *JwtPayload) error
}

// ClaimsValidatorFunc adapts a function to ClaimsValidator.
type ClaimsValidatorFunc func(token []byte, payload *JwtPayload) error

func (f ClaimsValidatorFunc) ValidateClaims(token []byte, payload *JwtPayload) error {
	return f(token, payload)
}

// TokenValidationPolicy is an immutable composition of validators built by a
// PolicyBuilder. Header validators run in registration order (the signature
// requirement counts as header validation), then claim validators run in
// registration order once the payload is decoded. A policy is safe for
// concurrent use.
type TokenValidationPolicy struct {
	headerValidators []HeaderValidator
	claimsValidators []ClaimsValidator

	signature      *signatureRequirement
	decryptionKeys KeyProvider

	maxTokenSize      int
	clockSkew         time.Duration
	checkLifetime     bool
	requireExp        bool
	ignoreNestedToken bool
	hasValidation     bool
}

type signatureRequirement struct {
	keys KeyProvider
	// algorithms restricts the acceptable "alg" members; nil accepts every
	// supported signature algorithm except "none".
	algorithms map[string]*SignatureAlgorithm
}

// MaxTokenSize returns the input cap in bytes.
func (p *TokenValidationPolicy) MaxTokenSize() int { return p.maxTokenSize }

// ClockSkew returns the tolerated clock difference for lifetime checks.
func (p *TokenValidationPolicy) ClockSkew() time.Duration { return p.clockSkew }

// IgnoresNestedToken reports whether decrypted JWE content is returned raw
// instead of recursing into the reader.
func (p *TokenValidationPolicy) IgnoresNestedToken() bool { return p.ignoreNestedToken }

// HasValidation reports whether any requirement was registered.
func (p *TokenValidationPolicy) HasValidation() bool { return p.hasValidation }

func (p *TokenValidationPolicy) validateHeader(header *JwtHeader) error {
	if sig := p.signature; sig != nil && !header.IsEncrypted() {
		alg := ParseSignatureAlgorithm(header.Alg)
		if alg == nil {
			return fmt.Errorf("%w: alg", ErrInvalidHeader)
		}
		if sig.algorithms != nil {
			if _, ok := sig.algorithms[header.Alg]; !ok {
				return fmt.Errorf("%w: alg", ErrInvalidHeader)
			}
		} else if alg == SigNone {
			return fmt.Errorf("%w: alg", ErrInvalidHeader)
		}
	}

	for _, v := range p.headerValidators {
		if err := v.ValidateHeader(header); err != nil {
			return err
		}
	}
	return nil
}

func (p *TokenValidationPolicy) validateClaims(token []byte, payload *JwtPayload) error {
	if p.checkLifetime {
		if err := p.validateLifetime(payload); err != nil {
			return err
		}
	}
	for _, v := range p.claimsValidators {
		if err := v.ValidateClaims(token, payload); err != nil {
			return err
		}
	}
	return nil
}

func (p *TokenValidationPolicy) validateLifetime(payload *JwtPayload) error {
	now := Clock().Unix()
	skew := int64(p.clockSkew / time.Second)

	if p.requireExp && !payload.hasExp {
		return fmt.Errorf("%w: exp", ErrPolicyViolation)
	}
	if payload.hasExp && now > payload.Exp+skew {
		return fmt.Errorf("%w: exp", ErrPolicyViolation)
	}
	if payload.hasNbf && now < payload.Nbf-skew {
		return fmt.Errorf("%w: nbf", ErrPolicyViolation)
	}
	if payload.hasIat && now < payload.Iat-skew {
		return fmt.Errorf("%w: iat", ErrPolicyViolation)
	}
	return nil
}

// singleKeyProvider adapts one key to KeyProvider.
type singleKeyProvider struct{ key Jwk }

func (s singleKeyProvider) GetSigningKeys(*JwtHeader) []Jwk    { return []Jwk{s.key} }
func (s singleKeyProvider) GetEncryptionKeys(*JwtHeader) []Jwk { return []Jwk{s.key} }

// PolicyBuilder assembles a TokenValidationPolicy. The zero builder is not
// usable; start from NewPolicyBuilder.
type PolicyBuilder struct {
	policy TokenValidationPolicy
}

// NewPolicyBuilder returns a builder with the default token size cap and no
// validation requirements.
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{policy: TokenValidationPolicy{maxTokenSize: DefaultMaxTokenSize}}
}

// RequireSignature demands a valid signature verifiable with "key".
// The optional algorithm list restricts the acceptable "alg" members.
func (b *PolicyBuilder) RequireSignature(key Jwk, algs ...*SignatureAlgorithm) *PolicyBuilder {
	return b.RequireSignatureWithProvider(singleKeyProvider{key: key}, algs...)
}

// RequireSignatureWithProvider demands a valid signature verifiable with a
// key yielded by the provider. Keys are tried in provider order; the first
// success wins.
func (b *PolicyBuilder) RequireSignatureWithProvider(provider KeyProvider, algs ...*SignatureAlgorithm) *PolicyBuilder {
	req := &signatureRequirement{keys: provider}
	if len(algs) > 0 {
		req.algorithms = make(map[string]*SignatureAlgorithm, len(algs))
		for _, a := range algs {
			req.algorithms[a.name] = a
		}
	}
	b.policy.signature = req
	b.policy.hasValidation = true
	return b
}

// AcceptUnsecured allows tokens with "alg":"none" and an empty signature.
// Without it the policy rejects unsecured tokens whenever a signature
// requirement exists.
func (b *PolicyBuilder) AcceptUnsecured() *PolicyBuilder {
	if b.policy.signature == nil {
		b.policy.signature = &signatureRequirement{keys: singleKeyProvider{}}
	}
	if b.policy.signature.algorithms == nil {
		// Keep every supported algorithm acceptable alongside "none".
		b.policy.signature.algorithms = make(map[string]*SignatureAlgorithm, len(signatureAlgorithms))
		for name, a := range signatureAlgorithms {
			b.policy.signature.algorithms[name] = a
		}
	}
	b.policy.signature.algorithms[SigNone.name] = SigNone
	return b
}

// WithDecryptionKey registers the key used to unwrap and decrypt JWEs.
func (b *PolicyBuilder) WithDecryptionKey(key Jwk) *PolicyBuilder {
	return b.WithDecryptionKeysFrom(singleKeyProvider{key: key})
}

// WithDecryptionKeysFrom registers a provider of JWE decryption keys;
// candidates are tried in provider order.
func (b *PolicyBuilder) WithDecryptionKeysFrom(provider KeyProvider) *PolicyBuilder {
	b.policy.decryptionKeys = provider
	return b
}

// RequireIssuer demands an exact "iss" match.
func (b *PolicyBuilder) RequireIssuer(issuer string) *PolicyBuilder {
	return b.AddClaimsValidator(ClaimsValidatorFunc(func(_ []byte, p *JwtPayload) error {
		if p.Iss != issuer {
			return fmt.Errorf("%w: iss", ErrPolicyViolation)
		}
		return nil
	}))
}

// RequireAudience demands that at least one of the token's audiences is in
// the accepted set.
func (b *PolicyBuilder) RequireAudience(audiences ...string) *PolicyBuilder {
	accepted := make(map[string]struct{}, len(audiences))
	for _, a := range audiences {
		accepted[a] = struct{}{}
	}
	return b.AddClaimsValidator(ClaimsValidatorFunc(func(_ []byte, p *JwtPayload) error {
		for _, aud := range p.Aud {
			if _, ok := accepted[aud]; ok {
				return nil
			}
		}
		return fmt.Errorf("%w: aud", ErrPolicyViolation)
	}))
}

// RequireLifetime validates "exp", "nbf" and "iat" against the clock.
// A non-zero clockSkew sets the tolerance, overriding any earlier
// WithClockSkew; pass zero to keep the configured one. When requireExp is
// set, a missing "exp" claim is itself a violation. The lifetime check runs
// before the other claim validators.
func (b *PolicyBuilder) RequireLifetime(clockSkew time.Duration, requireExp bool) *PolicyBuilder {
	if clockSkew > 0 {
		b.policy.clockSkew = clockSkew
	}
	b.policy.checkLifetime = true
	b.policy.requireExp = requireExp
	b.policy.hasValidation = true
	return b
}

// WithClockSkew sets the tolerated clock difference for lifetime checks
// without demanding them; combine with RequireLifetime to enforce.
func (b *PolicyBuilder) WithClockSkew(clockSkew time.Duration) *PolicyBuilder {
	b.policy.clockSkew = clockSkew
	return b
}

// RequireClaim demands the presence of a claim, registered or custom.
func (b *PolicyBuilder) RequireClaim(name string) *PolicyBuilder {
	return b.AddClaimsValidator(ClaimsValidatorFunc(func(_ []byte, p *JwtPayload) error {
		if !p.Has(name) {
			return fmt.Errorf("%w: %s", ErrPolicyViolation, name)
		}
		return nil
	}))
}

// AddHeaderValidator appends a custom header validator.
func (b *PolicyBuilder) AddHeaderValidator(v HeaderValidator) *PolicyBuilder {
	b.policy.headerValidators = append(b.policy.headerValidators, v)
	b.policy.hasValidation = true
	return b
}

// AddClaimsValidator appends a custom claims validator.
func (b *PolicyBuilder) AddClaimsValidator(v ClaimsValidator) *PolicyBuilder {
	b.policy.claimsValidators = append(b.policy.claimsValidators, v)
	b.policy.hasValidation = true
	return b
}

// IgnoreNestedToken makes the reader return decrypted JWE content raw
// instead of recursing into it.
func (b *PolicyBuilder) IgnoreNestedToken() *PolicyBuilder {
	b.policy.ignoreNestedToken = true
	return b
}

// WithMaxTokenSize overrides the input cap in bytes.
func (b *PolicyBuilder) WithMaxTokenSize(n int) *PolicyBuilder {
	if n > 0 {
		b.policy.maxTokenSize = n
	}
	return b
}

// Build freezes and returns the policy. The builder can keep composing;
// the returned policy never changes.
func (b *PolicyBuilder) Build() *TokenValidationPolicy {
	frozen := b.policy
	frozen.headerValidators = append([]HeaderValidator(nil), b.policy.headerValidators...)
	frozen.claimsValidators = append([]ClaimsValidator(nil), b.policy.claimsValidators...)
	return &frozen
}
