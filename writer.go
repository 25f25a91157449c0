package jose

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Descriptor is a closed set of token blueprints: JwsDescriptor for signed
// tokens and JweDescriptor for encrypted ones. WriteToken turns a
// descriptor into its compact form.
type Descriptor interface {
	encode() ([]byte, error)
}

// WriteToken serializes a descriptor into compact form. Any failure of the
// pipeline comes back as ErrTokenGeneration carrying the underlying cause.
func WriteToken(d Descriptor) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil descriptor", ErrTokenGeneration)
	}
	token, err := d.encode()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenGeneration, err)
	}
	return token, nil
}

// The writer's header cache maps exact header JSON to its base64url form,
// so repeated emissions with the same header skip the encode.
var writerHeaderCache, _ = lru.New[uint64, []byte](headerCacheSize)

func encodeHeaderCached(headerJSON []byte) []byte {
	key := xxhash.Sum64(headerJSON)
	if encoded, ok := writerHeaderCache.Get(key); ok {
		return encoded
	}
	encoded := Base64Encode(headerJSON)
	writerHeaderCache.Add(key, encoded)
	return encoded
}

// headerBuilder assembles header JSON with a deterministic member order:
// alg first, then enc, zip, kid, typ, cty, then the minted members sorted
// by name, then the extra members sorted by name. Deterministic bytes keep
// the cache effective.
type headerBuilder struct {
	buf bytes.Buffer
}

func (b *headerBuilder) addString(name, value string) {
	if value == "" {
		return
	}
	b.addRaw(name, appendJSONString(nil, value))
}

func (b *headerBuilder) addRaw(name string, value []byte) {
	if b.buf.Len() == 0 {
		b.buf.WriteByte('{')
	} else {
		b.buf.WriteByte(',')
	}
	b.buf.Write(appendJSONString(nil, name))
	b.buf.WriteByte(':')
	b.buf.Write(value)
}

func (b *headerBuilder) addAll(members map[string]any) error {
	if len(members) == 0 {
		return nil
	}
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value, err := json.Marshal(members[name])
		if err != nil {
			return err
		}
		b.addRaw(name, value)
	}
	return nil
}

func (b *headerBuilder) bytes() []byte {
	b.buf.WriteByte('}')
	return b.buf.Bytes()
}

func appendJSONString(dst []byte, s string) []byte {
	out, _ := json.Marshal(s) // a string never fails to marshal.
	return append(dst, out...)
}

// JwsDescriptor describes a signed token. Kid defaults to the signing
// key's; Claims may be any JSON-serializable value, a json.RawMessage to
// keep exact bytes, or a []byte holding ready JSON.
type JwsDescriptor struct {
	Algorithm  *SignatureAlgorithm
	SigningKey Jwk

	Kid string
	Typ string
	Cty string
	// ExtraHeader members are emitted after the registered ones,
	// sorted by name.
	ExtraHeader map[string]any

	Claims any
}

func (d *JwsDescriptor) headerJSON() ([]byte, error) {
	if d.Algorithm == nil {
		return nil, ErrUnsupportedAlgorithm
	}
	kid := d.Kid
	if kid == "" && d.SigningKey != nil {
		kid = d.SigningKey.Kid()
	}

	var b headerBuilder
	b.addString("alg", d.Algorithm.name)
	b.addString("kid", kid)
	b.addString("typ", d.Typ)
	b.addString("cty", d.Cty)
	if err := b.addAll(d.ExtraHeader); err != nil {
		return nil, err
	}
	return b.bytes(), nil
}

func (d *JwsDescriptor) payloadJSON() ([]byte, error) {
	switch claims := d.Claims.(type) {
	case json.RawMessage:
		return claims, nil
	case []byte:
		return claims, nil
	default:
		return json.Marshal(claims)
	}
}

func (d *JwsDescriptor) encode() ([]byte, error) {
	headerJSON, err := d.headerJSON()
	if err != nil {
		return nil, err
	}
	payloadJSON, err := d.payloadJSON()
	if err != nil {
		return nil, err
	}

	signer, err := NewSigner(d.Algorithm, d.SigningKey)
	if err != nil {
		return nil, err
	}

	encodedHeader := encodeHeaderCached(headerJSON)

	// One allocation sized from the exact encoded lengths; the signature
	// size is fixed by the algorithm and key so nothing moves mid-emit.
	sigSize := 0
	if d.SigningKey != nil {
		sigSize = d.Algorithm.signatureSize(d.SigningKey.KeySizeBits())
	}
	headerLen := len(encodedHeader)
	payloadLen := base64EncodedLen(len(payloadJSON))
	total := headerLen + 1 + payloadLen + 1 + base64EncodedLen(sigSize)

	buf := make([]byte, 0, total)
	buf = append(buf, encodedHeader...)
	buf = append(buf, '.')
	buf = b64AppendEncode(buf, payloadJSON)

	signature, err := signer.Sign(buf)
	if err != nil {
		return nil, err
	}
	buf = append(buf, '.')
	buf = b64AppendEncode(buf, signature)
	return buf, nil
}

func b64AppendEncode(dst, src []byte) []byte {
	n := len(dst)
	dst = append(dst, make([]byte, base64EncodedLen(len(src)))...)
	b64.Encode(dst[n:], src)
	return dst
}

// JweContent is the closed set of JWE payload variants: binary bytes, text,
// or a nested signed token owned by the enclosing descriptor.
type JweContent interface {
	content() (data []byte, cty string, err error)
}

// BinaryContent is an opaque binary JWE payload.
type BinaryContent []byte

func (c BinaryContent) content() ([]byte, string, error) { return c, "", nil }

// TextContent is a plaintext JWE payload.
type TextContent string

func (c TextContent) content() ([]byte, string, error) { return []byte(c), "", nil }

// NestedContent wraps a signed token inside the JWE, emitting cty "JWT".
type NestedContent struct {
	Descriptor *JwsDescriptor
}

func (c NestedContent) content() ([]byte, string, error) {
	if c.Descriptor == nil {
		return nil, "", fmt.Errorf("%w: nil nested descriptor", ErrTokenGeneration)
	}
	token, err := c.Descriptor.encode()
	return token, "JWT", err
}

// JweDescriptor describes an encrypted token.
type JweDescriptor struct {
	Algorithm  *KeyManagementAlgorithm
	Encryption *EncryptionAlgorithm
	// Compression is optional; Deflate emits "zip":"DEF".
	Compression Compressor

	EncryptionKey Jwk

	Kid         string
	Typ         string
	Cty         string
	ExtraHeader map[string]any

	Content JweContent
}

func (d *JweDescriptor) encode() ([]byte, error) {
	if d.Algorithm == nil || d.Encryption == nil {
		return nil, ErrUnsupportedAlgorithm
	}
	if d.Content == nil {
		return nil, fmt.Errorf("%w: no content", ErrTokenGeneration)
	}

	wrapper, err := NewKeyWrapper(d.Algorithm, d.EncryptionKey)
	if err != nil {
		return nil, err
	}
	cek, encryptedKey, minted, err := wrapper.WrapKey(d.Encryption)
	if err != nil {
		return nil, err
	}

	payload, contentCty, err := d.Content.content()
	if err != nil {
		return nil, err
	}
	cty := d.Cty
	if cty == "" {
		cty = contentCty
	}

	kid := d.Kid
	if kid == "" && d.EncryptionKey != nil {
		kid = d.EncryptionKey.Kid()
	}

	var b headerBuilder
	b.addString("alg", d.Algorithm.name)
	b.addString("enc", d.Encryption.name)
	if d.Compression != nil {
		b.addString("zip", d.Compression.Name())
	}
	b.addString("kid", kid)
	b.addString("typ", d.Typ)
	b.addString("cty", cty)
	if err := b.addAll(minted); err != nil {
		return nil, err
	}
	if err := b.addAll(d.ExtraHeader); err != nil {
		return nil, err
	}
	headerJSON := b.bytes()
	encodedHeader := encodeHeaderCached(headerJSON)

	if d.Compression != nil {
		if payload, err = d.Compression.Compress(nil, payload); err != nil {
			return nil, err
		}
	}

	nonce, err := GenerateRandom(d.Encryption.IVSize())
	if err != nil {
		return nil, err
	}

	cipher, err := newContentCipher(d.Encryption, cek)
	if err != nil {
		return nil, err
	}
	// The associated data is the ASCII form of the encoded header.
	ciphertext, tag, err := cipher.encrypt(nonce, payload, encodedHeader)
	if err != nil {
		return nil, err
	}

	// Exact five-segment preallocation.
	total := len(encodedHeader) + 4 +
		base64EncodedLen(len(encryptedKey)) +
		base64EncodedLen(len(nonce)) +
		base64EncodedLen(len(ciphertext)) +
		base64EncodedLen(len(tag))

	buf := make([]byte, 0, total)
	buf = append(buf, encodedHeader...)
	buf = append(buf, '.')
	buf = b64AppendEncode(buf, encryptedKey)
	buf = append(buf, '.')
	buf = b64AppendEncode(buf, nonce)
	buf = append(buf, '.')
	buf = b64AppendEncode(buf, ciphertext)
	buf = append(buf, '.')
	buf = b64AppendEncode(buf, tag)
	return buf, nil
}
