package jose

import (
	"bytes"
	"errors"
	"testing"

	"github.com/goccy/go-json"
)

func TestJwsHeaderBuilding(t *testing.T) {
	key := hs256TestKey(t)

	d := &JwsDescriptor{Algorithm: HS256, SigningKey: key, Claims: map[string]string{}}
	headerJSON, err := d.headerJSON()
	if err != nil {
		t.Fatal(err)
	}
	if expected := `{"alg":"HS256"}`; string(headerJSON) != expected {
		t.Fatalf("expected header %s but got: %s", expected, headerJSON)
	}

	key.SetKid("key-1")
	d = &JwsDescriptor{Algorithm: HS256, SigningKey: key, Typ: "JWT", Claims: map[string]string{}}
	headerJSON, err = d.headerJSON()
	if err != nil {
		t.Fatal(err)
	}
	if expected := `{"alg":"HS256","kid":"key-1","typ":"JWT"}`; string(headerJSON) != expected {
		t.Fatalf("expected header %s but got: %s", expected, headerJSON)
	}
	key.SetKid("")

	d = &JwsDescriptor{
		Algorithm:   HS256,
		SigningKey:  key,
		ExtraHeader: map[string]any{"x5t": "thumb", "crit": []string{"x5t"}},
		Claims:      map[string]string{},
	}
	headerJSON, err = d.headerJSON()
	if err != nil {
		t.Fatal(err)
	}
	// Extra members come after the registered ones, sorted by name.
	if expected := `{"alg":"HS256","crit":["x5t"],"x5t":"thumb"}`; string(headerJSON) != expected {
		t.Fatalf("expected header %s but got: %s", expected, headerJSON)
	}
}

func TestWriterHeaderCache(t *testing.T) {
	headerJSON := []byte(`{"alg":"HS256","kid":"cache-test"}`)
	first := encodeHeaderCached(headerJSON)
	second := encodeHeaderCached(headerJSON)
	if !bytes.Equal(first, second) {
		t.Fatal("cached encoding differs")
	}

	decoded, err := Base64Decode(first)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, headerJSON) {
		t.Fatalf("expected %s but got: %s", headerJSON, decoded)
	}
}

func TestWriteTokenWrapsFailures(t *testing.T) {
	_, err := WriteToken(&JwsDescriptor{Algorithm: HS256, SigningKey: nil, Claims: map[string]string{}})
	if !errors.Is(err, ErrTokenGeneration) || !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrTokenGeneration wrapping ErrInvalidKey but got: %v", err)
	}

	if _, err := WriteToken(nil); !errors.Is(err, ErrTokenGeneration) {
		t.Fatalf("expected ErrTokenGeneration but got: %v", err)
	}

	key, err := NewSymmetricJwk(MustGenerateRandom(16))
	if err != nil {
		t.Fatal(err)
	}
	_, err = WriteToken(&JweDescriptor{Algorithm: A128KW, Encryption: A128CBCHS256, EncryptionKey: key})
	if !errors.Is(err, ErrTokenGeneration) {
		t.Fatalf("expected ErrTokenGeneration but got: %v", err)
	}
}

func TestJweHeaderCarriesZipAndKid(t *testing.T) {
	key, err := NewSymmetricJwk(MustGenerateRandom(32))
	if err != nil {
		t.Fatal(err)
	}
	key.SetKid("enc-1")

	token, err := WriteToken(&JweDescriptor{
		Algorithm:     Dir,
		Encryption:    A256GCM,
		Compression:   Deflate,
		EncryptionKey: key,
		Content:       TextContent("payload"),
	})
	if err != nil {
		t.Fatal(err)
	}

	headerRaw, err := Base64Decode(bytes.Split(token, []byte("."))[0])
	if err != nil {
		t.Fatal(err)
	}
	header, err := parseHeader(headerRaw)
	if err != nil {
		t.Fatal(err)
	}
	if header.Alg != "dir" || header.Enc != "A256GCM" || header.Zip != "DEF" || header.Kid != "enc-1" {
		t.Fatalf("unexpected header: %+v", header)
	}
}

func TestParseEmitRoundTripPreservesClaims(t *testing.T) {
	key := hs256TestKey(t)
	claims := map[string]any{
		"iss":    "issuer",
		"sub":    "subject",
		"aud":    []string{"a", "b"},
		"exp":    float64(4102444800),
		"custom": map[string]any{"nested": true},
	}
	raw, err := json.Marshal(claims)
	if err != nil {
		t.Fatal(err)
	}

	token, err := WriteToken(&JwsDescriptor{
		Algorithm:  HS256,
		SigningKey: key,
		Claims:     json.RawMessage(raw),
	})
	if err != nil {
		t.Fatal(err)
	}

	policy := NewPolicyBuilder().RequireSignature(key).Build()
	jwt, err := TryReadToken(token, policy)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := jwt.Payload.Claims(&got); err != nil {
		t.Fatal(err)
	}
	if !compareMap(claims, got) {
		t.Fatalf("claims didn't match, got: %#v", got)
	}
	if len(jwt.Payload.Aud) != 2 || jwt.Payload.Aud[0] != "a" || jwt.Payload.Aud[1] != "b" {
		t.Fatalf("unexpected aud: %v", jwt.Payload.Aud)
	}
	if jwt.Payload.Exp != 4102444800 {
		t.Fatalf("unexpected exp: %d", jwt.Payload.Exp)
	}

	custom, ok := jwt.Payload.Get("custom")
	if !ok {
		t.Fatal("custom claim not preserved")
	}
	if string(custom) != `{"nested":true}` {
		t.Fatalf("unexpected custom claim: %s", custom)
	}
}

func TestHMACSignatureAlgorithmsRoundTrip(t *testing.T) {
	for _, alg := range []*SignatureAlgorithm{HS256, HS384, HS512} {
		k, err := NewSymmetricJwk(MustGenerateRandom(64))
		if err != nil {
			t.Fatal(err)
		}

		token, err := WriteToken(&JwsDescriptor{Algorithm: alg, SigningKey: k, Claims: map[string]string{"sub": "s"}})
		if err != nil {
			t.Fatalf("[%s] %v", alg.Name(), err)
		}

		policy := NewPolicyBuilder().RequireSignature(k, alg).Build()
		jwt, err := TryReadToken(token, policy)
		if err != nil {
			t.Fatalf("[%s] %v", alg.Name(), err)
		}
		if jwt.Payload.Sub != "s" {
			t.Fatalf("[%s] unexpected subject: %q", alg.Name(), jwt.Payload.Sub)
		}
	}
}
