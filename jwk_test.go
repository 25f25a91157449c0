package jose

import (
	"bytes"
	"errors"
	"testing"
)

// RFC 7638 §3.1: thumbprint of the RFC 7517 example RSA key.
const rfc7638Modulus = "0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw"

func TestRsaThumbprintVector(t *testing.T) {
	key, err := ParseJwk([]byte(`{"kty":"RSA","n":"` + rfc7638Modulus + `","e":"AQAB","alg":"RS256","kid":"2011-04-29"}`))
	if err != nil {
		t.Fatal(err)
	}
	print, err := key.Thumbprint()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := Base64EncodeString(print), "NzbLsXh8uDCcd-6MNwXF4W_7noWXFZAfHkxZsRGC9Xs"; got != want {
		t.Fatalf("expected thumbprint %s but got %s", want, got)
	}
}

func TestThumbprintStability(t *testing.T) {
	raw := MustGenerateRandom(32)
	a, err := NewSymmetricJwk(raw)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSymmetricJwk(raw)
	if err != nil {
		t.Fatal(err)
	}
	// The kid is not a canonical member, it cannot move the thumbprint.
	b.SetKid("other")

	pa, _ := a.Thumbprint()
	pb, _ := b.Thumbprint()
	if !bytes.Equal(pa, pb) {
		t.Fatal("equal keys produced different thumbprints")
	}
	if len(pa) != 32 {
		t.Fatalf("expected a 32-byte thumbprint but got %d", len(pa))
	}

	c, err := NewSymmetricJwk(MustGenerateRandom(32))
	if err != nil {
		t.Fatal(err)
	}
	pc, _ := c.Thumbprint()
	if bytes.Equal(pa, pc) {
		t.Fatal("different keys produced the same thumbprint")
	}
}

func TestParseJwkInvariants(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing kty", `{"k":"AQAB"}`},
		{"oct without k", `{"kty":"oct"}`},
		{"RSA without e", `{"kty":"RSA","n":"` + rfc7638Modulus + `"}`},
		{"RSA without n", `{"kty":"RSA","e":"AQAB"}`},
		{"EC without y", `{"kty":"EC","crv":"P-256","x":"AQAB"}`},
		{"EC without crv", `{"kty":"EC","x":"AQAB","y":"AQAB"}`},
		{"alg mismatch", `{"kty":"oct","k":"AQAB","alg":"RS256"}`},
		{"RSA alg mismatch", `{"kty":"RSA","n":"` + rfc7638Modulus + `","e":"AQAB","alg":"HS256"}`},
	}
	for _, c := range cases {
		if _, err := ParseJwk([]byte(c.input)); err == nil {
			t.Fatalf("%s: expected an error", c.name)
		}
	}
}

func TestParseJwkSymmetric(t *testing.T) {
	key, err := ParseJwk([]byte(`{"kty":"oct","k":"GdaXeVyiJwKmz5LFhcbcng","kid":"k1","use":"sig"}`))
	if err != nil {
		t.Fatal(err)
	}
	sym, ok := key.(*SymmetricJwk)
	if !ok {
		t.Fatalf("expected *SymmetricJwk but got %T", key)
	}
	if sym.KeySizeBits() != 128 {
		t.Fatalf("expected 128 bits but got %d", sym.KeySizeBits())
	}
	if sym.Kid() != "k1" || sym.Use() != "sig" {
		t.Fatalf("unexpected attributes: kid=%q use=%q", sym.Kid(), sym.Use())
	}
}

func TestParseJwkECRoundTrip(t *testing.T) {
	private, err := generateEphemeralKey(curveByName("P-256"))
	if err != nil {
		t.Fatal(err)
	}
	key, err := NewECPrivateJwk(private)
	if err != nil {
		t.Fatal(err)
	}
	key.SetKid("ec1")

	encoded, err := key.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseJwk(encoded)
	if err != nil {
		t.Fatal(err)
	}
	ec, ok := parsed.(*ECJwk)
	if !ok {
		t.Fatalf("expected *ECJwk but got %T", parsed)
	}
	if !ec.IsPrivate() {
		t.Fatal("private material lost in round trip")
	}
	if ec.PublicKey().X.Cmp(private.X) != 0 || ec.PublicKey().Y.Cmp(private.Y) != 0 {
		t.Fatal("public point mismatch")
	}

	pa, _ := key.Thumbprint()
	pb, _ := parsed.Thumbprint()
	if !bytes.Equal(pa, pb) {
		t.Fatal("thumbprint changed across the round trip")
	}
}

func TestParseJwkUnsupportedKty(t *testing.T) {
	if _, err := ParseJwk([]byte(`{"kty":"OKP","crv":"Ed25519","x":"AQAB"}`)); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm but got: %v", err)
	}
}
