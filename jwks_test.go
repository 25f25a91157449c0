package jose

import "testing"

func TestParseJwksAndLookup(t *testing.T) {
	set, err := ParseJwks([]byte(`{"keys":[
		{"kty":"oct","k":"GdaXeVyiJwKmz5LFhcbcng","kid":"a"},
		{"kty":"oct","k":"R9MyWaEoyiMYViVWo8Fk4Q","kid":"b","use":"enc"},
		{"kty":"RSA","n":"` + rfc7638Modulus + `","e":"AQAB","kid":"c","alg":"RS256"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 3 {
		t.Fatalf("expected 3 keys but got %d", set.Len())
	}

	if keys := set.Lookup("a"); len(keys) != 1 {
		t.Fatalf("expected 1 key for kid a but got %d", len(keys))
	}
	if keys := set.Lookup("missing"); len(keys) != 0 {
		t.Fatalf("expected no keys for unknown kid but got %d", len(keys))
	}
}

func TestJwksRefreshIsAtomic(t *testing.T) {
	k1, err := NewSymmetricJwk(MustGenerateRandom(32))
	if err != nil {
		t.Fatal(err)
	}
	k1.SetKid("one")

	set := NewJwks(k1)
	if set.Len() != 1 {
		t.Fatalf("expected 1 key but got %d", set.Len())
	}

	k2, err := NewSymmetricJwk(MustGenerateRandom(32))
	if err != nil {
		t.Fatal(err)
	}
	k2.SetKid("two")

	set.Refresh([]Jwk{k2})
	if set.Len() != 1 {
		t.Fatalf("expected 1 key but got %d", set.Len())
	}
	if len(set.Lookup("one")) != 0 {
		t.Fatal("stale kid survived the refresh")
	}
	if len(set.Lookup("two")) != 1 {
		t.Fatal("fresh kid missing after the refresh")
	}
}

func TestJwksKeySelection(t *testing.T) {
	sig, err := NewSymmetricJwk(MustGenerateRandom(32))
	if err != nil {
		t.Fatal(err)
	}
	sig.use = "sig"

	enc, err := NewSymmetricJwk(MustGenerateRandom(32))
	if err != nil {
		t.Fatal(err)
	}
	enc.use = "enc"

	rsaKey, err := ParseJwk([]byte(`{"kty":"RSA","n":"` + rfc7638Modulus + `","e":"AQAB"}`))
	if err != nil {
		t.Fatal(err)
	}

	set := NewJwks(sig, enc, rsaKey)

	// Without a kid every algorithm-compatible, use-compatible key is a
	// candidate, in set order.
	keys := set.GetSigningKeys(&JwtHeader{Alg: "HS256"})
	if len(keys) != 1 || keys[0] != Jwk(sig) {
		t.Fatalf("expected the oct signing key but got: %v", keys)
	}

	keys = set.GetSigningKeys(&JwtHeader{Alg: "RS256"})
	if len(keys) != 1 || keys[0] != rsaKey {
		t.Fatalf("expected the RSA key but got: %v", keys)
	}

	// A kid match short-circuits the filtering.
	sig.SetKid("k")
	set.Refresh([]Jwk{sig, enc, rsaKey})
	keys = set.GetSigningKeys(&JwtHeader{Alg: "HS256", Kid: "k"})
	if len(keys) != 1 || keys[0] != Jwk(sig) {
		t.Fatalf("expected the kid match but got: %v", keys)
	}

	// Encryption selection honors "use":"enc".
	keys = set.GetEncryptionKeys(&JwtHeader{Alg: "dir", Enc: "A256GCM"})
	if len(keys) != 1 || keys[0] != Jwk(enc) {
		t.Fatalf("expected the enc key but got: %v", keys)
	}
}
