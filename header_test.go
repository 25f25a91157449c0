package jose

import (
	"errors"
	"testing"
)

func TestParseHeaderKnownMembers(t *testing.T) {
	header, err := parseHeader([]byte(`{
		"alg":"RS256","kid":"k1","typ":"JWT","cty":"JWT",
		"crit":["exp"],"x5t":"thumb","jku":"https://example.com/jwks"}`))
	if err != nil {
		t.Fatal(err)
	}
	if header.Alg != "RS256" || header.Kid != "k1" || header.Typ != "JWT" || header.Cty != "JWT" {
		t.Fatalf("unexpected header: %+v", header)
	}
	if len(header.Crit) != 1 || header.Crit[0] != "exp" {
		t.Fatalf("unexpected crit: %v", header.Crit)
	}

	// Non-interned members stay readable as raw JSON.
	if v, ok := header.Get("x5t"); !ok || string(v) != `"thumb"` {
		t.Fatalf("unexpected x5t: %s", v)
	}
	if _, ok := header.Get("jku"); !ok {
		t.Fatal("jku not preserved")
	}
	if _, ok := header.Get("missing"); ok {
		t.Fatal("phantom member")
	}
}

func TestParseHeaderFailures(t *testing.T) {
	cases := []struct {
		input string
		want  error
	}{
		{`not json`, ErrMalformedToken},
		{`{"typ":"JWT"}`, ErrInvalidHeader},  // missing alg.
		{`{"alg":123}`, ErrInvalidHeader},    // alg must be a string.
		{`{"alg":"HS256","crit":"x"}`, ErrInvalidHeader}, // crit must be an array.
	}
	for _, c := range cases {
		if _, err := parseHeader([]byte(c.input)); !errors.Is(err, c.want) {
			t.Fatalf("%q: expected %v but got: %v", c.input, c.want, err)
		}
	}
}

func TestRegisteredHeaderNames(t *testing.T) {
	// The registry is bit-exact; the interned subset must be a part of it.
	registered := make(map[string]bool, len(registeredHeaderNames))
	for _, name := range registeredHeaderNames {
		registered[name] = true
	}
	for _, name := range []string{"alg", "enc", "zip", "kid", "typ", "cty", "crit", "epk", "x5t#S256"} {
		if !registered[name] {
			t.Fatalf("%q missing from the header registry", name)
		}
	}
}

func TestHeaderEncryptedDetection(t *testing.T) {
	jws, err := parseHeader([]byte(`{"alg":"HS256"}`))
	if err != nil {
		t.Fatal(err)
	}
	if jws.IsEncrypted() {
		t.Fatal("JWS header reported as encrypted")
	}

	jwe, err := parseHeader([]byte(`{"alg":"dir","enc":"A128GCM"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !jwe.IsEncrypted() {
		t.Fatal("JWE header not reported as encrypted")
	}
}
