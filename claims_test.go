package jose

import (
	"errors"
	"testing"
)

func TestParsePayloadRegisteredClaims(t *testing.T) {
	payload, err := parsePayload([]byte(`{
		"iss":"issuer","sub":"subject","jti":"id-1",
		"aud":["a","b"],"exp":4102444800,"nbf":1,"iat":1516239022,
		"scope":"read write"}`))
	if err != nil {
		t.Fatal(err)
	}
	if payload.Iss != "issuer" || payload.Sub != "subject" || payload.Jti != "id-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if len(payload.Aud) != 2 || payload.Aud[0] != "a" {
		t.Fatalf("unexpected aud: %v", payload.Aud)
	}
	if payload.Exp != 4102444800 || payload.Nbf != 1 || payload.Iat != 1516239022 {
		t.Fatalf("unexpected dates: %d %d %d", payload.Exp, payload.Nbf, payload.Iat)
	}
	if !payload.Has("exp") || !payload.Has("scope") || payload.Has("missing") {
		t.Fatal("presence reporting broken")
	}
	if v, ok := payload.Get("scope"); !ok || string(v) != `"read write"` {
		t.Fatalf("unexpected scope: %s", v)
	}
}

func TestParsePayloadAudienceString(t *testing.T) {
	payload, err := parsePayload([]byte(`{"aud":"single"}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Aud) != 1 || payload.Aud[0] != "single" {
		t.Fatalf("unexpected aud: %v", payload.Aud)
	}
}

func TestParsePayloadRejectsNonNumericDates(t *testing.T) {
	for _, input := range []string{
		`{"exp":"soon"}`,
		`{"nbf":[1]}`,
		`{"iat":true}`,
		`not json`,
	} {
		if _, err := parsePayload([]byte(input)); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("%q: expected ErrMalformedToken but got: %v", input, err)
		}
	}
}

func TestPayloadZeroValuedDatesArePresent(t *testing.T) {
	payload, err := parsePayload([]byte(`{"exp":0}`))
	if err != nil {
		t.Fatal(err)
	}
	if !payload.Has("exp") {
		t.Fatal("exp=0 reported absent")
	}
}
