package jose

import (
	"errors"
	"testing"
)

func TestTokenizeSegments(t *testing.T) {
	cases := []struct {
		input    string
		segments int
	}{
		{"a.b.c", 3},
		{"a.b.", 3}, // empty signature segment is structurally fine.
		{"a..c", 3},
		{"a.b.c.d.e", 5},
		{"a..c.d.e", 5}, // empty encrypted key, alg "dir".
		{"a.b.c.d", 4},  // rejected later by the pipeline, not the scanner.
	}
	for _, c := range cases {
		segments, err := tokenize([]byte(c.input))
		if err != nil {
			t.Fatalf("%q: %v", c.input, err)
		}
		if len(segments) != c.segments {
			t.Fatalf("%q: expected %d segments but got %d", c.input, c.segments, len(segments))
		}
	}
}

func TestTokenizeMalformed(t *testing.T) {
	for _, input := range []string{
		"",
		"a",
		"a.b",
		"a.b.c.d.e.f",
		".b.c", // empty header segment.
	} {
		if _, err := tokenize([]byte(input)); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("%q: expected ErrMalformedToken but got: %v", input, err)
		}
	}
}

func TestTokenizeOffsets(t *testing.T) {
	token := []byte("aa.bbb.c")
	segments, err := tokenize(token)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"aa", "bbb", "c"} {
		if got := string(segments[i].slice(token)); got != want {
			t.Fatalf("segment %d: expected %q but got %q", i, want, got)
		}
	}
}
