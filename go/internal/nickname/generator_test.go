package nickname

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
)

func TestDefaultListLoads(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(g.names) != 40 {
		t.Fatalf("default list has %d names, want 40", len(g.names))
	}
}

func TestNextIsWordPlusSuffix(t *testing.T) {
	g, err := Parse([]byte("names: [Alpha, Beta]"), rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i := 0; i < 200; i++ {
		name := g.Next()
		var rest string
		switch {
		case strings.HasPrefix(name, "Alpha"):
			rest = strings.TrimPrefix(name, "Alpha")
		case strings.HasPrefix(name, "Beta"):
			rest = strings.TrimPrefix(name, "Beta")
		default:
			t.Fatalf("%q does not start with a listed word", name)
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 || n > 99 {
			t.Fatalf("%q has suffix %q, want 0-99", name, rest)
		}
	}
}

func TestNextIsDeterministicForSeed(t *testing.T) {
	a, _ := Parse(defaultNames, rand.New(rand.NewPCG(9, 9)))
	b, _ := Parse(defaultNames, rand.New(rand.NewPCG(9, 9)))
	for i := 0; i < 10; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("pick %d differs: %q vs %q", i, x, y)
		}
	}
}

func TestParseRejectsEmptyAndMalformed(t *testing.T) {
	if _, err := Parse([]byte("names: []"), nil); !errors.Is(err, ErrNoNames) {
		t.Fatalf("empty list: err = %v, want ErrNoNames", err)
	}
	if _, err := Parse([]byte("names: [unclosed"), nil); err == nil {
		t.Fatalf("malformed yaml parsed without error")
	}
}
