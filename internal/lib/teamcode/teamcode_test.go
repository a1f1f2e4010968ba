package teamcode

import (
	"strings"
	"testing"
)

func TestGenerateFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := Generate()

		if len(code) != Length {
			t.Fatalf("expected code of length %d, got %q", Length, code)
		}

		for _, c := range code {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("code %q contains character %q outside alphabet", code, c)
			}
		}
	}
}

func TestGenerateVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[Generate()] = true
	}

	// 36^6 possible codes; 50 draws collapsing to one value means the
	// generator is broken, not unlucky.
	if len(seen) < 2 {
		t.Fatalf("expected varied codes, got %d distinct values", len(seen))
	}
}
