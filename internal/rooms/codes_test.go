package rooms

import (
	"strings"
	"testing"
)

func TestGenerateCode_AlphabetAndLength(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode() error: %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), codeLength)
		}
		for _, ch := range code {
			if !strings.ContainsRune(codeAlphabet, ch) {
				t.Errorf("code %q contains %q, not in the alphabet", code, ch)
			}
		}
	}
}

func TestGenerateCode_ExcludesAmbiguousRunes(t *testing.T) {
	for _, ch := range "0OIL1" {
		if strings.ContainsRune(codeAlphabet, ch) {
			t.Errorf("alphabet contains ambiguous rune %q", ch)
		}
	}
}

func TestGenerateCode_RarelyCollides(t *testing.T) {
	seen := make(map[string]bool)
	collisions := 0
	for i := 0; i < 1000; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatal(err)
		}
		if seen[code] {
			collisions++
		}
		seen[code] = true
	}
	// 31^4 combinations; a thousand draws colliding often means the
	// randomness is broken.
	if collisions > 5 {
		t.Errorf("collisions = %d out of 1000", collisions)
	}
}
