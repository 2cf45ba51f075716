package cluster

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "iphone 16 released today", "iphone 16 released today", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
		// longest block "bcd" (3 of 8 total runes): 2*3/8
		{"overlapping block", "abcd", "bcde", 0.75},
		// single matching rune out of 4 total: 2*1/4
		{"half match", "ab", "ax", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "apple releases new iphone 16", "iphone 16 released today"
	if !almostEqual(Similarity(a, b), Similarity(b, a)) {
		t.Errorf("expected symmetric ratio: %v vs %v", Similarity(a, b), Similarity(b, a))
	}
}

func TestSimilarity_Unicode(t *testing.T) {
	// Rune-wise comparison: multi-byte characters count as single positions.
	got := Similarity("héllo", "héllo")
	if !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0 for identical unicode strings, got %v", got)
	}
}
