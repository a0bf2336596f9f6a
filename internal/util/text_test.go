package util

import (
	"math"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("We will cut the deficit, by 3% -- that's the plan!")
	want := []string{"we", "will", "cut", "the", "deficit", "by", "3", "that's", "the", "plan"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCosineSimilarity_Identical(t *testing.T) {
	sim := CosineSimilarity("taxes fund public services", "taxes fund public services")
	if math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("identical texts should score 1.0, got %v", sim)
	}
}

func TestCosineSimilarity_Disjoint(t *testing.T) {
	sim := CosineSimilarity("we will cut spending", "retirees deserve dignity")
	if sim != 0 {
		t.Errorf("disjoint texts should score 0, got %v", sim)
	}
}

func TestCosineSimilarity_Partial(t *testing.T) {
	sim := CosineSimilarity("the deficit is growing", "the deficit is shrinking")
	if sim <= 0.5 || sim >= 1.0 {
		t.Errorf("expected partial overlap in (0.5, 1.0), got %v", sim)
	}
}

func TestCosineSimilarity_Empty(t *testing.T) {
	if sim := CosineSimilarity("", "something"); sim != 0 {
		t.Errorf("empty text should score 0, got %v", sim)
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-0.5, 0}, {0, 0}, {0.42, 0.42}, {1, 1}, {3.7, 1},
	}
	for _, c := range cases {
		if got := Clamp01(c.in); got != c.want {
			t.Errorf("Clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRound3(t *testing.T) {
	if got := Round3(0.123456); got != 0.123 {
		t.Errorf("Round3(0.123456) = %v", got)
	}
	if got := Round3(0.9995); got != 1.0 {
		t.Errorf("Round3(0.9995) = %v", got)
	}
}
