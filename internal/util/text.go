package util

import (
	"math"
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it into word tokens, dropping
// punctuation. Used for bag-of-words comparisons between claim texts.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// TermCounts builds a term-frequency map from text
func TermCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
	return counts
}

// CosineSimilarity computes the bag-of-words cosine similarity between two
// texts. Returns 0 when either text has no tokens.
func CosineSimilarity(a, b string) float64 {
	ca := TermCounts(a)
	cb := TermCounts(b)
	if len(ca) == 0 || len(cb) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for term, n := range ca {
		normA += float64(n * n)
		if m, ok := cb[term]; ok {
			dot += float64(n * m)
		}
	}
	for _, m := range cb {
		normB += float64(m * m)
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Clamp01 bounds a value to [0,1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Round3 rounds to three decimal places, the precision used for reported
// scores so output is reproducible across passes.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
