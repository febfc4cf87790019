// Package plagiarism implements code similarity scoring and batch
// plagiarism detection over exam submissions.
package plagiarism

import (
	"math"
	"regexp"
	"strings"
)

var (
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	hashCommentRe  = regexp.MustCompile(`#[^\n]*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// Normalize strips comments and whitespace and lowercases the code, so
// renamed-but-identical copies still collide.
func Normalize(code string) string {
	normalized := blockCommentRe.ReplaceAllString(code, "")
	normalized = lineCommentRe.ReplaceAllString(normalized, "")
	normalized = hashCommentRe.ReplaceAllString(normalized, "")
	normalized = whitespaceRe.ReplaceAllString(normalized, "")
	return strings.ToLower(normalized)
}

// Levenshtein computes the edit distance between two strings with the
// classic dynamic program, O(len(a)*len(b)) time, two-row space.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity scores two strings on a 0..100 scale: 0 when either is
// empty (two empty strings carry no signal, so they never match), 100
// for identical strings, otherwise the edit distance relative to the
// longer string, rounded to two decimals.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	longer := len([]rune(a))
	if l := len([]rune(b)); l > longer {
		longer = l
	}
	distance := Levenshtein(a, b)
	return round2(float64(longer-distance) / float64(longer) * 100)
}

// Compare scores two pieces of code, optionally normalizing first.
func Compare(a, b string, normalize bool) float64 {
	if normalize {
		return Similarity(Normalize(a), Normalize(b))
	}
	return Similarity(a, b)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
