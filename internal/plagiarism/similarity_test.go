package plagiarism_test

import (
	"testing"

	"examjudge/internal/plagiarism"
)

func TestLevenshtein(t *testing.T) {
	t.Parallel()
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"flaw", "lawn", 2},
	}
	for _, tc := range cases {
		if got := plagiarism.Levenshtein(tc.a, tc.b); got != tc.want {
			t.Fatalf("Levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
		if got := plagiarism.Levenshtein(tc.b, tc.a); got != tc.want {
			t.Fatalf("Levenshtein(%q, %q) = %d, want %d", tc.b, tc.a, got, tc.want)
		}
	}
}

func TestSimilarityIdentical(t *testing.T) {
	t.Parallel()
	if got := plagiarism.Similarity("return a+b", "return a+b"); got != 100 {
		t.Fatalf("identical code similarity = %v, want 100", got)
	}
}

func TestSimilarityEmpty(t *testing.T) {
	t.Parallel()
	if got := plagiarism.Similarity("", "return a+b"); got != 0 {
		t.Fatalf("empty vs code similarity = %v, want 0", got)
	}
	if got := plagiarism.Similarity("return a+b", ""); got != 0 {
		t.Fatalf("code vs empty similarity = %v, want 0", got)
	}
	// The empty check wins over the identity check: two empty strings
	// must never count as a match.
	if got := plagiarism.Similarity("", ""); got != 0 {
		t.Fatalf("empty vs empty similarity = %v, want 0", got)
	}
}

func TestCompareAllCommentCode(t *testing.T) {
	t.Parallel()
	// Both normalize to the empty string; that must not read as a
	// 100%-similar pair.
	a := "// just a comment"
	b := "# totally different comment here"
	if got := plagiarism.Compare(a, b, true); got != 0 {
		t.Fatalf("all-comment compare = %v, want 0", got)
	}
}

func TestSimilarityRatio(t *testing.T) {
	t.Parallel()
	// distance 3 over longer length 7 = 57.14.
	got := plagiarism.Similarity("kitten", "sitting")
	if got != 57.14 {
		t.Fatalf("similarity = %v, want 57.14", got)
	}
	if sym := plagiarism.Similarity("sitting", "kitten"); sym != got {
		t.Fatalf("similarity not symmetric: %v vs %v", got, sym)
	}
}

func TestNormalizeStripsCommentsAndWhitespace(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "line comments",
			in:   "int a = 1; // counter\nint b = 2;",
			want: "inta=1;intb=2;",
		},
		{
			name: "block comments",
			in:   "int a = 1; /* multi\nline */ int b = 2;",
			want: "inta=1;intb=2;",
		},
		{
			name: "hash comments",
			in:   "x = 1  # python style\ny = 2",
			want: "x=1y=2",
		},
		{
			name: "case folding",
			in:   "Return SUM",
			want: "returnsum",
		},
	}
	for _, tc := range cases {
		if got := plagiarism.Normalize(tc.in); got != tc.want {
			t.Fatalf("%s: Normalize(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestCompareNormalized(t *testing.T) {
	t.Parallel()
	a := "int sum(int a, int b) { return a + b; } // add"
	b := "INT SUM(INT A, INT B) {RETURN A+B;}"
	if got := plagiarism.Compare(a, b, true); got != 100 {
		t.Fatalf("normalized compare = %v, want 100", got)
	}
	if got := plagiarism.Compare(a, b, false); got == 100 {
		t.Fatalf("raw compare should not be 100 for differently formatted code")
	}
}
