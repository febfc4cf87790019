package security

// Violation reports the first forbidden construct found in a piece of code.
type Violation struct {
	PatternName string
	Pattern     string
}

// Validator scans submitted code for forbidden constructs before it ever
// reaches the sandbox. The pattern set is fixed at construction.
type Validator struct {
	patterns []Pattern
}

// NewValidator creates a validator over the given pattern set.
// A nil or empty set falls back to DefaultPatterns.
func NewValidator(patterns []Pattern) *Validator {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	copied := make([]Pattern, len(patterns))
	copy(copied, patterns)
	return &Validator{patterns: copied}
}

// Validate returns the first violation found, or nil when the code is clean.
// The language parameter is accepted for future per-language sets but the
// scan is currently language-agnostic.
func (v *Validator) Validate(code, language string) *Violation {
	_ = language
	for _, p := range v.patterns {
		if p.Regexp.MatchString(code) {
			return &Violation{
				PatternName: p.Name,
				Pattern:     p.Regexp.String(),
			}
		}
	}
	return nil
}
