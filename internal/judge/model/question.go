package model

import "time"

// TestCase is a single input/expected-output pair for a coding question.
// Hidden cases are evaluated on submit but their expected output is never
// shown to students.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	IsHidden       bool   `json:"isHidden"`
}

// HiddenOutputPlaceholder replaces the expected output of hidden test
// cases in anything returned to a student.
const HiddenOutputPlaceholder = "Hidden"

// CodingQuestion is a programming problem attached to an exam.
type CodingQuestion struct {
	ID            string            `json:"id"`
	ExamID        string            `json:"examId"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Constraints   string            `json:"constraints"`
	TestCases     []TestCase        `json:"testCases"`
	DefaultCode   map[string]string `json:"defaultCode"`
	Points        int               `json:"points"`
	TimeLimitMs   int64             `json:"timeLimitMs"`
	MemoryLimitMb int64             `json:"memoryLimitMb"` // advisory, not enforced
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// VisibleTestCases returns the non-hidden cases in declaration order.
func (q *CodingQuestion) VisibleTestCases() []TestCase {
	visible := make([]TestCase, 0, len(q.TestCases))
	for _, tc := range q.TestCases {
		if !tc.IsHidden {
			visible = append(visible, tc)
		}
	}
	return visible
}

// FirstVisibleTestCase returns the first non-hidden case, or false when
// every case is hidden.
func (q *CodingQuestion) FirstVisibleTestCase() (TestCase, bool) {
	for _, tc := range q.TestCases {
		if !tc.IsHidden {
			return tc, true
		}
	}
	return TestCase{}, false
}
