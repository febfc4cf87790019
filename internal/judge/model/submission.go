package model

import "time"

// SubmissionStatus is the lifecycle state of a submission.
type SubmissionStatus string

const (
	StatusPending           SubmissionStatus = "Pending"
	StatusRunning           SubmissionStatus = "Running"
	StatusAccepted          SubmissionStatus = "Accepted"
	StatusWrongAnswer       SubmissionStatus = "WrongAnswer"
	StatusTimeLimitExceeded SubmissionStatus = "TimeLimitExceeded"
	StatusRuntimeError      SubmissionStatus = "RuntimeError"
	StatusCompilationError  SubmissionStatus = "CompilationError"

	// StatusFailed is the opaque per-case status shown for hidden test
	// cases, so the concrete failure mode does not leak.
	StatusFailed SubmissionStatus = "Failed"
)

// IsFinal reports whether the status is terminal.
func (s SubmissionStatus) IsFinal() bool {
	switch s {
	case StatusAccepted, StatusWrongAnswer, StatusTimeLimitExceeded,
		StatusRuntimeError, StatusCompilationError:
		return true
	}
	return false
}

// TestCaseResult is the per-case outcome attached to a submission.
// For hidden cases ExpectedOutput carries the placeholder and ActualOutput
// and Stderr stay empty, so the stored row is already safe to return to
// students. Stderr carries compiler diagnostics on compilation errors and
// the program's own stderr on runtime errors.
type TestCaseResult struct {
	Index           int              `json:"index"`
	Input           string           `json:"input,omitempty"`
	ExpectedOutput  string           `json:"expectedOutput"`
	ActualOutput    string           `json:"actualOutput,omitempty"`
	Stderr          string           `json:"stderr,omitempty"`
	Status          SubmissionStatus `json:"status"`
	Hidden          bool             `json:"hidden"`
	ExecutionTimeMs int64            `json:"executionTimeMs"`
}

// Submission is one judged attempt at a coding question.
type Submission struct {
	ID              string           `json:"id"`
	QuestionID      string           `json:"questionId"`
	UserID          string           `json:"userId"`
	Language        string           `json:"language"`
	Code            string           `json:"code"`
	Status          SubmissionStatus `json:"status"`
	Score           int              `json:"score"`
	Results         []TestCaseResult `json:"results"`
	ExecutionTimeMs int64            `json:"executionTimeMs"`
	IsSubmitted     bool             `json:"isSubmitted"`
	ArchiveKey      string           `json:"archiveKey,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// RunSummary aggregates the visible outcome of a practice run.
type RunSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}
