package model

// ExecStatus classifies the outcome of one sandbox execution.
type ExecStatus string

const (
	ExecOK               ExecStatus = "OK"
	ExecCompilationError ExecStatus = "CompilationError"
	ExecRuntimeError     ExecStatus = "RuntimeError"
	ExecTimeout          ExecStatus = "Timeout"
)

// ExecutionResult is the ephemeral outcome of running code against one
// stdin. It never outlives the judging of a single test case.
type ExecutionResult struct {
	Status          ExecStatus `json:"status"`
	Stdout          string     `json:"stdout"`
	Stderr          string     `json:"stderr"`
	ExitCode        int        `json:"exitCode"`
	ExecutionTimeMs int64      `json:"executionTimeMs"`
}
