package service_test

import (
	"context"
	"strings"
	"testing"

	"examjudge/internal/judge/language"
	"examjudge/internal/judge/model"
	"examjudge/internal/judge/sandbox"
	"examjudge/internal/judge/service"
)

// fakeExecutor maps stdin to a canned result, defaulting to echoing the
// expected output configured per input.
type fakeExecutor struct {
	results map[string]model.ExecutionResult
	calls   int
}

func (f *fakeExecutor) Run(ctx context.Context, req sandbox.RunRequest) (model.ExecutionResult, error) {
	f.calls++
	if result, ok := f.results[req.Stdin]; ok {
		return result, nil
	}
	return model.ExecutionResult{Status: model.ExecOK}, nil
}

func newJudge(t *testing.T, executor sandbox.Executor) *service.Judge {
	t.Helper()
	judge, err := service.NewJudge(language.NewRegistry(nil), executor)
	if err != nil {
		t.Fatalf("new judge failed: %v", err)
	}
	return judge
}

func twoCaseQuestion() *model.CodingQuestion {
	return &model.CodingQuestion{
		ID:     "q1",
		Points: 10,
		TestCases: []model.TestCase{
			{Input: "1 2", ExpectedOutput: "3"},
			{Input: "5 5", ExpectedOutput: "10", IsHidden: true},
		},
	}
}

func TestEvaluateSubmitAllPassed(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecOK, Stdout: "3\n", ExecutionTimeMs: 4},
		"5 5": {Status: model.ExecOK, Stdout: "10", ExecutionTimeMs: 6},
	}}
	judge := newJudge(t, executor)

	verdict, err := judge.Evaluate(context.Background(), twoCaseQuestion(), "code", "python", service.ModeSubmit)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if verdict.Status != model.StatusAccepted {
		t.Fatalf("status = %s, want %s", verdict.Status, model.StatusAccepted)
	}
	if verdict.Score != 10 {
		t.Fatalf("score = %d, want 10", verdict.Score)
	}
	if verdict.ExecutionTimeMs != 10 {
		t.Fatalf("execution time = %d, want 10", verdict.ExecutionTimeMs)
	}
	if executor.calls != 2 {
		t.Fatalf("executor called %d times, want 2", executor.calls)
	}
	if verdict.Summary.Passed != 2 || verdict.Summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", verdict.Summary)
	}
}

func TestEvaluateSubmitAllOrNothingScore(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecOK, Stdout: "3"},
		"5 5": {Status: model.ExecOK, Stdout: "11"},
	}}
	judge := newJudge(t, executor)

	verdict, err := judge.Evaluate(context.Background(), twoCaseQuestion(), "code", "python", service.ModeSubmit)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if verdict.Score != 0 {
		t.Fatalf("score = %d, want 0 when any case fails", verdict.Score)
	}
	if verdict.Status == model.StatusAccepted {
		t.Fatalf("status should not be accepted")
	}
}

func TestEvaluateRedactsHiddenCases(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecOK, Stdout: "3"},
		"5 5": {Status: model.ExecOK, Stdout: "wrong"},
	}}
	judge := newJudge(t, executor)

	verdict, err := judge.Evaluate(context.Background(), twoCaseQuestion(), "code", "python", service.ModeSubmit)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(verdict.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(verdict.Results))
	}

	visible := verdict.Results[0]
	if visible.Input != "1 2" || visible.ExpectedOutput != "3" || visible.ActualOutput != "3" {
		t.Fatalf("visible case should carry full detail, got %+v", visible)
	}

	hidden := verdict.Results[1]
	if hidden.ExpectedOutput != model.HiddenOutputPlaceholder {
		t.Fatalf("hidden expected output = %q, want placeholder", hidden.ExpectedOutput)
	}
	if hidden.Input != "" || hidden.ActualOutput != "" {
		t.Fatalf("hidden case leaked input or output: %+v", hidden)
	}
	if hidden.Status != model.StatusFailed {
		t.Fatalf("hidden failure status = %s, want %s", hidden.Status, model.StatusFailed)
	}
	if !hidden.Hidden {
		t.Fatalf("hidden flag not set")
	}
}

func TestEvaluateRunModeUsesFirstVisibleCase(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecOK, Stdout: "3"},
	}}
	judge := newJudge(t, executor)

	question := &model.CodingQuestion{
		ID:     "q2",
		Points: 5,
		TestCases: []model.TestCase{
			{Input: "9 9", ExpectedOutput: "18", IsHidden: true},
			{Input: "1 2", ExpectedOutput: "3"},
			{Input: "4 4", ExpectedOutput: "8"},
		},
	}
	verdict, err := judge.Evaluate(context.Background(), question, "code", "python", service.ModeRun)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if executor.calls != 1 {
		t.Fatalf("executor called %d times, want 1", executor.calls)
	}
	if len(verdict.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(verdict.Results))
	}
	if verdict.Results[0].Input != "1 2" {
		t.Fatalf("run mode used case with input %q, want first visible", verdict.Results[0].Input)
	}
	if verdict.Status != model.StatusAccepted {
		t.Fatalf("status = %s, want %s", verdict.Status, model.StatusAccepted)
	}
}

func TestEvaluateRunModeAllHidden(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{}
	judge := newJudge(t, executor)

	question := &model.CodingQuestion{
		ID: "q3",
		TestCases: []model.TestCase{
			{Input: "1", ExpectedOutput: "1", IsHidden: true},
		},
	}
	verdict, err := judge.Evaluate(context.Background(), question, "code", "python", service.ModeRun)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if executor.calls != 0 {
		t.Fatalf("executor should not run when no case is visible")
	}
	if verdict.Status != model.StatusAccepted {
		t.Fatalf("status = %s, want %s", verdict.Status, model.StatusAccepted)
	}
}

func TestEvaluateStopsAfterCompilationError(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecCompilationError, Stderr: "syntax error"},
	}}
	judge := newJudge(t, executor)

	verdict, err := judge.Evaluate(context.Background(), twoCaseQuestion(), "code", "cpp", service.ModeSubmit)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if executor.calls != 1 {
		t.Fatalf("executor called %d times, want 1 after compile error", executor.calls)
	}
	if verdict.Status != model.StatusCompilationError {
		t.Fatalf("status = %s, want %s", verdict.Status, model.StatusCompilationError)
	}
	if verdict.Results[0].Stderr != "syntax error" {
		t.Fatalf("stderr = %q, want compiler diagnostics", verdict.Results[0].Stderr)
	}
}

func TestEvaluateSurfacesStderrOnVisibleCases(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecCompilationError, Stderr: "solution.cpp:3:1: error: expected ';'\n"},
	}}
	judge := newJudge(t, executor)

	verdict, err := judge.Evaluate(context.Background(), twoCaseQuestion(), "int main", "cpp", service.ModeSubmit)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if got := verdict.Results[0].Stderr; got != "solution.cpp:3:1: error: expected ';'" {
		t.Fatalf("stderr = %q, want the trimmed compiler message", got)
	}
}

func TestEvaluateRedactsStderrOnHiddenCases(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecOK, Stdout: "3"},
		"5 5": {Status: model.ExecRuntimeError, Stderr: "panic: index out of range [5] with length 2"},
	}}
	judge := newJudge(t, executor)

	verdict, err := judge.Evaluate(context.Background(), twoCaseQuestion(), "code", "python", service.ModeSubmit)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	hidden := verdict.Results[1]
	if hidden.Stderr != "" {
		t.Fatalf("hidden case leaked stderr: %q", hidden.Stderr)
	}
	if hidden.Status != model.StatusFailed {
		t.Fatalf("hidden failure status = %s, want %s", hidden.Status, model.StatusFailed)
	}
}

func TestEvaluateRunModeCarriesRuntimeStderr(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecRuntimeError, Stderr: "ZeroDivisionError: division by zero", ExitCode: 1},
	}}
	judge := newJudge(t, executor)

	verdict, err := judge.Evaluate(context.Background(), twoCaseQuestion(), "code", "python", service.ModeRun)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if verdict.Status != model.StatusRuntimeError {
		t.Fatalf("status = %s, want %s", verdict.Status, model.StatusRuntimeError)
	}
	if verdict.Results[0].Stderr != "ZeroDivisionError: division by zero" {
		t.Fatalf("stderr = %q, want the program's own stderr", verdict.Results[0].Stderr)
	}
}

func TestEvaluateMapsTimeoutToTimeLimitExceeded(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecTimeout, Stderr: "Execution timed out after 30s", ExecutionTimeMs: 30000},
	}}
	judge := newJudge(t, executor)

	verdict, err := judge.Evaluate(context.Background(), twoCaseQuestion(), "while(1){}", "javascript", service.ModeSubmit)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if verdict.Status != model.StatusTimeLimitExceeded {
		t.Fatalf("status = %s, want %s", verdict.Status, model.StatusTimeLimitExceeded)
	}
}

func TestEvaluateTrimsOutputBeforeComparing(t *testing.T) {
	t.Parallel()
	executor := &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecOK, Stdout: "  3 \n\n"},
		"5 5": {Status: model.ExecOK, Stdout: "10"},
	}}
	judge := newJudge(t, executor)

	verdict, err := judge.Evaluate(context.Background(), twoCaseQuestion(), "code", "python", service.ModeSubmit)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if verdict.Status != model.StatusAccepted {
		t.Fatalf("status = %s, want %s", verdict.Status, model.StatusAccepted)
	}
	if got := verdict.Results[0].ActualOutput; strings.TrimSpace(got) != got {
		t.Fatalf("actual output not trimmed: %q", got)
	}
}

func TestEvaluateUnsupportedLanguage(t *testing.T) {
	t.Parallel()
	judge := newJudge(t, &fakeExecutor{})
	if _, err := judge.Evaluate(context.Background(), twoCaseQuestion(), "code", "cobol", service.ModeSubmit); err == nil {
		t.Fatalf("expected error for unsupported language")
	}
}
