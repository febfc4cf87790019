package service

import (
	"context"
	"strings"

	"examjudge/internal/judge/language"
	"examjudge/internal/judge/model"
	"examjudge/internal/judge/sandbox"
	appErr "examjudge/pkg/errors"
)

// Mode selects which test cases an evaluation covers.
type Mode string

const (
	// ModeRun evaluates only the first visible case, for quick feedback.
	ModeRun Mode = "run"
	// ModeSubmit evaluates every case, hidden ones included.
	ModeSubmit Mode = "submit"
)

// Verdict is the full outcome of judging one piece of code.
type Verdict struct {
	Status          model.SubmissionStatus
	Score           int
	Results         []model.TestCaseResult
	ExecutionTimeMs int64
	Summary         model.RunSummary
}

// Judge evaluates code against a question's test cases through the sandbox.
type Judge struct {
	registry *language.Registry
	executor sandbox.Executor
}

// NewJudge creates a judge. Both dependencies are required.
func NewJudge(registry *language.Registry, executor sandbox.Executor) (*Judge, error) {
	if registry == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("language registry is required")
	}
	if executor == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("sandbox executor is required")
	}
	return &Judge{registry: registry, executor: executor}, nil
}

// Evaluate runs the code against the question's cases.
// Outputs are compared after trimming leading and trailing whitespace.
// A compilation failure on any case ends the evaluation immediately,
// since every case would fail identically.
func (j *Judge) Evaluate(ctx context.Context, question *model.CodingQuestion, code, languageID string, mode Mode) (*Verdict, error) {
	if question == nil {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("question is required")
	}
	spec, err := j.registry.Lookup(languageID)
	if err != nil {
		return nil, err
	}

	cases := question.TestCases
	if mode == ModeRun {
		first, ok := question.FirstVisibleTestCase()
		if !ok {
			return &Verdict{Status: model.StatusAccepted}, nil
		}
		cases = []model.TestCase{first}
	}

	verdict := &Verdict{Results: make([]model.TestCaseResult, 0, len(cases))}
	allPassed := true
	var firstFailure model.SubmissionStatus

	for i, tc := range cases {
		exec, err := j.executor.Run(ctx, sandbox.RunRequest{
			Language: spec,
			Code:     code,
			Stdin:    tc.Input,
		})
		if err != nil {
			return nil, err
		}

		status := caseStatus(exec, tc.ExpectedOutput)
		verdict.ExecutionTimeMs += exec.ExecutionTimeMs
		verdict.Results = append(verdict.Results, buildCaseResult(i, tc, exec, status, mode))

		if status != model.StatusAccepted {
			allPassed = false
			if firstFailure == "" {
				firstFailure = status
			}
		}
		if status == model.StatusCompilationError {
			break
		}
	}

	if allPassed {
		verdict.Status = model.StatusAccepted
		verdict.Score = question.Points
	} else {
		verdict.Status = firstFailure
	}
	verdict.Summary = summarize(verdict.Results)
	return verdict, nil
}

func caseStatus(exec model.ExecutionResult, expected string) model.SubmissionStatus {
	switch exec.Status {
	case model.ExecTimeout:
		return model.StatusTimeLimitExceeded
	case model.ExecCompilationError:
		return model.StatusCompilationError
	case model.ExecRuntimeError:
		return model.StatusRuntimeError
	}
	if strings.TrimSpace(exec.Stdout) == strings.TrimSpace(expected) {
		return model.StatusAccepted
	}
	return model.StatusWrongAnswer
}

// buildCaseResult redacts hidden cases in submit mode: placeholder expected
// output, no input or actual output, and an opaque pass/fail status.
func buildCaseResult(index int, tc model.TestCase, exec model.ExecutionResult, status model.SubmissionStatus, mode Mode) model.TestCaseResult {
	result := model.TestCaseResult{
		Index:           index,
		Status:          status,
		Hidden:          tc.IsHidden,
		ExecutionTimeMs: exec.ExecutionTimeMs,
	}
	if mode == ModeSubmit && tc.IsHidden {
		result.ExpectedOutput = model.HiddenOutputPlaceholder
		if status != model.StatusAccepted {
			result.Status = model.StatusFailed
		}
		return result
	}
	result.Input = tc.Input
	result.ExpectedOutput = tc.ExpectedOutput
	result.ActualOutput = strings.TrimSpace(exec.Stdout)
	result.Stderr = strings.TrimSpace(exec.Stderr)
	return result
}

func summarize(results []model.TestCaseResult) model.RunSummary {
	summary := model.RunSummary{Total: len(results)}
	for _, r := range results {
		if r.Status == model.StatusAccepted {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary
}
