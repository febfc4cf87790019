package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"examjudge/internal/judge/language"
	"examjudge/internal/judge/model"
	"examjudge/internal/judge/repository"
	"examjudge/internal/judge/sandbox"
	"examjudge/internal/judge/security"
	"examjudge/internal/judge/service"
	appErr "examjudge/pkg/errors"
)

type fakeQuestionRepo struct {
	questions map[string]*model.CodingQuestion
}

func (f *fakeQuestionRepo) Create(ctx context.Context, question *model.CodingQuestion) error {
	f.questions[question.ID] = question
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, questionID string) (*model.CodingQuestion, error) {
	question, ok := f.questions[questionID]
	if !ok {
		return nil, repository.ErrQuestionNotFound
	}
	return question, nil
}

func (f *fakeQuestionRepo) ListByExam(ctx context.Context, examID string) ([]*model.CodingQuestion, error) {
	return nil, nil
}

func (f *fakeQuestionRepo) Update(ctx context.Context, question *model.CodingQuestion) error {
	if _, ok := f.questions[question.ID]; !ok {
		return repository.ErrQuestionNotFound
	}
	f.questions[question.ID] = question
	return nil
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, questionID string) error {
	delete(f.questions, questionID)
	return nil
}

type fakeSubmissionRepo struct {
	created   []*model.Submission
	updated   []*model.Submission
	createErr error
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *model.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *submission
	f.created = append(f.created, &copied)
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, submissionID string) (*model.Submission, error) {
	return nil, repository.ErrSubmissionNotFound
}

func (f *fakeSubmissionRepo) UpdateResult(ctx context.Context, submission *model.Submission) error {
	copied := *submission
	f.updated = append(f.updated, &copied)
	return nil
}

func (f *fakeSubmissionRepo) ListByUserAndQuestion(ctx context.Context, userID, questionID string) ([]*model.Submission, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) ListByQuestion(ctx context.Context, questionID string) ([]*model.Submission, error) {
	return nil, nil
}

type fakeVerdictPublisher struct {
	events []repository.VerdictEvent
}

func (f *fakeVerdictPublisher) PublishVerdict(ctx context.Context, event repository.VerdictEvent) error {
	f.events = append(f.events, event)
	return nil
}

// failingExecutor simulates an infrastructure failure inside the sandbox.
type failingExecutor struct{}

func (f *failingExecutor) Run(ctx context.Context, req sandbox.RunRequest) (model.ExecutionResult, error) {
	return model.ExecutionResult{}, errors.New("sandbox unavailable")
}

type harness struct {
	service     *service.SubmissionService
	questions   *fakeQuestionRepo
	submissions *fakeSubmissionRepo
	publisher   *fakeVerdictPublisher
	executor    *fakeExecutor
}

func newHarness(t *testing.T, executor *fakeExecutor) *harness {
	t.Helper()
	questions := &fakeQuestionRepo{questions: map[string]*model.CodingQuestion{
		"q1": twoCaseQuestion(),
	}}
	submissions := &fakeSubmissionRepo{}
	publisher := &fakeVerdictPublisher{}

	judge, err := service.NewJudge(language.NewRegistry(nil), executor)
	if err != nil {
		t.Fatalf("new judge failed: %v", err)
	}
	svc, err := service.NewSubmissionService(service.SubmissionServiceConfig{
		Validator:   security.NewValidator(nil),
		Judge:       judge,
		Questions:   questions,
		Submissions: submissions,
		Events:      publisher,
	})
	if err != nil {
		t.Fatalf("new submission service failed: %v", err)
	}
	return &harness{
		service:     svc,
		questions:   questions,
		submissions: submissions,
		publisher:   publisher,
		executor:    executor,
	}
}

func TestSubmitCodePersistsVerdict(t *testing.T) {
	t.Parallel()
	h := newHarness(t, &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecOK, Stdout: "3", ExecutionTimeMs: 2},
		"5 5": {Status: model.ExecOK, Stdout: "10", ExecutionTimeMs: 3},
	}})

	output, err := h.service.SubmitCode(context.Background(), service.SubmitCodeInput{
		QuestionID: "q1",
		UserID:     "u1",
		Code:       "a, b = map(int, input().split())\nprint(a + b)",
		Language:   "python",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if output.Status != model.StatusAccepted {
		t.Fatalf("status = %s, want %s", output.Status, model.StatusAccepted)
	}
	if output.Score != 10 {
		t.Fatalf("score = %d, want 10", output.Score)
	}
	if output.SubmissionID == "" {
		t.Fatalf("submission id not assigned")
	}

	if len(h.submissions.created) != 1 {
		t.Fatalf("created %d submissions, want 1", len(h.submissions.created))
	}
	if h.submissions.created[0].Status != model.StatusRunning {
		t.Fatalf("initial row status = %s, want %s", h.submissions.created[0].Status, model.StatusRunning)
	}
	if !h.submissions.created[0].IsSubmitted {
		t.Fatalf("submitted row not marked as submitted")
	}

	if len(h.submissions.updated) != 1 {
		t.Fatalf("updated %d rows, want 1", len(h.submissions.updated))
	}
	final := h.submissions.updated[0]
	if final.Status != model.StatusAccepted || final.Score != 10 {
		t.Fatalf("finalized row = %s score %d, want accepted with 10", final.Status, final.Score)
	}
	if final.ExecutionTimeMs != 5 {
		t.Fatalf("execution time = %d, want 5", final.ExecutionTimeMs)
	}

	if len(h.publisher.events) != 1 {
		t.Fatalf("published %d verdict events, want 1", len(h.publisher.events))
	}
	if h.publisher.events[0].SubmissionID != output.SubmissionID {
		t.Fatalf("verdict event for %s, want %s", h.publisher.events[0].SubmissionID, output.SubmissionID)
	}
}

func TestSubmitCodeRejectsForbiddenPattern(t *testing.T) {
	t.Parallel()
	h := newHarness(t, &fakeExecutor{})

	_, err := h.service.SubmitCode(context.Background(), service.SubmitCodeInput{
		QuestionID: "q1",
		UserID:     "u1",
		Code:       "import os\nos.system('ls')",
		Language:   "python",
	})
	if err == nil {
		t.Fatalf("expected forbidden pattern error")
	}
	if code := appErr.GetCode(err); code != appErr.ForbiddenPattern {
		t.Fatalf("error code = %d, want %d", code, appErr.ForbiddenPattern)
	}
	if h.executor.calls != 0 {
		t.Fatalf("sandbox invoked %d times for rejected code, want 0", h.executor.calls)
	}
	if len(h.submissions.created) != 0 {
		t.Fatalf("rejected code must not create a submission row")
	}
}

func TestSubmitCodeRejectsOversizedCode(t *testing.T) {
	t.Parallel()
	h := newHarness(t, &fakeExecutor{})

	_, err := h.service.SubmitCode(context.Background(), service.SubmitCodeInput{
		QuestionID: "q1",
		UserID:     "u1",
		Code:       strings.Repeat("a", 128*1024+1),
		Language:   "python",
	})
	if err == nil {
		t.Fatalf("expected oversized code error")
	}
	if code := appErr.GetCode(err); code != appErr.CodeTooLarge {
		t.Fatalf("error code = %d, want %d", code, appErr.CodeTooLarge)
	}
}

func TestSubmitCodeUnknownQuestion(t *testing.T) {
	t.Parallel()
	h := newHarness(t, &fakeExecutor{})

	_, err := h.service.SubmitCode(context.Background(), service.SubmitCodeInput{
		QuestionID: "missing",
		UserID:     "u1",
		Code:       "print(1)",
		Language:   "python",
	})
	if err == nil {
		t.Fatalf("expected question not found error")
	}
	if code := appErr.GetCode(err); code != appErr.QuestionNotFound {
		t.Fatalf("error code = %d, want %d", code, appErr.QuestionNotFound)
	}
}

func TestSubmitCodeRequiresUser(t *testing.T) {
	t.Parallel()
	h := newHarness(t, &fakeExecutor{})

	_, err := h.service.SubmitCode(context.Background(), service.SubmitCodeInput{
		QuestionID: "q1",
		Code:       "print(1)",
		Language:   "python",
	})
	if err == nil {
		t.Fatalf("expected validation error for missing user")
	}
}

func TestSubmitCodeFinalizesOnJudgeFailure(t *testing.T) {
	t.Parallel()
	questions := &fakeQuestionRepo{questions: map[string]*model.CodingQuestion{
		"q1": twoCaseQuestion(),
	}}
	submissions := &fakeSubmissionRepo{}
	judge, err := service.NewJudge(language.NewRegistry(nil), &failingExecutor{})
	if err != nil {
		t.Fatalf("new judge failed: %v", err)
	}
	svc, err := service.NewSubmissionService(service.SubmissionServiceConfig{
		Validator:   security.NewValidator(nil),
		Judge:       judge,
		Questions:   questions,
		Submissions: submissions,
	})
	if err != nil {
		t.Fatalf("new submission service failed: %v", err)
	}

	_, err = svc.SubmitCode(context.Background(), service.SubmitCodeInput{
		QuestionID: "q1",
		UserID:     "u1",
		Code:       "print(1)",
		Language:   "python",
	})
	if err == nil {
		t.Fatalf("expected judge failure error")
	}
	if code := appErr.GetCode(err); code != appErr.JudgeSystemError {
		t.Fatalf("error code = %d, want %d", code, appErr.JudgeSystemError)
	}

	// The row must never stick at Running.
	if len(submissions.updated) != 1 {
		t.Fatalf("finalized %d rows, want 1", len(submissions.updated))
	}
	final := submissions.updated[0]
	if final.Status != model.StatusRuntimeError || final.Score != 0 {
		t.Fatalf("finalized row = %s score %d, want runtime error with 0", final.Status, final.Score)
	}
}

func TestRunCodeDoesNotPersist(t *testing.T) {
	t.Parallel()
	h := newHarness(t, &fakeExecutor{results: map[string]model.ExecutionResult{
		"1 2": {Status: model.ExecOK, Stdout: "3"},
	}})

	output, err := h.service.RunCode(context.Background(), service.RunCodeInput{
		QuestionID: "q1",
		Code:       "a, b = map(int, input().split())\nprint(a + b)",
		Language:   "python",
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(output.Results) != 1 {
		t.Fatalf("run returned %d results, want 1", len(output.Results))
	}
	if h.executor.calls != 1 {
		t.Fatalf("executor called %d times, want 1", h.executor.calls)
	}
	if len(h.submissions.created) != 0 || len(h.submissions.updated) != 0 {
		t.Fatalf("run mode must not touch the submission table")
	}
	if len(h.publisher.events) != 0 {
		t.Fatalf("run mode must not publish verdict events")
	}
}
