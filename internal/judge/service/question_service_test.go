package service_test

import (
	"context"
	"testing"

	"examjudge/internal/judge/model"
	"examjudge/internal/judge/service"
	appErr "examjudge/pkg/errors"
)

func newQuestionService(t *testing.T) (*service.QuestionService, *fakeQuestionRepo) {
	t.Helper()
	repo := &fakeQuestionRepo{questions: map[string]*model.CodingQuestion{}}
	svc, err := service.NewQuestionService(repo)
	if err != nil {
		t.Fatalf("new question service failed: %v", err)
	}
	return svc, repo
}

func TestQuestionCreateAssignsID(t *testing.T) {
	t.Parallel()
	svc, repo := newQuestionService(t)

	created, err := svc.Create(context.Background(), &model.CodingQuestion{
		Title:     "Sum two numbers",
		Points:    10,
		TestCases: []model.TestCase{{Input: "1 2", ExpectedOutput: "3"}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("id not assigned")
	}
	if _, ok := repo.questions[created.ID]; !ok {
		t.Fatalf("question not persisted")
	}
}

func TestQuestionConstraintsRoundTrip(t *testing.T) {
	t.Parallel()
	svc, _ := newQuestionService(t)

	created, err := svc.Create(context.Background(), &model.CodingQuestion{
		Title:       "Sum two numbers",
		Constraints: "1 <= a, b <= 10^9",
		Points:      10,
		TestCases:   []model.TestCase{{Input: "1 2", ExpectedOutput: "3"}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID, false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Constraints != "1 <= a, b <= 10^9" {
		t.Fatalf("constraints = %q, want them preserved through create and get", got.Constraints)
	}
}

func TestQuestionCreateRequiresTestCases(t *testing.T) {
	t.Parallel()
	svc, _ := newQuestionService(t)

	_, err := svc.Create(context.Background(), &model.CodingQuestion{Title: "Empty"})
	if err == nil {
		t.Fatalf("expected error for question without test cases")
	}
	if code := appErr.GetCode(err); code != appErr.TestCaseInvalid {
		t.Fatalf("error code = %d, want %d", code, appErr.TestCaseInvalid)
	}
}

func TestQuestionGetRedactsHiddenCasesForStudents(t *testing.T) {
	t.Parallel()
	svc, repo := newQuestionService(t)
	repo.questions["q1"] = &model.CodingQuestion{
		ID:    "q1",
		Title: "Sum",
		TestCases: []model.TestCase{
			{Input: "1 2", ExpectedOutput: "3"},
			{Input: "5 5", ExpectedOutput: "10", IsHidden: true},
		},
	}

	student, err := svc.Get(context.Background(), "q1", false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if student.TestCases[0].ExpectedOutput != "3" {
		t.Fatalf("visible case redacted: %+v", student.TestCases[0])
	}
	hidden := student.TestCases[1]
	if hidden.ExpectedOutput != model.HiddenOutputPlaceholder || hidden.Input != "" {
		t.Fatalf("hidden case leaked: %+v", hidden)
	}

	admin, err := svc.Get(context.Background(), "q1", true)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if admin.TestCases[1].ExpectedOutput != "10" {
		t.Fatalf("admin view redacted: %+v", admin.TestCases[1])
	}

	// Redaction must never mutate the stored question.
	if repo.questions["q1"].TestCases[1].ExpectedOutput != "10" {
		t.Fatalf("stored question mutated by redaction")
	}
}

func TestQuestionGetNotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newQuestionService(t)

	_, err := svc.Get(context.Background(), "missing", false)
	if err == nil {
		t.Fatalf("expected not found error")
	}
	if code := appErr.GetCode(err); code != appErr.QuestionNotFound {
		t.Fatalf("error code = %d, want %d", code, appErr.QuestionNotFound)
	}
}

func TestQuestionUpdateUnknown(t *testing.T) {
	t.Parallel()
	svc, _ := newQuestionService(t)

	err := svc.Update(context.Background(), &model.CodingQuestion{
		ID:        "missing",
		TestCases: []model.TestCase{{Input: "1", ExpectedOutput: "1"}},
	})
	if err == nil {
		t.Fatalf("expected not found error")
	}
	if code := appErr.GetCode(err); code != appErr.QuestionNotFound {
		t.Fatalf("error code = %d, want %d", code, appErr.QuestionNotFound)
	}
}
