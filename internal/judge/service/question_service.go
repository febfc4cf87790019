package service

import (
	"context"
	"errors"

	"examjudge/internal/judge/model"
	"examjudge/internal/judge/repository"
	appErr "examjudge/pkg/errors"

	"github.com/google/uuid"
)

// QuestionService manages coding questions. Student-facing reads are
// redacted: hidden test cases keep their input shape but never expose the
// expected output.
type QuestionService struct {
	questions repository.QuestionRepository
}

// NewQuestionService creates the question service.
func NewQuestionService(questions repository.QuestionRepository) (*QuestionService, error) {
	if questions == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("question repository is required")
	}
	return &QuestionService{questions: questions}, nil
}

// Create stores a new question, assigning its id.
func (s *QuestionService) Create(ctx context.Context, question *model.CodingQuestion) (*model.CodingQuestion, error) {
	if question == nil {
		return nil, appErr.ValidationError("question", "required")
	}
	if question.Title == "" {
		return nil, appErr.ValidationError("title", "required")
	}
	if len(question.TestCases) == 0 {
		return nil, appErr.New(appErr.TestCaseInvalid).WithMessage("at least one test case is required")
	}
	if question.Points < 0 {
		return nil, appErr.ValidationError("points", "must not be negative")
	}
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, appErr.Wrapf(err, appErr.QuestionCreateFailed, "create question failed")
	}
	return question, nil
}

// Get returns a question. Non-admin callers get the redacted view.
func (s *QuestionService) Get(ctx context.Context, questionID string, admin bool) (*model.CodingQuestion, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			return nil, appErr.New(appErr.QuestionNotFound).WithDetail("question_id", questionID)
		}
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "load question failed")
	}
	if admin {
		return question, nil
	}
	return redactQuestion(question), nil
}

// ListByExam returns all questions of an exam, redacted unless admin.
func (s *QuestionService) ListByExam(ctx context.Context, examID string, admin bool) ([]*model.CodingQuestion, error) {
	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "list questions failed")
	}
	if admin {
		return questions, nil
	}
	redacted := make([]*model.CodingQuestion, 0, len(questions))
	for _, q := range questions {
		redacted = append(redacted, redactQuestion(q))
	}
	return redacted, nil
}

// Update rewrites a question's mutable fields.
func (s *QuestionService) Update(ctx context.Context, question *model.CodingQuestion) error {
	if question == nil || question.ID == "" {
		return appErr.ValidationError("question_id", "required")
	}
	if len(question.TestCases) == 0 {
		return appErr.New(appErr.TestCaseInvalid).WithMessage("at least one test case is required")
	}
	if err := s.questions.Update(ctx, question); err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			return appErr.New(appErr.QuestionNotFound).WithDetail("question_id", question.ID)
		}
		return appErr.Wrapf(err, appErr.QuestionUpdateFailed, "update question failed")
	}
	return nil
}

// Delete removes a question and all submissions against it.
func (s *QuestionService) Delete(ctx context.Context, questionID string) error {
	if questionID == "" {
		return appErr.ValidationError("question_id", "required")
	}
	if err := s.questions.Delete(ctx, questionID); err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			return appErr.New(appErr.QuestionNotFound).WithDetail("question_id", questionID)
		}
		return appErr.Wrapf(err, appErr.QuestionDeleteFailed, "delete question failed")
	}
	return nil
}

// redactQuestion replaces hidden expected outputs with the placeholder.
// The original is never mutated.
func redactQuestion(question *model.CodingQuestion) *model.CodingQuestion {
	copied := *question
	copied.TestCases = make([]model.TestCase, len(question.TestCases))
	copy(copied.TestCases, question.TestCases)
	for i := range copied.TestCases {
		if copied.TestCases[i].IsHidden {
			copied.TestCases[i].ExpectedOutput = model.HiddenOutputPlaceholder
			copied.TestCases[i].Input = ""
		}
	}
	return &copied
}
