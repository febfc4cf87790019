package service

import (
	"context"
	"errors"
	"time"

	"examjudge/internal/judge/model"
	"examjudge/internal/judge/repository"
	"examjudge/internal/judge/security"
	appErr "examjudge/pkg/errors"
	"examjudge/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCodeBytes = 128 * 1024

// RunCodeInput is a practice run against the sample case.
type RunCodeInput struct {
	QuestionID string
	Code       string
	Language   string
}

// RunCodeOutput reports the visible outcome of a practice run.
type RunCodeOutput struct {
	Results []model.TestCaseResult `json:"results"`
	Summary model.RunSummary       `json:"summary"`
}

// SubmitCodeInput is a graded submission over every test case.
type SubmitCodeInput struct {
	QuestionID string
	UserID     string
	Code       string
	Language   string
}

// SubmitCodeOutput is the graded result returned to the student.
type SubmitCodeOutput struct {
	SubmissionID string                 `json:"submissionId"`
	Status       model.SubmissionStatus `json:"status"`
	Score        int                    `json:"score"`
	Results      []model.TestCaseResult `json:"results"`
}

// SubmissionServiceConfig wires the orchestrator's dependencies.
// Status, Events and Archiver are optional; everything else is required.
type SubmissionServiceConfig struct {
	Validator   *security.Validator
	Judge       *Judge
	Questions   repository.QuestionRepository
	Submissions repository.SubmissionRepository
	Status      *repository.StatusRepository
	Events      repository.VerdictEventPublisher
	Archiver    *SourceArchiver
}

// SubmissionService orchestrates validation, judging and persistence.
// One submission's infrastructure failure never affects another: every
// judge error is contained here and the row is still finalized.
type SubmissionService struct {
	cfg SubmissionServiceConfig
}

// NewSubmissionService creates the orchestrator.
func NewSubmissionService(cfg SubmissionServiceConfig) (*SubmissionService, error) {
	if cfg.Validator == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("validator is required")
	}
	if cfg.Judge == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("judge is required")
	}
	if cfg.Questions == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("question repository is required")
	}
	if cfg.Submissions == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("submission repository is required")
	}
	return &SubmissionService{cfg: cfg}, nil
}

// RunCode judges the first visible case without persisting anything.
func (s *SubmissionService) RunCode(ctx context.Context, input RunCodeInput) (*RunCodeOutput, error) {
	question, err := s.gate(ctx, input.QuestionID, input.Code, input.Language)
	if err != nil {
		return nil, err
	}

	verdict, err := s.cfg.Judge.Evaluate(ctx, question, input.Code, input.Language, ModeRun)
	if err != nil {
		logger.Error(ctx, "run evaluation failed",
			zap.String("question_id", input.QuestionID), zap.Error(err))
		return nil, judgeFailure(err)
	}
	return &RunCodeOutput{Results: verdict.Results, Summary: verdict.Summary}, nil
}

// SubmitCode judges every case and records the attempt. The row is
// created as Running first so pollers see progress, then finalized in
// place. History per (user, question) is append-only.
func (s *SubmissionService) SubmitCode(ctx context.Context, input SubmitCodeInput) (*SubmitCodeOutput, error) {
	if input.UserID == "" {
		return nil, appErr.ValidationError("user_id", "required")
	}
	question, err := s.gate(ctx, input.QuestionID, input.Code, input.Language)
	if err != nil {
		return nil, err
	}

	submission := &model.Submission{
		ID:          uuid.NewString(),
		QuestionID:  question.ID,
		UserID:      input.UserID,
		Language:    input.Language,
		Code:        input.Code,
		Status:      model.StatusRunning,
		IsSubmitted: true,
	}
	if err := s.cfg.Submissions.Create(ctx, submission); err != nil {
		return nil, appErr.Wrapf(err, appErr.SubmissionCreateFailed, "create submission failed")
	}
	s.publishStatus(ctx, submission)
	submission.ArchiveKey = s.archive(ctx, submission)

	verdict, err := s.cfg.Judge.Evaluate(ctx, question, input.Code, input.Language, ModeSubmit)
	if err != nil {
		// Infrastructure failure: finalize the row so it never sticks at
		// Running, surface a generic error to the caller.
		logger.Error(ctx, "submit evaluation failed",
			zap.String("submission_id", submission.ID),
			zap.String("question_id", question.ID),
			zap.Error(err))
		submission.Status = model.StatusRuntimeError
		submission.Score = 0
		s.finalize(ctx, submission)
		return nil, judgeFailure(err)
	}

	submission.Status = verdict.Status
	submission.Score = verdict.Score
	submission.Results = verdict.Results
	submission.ExecutionTimeMs = verdict.ExecutionTimeMs
	s.finalize(ctx, submission)

	return &SubmitCodeOutput{
		SubmissionID: submission.ID,
		Status:       submission.Status,
		Score:        submission.Score,
		Results:      submission.Results,
	}, nil
}

// GetUserSubmissions returns one user's attempts for a question, newest first.
func (s *SubmissionService) GetUserSubmissions(ctx context.Context, userID, questionID string) ([]*model.Submission, error) {
	submissions, err := s.cfg.Submissions.ListByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "list submissions failed")
	}
	return submissions, nil
}

// GetQuestionSubmissions returns every submitted attempt for a question.
func (s *SubmissionService) GetQuestionSubmissions(ctx context.Context, questionID string) ([]*model.Submission, error) {
	submissions, err := s.cfg.Submissions.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "list submissions failed")
	}
	return submissions, nil
}

// GetLiveStatus returns the polling view of a submission.
func (s *SubmissionService) GetLiveStatus(ctx context.Context, submissionID string) (repository.LiveStatus, error) {
	if s.cfg.Status == nil {
		return repository.LiveStatus{}, appErr.New(appErr.ServiceUnavailable).WithMessage("live status is not configured")
	}
	return s.cfg.Status.Get(ctx, submissionID)
}

// gate runs the shared pre-sandbox checks: input shape, forbidden
// patterns, question existence. The sandbox is never reached when any
// of these fail.
func (s *SubmissionService) gate(ctx context.Context, questionID, code, language string) (*model.CodingQuestion, error) {
	if questionID == "" {
		return nil, appErr.ValidationError("question_id", "required")
	}
	if code == "" {
		return nil, appErr.ValidationError("code", "required")
	}
	if len(code) > maxCodeBytes {
		return nil, appErr.New(appErr.CodeTooLarge).WithDetail("max_bytes", maxCodeBytes)
	}
	if language == "" {
		return nil, appErr.ValidationError("language", "required")
	}

	if violation := s.cfg.Validator.Validate(code, language); violation != nil {
		logger.Warn(ctx, "forbidden pattern rejected",
			zap.String("question_id", questionID),
			zap.String("pattern", violation.PatternName))
		return nil, appErr.ForbiddenPatternError(violation.PatternName)
	}

	question, err := s.cfg.Questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			return nil, appErr.New(appErr.QuestionNotFound).WithDetail("question_id", questionID)
		}
		return nil, appErr.Wrapf(err, appErr.DatabaseError, "load question failed")
	}
	return question, nil
}

// finalize writes the terminal state everywhere it is observed: the row,
// the live status cache and the verdict topic. Cache and event failures
// are logged, never surfaced.
func (s *SubmissionService) finalize(ctx context.Context, submission *model.Submission) {
	if err := s.cfg.Submissions.UpdateResult(ctx, submission); err != nil {
		logger.Error(ctx, "finalize submission failed",
			zap.String("submission_id", submission.ID), zap.Error(err))
	}
	s.publishStatus(ctx, submission)

	if s.cfg.Events != nil && submission.Status.IsFinal() {
		event := repository.VerdictEvent{
			SubmissionID:    submission.ID,
			QuestionID:      submission.QuestionID,
			UserID:          submission.UserID,
			Status:          submission.Status,
			Score:           submission.Score,
			ExecutionTimeMs: submission.ExecutionTimeMs,
		}
		if err := s.cfg.Events.PublishVerdict(ctx, event); err != nil {
			logger.Warn(ctx, "publish verdict failed",
				zap.String("submission_id", submission.ID), zap.Error(err))
		}
	}
}

func (s *SubmissionService) publishStatus(ctx context.Context, submission *model.Submission) {
	if s.cfg.Status == nil {
		return
	}
	status := repository.LiveStatus{
		SubmissionID: submission.ID,
		QuestionID:   submission.QuestionID,
		UserID:       submission.UserID,
		Status:       submission.Status,
		Score:        submission.Score,
		UpdatedAt:    time.Now(),
	}
	if err := s.cfg.Status.Save(ctx, status); err != nil {
		logger.Warn(ctx, "save live status failed",
			zap.String("submission_id", submission.ID), zap.Error(err))
	}
}

func (s *SubmissionService) archive(ctx context.Context, submission *model.Submission) string {
	if s.cfg.Archiver == nil {
		return ""
	}
	key, err := s.cfg.Archiver.Archive(ctx, submission.ID, submission.Language, submission.Code)
	if err != nil {
		logger.Warn(ctx, "archive source failed",
			zap.String("submission_id", submission.ID), zap.Error(err))
		return ""
	}
	return key
}

// judgeFailure maps judge errors to what the caller may see: typed
// language errors pass through, anything else is a generic judge error.
func judgeFailure(err error) error {
	if appErr.GetCode(err) == appErr.LanguageNotSupported {
		return err
	}
	return appErr.Wrapf(err, appErr.JudgeSystemError, "code execution failed")
}
