package plagiarism

import (
	"context"
	"encoding/json"
	"time"

	"examjudge/internal/common/mq"
	"examjudge/internal/judge/repository"
	appErr "examjudge/pkg/errors"
	"examjudge/pkg/utils/logger"

	"go.uber.org/zap"
)

// DefaultThreshold is the similarity score at which a pair is flagged
// when the caller does not pick one.
const DefaultThreshold = 80.0

// FlaggedPairEvent is published for every suspicious pair so the exam
// platform can raise violation records.
type FlaggedPairEvent struct {
	QuestionID string         `json:"question_id"`
	Pair       SimilarityPair `json:"pair"`
	Threshold  float64        `json:"threshold"`
	CreatedAt  int64          `json:"created_at"`
}

// ServiceConfig wires the plagiarism service. Producer and Topic are
// optional; without them flagged pairs are only returned, not published.
type ServiceConfig struct {
	Detector    *Detector
	Submissions repository.SubmissionRepository
	Producer    mq.Producer
	Topic       string
	Threshold   float64
}

// Service runs plagiarism sweeps over the submitted attempts of a question.
type Service struct {
	cfg ServiceConfig
}

// NewService creates the plagiarism service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Detector == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("detector is required")
	}
	if cfg.Submissions == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("submission repository is required")
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Service{cfg: cfg}, nil
}

// DetectForQuestion sweeps every student's latest submitted attempt for
// one question. threshold <= 0 falls back to the configured default.
func (s *Service) DetectForQuestion(ctx context.Context, questionID string, threshold float64) (*Stats, error) {
	if questionID == "" {
		return nil, appErr.ValidationError("question_id", "required")
	}
	if threshold <= 0 {
		threshold = s.cfg.Threshold
	}

	submissions, err := s.cfg.Submissions.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.PlagiarismScanFailed, "load submissions failed")
	}

	// Newest-first ordering means the first row per user is their latest
	// attempt; earlier attempts are skipped.
	seen := make(map[string]bool, len(submissions))
	latest := make([]CodeSubmission, 0, len(submissions))
	for _, sub := range submissions {
		if seen[sub.UserID] {
			continue
		}
		seen[sub.UserID] = true
		latest = append(latest, CodeSubmission{
			SubmissionID: sub.ID,
			UserID:       sub.UserID,
			Code:         sub.Code,
		})
	}

	stats, err := s.cfg.Detector.Analyze(ctx, latest, threshold)
	if err != nil {
		return nil, err
	}
	s.publishFlagged(ctx, questionID, threshold, stats.Pairs)
	return stats, nil
}

// Compare scores two code blobs directly at the configured threshold.
func (s *Service) Compare(code1, code2 string) (ComparisonResult, error) {
	if code1 == "" || code2 == "" {
		return ComparisonResult{}, appErr.ValidationError("code", "both code blobs are required")
	}
	return s.cfg.Detector.CompareTwo(code1, code2, s.cfg.Threshold), nil
}

func (s *Service) publishFlagged(ctx context.Context, questionID string, threshold float64, pairs []SimilarityPair) {
	if s.cfg.Producer == nil || s.cfg.Topic == "" || len(pairs) == 0 {
		return
	}
	now := time.Now().Unix()
	messages := make([]*mq.Message, 0, len(pairs))
	for _, pair := range pairs {
		payload, err := json.Marshal(FlaggedPairEvent{
			QuestionID: questionID,
			Pair:       pair,
			Threshold:  threshold,
			CreatedAt:  now,
		})
		if err != nil {
			continue
		}
		message := mq.NewMessage(payload)
		message.ID = pair.SubmissionID1 + ":" + pair.SubmissionID2
		messages = append(messages, message)
	}
	if err := s.cfg.Producer.PublishBatch(ctx, s.cfg.Topic, messages); err != nil {
		logger.Warn(ctx, "publish flagged pairs failed",
			zap.String("question_id", questionID),
			zap.Int("pairs", len(messages)),
			zap.Error(err))
	}
}
