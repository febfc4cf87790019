package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"examjudge/internal/common/mq"
	"examjudge/internal/judge/model"
	appErr "examjudge/pkg/errors"
)

// VerdictEvent is the payload published when a submission reaches a final
// status, so the exam platform can materialize grades and notifications.
type VerdictEvent struct {
	SubmissionID    string                 `json:"submission_id"`
	QuestionID      string                 `json:"question_id"`
	UserID          string                 `json:"user_id"`
	Status          model.SubmissionStatus `json:"status"`
	Score           int                    `json:"score"`
	ExecutionTimeMs int64                  `json:"execution_time_ms"`
	CreatedAt       int64                  `json:"created_at"`
}

// VerdictEventPublisher publishes final verdicts for async processing.
type VerdictEventPublisher interface {
	PublishVerdict(ctx context.Context, event VerdictEvent) error
}

// MQVerdictEventPublisher publishes verdict events to a message queue.
type MQVerdictEventPublisher struct {
	producer mq.Producer
	topic    string
}

// NewMQVerdictEventPublisher creates a new MQ verdict event publisher.
func NewMQVerdictEventPublisher(producer mq.Producer, topic string) *MQVerdictEventPublisher {
	return &MQVerdictEventPublisher{producer: producer, topic: topic}
}

// PublishVerdict publishes a final verdict event.
func (p *MQVerdictEventPublisher) PublishVerdict(ctx context.Context, event VerdictEvent) error {
	if p == nil || p.producer == nil {
		return appErr.New(appErr.ServiceUnavailable).WithMessage("verdict publisher is not configured")
	}
	if p.topic == "" {
		return appErr.New(appErr.InvalidParams).WithMessage("verdict topic is required")
	}
	if event.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal verdict event failed: %w", err)
	}
	message := mq.NewMessage(payload)
	message.ID = event.SubmissionID
	if err := p.producer.Publish(ctx, p.topic, message); err != nil {
		return appErr.Wrapf(err, appErr.ServiceUnavailable, "publish verdict event failed")
	}
	return nil
}
