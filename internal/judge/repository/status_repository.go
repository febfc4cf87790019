package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"examjudge/internal/common/cache"
	"examjudge/internal/judge/model"
	appErr "examjudge/pkg/errors"
)

const statusKeyPrefix = "judge:status:"

// LiveStatus is the polling view of a submission while it is judged.
type LiveStatus struct {
	SubmissionID string                 `json:"submission_id"`
	QuestionID   string                 `json:"question_id"`
	UserID       string                 `json:"user_id"`
	Status       model.SubmissionStatus `json:"status"`
	Score        int                    `json:"score"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// StatusRepository keeps the live status of in-flight submissions in Redis
// so a polling UI sees Running before the row is finalized.
type StatusRepository struct {
	cache cache.Cache
	TTL   time.Duration
}

// NewStatusRepository creates a new repository.
func NewStatusRepository(cacheClient cache.Cache, ttl time.Duration) *StatusRepository {
	return &StatusRepository{cache: cacheClient, TTL: ttl}
}

// Get returns the live status by submission id.
func (r *StatusRepository) Get(ctx context.Context, submissionID string) (LiveStatus, error) {
	if submissionID == "" {
		return LiveStatus{}, appErr.ValidationError("submission_id", "required")
	}
	if r.cache == nil {
		return LiveStatus{}, appErr.New(appErr.CacheError).WithMessage("cache client is not initialized")
	}
	val, err := r.cache.Get(ctx, statusKeyPrefix+submissionID)
	if err != nil || val == "" {
		return LiveStatus{}, appErr.New(appErr.NotFound).WithMessage("submission status not found")
	}
	var status LiveStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return LiveStatus{}, appErr.Wrapf(err, appErr.CacheError, "decode status failed")
	}
	return status, nil
}

// Save persists the live status.
func (r *StatusRepository) Save(ctx context.Context, status LiveStatus) error {
	if status.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}
	if r.cache == nil {
		return appErr.New(appErr.CacheError).WithMessage("cache client is not initialized")
	}
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status failed: %w", err)
	}
	if err := r.cache.Set(ctx, statusKeyPrefix+status.SubmissionID, string(data), r.TTL); err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "store status failed")
	}
	return nil
}
