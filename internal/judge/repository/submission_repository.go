package repository

import (
	"context"
	"encoding/json"
	"errors"

	"examjudge/internal/common/db"
	"examjudge/internal/judge/model"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
)

// SubmissionRepository defines submission persistence. The history per
// (user, question) is append-only: rows are created and finalized, never
// replaced by later attempts.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetByID(ctx context.Context, submissionID string) (*model.Submission, error)
	// UpdateResult finalizes a judged submission in place.
	UpdateResult(ctx context.Context, submission *model.Submission) error
	// ListByUserAndQuestion returns one user's attempts, newest first.
	ListByUserAndQuestion(ctx context.Context, userID, questionID string) ([]*model.Submission, error)
	// ListByQuestion returns every submitted attempt for a question.
	ListByQuestion(ctx context.Context, questionID string) ([]*model.Submission, error)
}

// MySQLSubmissionRepository implements SubmissionRepository with MySQL.
type MySQLSubmissionRepository struct {
	db db.Database
}

// NewSubmissionRepository creates a submission repository.
func NewSubmissionRepository(database db.Database) SubmissionRepository {
	return &MySQLSubmissionRepository{db: database}
}

const submissionColumns = "id, question_id, user_id, language, code, status, score, results, execution_time_ms, is_submitted, archive_key, created_at, updated_at"

// Create inserts a submission record.
func (r *MySQLSubmissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	if submission == nil {
		return errors.New("submission is nil")
	}
	if submission.ID == "" {
		return errors.New("submissionID is required")
	}
	if submission.QuestionID == "" {
		return errors.New("questionID is required")
	}
	if submission.UserID == "" {
		return errors.New("userID is required")
	}
	if submission.Language == "" {
		return errors.New("language is required")
	}

	results, err := json.Marshal(submission.Results)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO submissions
		(id, question_id, user_id, language, code, status, score, results, execution_time_ms, is_submitted, archive_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(
		ctx,
		query,
		submission.ID,
		submission.QuestionID,
		submission.UserID,
		submission.Language,
		submission.Code,
		string(submission.Status),
		submission.Score,
		string(results),
		submission.ExecutionTimeMs,
		submission.IsSubmitted,
		submission.ArchiveKey,
	)
	return err
}

// GetByID retrieves a submission by id.
func (r *MySQLSubmissionRepository) GetByID(ctx context.Context, submissionID string) (*model.Submission, error) {
	if submissionID == "" {
		return nil, errors.New("submissionID is required")
	}
	query := "SELECT " + submissionColumns + " FROM submissions WHERE id = ? LIMIT 1"
	row := r.db.QueryRow(ctx, query, submissionID)
	submission, err := scanSubmission(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

// UpdateResult writes the final status, score and per-case results.
func (r *MySQLSubmissionRepository) UpdateResult(ctx context.Context, submission *model.Submission) error {
	if submission == nil {
		return errors.New("submission is nil")
	}
	if submission.ID == "" {
		return errors.New("submissionID is required")
	}

	results, err := json.Marshal(submission.Results)
	if err != nil {
		return err
	}

	query := `
		UPDATE submissions
		SET status = ?, score = ?, results = ?, execution_time_ms = ?, archive_key = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(
		ctx,
		query,
		string(submission.Status),
		submission.Score,
		string(results),
		submission.ExecutionTimeMs,
		submission.ArchiveKey,
		submission.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// ListByUserAndQuestion returns a user's attempts for one question, newest first.
func (r *MySQLSubmissionRepository) ListByUserAndQuestion(ctx context.Context, userID, questionID string) ([]*model.Submission, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	if questionID == "" {
		return nil, errors.New("questionID is required")
	}
	query := "SELECT " + submissionColumns + " FROM submissions WHERE user_id = ? AND question_id = ? ORDER BY created_at DESC"
	return r.querySubmissions(ctx, query, userID, questionID)
}

// ListByQuestion returns all submitted attempts for a question, used by
// plagiarism sweeps and admin views.
func (r *MySQLSubmissionRepository) ListByQuestion(ctx context.Context, questionID string) ([]*model.Submission, error) {
	if questionID == "" {
		return nil, errors.New("questionID is required")
	}
	query := "SELECT " + submissionColumns + " FROM submissions WHERE question_id = ? AND is_submitted = TRUE ORDER BY created_at DESC"
	return r.querySubmissions(ctx, query, questionID)
}

func (r *MySQLSubmissionRepository) querySubmissions(ctx context.Context, query string, args ...interface{}) ([]*model.Submission, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]*model.Submission, 0)
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, rows.Err()
}

func scanSubmission(row scanner) (*model.Submission, error) {
	submission := &model.Submission{}
	var status, results string
	var archiveKey *string
	if err := row.Scan(
		&submission.ID,
		&submission.QuestionID,
		&submission.UserID,
		&submission.Language,
		&submission.Code,
		&status,
		&submission.Score,
		&results,
		&submission.ExecutionTimeMs,
		&submission.IsSubmitted,
		&archiveKey,
		&submission.CreatedAt,
		&submission.UpdatedAt,
	); err != nil {
		return nil, err
	}
	submission.Status = model.SubmissionStatus(status)
	if archiveKey != nil {
		submission.ArchiveKey = *archiveKey
	}
	if results != "" {
		if err := json.Unmarshal([]byte(results), &submission.Results); err != nil {
			return nil, err
		}
	}
	return submission, nil
}
