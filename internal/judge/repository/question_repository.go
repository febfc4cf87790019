package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"examjudge/internal/common/cache"
	"examjudge/internal/common/db"
	"examjudge/internal/judge/model"
)

const (
	defaultQuestionCacheTTL      = 30 * time.Minute
	defaultQuestionCacheEmptyTTL = 5 * time.Minute
	questionCacheKeyPrefix       = "question:"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
)

// QuestionRepository defines coding question persistence.
type QuestionRepository interface {
	Create(ctx context.Context, question *model.CodingQuestion) error
	GetByID(ctx context.Context, questionID string) (*model.CodingQuestion, error)
	ListByExam(ctx context.Context, examID string) ([]*model.CodingQuestion, error)
	Update(ctx context.Context, question *model.CodingQuestion) error
	// Delete removes the question and every submission against it, in one
	// transaction.
	Delete(ctx context.Context, questionID string) error
}

// MySQLQuestionRepository implements QuestionRepository with MySQL,
// with a read-through cache on single-question lookups.
type MySQLQuestionRepository struct {
	db       db.Database
	cache    cache.Cache
	ttl      time.Duration
	emptyTTL time.Duration
}

// NewQuestionRepository creates a question repository with default TTLs.
func NewQuestionRepository(database db.Database, cacheClient cache.Cache) QuestionRepository {
	return &MySQLQuestionRepository{
		db:       database,
		cache:    cacheClient,
		ttl:      defaultQuestionCacheTTL,
		emptyTTL: defaultQuestionCacheEmptyTTL,
	}
}

const questionColumns = "id, exam_id, title, description, constraints, test_cases, default_code, points, time_limit_ms, memory_limit_mb, created_at, updated_at"

// Create inserts a question record.
func (r *MySQLQuestionRepository) Create(ctx context.Context, question *model.CodingQuestion) error {
	if question == nil {
		return errors.New("question is nil")
	}
	if question.ID == "" {
		return errors.New("questionID is required")
	}
	if question.Title == "" {
		return errors.New("title is required")
	}
	if len(question.TestCases) == 0 {
		return errors.New("test cases are required")
	}

	testCases, err := json.Marshal(question.TestCases)
	if err != nil {
		return err
	}
	defaultCode, err := json.Marshal(question.DefaultCode)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO coding_questions
		(id, exam_id, title, description, constraints, test_cases, default_code, points, time_limit_ms, memory_limit_mb)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(
		ctx,
		query,
		question.ID,
		question.ExamID,
		question.Title,
		question.Description,
		question.Constraints,
		string(testCases),
		string(defaultCode),
		question.Points,
		question.TimeLimitMs,
		question.MemoryLimitMb,
	)
	return err
}

// GetByID retrieves a question by id, read-through cached.
func (r *MySQLQuestionRepository) GetByID(ctx context.Context, questionID string) (*model.CodingQuestion, error) {
	if questionID == "" {
		return nil, errors.New("questionID is required")
	}
	if r.cache != nil {
		question, err := cache.GetWithCached[*model.CodingQuestion](
			ctx,
			r.cache,
			questionCacheKey(questionID),
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(q *model.CodingQuestion) bool { return q == nil },
			marshalQuestion,
			unmarshalQuestion,
			func(ctx context.Context) (*model.CodingQuestion, error) {
				question, err := r.getByIDFromDB(ctx, nil, questionID)
				if err != nil {
					if errors.Is(err, ErrQuestionNotFound) {
						return nil, nil
					}
					return nil, err
				}
				return question, nil
			},
		)
		if err != nil {
			return nil, err
		}
		if question == nil {
			return nil, ErrQuestionNotFound
		}
		return question, nil
	}
	return r.getByIDFromDB(ctx, nil, questionID)
}

// ListByExam returns all questions attached to an exam.
func (r *MySQLQuestionRepository) ListByExam(ctx context.Context, examID string) ([]*model.CodingQuestion, error) {
	if examID == "" {
		return nil, errors.New("examID is required")
	}
	query := "SELECT " + questionColumns + " FROM coding_questions WHERE exam_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*model.CodingQuestion, 0)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

// Update rewrites mutable fields and invalidates the cache entry.
func (r *MySQLQuestionRepository) Update(ctx context.Context, question *model.CodingQuestion) error {
	if question == nil {
		return errors.New("question is nil")
	}
	if question.ID == "" {
		return errors.New("questionID is required")
	}

	testCases, err := json.Marshal(question.TestCases)
	if err != nil {
		return err
	}
	defaultCode, err := json.Marshal(question.DefaultCode)
	if err != nil {
		return err
	}

	update := func(ctx context.Context) error {
		query := `
			UPDATE coding_questions
			SET title = ?, description = ?, constraints = ?, test_cases = ?,
			    default_code = ?, points = ?, time_limit_ms = ?, memory_limit_mb = ?
			WHERE id = ?
		`
		result, err := r.db.Exec(
			ctx,
			query,
			question.Title,
			question.Description,
			question.Constraints,
			string(testCases),
			string(defaultCode),
			question.Points,
			question.TimeLimitMs,
			question.MemoryLimitMb,
			question.ID,
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrQuestionNotFound
		}
		return nil
	}
	if r.cache != nil {
		return cache.UpdateCached(ctx, r.cache, questionCacheKey(question.ID), update)
	}
	return update(ctx)
}

// Delete removes the question and cascades to its submissions.
func (r *MySQLQuestionRepository) Delete(ctx context.Context, questionID string) error {
	if questionID == "" {
		return errors.New("questionID is required")
	}
	remove := func(ctx context.Context) error {
		return r.db.Transaction(ctx, func(tx db.Transaction) error {
			if _, err := tx.Exec(ctx, "DELETE FROM submissions WHERE question_id = ?", questionID); err != nil {
				return err
			}
			result, err := tx.Exec(ctx, "DELETE FROM coding_questions WHERE id = ?", questionID)
			if err != nil {
				return err
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrQuestionNotFound
			}
			return nil
		})
	}
	if r.cache != nil {
		return cache.DeleteCached(ctx, r.cache, questionCacheKey(questionID), remove)
	}
	return remove(ctx)
}

func (r *MySQLQuestionRepository) getByIDFromDB(ctx context.Context, tx db.Transaction, questionID string) (*model.CodingQuestion, error) {
	query := "SELECT " + questionColumns + " FROM coding_questions WHERE id = ? LIMIT 1"
	row := db.GetQuerier(r.db, tx).QueryRow(ctx, query, questionID)
	question, err := scanQuestion(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestion(row scanner) (*model.CodingQuestion, error) {
	question := &model.CodingQuestion{}
	var testCases, defaultCode string
	if err := row.Scan(
		&question.ID,
		&question.ExamID,
		&question.Title,
		&question.Description,
		&question.Constraints,
		&testCases,
		&defaultCode,
		&question.Points,
		&question.TimeLimitMs,
		&question.MemoryLimitMb,
		&question.CreatedAt,
		&question.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if testCases != "" {
		if err := json.Unmarshal([]byte(testCases), &question.TestCases); err != nil {
			return nil, err
		}
	}
	if defaultCode != "" {
		if err := json.Unmarshal([]byte(defaultCode), &question.DefaultCode); err != nil {
			return nil, err
		}
	}
	return question, nil
}

func questionCacheKey(questionID string) string {
	return questionCacheKeyPrefix + questionID
}

func marshalQuestion(question *model.CodingQuestion) string {
	if question == nil {
		return ""
	}
	data, err := json.Marshal(question)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalQuestion(data string) (*model.CodingQuestion, error) {
	if data == "" || data == cache.NullCacheValue {
		return nil, nil
	}
	var question model.CodingQuestion
	if err := json.Unmarshal([]byte(data), &question); err != nil {
		return nil, err
	}
	return &question, nil
}
