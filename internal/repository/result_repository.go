package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edulab/assess-backend/internal/model"
)

// ResultRepository handles exam result persistence. Both the electronic and
// the optical paths write through Upsert; the UNIQUE (exam_id, user_id)
// constraint keeps concurrent writers from ever producing two rows for the
// same student and exam.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Upsert writes a result, overwriting any earlier attempt for the same
// (exam, user) pair. The conflict resolution happens in the database, not
// through an application-level read-then-write.
func (r *ResultRepository) Upsert(ctx context.Context, res *model.ExamResult) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_results (exam_id, user_id, score)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, user_id)
		 DO UPDATE SET score = EXCLUDED.score, completed_at = NOW()
		 RETURNING id, completed_at`,
		res.ExamID, res.UserID, res.Score,
	).Scan(&res.ID, &res.CompletedAt)
}

// GetByExamAndUser returns the caller's result for an exam, or ErrNotFound.
func (r *ResultRepository) GetByExamAndUser(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error) {
	res := &model.ExamResult{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, user_id, score, completed_at
		 FROM exam_results WHERE exam_id = $1 AND user_id = $2`,
		examID, userID,
	).Scan(&res.ID, &res.ExamID, &res.UserID, &res.Score, &res.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

// ListByExam returns every result for an exam, newest first.
func (r *ResultRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, user_id, score, completed_at
		 FROM exam_results WHERE exam_id = $1
		 ORDER BY completed_at DESC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		var res model.ExamResult
		if err := rows.Scan(&res.ID, &res.ExamID, &res.UserID, &res.Score, &res.CompletedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
