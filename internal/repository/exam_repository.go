package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edulab/assess-backend/internal/model"
)

// ErrNotFound marks a missing row across the repositories.
var ErrNotFound = errors.New("not found")

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, course_id, duration_minutes, deadline, requires_seb)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		e.Title, e.CourseID, e.DurationMinutes, e.Deadline, e.RequiresSeb,
	).Scan(&e.ID, &e.CreatedAt)
}

// CreateWithQuestions inserts an exam and its authored question copies in
// one transaction: if any question insert fails, the exam row is rolled back
// too, so no empty exam ever survives a failed create.
func (r *ExamRepository) CreateWithQuestions(ctx context.Context, e *model.Exam, questions []model.Question) error {
	if len(questions) == 0 {
		return r.Create(ctx, e)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`INSERT INTO exams (title, course_id, duration_minutes, deadline, requires_seb)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		e.Title, e.CourseID, e.DurationMinutes, e.Deadline, e.RequiresSeb,
	).Scan(&e.ID, &e.CreatedAt); err != nil {
		return fmt.Errorf("insert exam: %w", err)
	}

	if err := insertExamCopiesTx(ctx, tx, e.ID, questions, 0); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByID retrieves an exam row (without questions).
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, course_id, duration_minutes, deadline, requires_seb, created_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.CourseID, &e.DurationMinutes, &e.Deadline, &e.RequiresSeb, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// ListByCourse retrieves a course's exams, newest first.
func (r *ExamRepository) ListByCourse(ctx context.Context, courseID int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, course_id, duration_minutes, deadline, requires_seb, created_at
		 FROM exams WHERE course_id = $1
		 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.CourseID, &e.DurationMinutes,
			&e.Deadline, &e.RequiresSeb, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// ListAll retrieves every exam. Used by the cache-warm worker.
func (r *ExamRepository) ListAll(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, course_id, duration_minutes, deadline, requires_seb, created_at
		 FROM exams ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.CourseID, &e.DurationMinutes,
			&e.Deadline, &e.RequiresSeb, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
