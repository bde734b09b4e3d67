package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edulab/assess-backend/internal/model"
)

// QuestionRepository handles question data access, for both bank rows
// (exam_id IS NULL) and exam-owned copies.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, text, type, structure, answer_key, course_id, exam_id, position, created_at`

func scanQuestion(row pgx.Row, q *model.Question) error {
	return row.Scan(&q.ID, &q.Text, &q.Type, &q.Structure, &q.AnswerKey,
		&q.CourseID, &q.ExamID, &q.Position, &q.CreatedAt)
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CreateBankQuestion inserts a new reusable question into a course's bank.
func (r *QuestionRepository) CreateBankQuestion(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (text, type, structure, answer_key, course_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		q.Text, q.Type, q.Structure, q.AnswerKey, q.CourseID,
	).Scan(&q.ID, &q.CreatedAt)
}

// ListBank retrieves a course's bank questions, optionally filtered by type.
func (r *QuestionRepository) ListBank(ctx context.Context, courseID int, typeFilter model.QuestionType) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + `
	          FROM questions WHERE course_id = $1 AND exam_id IS NULL`
	args := []interface{}{courseID}
	if typeFilter != "" {
		query += ` AND type = $2`
		args = append(args, typeFilter)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// GetBankByIDs retrieves bank rows matching the given ids. Exam-owned copies
// are never returned, so a caller cannot duplicate out of another exam.
func (r *QuestionRepository) GetBankByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE id = ANY($1) AND exam_id IS NULL`, ids)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// ListByExam retrieves an exam's owned question copies in exam order.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE exam_id = $1
		 ORDER BY position, created_at`, examID)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// DeleteBankQuestion removes a bank row. Exam copies are untouchable here;
// deleting from the bank never reaches into an exam snapshot.
func (r *QuestionRepository) DeleteBankQuestion(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM questions WHERE id = $1 AND exam_id IS NULL`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// InsertExamCopies writes duplicated questions into an exam as one atomic
// batch: either every copy lands or none does. Positions continue from the
// exam's current maximum.
func (r *QuestionRepository) InsertExamCopies(ctx context.Context, examID uuid.UUID, questions []model.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var nextPos int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM questions WHERE exam_id = $1`,
		examID,
	).Scan(&nextPos); err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}

	if err := insertExamCopiesTx(ctx, tx, examID, questions, nextPos); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(questions), nil
}

// insertExamCopiesTx batch-inserts copies on an open transaction, assigning
// positions from startPos. Shared with the atomic exam-with-questions create.
func insertExamCopiesTx(ctx context.Context, tx pgx.Tx, examID uuid.UUID, questions []model.Question, startPos int) error {
	batch := &pgx.Batch{}
	for i := range questions {
		q := &questions[i]
		batch.Queue(
			`INSERT INTO questions (id, text, type, structure, answer_key, course_id, exam_id, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			q.ID, q.Text, q.Type, q.Structure, q.AnswerKey, q.CourseID, examID, startPos+i,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range questions {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert copy: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}
