package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edulab/assess-backend/internal/model"
	"github.com/edulab/assess-backend/internal/repository"
)

// ErrBankQuestionNotFound is returned when the targeted bank row is missing
// or belongs to an exam snapshot.
var ErrBankQuestionNotFound = errors.New("bank question not found")

// QuestionService handles the reusable per-course question bank.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// CreateBankQuestion adds a reusable question to a course's bank.
func (s *QuestionService) CreateBankQuestion(ctx context.Context, courseID int, payload *model.QuestionPayload) (*model.Question, error) {
	if !payload.Type.Valid() {
		return nil, ErrInvalidQuestion
	}

	q := &model.Question{
		Text:      payload.Text,
		Type:      payload.Type,
		Structure: payload.Structure,
		AnswerKey: payload.AnswerKey,
		CourseID:  courseID,
	}
	if err := s.questionRepo.CreateBankQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("create bank question: %w", err)
	}

	s.log.Info().Str("question_id", q.ID.String()).Int("course_id", courseID).Msg("Bank question created")
	return q, nil
}

// ListBank returns a course's bank, optionally filtered by question type.
func (s *QuestionService) ListBank(ctx context.Context, courseID int, typeFilter model.QuestionType) ([]model.Question, error) {
	if typeFilter != "" && !typeFilter.Valid() {
		return nil, ErrInvalidQuestion
	}
	return s.questionRepo.ListBank(ctx, courseID, typeFilter)
}

// DeleteBankQuestion removes a bank row. Exam snapshots that were copied
// from it are untouched.
func (s *QuestionService) DeleteBankQuestion(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.questionRepo.DeleteBankQuestion(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bank question: %w", err)
	}
	if !deleted {
		return ErrBankQuestionNotFound
	}

	s.log.Info().Str("question_id", id.String()).Msg("Bank question deleted")
	return nil
}
