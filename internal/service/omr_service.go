package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edulab/assess-backend/internal/model"
	"github.com/edulab/assess-backend/internal/omr"
	"github.com/edulab/assess-backend/internal/repository"
)

// ErrFormNotDetected is returned when a pre-flight image does not look like
// an answer form.
var ErrFormNotDetected = errors.New("no answer form detected in image")

// ReconcileOutcome is the full result of an optical reconciliation: the
// per-question comparison plus the persisted result when a student was named.
type ReconcileOutcome struct {
	omr.Result
	CorrectLetters []string          `json:"correct_letters"`
	ExamResult     *model.ExamResult `json:"exam_result,omitempty"`
}

// OmrService reconciles paper answer sheets against an exam's answer key.
type OmrService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	resultRepo   *repository.ResultRepository
	log          zerolog.Logger
}

// NewOmrService creates a new OmrService.
func NewOmrService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	log zerolog.Logger,
) *OmrService {
	return &OmrService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		log:          log.With().Str("component", "omr_service").Logger(),
	}
}

// Preflight measures whether an uploaded image plausibly shows an answer
// form. The stats come back even on rejection so the operator can see which
// check failed.
func (s *OmrService) Preflight(_ context.Context, r io.Reader) (omr.PreflightStats, error) {
	stats, err := omr.Preflight(r)
	if err != nil {
		return stats, err
	}

	s.log.Debug().
		Float64("aspect_ratio", stats.AspectRatio).
		Float64("brightness", stats.Brightness).
		Float64("contrast", stats.Contrast).
		Bool("detected", stats.FormDetected()).
		Msg("Preflight analyzed")

	if !stats.FormDetected() {
		return stats, ErrFormNotDetected
	}
	return stats, nil
}

// Reconcile compares detected bubble letters against the exam's derived
// answer letters. Only MULTIPLE_CHOICE questions participate; every other
// type is invisible to the optical path. When userID is non-nil the optical
// score is persisted through the same upsert as electronic submissions.
func (s *OmrService) Reconcile(ctx context.Context, examID uuid.UUID, detected []string, userID *int) (*ReconcileOutcome, error) {
	if _, err := s.examRepo.GetByID(ctx, examID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	correct := omr.DeriveCorrectLetters(questions)
	outcome := &ReconcileOutcome{
		Result:         omr.Compare(detected, correct),
		CorrectLetters: correct,
	}

	if userID != nil {
		result := &model.ExamResult{ExamID: examID, UserID: *userID, Score: outcome.Score}
		if err := s.resultRepo.Upsert(ctx, result); err != nil {
			return nil, fmt.Errorf("persist optical result: %w", err)
		}
		outcome.ExamResult = result
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("compared", outcome.ComparedCount).
		Int("correct", outcome.CorrectCount).
		Int("score", outcome.Score).
		Bool("persisted", userID != nil).
		Msg("Optical sheet reconciled")
	return outcome, nil
}
