package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edulab/assess-backend/internal/access"
	"github.com/edulab/assess-backend/internal/grading"
	"github.com/edulab/assess-backend/internal/model"
	"github.com/edulab/assess-backend/internal/repository"
)

// ErrResultNotFound is returned when a caller has no recorded result.
var ErrResultNotFound = errors.New("no result recorded for this exam")

// SubmissionService handles the student-facing attempt lifecycle: gated
// fetch, gated submit, grading and result persistence.
type SubmissionService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	resultRepo   *repository.ResultRepository
	examSvc      *ExamService
	log          zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	examSvc *ExamService,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		examSvc:      examSvc,
		log:          log.With().Str("component", "submission_service").Logger(),
	}
}

// TakeExam gates and serves an exam fetch for a student. On the first timed
// fetch the attempt clock starts server-side; re-fetching never resets it.
// Access failures surface as the typed errors from the access package.
func (s *SubmissionService) TakeExam(ctx context.Context, examID uuid.UUID, userID int, userAgent, sebMarker string, now time.Time) (*model.ExamPayload, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	hasResult, err := s.hasResult(ctx, examID, userID)
	if err != nil {
		return nil, err
	}

	if err := access.CheckFetch(access.Request{
		Exam:      exam,
		HasResult: hasResult,
		UserAgent: userAgent,
		SebMarker: sebMarker,
		Now:       now,
	}); err != nil {
		return nil, err
	}

	if err := s.examSvc.MarkAttemptStarted(ctx, examID, userID, now, exam.DurationMinutes); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("attempt start stamp failed")
	}

	return s.examSvc.GetPayload(ctx, examID)
}

// Submit gates, grades and persists a student submission. Answers are keyed
// by question ID string; unknown or unparseable keys are ignored and the
// corresponding questions score as incorrect. Resubmission overwrites the
// earlier result.
func (s *SubmissionService) Submit(ctx context.Context, examID uuid.UUID, userID int, userAgent, sebMarker string, req *model.SubmitExamRequest, now time.Time) (*model.ExamResult, grading.Summary, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, grading.Summary{}, ErrExamNotFound
		}
		return nil, grading.Summary{}, err
	}

	hasResult, err := s.hasResult(ctx, examID, userID)
	if err != nil {
		return nil, grading.Summary{}, err
	}

	startedAt, err := s.examSvc.GetAttemptStart(ctx, examID, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("attempt start read failed")
		startedAt = nil // Grade anyway; the deadline gate still applies.
	}

	if err := access.CheckSubmit(access.Request{
		Exam:      exam,
		HasResult: hasResult,
		UserAgent: userAgent,
		SebMarker: sebMarker,
		Now:       now,
	}, startedAt); err != nil {
		return nil, grading.Summary{}, err
	}

	questions, err := s.gradableQuestions(ctx, examID)
	if err != nil {
		return nil, grading.Summary{}, err
	}

	answers := make(map[uuid.UUID]interface{}, len(req.Answers))
	for k, v := range req.Answers {
		id, err := uuid.Parse(k)
		if err != nil {
			continue
		}
		answers[id] = v
	}

	summary := grading.Grade(questions, answers)

	result := &model.ExamResult{ExamID: examID, UserID: userID, Score: summary.Score}
	if err := s.resultRepo.Upsert(ctx, result); err != nil {
		return nil, grading.Summary{}, fmt.Errorf("persist result: %w", err)
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("user_id", userID).
		Int("score", summary.Score).
		Int("correct", summary.CorrectCount).
		Int("total", summary.Total).
		Msg("Submission graded")
	return result, summary, nil
}

// GetResult returns the caller's recorded result.
func (s *SubmissionService) GetResult(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error) {
	res, err := s.resultRepo.GetByExamAndUser(ctx, examID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return res, nil
}

// ListResults returns every result for an exam (teacher view).
func (s *SubmissionService) ListResults(ctx context.Context, examID uuid.UUID) ([]model.ExamResult, error) {
	if _, err := s.examRepo.GetByID(ctx, examID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return s.resultRepo.ListByExam(ctx, examID)
}

func (s *SubmissionService) hasResult(ctx context.Context, examID uuid.UUID, userID int) (bool, error) {
	_, err := s.resultRepo.GetByExamAndUser(ctx, examID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// gradableQuestions prefers the Redis answer-key fast lane and falls back to
// PostgreSQL on a cold or unavailable cache.
func (s *SubmissionService) gradableQuestions(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	cached, err := s.examSvc.GetCachedAnswerKeys(ctx, examID)
	if err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("answer key cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}
