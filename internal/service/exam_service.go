package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edulab/assess-backend/internal/assembly"
	"github.com/edulab/assess-backend/internal/config"
	"github.com/edulab/assess-backend/internal/model"
	"github.com/edulab/assess-backend/internal/repository"
)

// Domain Errors
var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrQuestionNotFound = errors.New("one or more selected questions do not exist in the bank")
	ErrInvalidQuestion  = errors.New("question payload has an unsupported type")
)

// ExamService handles exam authoring, assembly and Redis caching.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	rng          *rand.Rand
	log          zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		log:          log.With().Str("component", "exam_service").Logger(),
	}
}

// Create inserts a new exam, optionally with manually authored questions.
// Authored questions become exam-owned copies immediately; they never touch
// the bank.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	for i := range req.Questions {
		if !req.Questions[i].Type.Valid() {
			return nil, ErrInvalidQuestion
		}
	}

	exam := &model.Exam{
		Title:           req.Title,
		CourseID:        req.CourseID,
		DurationMinutes: req.DurationMinutes,
		Deadline:        req.Deadline,
		RequiresSeb:     req.RequiresSeb,
	}

	copies := make([]model.Question, 0, len(req.Questions))
	for _, p := range req.Questions {
		copies = append(copies, model.Question{
			ID:        uuid.New(),
			Text:      p.Text,
			Type:      p.Type,
			Structure: p.Structure,
			AnswerKey: p.AnswerKey,
			CourseID:  req.CourseID,
		})
	}

	// Exam row and authored questions land in one transaction; a failed
	// question insert leaves no empty exam behind.
	if err := s.examRepo.CreateWithQuestions(ctx, exam, copies); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	if len(copies) > 0 {
		if err := s.WarmExamCache(ctx, exam); err != nil {
			s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("cache warm failed after create")
		}
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Int("questions", len(req.Questions)).Msg("Exam created")
	return exam, nil
}

// GetByID retrieves an exam with its question snapshot.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	questions, err := s.questionRepo.ListByExam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	exam.Questions = questions
	return exam, nil
}

// ListByCourse retrieves a course's exams without question snapshots.
func (s *ExamService) ListByCourse(ctx context.Context, courseID int) ([]model.Exam, error) {
	return s.examRepo.ListByCourse(ctx, courseID)
}

// AddQuestions duplicates bank questions into an exam. Manual mode copies the
// exact ids given; random mode samples from the course bank, optionally
// filtered by type. Every path snapshots: the exam receives copies with fresh
// ids, so later bank edits cannot leak into it.
func (s *ExamService) AddQuestions(ctx context.Context, examID uuid.UUID, req *model.AddQuestionsRequest) (int, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrExamNotFound
		}
		return 0, err
	}

	var selected []model.Question
	if req.Random {
		pool, err := s.questionRepo.ListBank(ctx, exam.CourseID, req.TypeFilter)
		if err != nil {
			return 0, fmt.Errorf("list bank: %w", err)
		}
		selected, err = assembly.Sample(pool, req.Count, s.rng)
		if err != nil {
			return 0, err
		}
	} else {
		if len(req.QuestionIDs) == 0 {
			return 0, assembly.ErrNoQuestionsSelected
		}
		found, err := s.questionRepo.GetBankByIDs(ctx, req.QuestionIDs)
		if err != nil {
			return 0, fmt.Errorf("get bank questions: %w", err)
		}
		if len(found) != len(req.QuestionIDs) {
			return 0, ErrQuestionNotFound
		}
		// Preserve the caller's ordering.
		byID := make(map[uuid.UUID]*model.Question, len(found))
		for i := range found {
			byID[found[i].ID] = &found[i]
		}
		for _, id := range req.QuestionIDs {
			q, ok := byID[id]
			if !ok {
				return 0, ErrQuestionNotFound
			}
			selected = append(selected, *q)
		}
	}

	copies := make([]model.Question, 0, len(selected))
	for i := range selected {
		copies = append(copies, assembly.Duplicate(&selected[i], examID))
	}

	added, err := s.questionRepo.InsertExamCopies(ctx, examID, copies)
	if err != nil {
		return 0, fmt.Errorf("insert copies: %w", err)
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("cache warm failed after add")
	}

	s.log.Info().Str("exam_id", examID.String()).Int("added", added).Msg("Questions added to exam")
	return added, nil
}

// cachedKeyEntry is the per-question value stored in the answer-key hash.
// Enough to grade a submission without touching PostgreSQL.
type cachedKeyEntry struct {
	Type model.QuestionType `json:"type"`
	Key  json.RawMessage    `json:"key,omitempty"`
}

// WarmExamCache loads an exam's student payload and answer key from
// PostgreSQL into Redis. Both land atomically via pipeline so a reader never
// sees a payload without its matching key.
func (s *ExamService) WarmExamCache(ctx context.Context, exam *model.Exam) error {
	questions, err := s.questionRepo.ListByExam(ctx, exam.ID)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil // Nothing to warm yet.
	}

	payload := model.ExamPayload{
		ExamID:          exam.ID,
		Title:           exam.Title,
		CourseID:        exam.CourseID,
		DurationMinutes: exam.DurationMinutes,
		Deadline:        exam.Deadline,
		RequiresSeb:     exam.RequiresSeb,
		Questions:       make([]model.QuestionForStudent, 0, len(questions)),
	}
	for i := range questions {
		payload.Questions = append(payload.Questions, questions[i].ForStudent())
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	answerKey := make(map[string]interface{}, len(questions))
	for i := range questions {
		entry, err := json.Marshal(cachedKeyEntry{Type: questions[i].Type, Key: questions[i].AnswerKey})
		if err != nil {
			return fmt.Errorf("marshal key entry: %w", err)
		}
		answerKey[questions[i].ID.String()] = string(entry)
	}

	// Cache both atomically via pipeline.
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExamPayloadKey(exam.ID.String()), payloadJSON, 0)
	pipe.Del(ctx, config.CacheKey.ExamAnswerKey(exam.ID.String()))
	pipe.HSet(ctx, config.CacheKey.ExamAnswerKey(exam.ID.String()), answerKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("exam_id", exam.ID.String()).
		Int("questions", len(questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches warms every exam's cache. Used at startup and by the
// background worker.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.examRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}

	warmed := 0
	for i := range exams {
		if err := s.WarmExamCache(ctx, &exams[i]); err != nil {
			s.log.Warn().Err(err).Str("exam_id", exams[i].ID.String()).Msg("cache warm failed")
			continue
		}
		warmed++
	}

	s.log.Info().Int("warmed", warmed).Int("total", len(exams)).Msg("Exam caches prewarmed")
	return nil
}

// GetPayload returns the student-facing exam payload, served from Redis when
// warm and rebuilt from PostgreSQL on a miss.
func (s *ExamService) GetPayload(ctx context.Context, examID uuid.UUID) (*model.ExamPayload, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.ExamPayloadKey(examID.String())).Result()
	if err == nil {
		payload := &model.ExamPayload{}
		if err := json.Unmarshal([]byte(raw), payload); err == nil {
			return payload, nil
		}
		// Corrupt cache entry falls through to the rebuild path.
	} else if err != redis.Nil {
		s.log.Warn().Err(err).Msg("payload cache read failed")
	}

	exam, err := s.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	payload := &model.ExamPayload{
		ExamID:          exam.ID,
		Title:           exam.Title,
		CourseID:        exam.CourseID,
		DurationMinutes: exam.DurationMinutes,
		Deadline:        exam.Deadline,
		RequiresSeb:     exam.RequiresSeb,
		Questions:       make([]model.QuestionForStudent, 0, len(exam.Questions)),
	}
	for i := range exam.Questions {
		payload.Questions = append(payload.Questions, exam.Questions[i].ForStudent())
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("cache warm failed on miss")
	}
	return payload, nil
}

// GetCachedAnswerKeys reads the grading fast lane: the per-question type and
// answer key hash warmed by WarmExamCache. Returns nil (no error) on a cache
// miss so callers can fall back to PostgreSQL.
func (s *ExamService) GetCachedAnswerKeys(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	entries, err := s.rdb.HGetAll(ctx, config.CacheKey.ExamAnswerKey(examID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("read answer key cache: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	questions := make([]model.Question, 0, len(entries))
	for field, raw := range entries {
		id, err := uuid.Parse(field)
		if err != nil {
			return nil, fmt.Errorf("corrupt answer key field %q", field)
		}
		var entry cachedKeyEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("corrupt answer key entry %q: %w", field, err)
		}
		questions = append(questions, model.Question{ID: id, Type: entry.Type, AnswerKey: entry.Key})
	}
	return questions, nil
}

// MarkAttemptStarted stamps the server-side start of a user's attempt. Only
// the first call wins; retries and refreshes keep the original stamp, so the
// duration clock cannot be reset by re-fetching.
func (s *ExamService) MarkAttemptStarted(ctx context.Context, examID uuid.UUID, userID int, now time.Time, duration *int) error {
	if duration == nil {
		return nil // Untimed exams need no stamp.
	}
	key := config.CacheKey.AttemptStartKey(examID.String(), userID)
	// Keep the stamp well past the attempt window for late audits.
	ttl := time.Duration(*duration)*time.Minute + 24*time.Hour
	return s.rdb.SetNX(ctx, key, now.Unix(), ttl).Err()
}

// GetAttemptStart returns when the user first fetched the exam, or nil if no
// stamp exists.
func (s *ExamService) GetAttemptStart(ctx context.Context, examID uuid.UUID, userID int) (*time.Time, error) {
	key := config.CacheKey.AttemptStartKey(examID.String(), userID)
	unix, err := s.rdb.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	t := time.Unix(unix, 0)
	return &t, nil
}
