// Package assembly builds an exam's frozen question snapshot from the
// reusable bank. Questions are always duplicated, never referenced, so bank
// edits and deletions can never reach into an already-built exam.
package assembly

import (
	"errors"
	"math/rand"

	"github.com/google/uuid"

	"github.com/edulab/assess-backend/internal/model"
)

var (
	// ErrNoQuestionsSelected means the selection resolved to zero bank rows.
	ErrNoQuestionsSelected = errors.New("no questions selected")
	// ErrInsufficientBank means a random sample asked for more questions
	// than the bank holds. The shortfall is signalled, never silently
	// truncated.
	ErrInsufficientBank = errors.New("not enough bank questions to sample")
)

// Sample picks count questions uniformly at random from the bank pool using
// the injected source. The pool is never mutated; the result holds no
// duplicates because the shuffle permutes distinct rows.
func Sample(pool []model.Question, count int, rng *rand.Rand) ([]model.Question, error) {
	if count < 1 || len(pool) == 0 {
		return nil, ErrNoQuestionsSelected
	}
	if count > len(pool) {
		return nil, ErrInsufficientBank
	}

	shuffled := append([]model.Question(nil), pool...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:count], nil
}

// Duplicate copies a bank question into an exam-owned row. Text, type,
// structure and answer key are preserved byte for byte; only the identity
// and ownership change.
func Duplicate(src *model.Question, examID uuid.UUID) model.Question {
	dst := model.Question{
		ID:       uuid.New(),
		Text:     src.Text,
		Type:     src.Type,
		CourseID: src.CourseID,
	}
	eid := examID
	dst.ExamID = &eid

	if src.Structure != nil {
		dst.Structure = append([]byte(nil), src.Structure...)
	}
	if src.AnswerKey != nil {
		dst.AnswerKey = append([]byte(nil), src.AnswerKey...)
	}
	return dst
}
