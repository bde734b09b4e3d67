package assembly

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/edulab/assess-backend/internal/model"
)

func bankQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:        uuid.New(),
			Text:      "bank question",
			Type:      model.QuestionTypeMultipleChoice,
			Structure: json.RawMessage(`{"options":[{"text":"A"},{"text":"B"}]}`),
			AnswerKey: json.RawMessage(`"A"`),
			CourseID:  7,
		}
	}
	return qs
}

func TestSample_NoDuplicatesAndExactCount(t *testing.T) {
	pool := bankQuestions(20)
	rng := rand.New(rand.NewSource(42))

	got, err := Sample(pool, 8, rng)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}

	seen := make(map[uuid.UUID]bool, len(got))
	for _, q := range got {
		if seen[q.ID] {
			t.Errorf("question %s sampled twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSample_DeterministicWithSeed(t *testing.T) {
	pool := bankQuestions(10)

	a, err := Sample(pool, 5, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Sample(pool, 5, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}

	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("same seed produced different samples at index %d", i)
		}
	}
}

func TestSample_Shortfalls(t *testing.T) {
	pool := bankQuestions(3)

	if _, err := Sample(pool, 4, rand.New(rand.NewSource(1))); !errors.Is(err, ErrInsufficientBank) {
		t.Errorf("oversized count: err = %v, want ErrInsufficientBank", err)
	}
	if _, err := Sample(nil, 1, rand.New(rand.NewSource(1))); !errors.Is(err, ErrNoQuestionsSelected) {
		t.Errorf("empty pool: err = %v, want ErrNoQuestionsSelected", err)
	}
	if _, err := Sample(pool, 0, rand.New(rand.NewSource(1))); !errors.Is(err, ErrNoQuestionsSelected) {
		t.Errorf("zero count: err = %v, want ErrNoQuestionsSelected", err)
	}
	if _, err := Sample(pool, -2, rand.New(rand.NewSource(1))); !errors.Is(err, ErrNoQuestionsSelected) {
		t.Errorf("negative count: err = %v, want ErrNoQuestionsSelected", err)
	}
}

func TestSample_DoesNotMutatePool(t *testing.T) {
	pool := bankQuestions(6)
	order := make([]uuid.UUID, len(pool))
	for i, q := range pool {
		order[i] = q.ID
	}

	if _, err := Sample(pool, 6, rand.New(rand.NewSource(3))); err != nil {
		t.Fatal(err)
	}

	for i := range pool {
		if pool[i].ID != order[i] {
			t.Fatal("Sample reordered the caller's slice")
		}
	}
}

func TestDuplicate_PreservesContentChangesIdentity(t *testing.T) {
	src := bankQuestions(1)[0]
	examID := uuid.New()

	dup := Duplicate(&src, examID)

	if dup.ID == src.ID {
		t.Error("duplicate kept the source identity")
	}
	if dup.ExamID == nil || *dup.ExamID != examID {
		t.Error("duplicate not owned by the target exam")
	}
	if dup.Text != src.Text || dup.Type != src.Type || dup.CourseID != src.CourseID {
		t.Error("duplicate altered copied fields")
	}
	if !bytes.Equal(dup.Structure, src.Structure) || !bytes.Equal(dup.AnswerKey, src.AnswerKey) {
		t.Error("structure/answer key not preserved byte for byte")
	}

	// The copy must be independent: mutating it cannot reach the bank row.
	dup.Structure[0] = 'X'
	if bytes.Equal(dup.Structure, src.Structure) {
		t.Error("duplicate shares backing storage with the bank question")
	}
}
