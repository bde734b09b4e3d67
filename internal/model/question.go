package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds. Structure and
// AnswerKey are interpreted per type; see the grading package for the
// comparator each type uses.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeMultipleSelect QuestionType = "MULTIPLE_SELECT"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
	QuestionTypeLongAnswer     QuestionType = "LONG_ANSWER"
	QuestionTypeOrdering       QuestionType = "ORDERING"
	QuestionTypeMatching       QuestionType = "MATCHING"
	QuestionTypeFillInBlanks   QuestionType = "FILL_IN_BLANKS"
	QuestionTypeNumeric        QuestionType = "NUMERIC"
	QuestionTypeCodeSnippet    QuestionType = "CODE_SNIPPET"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeMultipleSelect,
		QuestionTypeTrueFalse, QuestionTypeShortAnswer,
		QuestionTypeLongAnswer, QuestionTypeOrdering,
		QuestionTypeMatching, QuestionTypeFillInBlanks,
		QuestionTypeNumeric, QuestionTypeCodeSnippet:
		return true
	}
	return false
}

// Question is a single question row. A nil ExamID means the row lives in the
// reusable bank for its course; a non-nil ExamID marks a frozen copy owned by
// exactly one exam. Structure and AnswerKey are stored as raw JSONB and
// decoded per type where they are consumed.
type Question struct {
	ID        uuid.UUID       `json:"id"`
	Text      string          `json:"text"`
	Type      QuestionType    `json:"type"`
	Structure json.RawMessage `json:"structure"`
	AnswerKey json.RawMessage `json:"answer_key,omitempty"`
	CourseID  int             `json:"course_id"`
	ExamID    *uuid.UUID      `json:"exam_id,omitempty"`
	// Position orders questions within an exam. Zero for bank rows.
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// IsBankQuestion reports whether the question belongs to the reusable bank.
func (q *Question) IsBankQuestion() bool {
	return q.ExamID == nil
}

// Option is one selectable entry in a choice structure.
type Option struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

// ChoiceStructure is the structure shape for MULTIPLE_CHOICE,
// MULTIPLE_SELECT and TRUE_FALSE questions.
type ChoiceStructure struct {
	Options []Option `json:"options"`
}

// OrderingStructure is the structure shape for ORDERING questions.
type OrderingStructure struct {
	Items []Option `json:"items"`
}

// MatchPair is one left/right pair in a MATCHING structure.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// MatchingStructure is the structure shape for MATCHING questions.
type MatchingStructure struct {
	Pairs []MatchPair `json:"pairs"`
}

// QuestionPayload is the authoring payload for a question, used both for
// bank creation and for manual exam assembly.
type QuestionPayload struct {
	Text      string          `json:"text" binding:"required,min=1,max=4000"`
	Type      QuestionType    `json:"type" binding:"required"`
	Structure json.RawMessage `json:"structure" binding:"required"`
	AnswerKey json.RawMessage `json:"answer_key"`
}

// QuestionForStudent is a question stripped of its answer key, safe to send
// to an exam taker.
type QuestionForStudent struct {
	ID        uuid.UUID       `json:"id"`
	Text      string          `json:"text"`
	Type      QuestionType    `json:"type"`
	Structure json.RawMessage `json:"structure"`
}

// ForStudent returns the answer-key-free view of the question.
func (q *Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:        q.ID,
		Text:      q.Text,
		Type:      q.Type,
		Structure: q.Structure,
	}
}
