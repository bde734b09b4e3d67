package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is an exam entity. Its question list is a frozen snapshot: questions
// are always duplicated into the exam, never referenced from the bank, so
// later bank edits cannot change an already-built exam.
type Exam struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	CourseID int       `json:"course_id"`
	// DurationMinutes is the time allowed per attempt. Nil means unlimited.
	DurationMinutes *int `json:"duration_minutes,omitempty"`
	// Deadline is the hard cut-off after which the exam closes for anyone
	// without a recorded result. Nil means no deadline.
	Deadline    *time.Time `json:"deadline,omitempty"`
	RequiresSeb bool       `json:"requires_seb"`
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `json:"questions,omitempty"`
}

// CreateExamRequest is the payload for creating a new exam with optional
// manually authored questions.
type CreateExamRequest struct {
	Title           string            `json:"title" binding:"required,min=3,max=255"`
	CourseID        int               `json:"course_id" binding:"required,min=1"`
	DurationMinutes *int              `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Deadline        *time.Time        `json:"deadline" binding:"omitempty"`
	RequiresSeb     bool              `json:"requires_seb"`
	Questions       []QuestionPayload `json:"questions" binding:"omitempty,dive"`
}

// AddQuestionsRequest selects bank questions to duplicate into an exam.
// Either QuestionIDs (manual mode) or Random+Count (random mode) is used.
type AddQuestionsRequest struct {
	QuestionIDs []uuid.UUID  `json:"question_ids" binding:"omitempty"`
	Random      bool         `json:"random"`
	Count       int          `json:"count" binding:"omitempty,min=1"`
	TypeFilter  QuestionType `json:"type_filter" binding:"omitempty"`
}

// SubmitExamRequest carries a student's answers keyed by question ID. Values
// are left untyped; the grading comparators interpret them per question type.
type SubmitExamRequest struct {
	Answers map[string]interface{} `json:"answers" binding:"required"`
}

// ExamPayload is the Redis-cached, student-facing exam view (no answer keys).
type ExamPayload struct {
	ExamID          uuid.UUID            `json:"exam_id"`
	Title           string               `json:"title"`
	CourseID        int                  `json:"course_id"`
	DurationMinutes *int                 `json:"duration_minutes,omitempty"`
	Deadline        *time.Time           `json:"deadline,omitempty"`
	RequiresSeb     bool                 `json:"requires_seb"`
	Questions       []QuestionForStudent `json:"questions"`
}
