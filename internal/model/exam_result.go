package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamResult records a graded attempt. At most one row exists per
// (exam, user) pair — both the electronic and the optical paths upsert
// against the unique constraint, so a repeat submission overwrites.
type ExamResult struct {
	ID          uuid.UUID `json:"id"`
	ExamID      uuid.UUID `json:"exam_id"`
	UserID      int       `json:"user_id"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}
