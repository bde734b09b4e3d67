package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamPayloadKey returns the cache key for an exam's student-facing payload.
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

// ExamAnswerKey returns the cache key for an exam's answer-key hash.
func (r *CacheKeyStruct) ExamAnswerKey(examID string) string {
	return fmt.Sprintf("exam:%s:key", examID)
}

// AttemptStartKey returns the cache key stamping when a user first fetched
// an exam. Used for server-side duration enforcement.
func (r *CacheKeyStruct) AttemptStartKey(examID string, userID int) string {
	return fmt.Sprintf("user:%d:exam:%s:started_at", userID, examID)
}

var CacheKey = NewCacheKeyStruct()
