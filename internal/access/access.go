// Package access decides whether a caller may fetch or submit a given exam
// right now. The evaluation is stateless and per-request: deadline first,
// then the lockdown-browser requirement, then (submit only) the attempt
// timer.
package access

import (
	"errors"
	"strings"
	"time"

	"github.com/edulab/assess-backend/internal/model"
)

// Typed gate failures. Handlers map these to their wire signals so clients
// can render the right remediation (lockdown download, "exam closed", ...).
var (
	ErrDeadlinePassed = errors.New("exam deadline has passed")
	ErrSebRequired    = errors.New("exam requires the lockdown browser")
	ErrTimeExpired    = errors.New("exam attempt time has expired")
)

// Request carries everything the gate needs about one fetch/submit attempt.
type Request struct {
	Exam *model.Exam
	// HasResult is true when the caller already has a recorded result for
	// this exam. A past deadline then still permits a read-only fetch.
	HasResult bool
	UserAgent string
	// SebMarker is the case-insensitive substring identifying the lockdown
	// browser in the User-Agent header.
	SebMarker string
	Now       time.Time
}

// CheckFetch gates an exam read.
func CheckFetch(req Request) error {
	return gate(req)
}

// CheckSubmit gates an exam submission. startedAt is the server-side stamp
// of the caller's first fetch; nil skips the timer (untimed exams or paths
// that never fetched, like optical reconciliation).
func CheckSubmit(req Request, startedAt *time.Time) error {
	if err := gate(req); err != nil {
		return err
	}

	if req.Exam.DurationMinutes != nil && startedAt != nil {
		allowed := time.Duration(*req.Exam.DurationMinutes) * time.Minute
		if req.Now.After(startedAt.Add(allowed)) {
			return ErrTimeExpired
		}
	}
	return nil
}

func gate(req Request) error {
	exam := req.Exam

	if exam.Deadline != nil && req.Now.After(*exam.Deadline) && !req.HasResult {
		return ErrDeadlinePassed
	}

	if exam.RequiresSeb && !IsSebUserAgent(req.UserAgent, req.SebMarker) {
		return ErrSebRequired
	}

	return nil
}

// IsSebUserAgent reports whether the user agent carries the lockdown-browser
// signature. The match is a case-insensitive substring check.
func IsSebUserAgent(userAgent, marker string) bool {
	if marker == "" {
		marker = "seb"
	}
	return strings.Contains(strings.ToLower(userAgent), strings.ToLower(marker))
}
