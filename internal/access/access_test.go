package access

import (
	"errors"
	"testing"
	"time"

	"github.com/edulab/assess-backend/internal/model"
)

const sebUA = "Mozilla/5.0 (Windows NT 10.0) SEB/3.5.0"

func examWith(deadline *time.Time, requiresSeb bool, duration *int) *model.Exam {
	return &model.Exam{
		Title:           "midterm",
		RequiresSeb:     requiresSeb,
		Deadline:        deadline,
		DurationMinutes: duration,
	}
}

func TestCheckFetch_DeadlineGate(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		deadline  *time.Time
		hasResult bool
		wantErr   error
	}{
		{name: "no deadline", deadline: nil, wantErr: nil},
		{name: "future deadline", deadline: &future, wantErr: nil},
		{name: "past deadline no result", deadline: &past, wantErr: ErrDeadlinePassed},
		{name: "past deadline with result allows review", deadline: &past, hasResult: true, wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckFetch(Request{
				Exam:      examWith(tc.deadline, false, nil),
				HasResult: tc.hasResult,
				UserAgent: "Mozilla/5.0",
				Now:       now,
			})
			if !errors.Is(err, tc.wantErr) && err != tc.wantErr {
				t.Errorf("CheckFetch() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCheckSubmit_DeadlineAppliesLikeFetch(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	err := CheckSubmit(Request{
		Exam:      examWith(&past, false, nil),
		UserAgent: "Mozilla/5.0",
		Now:       now,
	}, nil)
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Errorf("CheckSubmit() = %v, want ErrDeadlinePassed", err)
	}
}

func TestSebGate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		userAgent string
		wantErr   error
	}{
		{name: "plain browser rejected", userAgent: "Mozilla/5.0 (X11; Linux x86_64) Firefox/126.0", wantErr: ErrSebRequired},
		{name: "seb accepted", userAgent: sebUA, wantErr: nil},
		{name: "marker match is case-insensitive", userAgent: "something seb something", wantErr: nil},
		{name: "empty user agent rejected", userAgent: "", wantErr: ErrSebRequired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := Request{Exam: examWith(nil, true, nil), UserAgent: tc.userAgent, SebMarker: "seb", Now: now}
			if err := CheckFetch(req); !errors.Is(err, tc.wantErr) && err != tc.wantErr {
				t.Errorf("fetch: got %v, want %v", err, tc.wantErr)
			}
			if err := CheckSubmit(req, nil); !errors.Is(err, tc.wantErr) && err != tc.wantErr {
				t.Errorf("submit: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestDeadlineCheckedBeforeSeb(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	// Both gates would fail; the deadline signal must win.
	err := CheckFetch(Request{
		Exam:      examWith(&past, true, nil),
		UserAgent: "Mozilla/5.0",
		Now:       now,
	})
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Errorf("got %v, want ErrDeadlinePassed evaluated first", err)
	}
}

func TestCheckSubmit_AttemptTimer(t *testing.T) {
	now := time.Now()
	duration := 30

	tests := []struct {
		name      string
		startedAt *time.Time
		duration  *int
		wantErr   error
	}{
		{name: "within window", startedAt: timePtr(now.Add(-10 * time.Minute)), duration: &duration, wantErr: nil},
		{name: "exactly at limit", startedAt: timePtr(now.Add(-30 * time.Minute)), duration: &duration, wantErr: nil},
		{name: "past limit", startedAt: timePtr(now.Add(-31 * time.Minute)), duration: &duration, wantErr: ErrTimeExpired},
		{name: "no recorded start skips timer", startedAt: nil, duration: &duration, wantErr: nil},
		{name: "untimed exam skips timer", startedAt: timePtr(now.Add(-24 * time.Hour)), duration: nil, wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckSubmit(Request{
				Exam:      examWith(nil, false, tc.duration),
				UserAgent: "Mozilla/5.0",
				Now:       now,
			}, tc.startedAt)
			if !errors.Is(err, tc.wantErr) && err != tc.wantErr {
				t.Errorf("CheckSubmit() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
