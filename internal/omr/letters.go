// Package omr reconciles a scanned paper answer sheet against an exam. The
// image has already been reduced to per-question letters by an external
// analysis step; this package re-derives the canonical correct letter for
// each multiple-choice question from the stored question data and compares
// the two sequences positionally.
package omr

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/edulab/assess-backend/internal/grading"
	"github.com/edulab/assess-backend/internal/model"
)

// Unknown marks a position where no letter could be determined, either an
// unreadable mark on the sheet or an answer key that maps to no option.
const Unknown = "?"

// maxOptionLetters bounds derivable letters to A through E, the width of a
// standard optical form row.
const maxOptionLetters = 5

// Comparison is the per-question outcome of one reconciliation.
type Comparison struct {
	Position int    `json:"position"`
	Detected string `json:"detected"`
	Correct  string `json:"correct"`
	Match    bool   `json:"match"`
}

// Result is the outcome of comparing detected letters against the derived
// answer key.
type Result struct {
	Score         int          `json:"score"`
	CorrectCount  int          `json:"correct_count"`
	ComparedCount int          `json:"compared_count"`
	Comparison    []Comparison `json:"comparison"`
}

// DeriveCorrectLetters returns the canonical correct-answer letter for each
// MULTIPLE_CHOICE question, in exam-question order. Other question types are
// excluded from the optical pipeline entirely.
func DeriveCorrectLetters(questions []model.Question) []string {
	var letters []string
	for i := range questions {
		if questions[i].Type != model.QuestionTypeMultipleChoice {
			continue
		}
		letters = append(letters, deriveLetter(&questions[i]))
	}
	return letters
}

// deriveLetter resolves a question's answer key to a letter by precedence:
// an explicit letter A–E, then the matching option text, then a zero-based
// option index, then Unknown.
func deriveLetter(q *model.Question) string {
	key := strings.TrimSpace(keyAsString(q.AnswerKey))
	if key == "" {
		return Unknown
	}

	if len(key) == 1 {
		upper := strings.ToUpper(key)
		if upper[0] >= 'A' && upper[0] < 'A'+maxOptionLetters {
			return upper
		}
	}

	var structure model.ChoiceStructure
	if err := json.Unmarshal(q.Structure, &structure); err == nil {
		for i, opt := range structure.Options {
			if opt.Text == key {
				return indexToLetter(i)
			}
		}

		if idx, err := strconv.Atoi(key); err == nil && idx >= 0 && idx < len(structure.Options) {
			return indexToLetter(idx)
		}
	}

	return Unknown
}

func indexToLetter(i int) string {
	if i < 0 || i >= maxOptionLetters {
		return Unknown
	}
	return string(rune('A' + i))
}

func keyAsString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	if v == nil {
		return ""
	}
	return grading.Stringify(v)
}

// Compare matches detected letters against the derived correct letters
// positionally over the shorter of the two sequences; excess on either side
// is ignored, not penalized. A detected Unknown never scores.
func Compare(detected, correct []string) Result {
	compared := len(detected)
	if len(correct) < compared {
		compared = len(correct)
	}

	res := Result{
		ComparedCount: compared,
		Comparison:    make([]Comparison, 0, compared),
	}

	for i := 0; i < compared; i++ {
		d := normalizeLetter(detected[i])
		c := normalizeLetter(correct[i])
		match := d != Unknown && d == c

		if match {
			res.CorrectCount++
		}
		res.Comparison = append(res.Comparison, Comparison{
			Position: i + 1,
			Detected: d,
			Correct:  c,
			Match:    match,
		})
	}

	if compared > 0 {
		res.Score = int(math.Round(float64(res.CorrectCount) / float64(compared) * 100))
	}
	return res
}

func normalizeLetter(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Unknown
	}
	return s
}
