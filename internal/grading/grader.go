// Package grading implements the pure scoring contract for exam submissions.
// Comparators never return errors: a malformed or type-mismatched answer is
// simply incorrect, so one bad payload cannot abort scoring of the rest of
// the exam.
package grading

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/edulab/assess-backend/internal/model"
)

// Summary is the aggregate outcome of grading one submission.
type Summary struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correct_count"`
	Total        int `json:"total"`
}

// Grade scores a submission against an exam's question list. Answers are
// keyed by question ID; missing answers count as incorrect. The score is
// round(correct/total*100), or 0 for an exam with no questions.
func Grade(questions []model.Question, answers map[uuid.UUID]interface{}) Summary {
	total := len(questions)
	if total == 0 {
		return Summary{Score: 0, CorrectCount: 0, Total: 0}
	}

	correct := 0
	for i := range questions {
		if IsCorrect(&questions[i], answers[questions[i].ID]) {
			correct++
		}
	}

	score := int(math.Round(float64(correct) / float64(total) * 100))
	return Summary{Score: score, CorrectCount: correct, Total: total}
}

// IsCorrect compares a submitted answer against the question's answer key
// using the type-specific comparator. Manual-grading types (LONG_ANSWER,
// CODE_SNIPPET) always return false; they still count in the denominator.
func IsCorrect(q *model.Question, answer interface{}) (correct bool) {
	// A comparator must never take the whole submission down with it.
	defer func() {
		if recover() != nil {
			correct = false
		}
	}()

	key := decodeKey(q.AnswerKey)

	switch q.Type {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse:
		return Stringify(answer) == Stringify(key)

	case model.QuestionTypeMultipleSelect:
		return equalAsSortedLists(answer, key)

	case model.QuestionTypeShortAnswer:
		a, aok := answer.(string)
		k, kok := key.(string)
		return aok && kok && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(k))

	case model.QuestionTypeOrdering:
		return equalAsOrderedLists(answer, key)

	case model.QuestionTypeMatching:
		return equalAsMaps(answer, key)

	case model.QuestionTypeFillInBlanks:
		return equalAsBlankLists(answer, key)

	case model.QuestionTypeNumeric:
		if answer == nil {
			return false
		}
		a, aok := toNumber(answer)
		k, kok := toNumber(key)
		return aok && kok && a == k

	case model.QuestionTypeLongAnswer, model.QuestionTypeCodeSnippet:
		// Manual grading required; no auto credit.
		return false
	}

	return false
}

// decodeKey unwraps the stored answer key JSON into a comparable value.
// A missing or null key decodes to nil.
func decodeKey(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// Stringify renders a value the way loosely-typed clients do: numbers keep
// their shortest decimal form ("4", "4.5"), booleans become "true"/"false",
// nil becomes "null", everything else falls back to its JSON encoding.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(t)
	case json.Number:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func formatNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

// canonical returns the JSON encoding of a decoded value, used where the
// comparison must distinguish "1" from 1.
func canonical(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "\x00unencodable"
	}
	return string(b)
}

// equalAsSortedLists implements set semantics with significant duplicates:
// both sides are sorted independently, then compared element-wise.
func equalAsSortedLists(a, b interface{}) bool {
	as, aok := a.([]interface{})
	bs, bok := b.([]interface{})
	if !aok || !bok || len(as) != len(bs) {
		return false
	}

	sortedA := append([]interface{}(nil), as...)
	sortedB := append([]interface{}(nil), bs...)
	byString := func(s []interface{}) func(i, j int) bool {
		return func(i, j int) bool { return Stringify(s[i]) < Stringify(s[j]) }
	}
	sort.SliceStable(sortedA, byString(sortedA))
	sort.SliceStable(sortedB, byString(sortedB))

	for i := range sortedA {
		if canonical(sortedA[i]) != canonical(sortedB[i]) {
			return false
		}
	}
	return true
}

// equalAsOrderedLists compares two lists positionally. Order matters.
func equalAsOrderedLists(a, b interface{}) bool {
	as, aok := a.([]interface{})
	bs, bok := b.([]interface{})
	if !aok || !bok || len(as) != len(bs) {
		return false
	}
	for i := range as {
		if canonical(as[i]) != canonical(bs[i]) {
			return false
		}
	}
	return true
}

// equalAsMaps requires identical key sets and an identical value per key.
func equalAsMaps(a, b interface{}) bool {
	am, aok := a.(map[string]interface{})
	bm, bok := b.(map[string]interface{})
	if !aok || !bok || len(am) != len(bm) {
		return false
	}
	for k, av := range am {
		bv, ok := bm[k]
		if !ok {
			return false
		}
		if isComposite(av) || isComposite(bv) {
			return false
		}
		if canonical(av) != canonical(bv) {
			return false
		}
	}
	return true
}

func isComposite(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return true
	}
	return false
}

// equalAsBlankLists compares fill-in-the-blank lists pairwise, trimmed and
// case-insensitively. Lengths must match.
func equalAsBlankLists(a, b interface{}) bool {
	as, aok := a.([]interface{})
	bs, bok := b.([]interface{})
	if !aok || !bok || len(as) != len(bs) {
		return false
	}
	for i := range as {
		ua := strings.TrimSpace(Stringify(as[i]))
		ub := strings.TrimSpace(Stringify(bs[i]))
		if !strings.EqualFold(ua, ub) {
			return false
		}
	}
	return true
}

// toNumber coerces a decoded JSON value to a float64 where possible.
func toNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return parseFloatLoose(t)
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func parseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
