package omr

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/edulab/assess-backend/internal/model"
)

func mcQuestion(t *testing.T, optionTexts []string, answerKey string) model.Question {
	t.Helper()
	structure := model.ChoiceStructure{}
	for _, text := range optionTexts {
		structure.Options = append(structure.Options, model.Option{Text: text})
	}
	raw, err := json.Marshal(structure)
	if err != nil {
		t.Fatal(err)
	}
	return model.Question{
		ID:        uuid.New(),
		Text:      "q",
		Type:      model.QuestionTypeMultipleChoice,
		Structure: raw,
		AnswerKey: json.RawMessage(answerKey),
	}
}

func TestDeriveCorrectLetters_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		key     string
		want    string
	}{
		{name: "direct letter", options: []string{"x", "y"}, key: `"B"`, want: "B"},
		{name: "direct letter lowercased", options: []string{"x", "y"}, key: `"c"`, want: "C"},
		{name: "option text match", options: []string{"3", "4", "5"}, key: `"4"`, want: "B"},
		{name: "option text match wins over index", options: []string{"1", "0"}, key: `"0"`, want: "B"},
		{name: "numeric key as option text", options: []string{"3", "4", "5"}, key: `4`, want: "B"},
		{name: "zero-based index fallback", options: []string{"red", "green", "blue"}, key: `"2"`, want: "C"},
		{name: "index out of range", options: []string{"red", "green"}, key: `"5"`, want: Unknown},
		{name: "text match beyond letter E", options: []string{"a1", "a2", "a3", "a4", "a5", "target"}, key: `"target"`, want: Unknown},
		{name: "unresolvable key", options: []string{"red", "green"}, key: `"yellow"`, want: Unknown},
		{name: "null key", options: []string{"red", "green"}, key: `null`, want: Unknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := mcQuestion(t, tc.options, tc.key)
			got := DeriveCorrectLetters([]model.Question{q})
			if len(got) != 1 || got[0] != tc.want {
				t.Errorf("DeriveCorrectLetters() = %v, want [%s]", got, tc.want)
			}
		})
	}
}

func TestDeriveCorrectLetters_SkipsNonMultipleChoice(t *testing.T) {
	questions := []model.Question{
		mcQuestion(t, []string{"3", "4", "5"}, `"4"`),
		{ID: uuid.New(), Type: model.QuestionTypeShortAnswer, AnswerKey: json.RawMessage(`"osmosis"`)},
		mcQuestion(t, []string{"x", "y"}, `"A"`),
	}

	got := DeriveCorrectLetters(questions)
	if len(got) != 2 || got[0] != "B" || got[1] != "A" {
		t.Errorf("DeriveCorrectLetters() = %v, want [B A]", got)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name         string
		detected     []string
		correct      []string
		wantScore    int
		wantCorrect  int
		wantCompared int
	}{
		{name: "perfect single", detected: []string{"B"}, correct: []string{"B"}, wantScore: 100, wantCorrect: 1, wantCompared: 1},
		{name: "unreadable mark skipped", detected: []string{"A", "?", "C"}, correct: []string{"A", "B", "C"}, wantScore: 67, wantCorrect: 2, wantCompared: 3},
		{name: "excess detected ignored", detected: []string{"A", "B", "C", "D"}, correct: []string{"A", "B"}, wantScore: 100, wantCorrect: 2, wantCompared: 2},
		{name: "excess correct ignored", detected: []string{"A"}, correct: []string{"A", "B", "C"}, wantScore: 100, wantCorrect: 1, wantCompared: 1},
		{name: "nothing compared", detected: nil, correct: []string{"A"}, wantScore: 0, wantCorrect: 0, wantCompared: 0},
		{name: "unknown correct letter never matches", detected: []string{"?"}, correct: []string{"?"}, wantScore: 0, wantCorrect: 0, wantCompared: 1},
		{name: "lowercase detection normalized", detected: []string{"b"}, correct: []string{"B"}, wantScore: 100, wantCorrect: 1, wantCompared: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Compare(tc.detected, tc.correct)
			if got.Score != tc.wantScore || got.CorrectCount != tc.wantCorrect || got.ComparedCount != tc.wantCompared {
				t.Errorf("Compare() = {score:%d correct:%d compared:%d}, want {%d %d %d}",
					got.Score, got.CorrectCount, got.ComparedCount,
					tc.wantScore, tc.wantCorrect, tc.wantCompared)
			}
			if len(got.Comparison) != tc.wantCompared {
				t.Errorf("comparison rows = %d, want %d", len(got.Comparison), tc.wantCompared)
			}
		})
	}
}

func TestCompare_PerQuestionRows(t *testing.T) {
	got := Compare([]string{"A", "?", "D"}, []string{"A", "B", "C"})

	want := []Comparison{
		{Position: 1, Detected: "A", Correct: "A", Match: true},
		{Position: 2, Detected: "?", Correct: "B", Match: false},
		{Position: 3, Detected: "D", Correct: "C", Match: false},
	}
	for i, row := range got.Comparison {
		if row != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, row, want[i])
		}
	}
}
