package grading

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/edulab/assess-backend/internal/model"
)

func mkQuestion(t *testing.T, qType model.QuestionType, structure, answerKey string) model.Question {
	t.Helper()
	q := model.Question{
		ID:   uuid.New(),
		Text: "q",
		Type: qType,
	}
	if structure != "" {
		q.Structure = json.RawMessage(structure)
	}
	if answerKey != "" {
		q.AnswerKey = json.RawMessage(answerKey)
	}
	return q
}

// decode parses a JSON literal into the shape a submitted answer arrives in.
func decode(t *testing.T, literal string) interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal([]byte(literal), &v); err != nil {
		t.Fatalf("bad test literal %q: %v", literal, err)
	}
	return v
}

func TestIsCorrect_PerType(t *testing.T) {
	tests := []struct {
		name   string
		qType  model.QuestionType
		key    string
		answer string
		want   bool
	}{
		// Multiple choice / true-false: exact stringified equality.
		{name: "mc exact match", qType: model.QuestionTypeMultipleChoice, key: `"Paris"`, answer: `"Paris"`, want: true},
		{name: "mc case matters", qType: model.QuestionTypeMultipleChoice, key: `"Paris"`, answer: `"paris"`, want: false},
		{name: "mc whitespace matters", qType: model.QuestionTypeMultipleChoice, key: `"Paris"`, answer: `" Paris"`, want: false},
		{name: "mc number vs numeric string", qType: model.QuestionTypeMultipleChoice, key: `"4"`, answer: `4`, want: true},
		{name: "tf match", qType: model.QuestionTypeTrueFalse, key: `"True"`, answer: `"True"`, want: true},
		{name: "tf boolean vs text", qType: model.QuestionTypeTrueFalse, key: `"true"`, answer: `true`, want: true},
		{name: "tf mismatch", qType: model.QuestionTypeTrueFalse, key: `"True"`, answer: `"False"`, want: false},

		// Multiple select: order-independent, duplicates significant.
		{name: "select same order", qType: model.QuestionTypeMultipleSelect, key: `["A","B"]`, answer: `["A","B"]`, want: true},
		{name: "select permuted", qType: model.QuestionTypeMultipleSelect, key: `["A","B"]`, answer: `["B","A"]`, want: true},
		{name: "select missing entry", qType: model.QuestionTypeMultipleSelect, key: `["A","B"]`, answer: `["A"]`, want: false},
		{name: "select duplicate significant", qType: model.QuestionTypeMultipleSelect, key: `["A","B"]`, answer: `["A","A","B"]`, want: false},
		{name: "select non-list answer", qType: model.QuestionTypeMultipleSelect, key: `["A","B"]`, answer: `"A"`, want: false},

		// Short answer: trimmed, case-insensitive.
		{name: "short trimmed casefold", qType: model.QuestionTypeShortAnswer, key: `"Photosynthesis"`, answer: `"  photosynthesis "`, want: true},
		{name: "short wrong word", qType: model.QuestionTypeShortAnswer, key: `"Photosynthesis"`, answer: `"respiration"`, want: false},
		{name: "short non-string answer", qType: model.QuestionTypeShortAnswer, key: `"42"`, answer: `42`, want: false},

		// Ordering: position matters.
		{name: "ordering exact", qType: model.QuestionTypeOrdering, key: `["A","B","C"]`, answer: `["A","B","C"]`, want: true},
		{name: "ordering permuted rejected", qType: model.QuestionTypeOrdering, key: `["A","B"]`, answer: `["B","A"]`, want: false},
		{name: "ordering shorter rejected", qType: model.QuestionTypeOrdering, key: `["A","B","C"]`, answer: `["A","B"]`, want: false},

		// Matching: key sets equal, values identical.
		{name: "matching match", qType: model.QuestionTypeMatching, key: `{"cat":"meow","dog":"woof"}`, answer: `{"dog":"woof","cat":"meow"}`, want: true},
		{name: "matching wrong value", qType: model.QuestionTypeMatching, key: `{"cat":"meow","dog":"woof"}`, answer: `{"cat":"woof","dog":"meow"}`, want: false},
		{name: "matching extra key", qType: model.QuestionTypeMatching, key: `{"cat":"meow"}`, answer: `{"cat":"meow","dog":"woof"}`, want: false},
		{name: "matching type-strict value", qType: model.QuestionTypeMatching, key: `{"n":"1"}`, answer: `{"n":1}`, want: false},

		// Fill in blanks: pairwise trimmed, case-insensitive, equal length.
		{name: "blanks trimmed casefold", qType: model.QuestionTypeFillInBlanks, key: `["Nile","Amazon"]`, answer: `[" nile", "AMAZON "]`, want: true},
		{name: "blanks length mismatch", qType: model.QuestionTypeFillInBlanks, key: `["Nile","Amazon"]`, answer: `["Nile"]`, want: false},
		{name: "blanks one wrong", qType: model.QuestionTypeFillInBlanks, key: `["Nile","Amazon"]`, answer: `["Nile","Congo"]`, want: false},

		// Numeric: coercion, no tolerance.
		{name: "numeric string vs number", qType: model.QuestionTypeNumeric, key: `9`, answer: `"9"`, want: true},
		{name: "numeric decimal equal", qType: model.QuestionTypeNumeric, key: `2.5`, answer: `2.5`, want: true},
		{name: "numeric near miss", qType: model.QuestionTypeNumeric, key: `2.5`, answer: `2.51`, want: false},
		{name: "numeric unparseable", qType: model.QuestionTypeNumeric, key: `9`, answer: `"nine"`, want: false},
		{name: "numeric null answer", qType: model.QuestionTypeNumeric, key: `9`, answer: `null`, want: false},

		// Manual-grading types: never auto-credited.
		{name: "long answer no credit", qType: model.QuestionTypeLongAnswer, key: "", answer: `"a thorough essay"`, want: false},
		{name: "code snippet no credit", qType: model.QuestionTypeCodeSnippet, key: "", answer: `"print(42)"`, want: false},

		// Malformed data is incorrect, never an error.
		{name: "malformed key json", qType: model.QuestionTypeMultipleSelect, key: `{"not":`, answer: `["A"]`, want: false},
		{name: "map against list key", qType: model.QuestionTypeOrdering, key: `["A"]`, answer: `{"A":1}`, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := mkQuestion(t, tc.qType, "", tc.key)
			var answer interface{}
			if tc.answer != "" {
				answer = decode(t, tc.answer)
			}
			if got := IsCorrect(&q, answer); got != tc.want {
				t.Errorf("IsCorrect() = %v, want %v", got, tc.want)
			}
		})
	}
}

// Submitting exactly the stored answer key must grade correct for every
// auto-graded type.
func TestIsCorrect_ReflexiveOnAnswerKey(t *testing.T) {
	cases := []struct {
		qType model.QuestionType
		key   string
	}{
		{model.QuestionTypeMultipleChoice, `"Mitochondria"`},
		{model.QuestionTypeMultipleSelect, `["A","C","D"]`},
		{model.QuestionTypeTrueFalse, `"False"`},
		{model.QuestionTypeShortAnswer, `"osmosis"`},
		{model.QuestionTypeOrdering, `["first","second","third"]`},
		{model.QuestionTypeMatching, `{"H":"Hydrogen","O":"Oxygen"}`},
		{model.QuestionTypeFillInBlanks, `["red","blue"]`},
		{model.QuestionTypeNumeric, `3.14`},
	}

	for _, tc := range cases {
		t.Run(string(tc.qType), func(t *testing.T) {
			q := mkQuestion(t, tc.qType, "", tc.key)
			if !IsCorrect(&q, decode(t, tc.key)) {
				t.Errorf("submitting the answer key itself graded incorrect for %s", tc.qType)
			}
		})
	}
}

func TestGrade_EmptyExamScoresZero(t *testing.T) {
	got := Grade(nil, map[uuid.UUID]interface{}{uuid.New(): "anything"})
	if got.Score != 0 || got.Total != 0 || got.CorrectCount != 0 {
		t.Errorf("Grade(empty) = %+v, want zero summary", got)
	}
}

func TestGrade_ScoreRounding(t *testing.T) {
	// 1 of 3 correct: round(33.33) = 33; 2 of 3: round(66.67) = 67.
	questions := []model.Question{
		mkQuestion(t, model.QuestionTypeMultipleChoice, "", `"A"`),
		mkQuestion(t, model.QuestionTypeMultipleChoice, "", `"B"`),
		mkQuestion(t, model.QuestionTypeMultipleChoice, "", `"C"`),
	}

	answers := map[uuid.UUID]interface{}{
		questions[0].ID: "A",
	}
	if got := Grade(questions, answers); got.Score != 33 {
		t.Errorf("1/3 score = %d, want 33", got.Score)
	}

	answers[questions[1].ID] = "B"
	if got := Grade(questions, answers); got.Score != 67 {
		t.Errorf("2/3 score = %d, want 67", got.Score)
	}
}

func TestGrade_ScoreStaysWithinBounds(t *testing.T) {
	for n := 1; n <= 13; n++ {
		questions := make([]model.Question, n)
		answers := make(map[uuid.UUID]interface{}, n)
		for i := range questions {
			questions[i] = mkQuestion(t, model.QuestionTypeMultipleChoice, "", `"A"`)
			if i%2 == 0 {
				answers[questions[i].ID] = "A"
			}
		}
		got := Grade(questions, answers)
		if got.Score < 0 || got.Score > 100 {
			t.Errorf("n=%d: score %d out of [0,100]", n, got.Score)
		}
	}
}

// Four multiple-choice questions whose answer keys are the option texts at
// indices 1, 1, 0, 2. Answering all four exactly scores 100; flipping one
// answer scores 75.
func TestGrade_MultipleChoiceExam(t *testing.T) {
	build := func(options []string, key string) model.Question {
		structure := model.ChoiceStructure{}
		for _, o := range options {
			structure.Options = append(structure.Options, model.Option{Text: o})
		}
		raw, err := json.Marshal(structure)
		if err != nil {
			t.Fatal(err)
		}
		q := mkQuestion(t, model.QuestionTypeMultipleChoice, string(raw), "")
		q.AnswerKey, _ = json.Marshal(key)
		return q
	}

	questions := []model.Question{
		build([]string{"3", "4", "5"}, "4"),
		build([]string{"A", "B", "C"}, "B"),
		build([]string{"Correct", "Incorrect"}, "Correct"),
		build([]string{"7", "8", "9"}, "9"),
	}

	answers := map[uuid.UUID]interface{}{
		questions[0].ID: "4",
		questions[1].ID: "B",
		questions[2].ID: "Correct",
		questions[3].ID: "9",
	}

	if got := Grade(questions, answers); got.Score != 100 || got.CorrectCount != 4 {
		t.Errorf("full marks = %+v, want score 100", got)
	}

	answers[questions[3].ID] = "7"
	if got := Grade(questions, answers); got.Score != 75 || got.CorrectCount != 3 {
		t.Errorf("one wrong = %+v, want score 75", got)
	}
}

func TestGrade_ManualTypesCountInDenominator(t *testing.T) {
	questions := []model.Question{
		mkQuestion(t, model.QuestionTypeMultipleChoice, "", `"A"`),
		mkQuestion(t, model.QuestionTypeLongAnswer, "", ""),
	}
	answers := map[uuid.UUID]interface{}{
		questions[0].ID: "A",
		questions[1].ID: "an essay that deserves full marks",
	}
	got := Grade(questions, answers)
	if got.Score != 50 {
		t.Errorf("score = %d, want 50 (manual question still in denominator)", got.Score)
	}
}
