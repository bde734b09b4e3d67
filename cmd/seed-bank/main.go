package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/edulab/assess-backend/internal/config"
	"github.com/edulab/assess-backend/internal/database"
	"github.com/edulab/assess-backend/internal/logger"
	"github.com/edulab/assess-backend/internal/model"
	"github.com/edulab/assess-backend/internal/repository"
	"github.com/edulab/assess-backend/internal/service"
)

// seedQuestion is one bank entry to insert.
type seedQuestion struct {
	text      string
	qtype     model.QuestionType
	structure interface{}
	answerKey interface{}
}

func main() {
	var courseID int
	flag.IntVar(&courseID, "course", 1, "Course ID to seed the bank for")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	questionService := service.NewQuestionService(questionRepo, log)

	fmt.Printf("=== Seeding question bank for course %d ===\n", courseID)

	seeds := []seedQuestion{
		{
			text:  "What is 12 x 12?",
			qtype: model.QuestionTypeMultipleChoice,
			structure: model.ChoiceStructure{Options: []model.Option{
				{Text: "124"}, {Text: "144"}, {Text: "148"},
			}},
			answerKey: "144",
		},
		{
			text:  "The Earth orbits the Sun.",
			qtype: model.QuestionTypeTrueFalse,
			structure: model.ChoiceStructure{Options: []model.Option{
				{Text: "true"}, {Text: "false"},
			}},
			answerKey: "true",
		},
		{
			text:  "Select the prime numbers.",
			qtype: model.QuestionTypeMultipleSelect,
			structure: model.ChoiceStructure{Options: []model.Option{
				{Text: "2"}, {Text: "3"}, {Text: "4"}, {Text: "5"},
			}},
			answerKey: []string{"2", "3", "5"},
		},
		{
			text:      "Name the process by which plants make food.",
			qtype:     model.QuestionTypeShortAnswer,
			structure: map[string]interface{}{},
			answerKey: "photosynthesis",
		},
		{
			text:  "Order the planets from the Sun outwards.",
			qtype: model.QuestionTypeOrdering,
			structure: model.OrderingStructure{Items: []model.Option{
				{Text: "Mercury"}, {Text: "Venus"}, {Text: "Earth"},
			}},
			answerKey: []string{"Mercury", "Venus", "Earth"},
		},
		{
			text:  "Match the country to its capital.",
			qtype: model.QuestionTypeMatching,
			structure: model.MatchingStructure{Pairs: []model.MatchPair{
				{Left: "France", Right: "Paris"},
				{Left: "Japan", Right: "Tokyo"},
			}},
			answerKey: map[string]string{"France": "Paris", "Japan": "Tokyo"},
		},
		{
			text:      "Water boils at ___ degrees Celsius at sea level.",
			qtype:     model.QuestionTypeFillInBlanks,
			structure: map[string]interface{}{"blanks": 1},
			answerKey: []string{"100"},
		},
		{
			text:      "What is the square root of 169?",
			qtype:     model.QuestionTypeNumeric,
			structure: map[string]interface{}{},
			answerKey: 13,
		},
		{
			text:      "Explain the causes of the industrial revolution.",
			qtype:     model.QuestionTypeLongAnswer,
			structure: map[string]interface{}{},
			answerKey: nil,
		},
		{
			text:      "Write a function that reverses a string.",
			qtype:     model.QuestionTypeCodeSnippet,
			structure: map[string]interface{}{"language": "go"},
			answerKey: nil,
		},
	}

	created := 0
	for _, s := range seeds {
		structure, err := json.Marshal(s.structure)
		if err != nil {
			log.Fatal().Err(err).Str("text", s.text).Msg("Failed to marshal structure")
		}
		var answerKey json.RawMessage
		if s.answerKey != nil {
			answerKey, err = json.Marshal(s.answerKey)
			if err != nil {
				log.Fatal().Err(err).Str("text", s.text).Msg("Failed to marshal answer key")
			}
		}

		payload := &model.QuestionPayload{
			Text:      s.text,
			Type:      s.qtype,
			Structure: structure,
			AnswerKey: answerKey,
		}
		q, err := questionService.CreateBankQuestion(ctx, courseID, payload)
		if err != nil {
			log.Fatal().Err(err).Str("text", s.text).Msg("Failed to create bank question")
		}
		fmt.Printf("Created %-16s %s\n", q.Type, q.ID)
		created++
	}

	fmt.Printf("=== Done: %d questions seeded ===\n", created)
}
