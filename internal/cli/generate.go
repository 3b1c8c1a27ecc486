package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"classquiz-service/internal/app"
	"classquiz-service/internal/config"
	"classquiz-service/internal/domain"
	"classquiz-service/internal/gen"
	"classquiz-service/internal/infra/memory"
	pgstore "classquiz-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewGenerateCmd asks the AI collaborator for a quiz. The generated quiz
// is printed as JSON; with --publish it is also saved to the store.
func NewGenerateCmd(configPath *string) *cobra.Command {
	var (
		topic      string
		count      int
		difficulty string
		publish    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a quiz from a topic via the configured AI endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), *configPath, topic, count, domain.Difficulty(difficulty), publish)
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "topic to generate questions about")
	cmd.Flags().IntVar(&count, "count", 5, "number of questions")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(domain.DifficultyMedium), "easy, medium, or hard")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the generated quiz to the store")
	return cmd
}

func runGenerate(ctx context.Context, configPath, topic string, count int, difficulty domain.Difficulty, publish bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Generator.URL == "" {
		return fmt.Errorf("generator url not configured")
	}

	client := gen.NewClient(cfg.Generator.URL, cfg.Generator.APIKey)

	var quizzes app.QuizStore = memory.NewQuizStore()
	if publish {
		if cfg.Postgres.URL == "" {
			return fmt.Errorf("--publish requires a configured postgres url")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		quizzes = pgstore.NewQuizStore(pool)
	}

	service := app.NewQuizService(quizzes, nil, nil, nil, client)
	quiz, err := service.GenerateQuiz(ctx, app.GenerationRequest{
		Topic:         topic,
		QuestionCount: count,
		Difficulty:    difficulty,
	})
	if err != nil {
		return err
	}

	if publish {
		quiz, err = service.PublishQuiz(ctx, quiz)
		if err != nil {
			return err
		}
		log.Printf("published quiz %s (%d questions)", quiz.ID, len(quiz.Questions))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(quiz)
}
