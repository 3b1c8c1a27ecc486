package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classquiz-service/internal/app"
	"classquiz-service/internal/config"
	"classquiz-service/internal/domain"
	"classquiz-service/internal/gen"
	"classquiz-service/internal/infra/memory"
	pgstore "classquiz-service/internal/infra/postgres"
	redisinfra "classquiz-service/internal/infra/redis"
	transport "classquiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var (
		quizStore app.QuizStore
		loader    memory.QuizLoader
		results   app.ResultStore
		notes     app.NoteStore
	)
	if pool != nil {
		pgQuizzes := pgstore.NewQuizStore(pool)
		quizStore = pgQuizzes
		loader = pgQuizzes
		results = pgstore.NewResultStore(pool)
		notes = pgstore.NewNoteStore(pool)
	} else {
		memQuizzes := seededQuizStore(ctx)
		quizStore = memQuizzes
		loader = memQuizzes
		results = memory.NewResultStore()
		notes = memory.NewNoteStore()
	}

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var reader app.QuizReader
	if redisClient != nil {
		reader = redisinfra.NewQuizCache(redisClient, loader, cacheTTL)
	} else {
		reader = memory.NewQuizCache(loader, cacheTTL)
	}

	var generator app.Generator
	if cfg.Generator.URL != "" {
		generator = gen.NewClient(cfg.Generator.URL, cfg.Generator.APIKey)
	}

	service := app.NewQuizService(quizStore, reader, results, notes, generator)

	var tracker transport.Tracker
	if redisClient != nil {
		tracker = redisinfra.NewAttemptTracker(redisClient)
	}
	wsHandler := transport.NewWSHandler(service, tracker)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seededQuizStore provides demo content when no database is configured.
func seededQuizStore(ctx context.Context) *memory.QuizStore {
	store := memory.NewQuizStore()
	_ = store.SaveQuiz(ctx, domain.Quiz{
		ID:         "quiz-1",
		Title:      "Everyday Grammar",
		Subject:    "English",
		Difficulty: domain.DifficultyEasy,
		Questions: []domain.Question{
			{
				Text:         "Which sentence is correct?",
				Options:      []string{"He go to school.", "He goes to school.", "He going to school.", "He gone to school."},
				CorrectIndex: 1,
				Explanation:  "Third-person singular present takes -es.",
			},
			{
				Text:         "Pick the plural of 'child'.",
				Options:      []string{"childs", "childes", "children", "child"},
				CorrectIndex: 2,
			},
		},
		DurationMinutes: 5,
		CreatedAt:       time.Now(),
	})
	return store
}
