package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"classquiz-service/internal/app"
	"classquiz-service/internal/config"
	"classquiz-service/internal/export"
	pgstore "classquiz-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewExportCmd renders a stored quiz as a printable sheet, or its
// standings as CSV.
func NewExportCmd(configPath *string) *cobra.Command {
	var (
		quizID    string
		answers   bool
		standings bool
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a quiz sheet or its standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), *configPath, quizID, answers, standings, outPath)
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz ID to export")
	cmd.Flags().BoolVar(&answers, "answers", false, "include the answer key (educator copy)")
	cmd.Flags().BoolVar(&standings, "standings", false, "export the leaderboard as CSV instead of the sheet")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}

func runExport(ctx context.Context, configPath, quizID string, answers, standings bool, outPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("export requires a configured postgres url")
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if standings {
		results, err := pgstore.NewResultStore(pool).ByQuiz(ctx, quizID)
		if err != nil {
			return err
		}
		return export.WriteStandingsCSV(out, app.Standings(quizID, results))
	}

	quiz, err := pgstore.NewQuizStore(pool).LoadQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	return export.WriteQuizSheet(out, quiz, answers)
}
