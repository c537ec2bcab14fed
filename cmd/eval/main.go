package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gaiachat/horizon-rag/internal/bootstrap"
	"github.com/gaiachat/horizon-rag/internal/config"
	"github.com/gaiachat/horizon-rag/internal/infrastructure/evalio"
	"github.com/gaiachat/horizon-rag/internal/observability/logging"
)

func main() {
	datasetPath := flag.String("dataset", "./data/evaluation_data.json", "path to the labeled question dataset")
	outputPath := flag.String("out", "./data/evaluated_data.json", "path for the scored output")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("horizon-rag-eval", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	entries, err := evalio.ReadDataset(*datasetPath)
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}
	slog.Info("evaluation_started", "dataset", *datasetPath, "entries", len(entries))

	report, err := app.Evaluator.Evaluate(ctx, entries)
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}

	if err := evalio.WriteReport(*outputPath, report); err != nil {
		log.Fatalf("write report: %v", err)
	}
	slog.Info("evaluation_finished",
		"output", *outputPath,
		"scored", report.Scored,
		"mrr", report.MRR,
		"no_entries_scored", report.NoEntriesScored,
	)
}
