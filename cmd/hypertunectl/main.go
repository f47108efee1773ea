package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"hypertune/internal/strategy"
	hyperapi "hypertune/pkg/hypertune"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a JSON run config")
	store := fs.String("store", "memory", "store backend: memory or sqlite")
	dbPath := fs.String("db", "", "sqlite database path")
	verbosity := fs.Int("v", 1, "verbosity level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := defaultRunRequest()
	if *configPath != "" {
		loaded, err := loadRunRequestFromConfig(*configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", *configPath, err)
		}
		req = loaded
	}
	req.Verbosity = *verbosity

	client, err := hyperapi.New(ctx, hyperapi.Options{StoreKind: *store, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished in %s\n", summary.RunID, summary.Elapsed.Round(time.Millisecond))
	fmt.Printf("evaluations: %s\n", humanize.Comma(int64(summary.Evaluations)))
	fmt.Printf("best %s: %.6f\n", summary.BestMeasure, summary.BestValue)
	for name, value := range summary.BestParams {
		fmt.Printf("best param %s = %g\n", name, value)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	store := fs.String("store", "sqlite", "store backend: memory or sqlite")
	dbPath := fs.String("db", "", "sqlite database path")
	limit := fs.Int("limit", 20, "maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := hyperapi.New(ctx, hyperapi.Options{StoreKind: *store, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer client.Close()

	runs, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no archived runs")
		return nil
	}
	for _, item := range runs {
		age := item.CreatedAtUTC
		if created, err := time.Parse(time.RFC3339, item.CreatedAtUTC); err == nil {
			age = humanize.Time(created)
		}
		fmt.Printf("%s  %s/%s  %s evals  best %s=%.6f  %s\n",
			item.ID, item.Learner, item.Strategy,
			humanize.Comma(int64(item.Iterations)),
			item.BestMeasure, item.BestValue, age)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	store := fs.String("store", "sqlite", "store backend: memory or sqlite")
	dbPath := fs.String("db", "", "sqlite database path")
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("history requires -run")
	}

	client, err := hyperapi.New(ctx, hyperapi.Options{StoreKind: *store, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer client.Close()

	points, err := client.History(ctx, *runID)
	if err != nil {
		return err
	}
	for _, point := range points {
		fmt.Printf("#%d params=%v", point.Index, point.Params)
		for i, name := range point.Eval.Measures {
			fmt.Printf("  %s=%.6f", name, point.Eval.Values[i])
		}
		fmt.Println()
	}
	return nil
}

func defaultRunRequest() hyperapi.RunRequest {
	return hyperapi.RunRequest{
		Learner:  "ridge",
		Strategy: "grid",
		Ranges: []strategy.Param{
			strategy.NumericRange("lambda", 0.0, 10.0, 0.5),
		},
		Folds:      5,
		Measures:   []string{"rmse", "mae"},
		TrainBest:  true,
		DataPoints: 200,
		DataNoise:  0.5,
		Seed:       1,
	}
}

func printUsage() {
	fmt.Println(`usage: hypertunectl <command> [flags]

commands:
  run      execute a tuning run (optionally from -config file.json)
  runs     list archived runs
  history  print the evaluation history of one run`)
}

func usageError(msg string) error {
	printUsage()
	return errors.New(msg)
}
