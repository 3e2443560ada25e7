package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jonathan/dataqa/internal/catalog"
	"github.com/jonathan/dataqa/internal/config"
	"github.com/jonathan/dataqa/internal/executor"
	"github.com/jonathan/dataqa/internal/logging"
	"github.com/jonathan/dataqa/internal/observability"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a dataset",
	Long:  "Evaluates every unit of the configured dataset with every configured evaluator and writes one JSON line per result.",
	RunE:  runEval,
}

var (
	evalConfig      string
	evalOutput      string
	evalName        string
	evalConcurrency int
	evalFailFast    bool
	evalSummary     bool
	evalMetricsOut  string
)

func init() {
	evalCmd.Flags().StringVarP(&evalConfig, "config", "c", "", "Path to run configuration, YAML or JSON (required)")
	evalCmd.Flags().StringVarP(&evalOutput, "out", "o", "", "Path to results file; stdout when empty or \"-\"")
	evalCmd.Flags().StringVar(&evalName, "name", "", "Dataset name, overriding the configuration")
	evalCmd.Flags().IntVar(&evalConcurrency, "concurrency", 0, "Units evaluated at once, overriding the configuration")
	evalCmd.Flags().BoolVar(&evalFailFast, "fail-fast", false, "Stop at the first record that fails conversion")
	evalCmd.Flags().BoolVar(&evalSummary, "summary", true, "Print the dataset and a run summary to stderr")
	evalCmd.Flags().StringVar(&evalMetricsOut, "metrics-out", "", "Write prometheus metrics in text format to this file after the run")

	if err := evalCmd.MarkFlagRequired("config"); err != nil {
		panic(fmt.Sprintf("failed to mark config flag as required: %v", err))
	}

	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New("eval")

	cfg, err := config.Load(evalConfig)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.MergeFlags(config.Overrides{
		DatasetName: evalName,
		Concurrency: evalConcurrency,
		FailFast:    evalFailFast,
		Output:      evalOutput,
	})

	cat, err := catalog.Default(
		catalog.WithLogger(logging.New("catalog")),
		catalog.WithPromptFiles(cfg.Prompts...),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}

	ds, err := cat.OpenDataset(ctx, cfg.Dataset)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = ds.Close() }()

	evaluators, err := cat.BuildEvaluators(cfg.Evaluators)
	if err != nil {
		return err
	}
	defer func() {
		for _, e := range evaluators {
			if c, ok := e.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}()

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	if evalSummary {
		info, err := ds.ToDict()
		if err != nil {
			return fmt.Errorf("failed to serialize dataset: %w", err)
		}
		printer.PrintDataset(info)
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), cfg.Output)
	if err != nil {
		return err
	}
	defer closeOutput(closeOut, &err)

	reg := prometheus.NewRegistry()
	runner := &executor.Runner{
		Evaluators:  evaluators,
		Concurrency: cfg.Concurrency,
		FailFast:    cfg.FailFast,
		Logger:      logging.New("executor").With("dataset", ds.Name(), "digest", ds.Digest()),
		Metrics:     executor.NewMetrics(reg),
	}

	summary, runErr := runner.Run(ctx, ds.GetData(), executor.JSONLinesEmitter(out))
	if evalSummary {
		printer.PrintSummary(summary)
	}

	if evalMetricsOut != "" {
		if err := prometheus.WriteToTextfile(evalMetricsOut, reg); err != nil {
			logger.Warn("failed to write metrics", "path", evalMetricsOut, "error", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("evaluation failed: %w", runErr)
	}
	return nil
}

// openOutput returns the results writer and its close function
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// closeOutput closes the results writer and reports its error unless one is already set
func closeOutput(closeOut func() error, err *error) {
	if cerr := closeOut(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close output: %w", cerr)
	}
}
