package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/dataqa/internal/catalog"
	"github.com/jonathan/dataqa/internal/config"
	"github.com/jonathan/dataqa/internal/dataset"
	"github.com/jonathan/dataqa/internal/observability"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show a dataset's identity and its first units",
	Long:  "Opens the configured dataset, prints its name, digest, source and profile, then previews the first converted units as JSON lines.",
	RunE:  runInspect,
}

var (
	inspectConfig string
	inspectLimit  int
	inspectJSON   bool
)

func init() {
	inspectCmd.Flags().StringVarP(&inspectConfig, "config", "c", "", "Path to run configuration, YAML or JSON (required)")
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", 5, "Number of units to preview")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the dataset identity as JSON")

	if err := inspectCmd.MarkFlagRequired("config"); err != nil {
		panic(fmt.Sprintf("failed to mark config flag as required: %v", err))
	}

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(inspectConfig)
	if err != nil {
		return err
	}

	cat, err := catalog.Default(catalog.WithPromptFiles(cfg.Prompts...))
	if err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}

	ds, err := cat.OpenDataset(ctx, cfg.Dataset)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = ds.Close() }()

	info, err := ds.ToDict()
	if err != nil {
		return fmt.Errorf("failed to serialize dataset: %w", err)
	}

	out := cmd.OutOrStdout()
	if inspectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			return fmt.Errorf("failed to encode dataset: %w", err)
		}
	} else {
		observability.NewPrinter(out).PrintDataset(info)
	}

	return previewUnits(ctx, out, ds.GetData(), inspectLimit)
}

// previewUnits writes up to limit units; records that fail conversion are reported inline
func previewUnits(ctx context.Context, out io.Writer, stream *dataset.Stream, limit int) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	for shown := 0; shown < limit; {
		d, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		var convErr *dataset.ConversionError
		if errors.As(err, &convErr) {
			_, _ = fmt.Fprintf(out, "# record %d skipped: %v\n", convErr.Index, convErr.Cause)
			continue
		}
		if err != nil {
			return err
		}
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode unit: %w", err)
		}
		shown++
	}
	return nil
}
